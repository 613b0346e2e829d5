// Package accounts implements the account registry: role-gated creation and
// disablement of identities, age computation and the reaping hook through
// which the ledger disables accounts whose balance fell to the dust threshold.
//
// A Registry is not safe for concurrent use. The enclosing service serializes
// every call so that each operation is applied as a single transaction.
package accounts
