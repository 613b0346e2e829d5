// Package ledger describes the balance engine the registries are layered on
// and provides Memory, an in-process engine with an existential deposit.
//
// When a transfer leaves the sender below the existential deposit, the
// sender is reaped: its dust is burnt and every subscribed ReapedHandler is
// called synchronously before Transfer returns.
package ledger
