// Package account contains the domain types of the account registry.
//
// It defines Role (the two-tier privilege marker) and Account (role,
// enablement and creation time of an identity).
package account
