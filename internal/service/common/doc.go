// Package common holds helpers shared by the registry binaries.
//
// It provides a lightweight gRPC client wrapper with timeouts and a helper
// deriving a default caller identity (username@hostname) for the control CLI.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
