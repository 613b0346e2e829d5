// Package config defines the settings shared by the registry binaries and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the gRPC and metrics addresses, the snapshot path,
// the genesis registrar and the balances of the in-process ledger.
package config
