// Package client implements the operations of the registry-ctl command.
//
// Every operation connects to the registry server, performs one call on
// behalf of the configured caller and prints a human readable result.
package client
