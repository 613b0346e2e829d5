package main

import "github.com/oshokin/ledger-registry/cmd/registry-server/cmd"

func main() {
	cmd.Execute()
}
