package main

import "github.com/oshokin/ledger-registry/cmd/registry-ctl/cmd"

func main() {
	cmd.Execute()
}
