package version

import "fmt"

var (
	// Version is the ledger registry release. It can be overridden via ldflags.
	Version = "0.1.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the release string.
func Short() string {
	return Version
}

// Full returns the release with commit and build time, as printed by
// registry-server and registry-ctl.
func Full() string {
	return fmt.Sprintf("ledger-registry %s (commit %s, built %s)", Version, Commit, BuildTime)
}
