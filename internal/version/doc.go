// Package version exposes build metadata for registry-server and registry-ctl.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags and default to sensible values for local builds.
// Short and Full render the version string; AttachCobraVersionCommand adds
// a `version` subcommand to a binary's root command.
package version
