// Package version exposes build metadata (semantic version, commit, build
// time) injected via ldflags, plus a helper to attach a cobra `version`
// subcommand.
package version
