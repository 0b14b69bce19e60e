// Package version carries build metadata, overridable via -ldflags.
package version

var (
	Version = "0.1.0"
	Commit  = "dev"
)
