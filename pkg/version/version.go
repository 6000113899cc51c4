// Package version holds build-time version information, normally
// overridden via -ldflags at release build time.
package version

// Version is the current release version, "dev" for local builds.
var Version = "dev"
