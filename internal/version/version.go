// internal/version/version.go
package version

// Version is the release version, overridable at link time.
var Version = "0.1.0"
