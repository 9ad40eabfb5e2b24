// Package version reports build metadata for the openclaw-models binary.
package version

import (
	"fmt"
	"runtime"
)

// Name is the binary name used in version output and outbound User-Agent headers
const Name = "openclaw-models"

// These variables are set via -ldflags during the build process
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns a formatted version string
func Info() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, %s)", Name, Version, Commit, Date, runtime.Version())
}

// UserAgent identifies discovery requests sent to local model servers
func UserAgent() string {
	return fmt.Sprintf("%s/%s (%s)", Name, Version, runtime.Version())
}
