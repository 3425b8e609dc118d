// Package version carries the build stamp for the ragdex binary. The
// variables are overridden at link time:
//
//	-ldflags "-X github.com/auditcloud/ragdex/internal/version.Version=v1.2.3"
package version

import "fmt"

// "dev" marks a build without an injected stamp.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the full build stamp for the startup banner.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}
