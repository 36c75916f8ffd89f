// Package version holds build metadata, set with -ldflags -X at release time.
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// String returns the full version line.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, %s/%s)", Version, Commit, BuildDate, runtime.GOOS, runtime.GOARCH)
}
