package version

import (
	"fmt"
	"runtime"
)

// Overridden at build time with -ldflags "-X .../internal/version.Version=v1.0.0".
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
	GoVersion = runtime.Version()
)

// String is the one-line build description shown by --version.
func String() string {
	return fmt.Sprintf("%s (commit=%s, built=%s, %s)", Version, Commit, BuildDate, GoVersion)
}
