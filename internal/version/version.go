// Package version provides build-time version information for showbook.
//
// Version, Commit, and Date are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/jmylchreest/showbook/internal/version.Version=x.y.z \
//	                   -X github.com/jmylchreest/showbook/internal/version.Commit=$(git rev-parse HEAD) \
//	                   -X github.com/jmylchreest/showbook/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Build-time variables injected via ldflags.
var (
	// Version is the semantic version, "dev" for local builds.
	Version = "dev"

	// Commit is the full git commit SHA.
	Commit = "unknown"

	// Date is the build timestamp in RFC3339 format.
	Date = "unknown"
)

// ApplicationName is the canonical name of this application.
const ApplicationName = "showbook"

// Info contains structured version information.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
}

// GetInfo returns all version information as a structured type.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func shortCommit() (string, bool) {
	if Commit == "unknown" || len(Commit) < 8 {
		return "", false
	}
	return Commit[:8], true
}

// String returns a human-readable version string.
func String() string {
	info := GetInfo()
	if sha, ok := shortCommit(); ok {
		return fmt.Sprintf("%s version %s (commit: %s, built: %s, %s, %s)",
			ApplicationName, info.Version, sha, info.Date, info.GoVersion, info.Platform)
	}
	return fmt.Sprintf("%s version %s (%s, %s)", ApplicationName, info.Version, info.GoVersion, info.Platform)
}

// Short returns the version with an abbreviated commit, for cobra's
// --version output.
func Short() string {
	if sha, ok := shortCommit(); ok {
		return fmt.Sprintf("%s (%s)", Version, sha)
	}
	return Version
}

// IsRelease reports whether this is a tagged release build.
func IsRelease() bool {
	return Version != "dev" && !strings.Contains(Version, "-SNAPSHOT")
}
