// Package version provides build-time version information for loctreemap.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time variables set via ldflags.
// Example: go build -ldflags="-X github.com/andywolf/loctreemap/internal/version.Version=v1.0.0"
var (
	// Version is the semantic version (e.g., "v1.2.3"). Set via ldflags.
	Version = "dev"

	// Commit is the git commit SHA. Set via ldflags.
	Commit = "unknown"

	// BuildDate is the RFC3339 timestamp of the build. Set via ldflags.
	BuildDate = "unknown"
)

// BuildInfo is the version data in structured form.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the build information. When no version was injected via
// ldflags, the main module version recorded by `go install` is used.
func Get() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info.Version != "dev" {
		return info
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.Version = v
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && info.Commit == "unknown" {
			info.Commit = s.Value
		}
	}
	return info
}

// Short returns the version string (e.g., "v1.2.3" or "dev").
func Short() string {
	return Get().Version
}

// Info returns a single-line version string with commit and build info.
// Format: "loctreemap v1.2.3 (commit: abc1234, built: 2024-01-15T10:30:00Z, go: go1.25.x)"
func Info() string {
	bi := Get()
	return fmt.Sprintf("loctreemap %s (commit: %s, built: %s, go: %s)",
		bi.Version, shortCommit(bi.Commit), bi.BuildDate, bi.GoVersion)
}

// Full returns a multi-line verbose version output.
func Full() string {
	bi := Get()
	return fmt.Sprintf(`loctreemap %s
  Commit:     %s
  Built:      %s
  Go version: %s
  OS/Arch:    %s`,
		bi.Version, bi.Commit, bi.BuildDate, bi.GoVersion, bi.Platform)
}

func shortCommit(c string) string {
	if len(c) > 7 {
		return c[:7]
	}
	return c
}
