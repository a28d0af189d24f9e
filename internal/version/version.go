// Package version exposes build metadata for the modkit binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// These are set at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// BuildInfo aggregates version metadata for display and JSON output.
type BuildInfo struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit"`
	BuildTime time.Time `json:"build_time"`
	GoVersion string    `json:"go_version"`
	Platform  string    `json:"platform"`
}

// Get returns the build info, filling gaps from debug.ReadBuildInfo when
// the ldflags values were not set.
func Get() BuildInfo {
	return BuildInfo{
		Version:   currentVersion(),
		GitCommit: currentCommit(),
		BuildTime: parseBuildTime(BuildTime),
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// Short returns a compact version string like "v0.3.0 (a1b2c3d)".
func Short() string {
	version := currentVersion()
	if commit := currentCommit(); commit != "unknown" && len(commit) >= 7 {
		return fmt.Sprintf("%s (%s)", version, commit[:7])
	}
	return version
}

func currentVersion() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}

func currentCommit() string {
	if GitCommit != "" && GitCommit != "unknown" {
		return GitCommit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}
	return "unknown"
}

func parseBuildTime(value string) time.Time {
	if value == "" || value == "unknown" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}
