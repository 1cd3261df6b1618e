package contracts

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const (
	// Version is the release of the dashboard server and realtyctl
	Version = "0.4.0"

	// DataFormatVersion is the version of the dataset JSON layout
	DataFormatVersion = "v1"

	// APIVersion is the version of the HTTP and WebSocket payloads
	APIVersion = "v1"
)

// Set with -ldflags "-X realtydash/pkg/contracts.BuildTime=..."
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Commit returns GitCommit, falling back to the VCS revision the Go
// toolchain stamps into module builds
func Commit() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				if len(s.Value) > 12 {
					return s.Value[:12]
				}
				return s.Value
			}
		}
	}
	return GitCommit
}

// FullVersion is the one-line version shown by realtyctl --version
func FullVersion() string {
	return fmt.Sprintf("%s (commit %s, built %s, %s %s/%s)",
		Version, Commit(), BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
