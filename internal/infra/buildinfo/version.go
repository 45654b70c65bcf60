// Package buildinfo provides build-time version information.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/provisiond-go/internal/infra/buildinfo.Version=v1.0.0"
package buildinfo

import (
	"fmt"
	"runtime"
)

// Build-time variables (set via ldflags).
var (
	// Version is the semantic version.
	Version = "dev"

	// Commit is the git commit hash.
	Commit = "unknown"

	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// Info describes one service binary.
type Info struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns the build information for the named service.
func Get(service string) Info {
	return Info{
		Service:   service,
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// String returns the one-line form, e.g.
// "checkin-listener v1.2.0 (commit: 3f2a, built: 2024-05-01, go1.24.4)".
func (i Info) String() string {
	return i.Service + " " + i.Detail()
}

// Detail is String without the service name.
func (i Info) Detail() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, %s)",
		i.Version, i.Commit, i.BuildTime, i.GoVersion)
}

// LogAttrs returns the info as slog key/value pairs.
func (i Info) LogAttrs() []any {
	return []any{
		"service", i.Service,
		"version", i.Version,
		"commit", i.Commit,
		"go_version", i.GoVersion,
	}
}
