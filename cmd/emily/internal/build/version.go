// Package build holds build-time version information injected via ldflags.
//
//	go build -ldflags "-X github.com/DougThompson1976/i-love-emily/cmd/emily/internal/build.Version=v1.0.0 \
//	  -X github.com/DougThompson1976/i-love-emily/cmd/emily/internal/build.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/DougThompson1976/i-love-emily/cmd/emily/internal/build.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package build

import (
	"fmt"
	"runtime"
)

// These variables are set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info is the version information as structured output.
type Info struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
	Go      string `json:"go" yaml:"go"`
	OS      string `json:"os" yaml:"os"`
	Arch    string `json:"arch" yaml:"arch"`
}

// Get returns the current build information.
func Get() Info {
	return Info{Version, Commit, Date, runtime.Version(), runtime.GOOS, runtime.GOARCH}
}

// String returns a formatted version string.
func String() string {
	return fmt.Sprintf("emily %s (%s) built %s %s/%s",
		Version, Commit, Date, runtime.GOOS, runtime.GOARCH)
}
