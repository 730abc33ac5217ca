// Package version carries build metadata injected at link time.
package version

// Version contains the application version information.
// Set it via build-time ldflags in production:
// go build -ldflags "-X github.com/bryce-seefieldt/portfolio-docs/internal/version.Version=v1.0.0".
var Version = "dev"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	s := "portfolio-docs " + Version
	if GitCommit != "unknown" {
		s += " (" + GitCommit
		if BuildTime != "unknown" {
			s += ", " + BuildTime
		}
		s += ")"
	}
	return s
}
