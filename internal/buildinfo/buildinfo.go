package buildinfo

import "fmt"

// Set at build time via -ldflags "-X github.com/deploygun/deploygun/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func String() string {
	return fmt.Sprintf("deploygun %s (commit=%s, date=%s)", Version, Commit, Date)
}
