package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/ksmm-dev/ksmm/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/ksmm-dev/ksmm/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/ksmm-dev/ksmm/internal/version.Date={{.Date}}
)
