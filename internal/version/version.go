package version

// Set via ldflags:
// -X github.com/baditaflorin/go_subs_normalize/internal/version.Version=v1.0.0
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)
