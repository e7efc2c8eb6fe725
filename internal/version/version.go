// Package version carries build metadata injected with -ldflags.
package version

var (
	// Version is set via -ldflags "-X github.com/ledgerdesk/ledgerdesk/internal/version.Version=x.y.z".
	Version = "0.0.0-dev"

	// Commit is set via -ldflags "-X github.com/ledgerdesk/ledgerdesk/internal/version.Commit=sha".
	Commit = ""
)

// Full returns the version with the short commit hash when known.
func Full() string {
	if len(Commit) < 7 { //nolint:mnd
		return Version
	}

	return Version + " (" + Commit[:7] + ")"
}
