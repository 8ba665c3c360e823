// Package version exposes the release version embedded at build time.
package version

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var versionContent string

// Get returns the current version, with whitespace trimmed.
func Get() string {
	return strings.TrimSpace(versionContent)
}

// UserAgent is the User-Agent header sent to the listing service and oracle.
func UserAgent() string {
	return "bountyagent/" + Get()
}
