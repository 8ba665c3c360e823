// Package integration provides cross-package integration tests for bountyagent.
// These tests drive the agent through the real listing and oracle clients against
// in-process HTTP fakes, with history and metrics wired in.
//
// Build tag: integration
// Run with: go test -tags integration ./internal/integration/...
package integration
