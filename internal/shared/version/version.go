// Package version holds the build-time version string the HTTP layer
// reports from /version. There is no update-check concept in this
// service — it is stateless and carries no "latest available" notion.
package version

// Current is the build version, set via -ldflags "-X
// subconverter/internal/shared/version.Current=...". Defaults to "dev"
// for local builds.
var Current = "dev"
