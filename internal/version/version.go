package version

// AppVersion is the semantic version of envctl itself.
// Overridable at build time: -ldflags "-X envctl/internal/version.AppVersion=..."
var AppVersion = "0.3.0"
