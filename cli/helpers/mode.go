package helpers

import (
	"os"

	"github.com/mattn/go-isatty"
)

// Mode selects between human-readable and machine-readable command output.
type Mode string

const (
	ModeText Mode = "text"
	ModeJSON Mode = "json"
)

// JSONFlag is the per-command flag switching to ModeJSON.
const JSONFlag = "json"

// isRunningInCI checks if we're running in a CI/CD environment
func isRunningInCI() bool {
	if os.Getenv("CI") != "" {
		return true
	}
	ciVars := []string{
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"CIRCLECI",
		"TRAVIS",
		"BUILDKITE",
		"JENKINS_URL",
		"TF_BUILD",
		"CODEBUILD_BUILD_ID",
		"TEAMCITY_VERSION",
	}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// ShouldUseColor reports whether output written to f may carry ANSI colours.
func ShouldUseColor(f *os.File) bool {
	if f == nil || os.Getenv("NO_COLOR") != "" {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	if isRunningInCI() {
		return false
	}
	term := os.Getenv("TERM")
	return term != "dumb" && term != ""
}
