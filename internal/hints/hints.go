// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"runtime"
	"strings"

	"github.com/vermaysha/html2pdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

func inCI() bool {
	return os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""
}

// ForBrowserNotFound suggests ways to make a browser available.
func ForBrowserNotFound() string {
	hints := []string{"run 'html2pdf browser install'", "or pass --chrome-path"}
	if inCI() || IsInContainer() {
		hints = append(hints, "bake the install step into the image to avoid downloads per run")
	}
	return formatHints(hints)
}

// ForBrowserConnect returns hints for browser launch and connection errors.
func ForBrowserConnect() string {
	hints := []string{"check 'html2pdf browser status' for a stale shared browser"}
	if runtime.GOOS == "linux" && (inCI() || IsInContainer()) {
		hints = append(hints, "headless Chromium needs libnss3 and fonts in slim images")
	}
	return formatHints(hints)
}

// ForSessionLost explains a shared browser that went away mid-conversion.
func ForSessionLost() string {
	return format("the shared browser exited; rerun, or restart it with 'html2pdf browser start'")
}

// ForTimeout returns a hint about increasing timeout for slow pages.
func ForTimeout() string {
	return format("for slow pages, raise --timeout (minutes)")
}

// ForConfigNotFound returns hints for config file not found errors.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/config.yaml"
	if len(searchedPaths) > 0 {
		hint += " or create " + searchedPaths[0]
	}
	return format(hint)
}

// ForS3Credentials lists the settings an s3:// path requires.
func ForS3Credentials() string {
	return format("set S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY, S3_ENDPOINT and S3_BUCKET (or the --s3-* flags)")
}

// ForUnsupportedProtocol lists accepted input and output forms.
func ForUnsupportedProtocol() string {
	return format("inputs: local path, http(s)://, file://, s3://; outputs: local path, s3://")
}

// ForGhostscript returns install instructions for the compression tool.
func ForGhostscript() string {
	switch runtime.GOOS {
	case "darwin":
		return format("install Ghostscript with 'brew install ghostscript'")
	case "windows":
		return format("install Ghostscript from ghostscript.com and add its bin directory to PATH")
	default:
		return format("install Ghostscript with your package manager (e.g. 'apt install ghostscript')")
	}
}

// ForOutputDirectory returns hints for output write errors.
func ForOutputDirectory() string {
	return format("check parent directory is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
