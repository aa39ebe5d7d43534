// Package browserpath finds a Chrome or Chromium executable to drive.
//
// Probe order: an explicit path, the newest build in the html2pdf cache,
// system Chromium, system Chrome, then rod's own install list. Each
// operating system family has its own probing rules.
package browserpath

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/rs/zerolog"

	"github.com/vermaysha/html2pdf/internal/browsercache"
	"github.com/vermaysha/html2pdf/internal/fileutil"
)

// flavor selects which system browser to probe.
type flavor int

const (
	chromium flavor = iota
	chrome
)

func (f flavor) String() string {
	if f == chrome {
		return "Chrome"
	}
	return "Chromium"
}

// Locator resolves a browser executable. Zero-value function fields fall
// back to the real operating system.
type Locator struct {
	Cache  *browsercache.Cache
	GOOS   string
	Logger zerolog.Logger

	LookPath func(file string) (string, error)
	Exists   func(path string) bool
	Getenv   func(key string) string
	// Fallback runs after the system probes. Nil skips it.
	Fallback func() (string, bool)
}

// New returns a Locator that also searches builds cached under cacheDir.
func New(cacheDir string, logger zerolog.Logger) *Locator {
	var cache *browsercache.Cache
	if cacheDir != "" {
		cache = browsercache.New(cacheDir)
	}
	return &Locator{
		Cache:    cache,
		GOOS:     runtime.GOOS,
		Logger:   logger,
		LookPath: exec.LookPath,
		Exists:   fileutil.FileExists,
		Getenv:   os.Getenv,
		Fallback: launcher.LookPath,
	}
}

// Locate returns a browser path and whether one was found.
// A non-empty custom path is returned as-is; callers validate it.
func (l *Locator) Locate(custom string) (string, bool) {
	if custom != "" {
		l.Logger.Debug().Str("path", custom).Msg("using custom browser path")
		return custom, true
	}

	l.Logger.Debug().Msg("searching for browser executable")

	if l.Cache != nil {
		if build, ok := l.Cache.Latest(); ok {
			l.Logger.Debug().Str("path", build.Executable).Str("revision", build.Revision).Msg("found cached browser build")
			return build.Executable, true
		}
	}

	for _, f := range []flavor{chromium, chrome} {
		if path, ok := l.system(f); ok {
			l.Logger.Debug().Str("path", path).Msgf("found system %s", f)
			return path, true
		}
	}

	if l.Fallback != nil {
		if path, ok := l.Fallback(); ok && path != "" {
			l.Logger.Debug().Str("path", path).Msg("found browser in rod's install list")
			return path, true
		}
	}
	return "", false
}

// system dispatches to the probing rules of the current OS family.
func (l *Locator) system(f flavor) (string, bool) {
	switch l.goos() {
	case "darwin":
		return l.darwin(f)
	case "linux", "freebsd", "openbsd", "netbsd":
		return l.unix(f)
	case "windows":
		return l.windows(f)
	}
	return "", false
}

// darwin checks the fixed application bundle locations.
func (l *Locator) darwin(f flavor) (string, bool) {
	path := "/Applications/Chromium.app/Contents/MacOS/Chromium"
	if f == chrome {
		path = "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"
	}
	if l.exists(path) {
		return path, true
	}
	return "", false
}

// unix searches PATH for the usual package names.
func (l *Locator) unix(f flavor) (string, bool) {
	commands := []string{"chromium-browser", "chromium"}
	if f == chrome {
		commands = []string{"google-chrome-stable", "google-chrome"}
	}
	lookPath := l.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	for _, cmd := range commands {
		if path, err := lookPath(cmd); err == nil && path != "" {
			return path, true
		}
	}
	return "", false
}

// windows checks the per-machine and per-user install roots.
func (l *Locator) windows(f flavor) (string, bool) {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	suffix := filepath.Join("Chromium", "Application", "chrome.exe")
	if f == chrome {
		suffix = filepath.Join("Google", "Chrome", "Application", "chrome.exe")
	}
	for _, key := range []string{"ProgramFiles", "ProgramFiles(x86)", "LOCALAPPDATA"} {
		prefix := getenv(key)
		if prefix == "" {
			continue
		}
		path := filepath.Join(prefix, suffix)
		if l.exists(path) {
			return path, true
		}
	}
	return "", false
}

func (l *Locator) goos() string {
	if l.GOOS == "" {
		return runtime.GOOS
	}
	return l.GOOS
}

func (l *Locator) exists(path string) bool {
	if l.Exists == nil {
		return fileutil.FileExists(path)
	}
	return l.Exists(path)
}
