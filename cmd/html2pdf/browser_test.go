package main

// Notes:
// - browser start/stop/status: driven through run() with a fake server; the
//   real lifecycle is covered by the root package server tests.
// - browser clear: we test the stdin confirmation and --yes.
// - browser install: not tested here, it downloads Chromium; the cache
//   package tests installation with a stubbed downloader.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	html2pdf "github.com/vermaysha/html2pdf"
	"github.com/vermaysha/html2pdf/internal/browsercache"
	"github.com/vermaysha/html2pdf/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestBrowserStatus - Shared browser state output
// ---------------------------------------------------------------------------

func TestBrowserStatus(t *testing.T) {
	tests := []struct {
		name   string
		status html2pdf.ServerStatus
		want   string
	}{
		{"stopped", html2pdf.ServerStatus{State: html2pdf.Stopped}, "Shared browser: stopped"},
		{"running", html2pdf.ServerStatus{State: html2pdf.Running, Endpoint: "ws://127.0.0.1:9222/devtools/browser/x"}, "running at ws://127.0.0.1:9222"},
		{"stale", html2pdf.ServerStatus{State: html2pdf.Stale, Endpoint: "ws://127.0.0.1:1/x"}, "stale record at /cache/endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEnv(t, "")
			te.srv.status = tt.status

			if code := run([]string{"browser", "status"}, te.env); code != ExitSuccess {
				t.Fatalf("exit code = %d, stderr: %s", code, te.stderr.String())
			}
			if !strings.Contains(te.stdout.String(), tt.want) {
				t.Errorf("stdout = %q, want %q", te.stdout.String(), tt.want)
			}
		})
	}

	t.Run("record read error", func(t *testing.T) {
		te := newTestEnv(t, "")
		te.srv.statusErr = errors.New("permission denied")

		if code := run([]string{"browser", "status"}, te.env); code != ExitGeneral {
			t.Errorf("exit code = %d, want %d", code, ExitGeneral)
		}
		if !strings.Contains(te.stderr.String(), "error: permission denied") {
			t.Errorf("stderr = %q", te.stderr.String())
		}
	})
}

// ---------------------------------------------------------------------------
// TestBrowserStartStop - Shared browser commands
// ---------------------------------------------------------------------------

func TestBrowserStartStop(t *testing.T) {
	t.Run("start passes chrome path", func(t *testing.T) {
		te := newTestEnv(t, "")
		bin := filepath.Join(t.TempDir(), "chromium")
		writeFile(t, bin, "")

		if code := run([]string{"browser", "start", "-c", bin}, te.env); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, te.stderr.String())
		}
		if !te.srv.started || te.srv.chromePath != bin {
			t.Errorf("started = %v with %q, want true with %q", te.srv.started, te.srv.chromePath, bin)
		}
	})

	t.Run("start rejects missing chrome path", func(t *testing.T) {
		te := newTestEnv(t, "")

		code := run([]string{"browser", "start", "--chrome-path", "/no/such/chromium"}, te.env)
		if code != ExitGeneral {
			t.Errorf("exit code = %d, want %d", code, ExitGeneral)
		}
		if te.srv.started {
			t.Error("server should not start with a missing chrome path")
		}
	})

	t.Run("start disconnect is an error with hint", func(t *testing.T) {
		te := newTestEnv(t, "")
		te.srv.startErr = html2pdf.ErrServerDisconnected

		if code := run([]string{"browser", "start"}, te.env); code != ExitGeneral {
			t.Errorf("exit code = %d, want %d", code, ExitGeneral)
		}
		if !strings.Contains(te.stderr.String(), "hint: ") {
			t.Errorf("stderr should carry a hint: %q", te.stderr.String())
		}
	})

	t.Run("stop", func(t *testing.T) {
		te := newTestEnv(t, "")

		if code := run([]string{"browser", "stop"}, te.env); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, te.stderr.String())
		}
		if !te.srv.stopped {
			t.Error("Stop was not called")
		}
	})
}

// ---------------------------------------------------------------------------
// TestBrowserClear - Confirmation prompt
// ---------------------------------------------------------------------------

func TestBrowserClear(t *testing.T) {
	tests := []struct {
		name        string
		stdin       string
		args        []string
		wantRemoved bool
	}{
		{"confirmed", "yes\n", nil, true},
		{"confirmed any case", "YES\n", nil, true},
		{"declined", "no\n", nil, false},
		{"empty input", "", nil, false},
		{"yes flag skips prompt", "", []string{"--yes"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEnv(t, tt.stdin)
			te.env.CacheDir = filepath.Join(t.TempDir(), "cache")
			if err := os.MkdirAll(te.env.CacheDir, 0o750); err != nil {
				t.Fatal(err)
			}

			args := append([]string{"browser", "clear"}, tt.args...)
			if code := run(args, te.env); code != ExitSuccess {
				t.Fatalf("exit code = %d, stderr: %s", code, te.stderr.String())
			}

			removed := !fileutil.DirExists(te.env.CacheDir)
			if removed != tt.wantRemoved {
				t.Errorf("removed = %v, want %v", removed, tt.wantRemoved)
			}
			if !tt.wantRemoved && !strings.Contains(te.stdout.String(), "Operation cancelled.") {
				t.Errorf("stdout = %q, want cancellation message", te.stdout.String())
			}
		})
	}
}

func TestBrowserClear_MissingCache(t *testing.T) {
	te := newTestEnv(t, "yes\n")
	te.env.CacheDir = filepath.Join(t.TempDir(), "never-created")

	if code := run([]string{"browser", "clear"}, te.env); code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, te.stderr.String())
	}
	out := te.stdout.String()
	if !strings.Contains(out, "Nothing to clear") {
		t.Errorf("stdout = %q, want nothing-to-clear message", out)
	}
	if strings.Contains(out, "Type \"yes\"") {
		t.Errorf("stdout = %q, prompted for a missing cache", out)
	}
}

// ---------------------------------------------------------------------------
// TestBrowserList - Cached build listing
// ---------------------------------------------------------------------------

func TestBrowserList(t *testing.T) {
	t.Run("empty cache", func(t *testing.T) {
		te := newTestEnv(t, "")

		if code := run([]string{"browser", "list"}, te.env); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, te.stderr.String())
		}
		if !strings.Contains(te.stdout.String(), "No browsers installed") {
			t.Errorf("stdout = %q", te.stdout.String())
		}
	})

	t.Run("table output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		printBuilds(&buf, "/cache", []browsercache.Build{
			{Revision: "1321438", Executable: "/cache/chromium-1321438/chrome"},
			{Revision: "1131657", Executable: "/cache/chromium-1131657/chrome"},
		})

		out := buf.String()
		for _, want := range []string{"REVISION", "1321438", "/cache/chromium-1131657/chrome"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		if strings.Index(out, "1321438") > strings.Index(out, "1131657") {
			t.Error("builds should keep the given order")
		}
	})
}

// ---------------------------------------------------------------------------
// TestConfirm - Prompt answer parsing
// ---------------------------------------------------------------------------

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"  Yes  \n", true},
		{"yes", true},
		{"y\n", false},
		{"no\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := confirm(strings.NewReader(tt.input)); got != tt.want {
				t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
