package main

// Notes:
// - exitCodeFor: every error maps to 1; nil maps to 0.
// - hintFor: we test each hinted error class, wrapped, plus the no-hint case.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	html2pdf "github.com/vermaysha/html2pdf"
	"github.com/vermaysha/html2pdf/internal/compress"
	"github.com/vermaysha/html2pdf/internal/config"
	"github.com/vermaysha/html2pdf/internal/s3store"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},
		{"browser not found", html2pdf.ErrBrowserNotFound, ExitGeneral},
		{"wrapped load timeout", fmt.Errorf("job: %w", html2pdf.ErrLoadTimeout), ExitGeneral},
		{"config not found", config.ErrConfigNotFound, ExitGeneral},
		{"plain error", errors.New("boom"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestHintFor - Error to hint mapping
// ---------------------------------------------------------------------------

func TestHintFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string // substring; "" means no hint
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), ""},
		{"browser not found", html2pdf.ErrBrowserNotFound, "browser install"},
		{"browser connect", fmt.Errorf("%w: refused", html2pdf.ErrBrowserConnect), "browser status"},
		{"session lost", fmt.Errorf("%w: %w", html2pdf.ErrSessionLost, html2pdf.ErrPageLoad), "shared browser exited"},
		{"server disconnected", html2pdf.ErrServerDisconnected, "shared browser exited"},
		{"load timeout", html2pdf.ErrLoadTimeout, "--timeout"},
		{"render timeout", html2pdf.ErrRenderTimeout, "--timeout"},
		{"config not found", fmt.Errorf("%w: x.yaml", config.ErrConfigNotFound), "--config"},
		{"s3 credentials", fmt.Errorf("%w: %w", html2pdf.ErrConfig, s3store.ErrMissingCredential), "S3_ACCESS_KEY_ID"},
		{"unsupported protocol", html2pdf.ErrUnsupportedProtocol, "s3://"},
		{"ghostscript", compress.ErrToolNotFound, "Ghostscript"},
		{"write failure", html2pdf.ErrWriteFailure, "writable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := hintFor(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Errorf("hintFor(%v) = %q, want no hint", tt.err, got)
				}
				return
			}
			if !strings.HasPrefix(got, "\n  hint: ") {
				t.Errorf("hintFor(%v) = %q, want hint prefix", tt.err, got)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("hintFor(%v) = %q, want substring %q", tt.err, got, tt.want)
			}
		})
	}
}
