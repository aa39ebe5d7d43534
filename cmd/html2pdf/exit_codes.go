package main

import (
	"errors"

	html2pdf "github.com/vermaysha/html2pdf"
	"github.com/vermaysha/html2pdf/internal/compress"
	"github.com/vermaysha/html2pdf/internal/config"
	"github.com/vermaysha/html2pdf/internal/hints"
	"github.com/vermaysha/html2pdf/internal/s3store"
)

// Exit codes for the html2pdf CLI. Scripts only need to tell success from
// failure; the error message and hints carry the detail.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // Any error
)

// exitCodeFor returns the exit code for an error.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return ExitGeneral
}

// hintFor returns actionable hints for known error classes, or "".
// It uses errors.Is to check wrapped errors, so callers must wrap with %w.
func hintFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, html2pdf.ErrSessionLost),
		errors.Is(err, html2pdf.ErrServerDisconnected):
		return hints.ForSessionLost()
	case errors.Is(err, html2pdf.ErrBrowserNotFound):
		return hints.ForBrowserNotFound()
	case errors.Is(err, html2pdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, html2pdf.ErrLoadTimeout),
		errors.Is(err, html2pdf.ErrRenderTimeout):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths())
	case errors.Is(err, s3store.ErrMissingCredential):
		return hints.ForS3Credentials()
	case errors.Is(err, html2pdf.ErrUnsupportedProtocol):
		return hints.ForUnsupportedProtocol()
	case errors.Is(err, compress.ErrToolNotFound):
		return hints.ForGhostscript()
	case errors.Is(err, html2pdf.ErrWriteFailure):
		return hints.ForOutputDirectory()
	}
	return ""
}
