package html2pdf

import "errors"

// Sentinel errors for library operations.
var (
	ErrConfig              = errors.New("invalid configuration")
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
	ErrInputNotFound       = errors.New("input file not found")

	// Browser lifecycle errors.
	ErrBrowserNotFound    = errors.New("no Chrome or Chromium executable found")
	ErrBrowserConnect     = errors.New("failed to connect to browser")
	ErrServerDisconnected = errors.New("shared browser disconnected")
	ErrSessionLost        = errors.New("shared browser session lost")

	// Conversion errors.
	ErrPageCreate    = errors.New("failed to create browser page")
	ErrPageLoad      = errors.New("failed to load page")
	ErrLoadTimeout   = errors.New("timed out loading page")
	ErrRenderTimeout = errors.New("timed out rendering PDF")
	ErrPDFGeneration = errors.New("PDF generation failed")
	ErrEmptyPDF      = errors.New("renderer returned an empty PDF")
	ErrWriteFailure  = errors.New("failed to write output")

	// Job validation errors.
	ErrInvalidPageFormat  = errors.New("invalid page format")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidTimeout     = errors.New("invalid timeout")
)
