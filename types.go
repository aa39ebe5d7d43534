package html2pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vermaysha/html2pdf/internal/compress"
)

// PageFormat names a paper size.
type PageFormat string

// Page format constants. Names are matched case-insensitively.
const (
	FormatA0      PageFormat = "A0"
	FormatA1      PageFormat = "A1"
	FormatA2      PageFormat = "A2"
	FormatA3      PageFormat = "A3"
	FormatA4      PageFormat = "A4"
	FormatA5      PageFormat = "A5"
	FormatA6      PageFormat = "A6"
	FormatLetter  PageFormat = "Letter"
	FormatLegal   PageFormat = "Legal"
	FormatTabloid PageFormat = "Tabloid"
	FormatLedger  PageFormat = "Ledger"
)

// DefaultPageFormat is used when no format is given.
const DefaultPageFormat = FormatLegal

// paperSize is a width and height in inches.
type paperSize struct {
	Width, Height float64
}

// paperSizes follows Chrome's print presets. Ledger is Tabloid rotated.
var paperSizes = map[PageFormat]paperSize{
	FormatA0:      {33.1, 46.8},
	FormatA1:      {23.4, 33.1},
	FormatA2:      {16.54, 23.4},
	FormatA3:      {11.7, 16.54},
	FormatA4:      {8.27, 11.7},
	FormatA5:      {5.83, 8.27},
	FormatA6:      {4.13, 5.83},
	FormatLetter:  {8.5, 11},
	FormatLegal:   {8.5, 14},
	FormatTabloid: {11, 17},
	FormatLedger:  {17, 11},
}

// ParsePageFormat maps a case-insensitive name to its PageFormat.
func ParsePageFormat(name string) (PageFormat, error) {
	for f := range paperSizes {
		if strings.EqualFold(string(f), strings.TrimSpace(name)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (valid: %s)", ErrInvalidPageFormat, name, strings.Join(PageFormatNames(), ", "))
}

// PageFormatNames lists the supported formats in a stable order.
func PageFormatNames() []string {
	return []string{
		string(FormatA0), string(FormatA1), string(FormatA2), string(FormatA3),
		string(FormatA4), string(FormatA5), string(FormatA6),
		string(FormatLetter), string(FormatLegal), string(FormatTabloid), string(FormatLedger),
	}
}

func (f PageFormat) size() (paperSize, bool) {
	s, ok := paperSizes[f]
	return s, ok
}

// Orientation is the page layout.
type Orientation string

// Orientation constants.
const (
	Portrait  Orientation = "Portrait"
	Landscape Orientation = "Landscape"
)

// ParseOrientation maps a case-insensitive name to its Orientation.
func ParseOrientation(name string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "portrait":
		return Portrait, nil
	case "landscape":
		return Landscape, nil
	}
	return "", fmt.Errorf("%w: %q (must be Portrait or Landscape)", ErrInvalidOrientation, name)
}

// DefaultTimeout bounds page load and PDF rendering separately.
const DefaultTimeout = 5 * time.Minute

// Job describes one conversion. It is not modified once Convert starts.
type Job struct {
	Input          InputSource
	Output         OutputSink
	PageFormat     PageFormat
	Orientation    Orientation
	Timeout        time.Duration
	ChromePath     string // empty = locate automatically
	RemoveSource   bool
	Compress       bool
	CompressPreset compress.Preset // empty = ebook
}

// Validate checks that the job can run.
func (j *Job) Validate() error {
	if j.Input == nil {
		return fmt.Errorf("%w: input is required", ErrConfig)
	}
	if j.Output == nil {
		return fmt.Errorf("%w: output is required", ErrConfig)
	}
	if _, ok := j.PageFormat.size(); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPageFormat, j.PageFormat)
	}
	switch j.Orientation {
	case Portrait, Landscape:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, j.Orientation)
	}
	if j.Timeout <= 0 {
		return fmt.Errorf("%w: %s (must be positive)", ErrInvalidTimeout, j.Timeout)
	}
	if j.Compress && j.CompressPreset != "" {
		if _, err := compress.ParsePreset(string(j.CompressPreset)); err != nil {
			return fmt.Errorf("%w: %v", ErrConfig, err)
		}
	}
	return nil
}

// CacheDirEnv overrides the cache directory.
const CacheDirEnv = "HTML2PDF_CACHE_DIR"

// DefaultCacheDir returns $HTML2PDF_CACHE_DIR, or $HOME/.cache/html2pdf.
func DefaultCacheDir() string {
	if dir := os.Getenv(CacheDirEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "html2pdf")
	}
	return filepath.Join(home, ".cache", "html2pdf")
}

// Option configures a Converter or Server.
type Option func(*options)

type options struct {
	logger     zerolog.Logger
	cacheDir   string
	compressor Compressor
}

func defaultOptions() options {
	return options{
		logger:   zerolog.Nop(),
		cacheDir: DefaultCacheDir(),
	}
}

// WithLogger sets the logger for progress messages. Default is silent.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithCacheDir sets where cached browsers and the endpoint record live.
// Panics if dir is empty (programmer error).
func WithCacheDir(dir string) Option {
	if dir == "" {
		panic("html2pdf: WithCacheDir directory must not be empty")
	}
	return func(o *options) {
		o.cacheDir = dir
	}
}
