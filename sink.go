package html2pdf

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/vermaysha/html2pdf/internal/fileutil"
)

const pdfContentType = "application/pdf"

// OutputSink receives the finished PDF.
type OutputSink interface {
	Name() string
	Write(ctx context.Context, data []byte) error
}

var (
	_ OutputSink = localSink{}
	_ OutputSink = (*s3Object)(nil)
)

// ResolveOutput classifies pathOrURL into an OutputSink. Only s3:// URLs
// are accepted; anything else that parses as a URL is rejected.
func ResolveOutput(pathOrURL string, store ObjectStore) (OutputSink, error) {
	if strings.TrimSpace(pathOrURL) == "" {
		return nil, fmt.Errorf("%w: output path is empty", ErrConfig)
	}

	if !fileutil.IsURL(pathOrURL) {
		return localSink{path: pathOrURL}, nil
	}

	u, err := url.Parse(pathOrURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if !strings.EqualFold(u.Scheme, "s3") {
		return nil, fmt.Errorf("%w: output scheme %q (only s3:// URLs are writable)", ErrUnsupportedProtocol, u.Scheme)
	}
	return newS3Object(pathOrURL, store)
}

// localSink writes to a file, creating parent directories.
type localSink struct {
	path string
}

func (s localSink) Name() string { return s.path }

func (s localSink) Write(_ context.Context, data []byte) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil { // #nosec G306 -- PDF output is meant to be shared
		return err
	}
	return nil
}
