package html2pdf

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vermaysha/html2pdf/internal/browserpath"
	"github.com/vermaysha/html2pdf/internal/compress"
	"github.com/vermaysha/html2pdf/internal/endpoint"
)

// cleanupTimeout bounds page close and browser release. Cleanup gets its
// own context so it still runs after the job context expired.
const cleanupTimeout = 30 * time.Second

// Compressor shrinks a finished PDF.
type Compressor interface {
	Compress(ctx context.Context, pdf []byte, preset compress.Preset) ([]byte, error)
}

var _ Compressor = (*compress.Ghostscript)(nil)

// WithCompressor replaces the Ghostscript compressor.
func WithCompressor(c Compressor) Option {
	return func(o *options) {
		o.compressor = c
	}
}

// Converter runs conversion jobs. It is safe for sequential reuse; each
// Convert call acquires and releases its own browser session.
type Converter struct {
	acq            *acquirer
	compressor     Compressor
	logger         zerolog.Logger
	cleanupTimeout time.Duration
}

// NewConverter creates a Converter that reuses the shared browser recorded
// in the cache directory and otherwise launches a disposable one.
func NewConverter(opts ...Option) *Converter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.compressor == nil {
		o.compressor = compress.New()
	}

	return &Converter{
		acq: &acquirer{
			endpoints: endpoint.NewStore(o.cacheDir),
			driver:    rodDriver{logger: o.logger},
			locate:    browserpath.New(o.cacheDir, o.logger).Locate,
			logger:    o.logger,
		},
		compressor:     o.compressor,
		logger:         o.logger,
		cleanupTimeout: cleanupTimeout,
	}
}

// Convert loads the job input in a browser page, prints it to PDF,
// optionally compresses it, writes it to the job output and optionally
// removes the source. The page is always closed and the session always
// released, whatever the outcome.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := job.Validate(); err != nil {
		return err
	}

	sess, err := c.acq.acquire(ctx, job.ChromePath)
	if err != nil {
		return err
	}

	var page pageHandle
	defer func() {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cleanupTimeout)
		defer cancel()
		if page != nil {
			if cerr := page.Close(cctx); cerr != nil {
				c.logger.Debug().Err(cerr).Msg("closing page")
			}
		}
		if rerr := sess.Release(cctx); rerr != nil {
			c.logger.Warn().Err(rerr).Stringer("ownership", sess.Ownership).Msg("releasing browser")
		}
	}()

	page, err = sess.browser.NewPage(ctx)
	if err != nil {
		return c.sessionErr(ctx, sess, fmt.Errorf("%w: %v", ErrPageCreate, err))
	}

	if err := c.load(ctx, page, job); err != nil {
		return c.sessionErr(ctx, sess, err)
	}
	c.logger.Info().Str("input", job.Input.Describe()).Msg("content loaded")

	pdf, err := c.render(ctx, page, job)
	if err != nil {
		return c.sessionErr(ctx, sess, err)
	}
	c.logger.Info().Str("size", formatKB(len(pdf))).Msg("PDF generated")

	if job.Compress {
		pdf = c.compress(ctx, pdf, job.CompressPreset)
	}

	if err := job.Output.Write(ctx, pdf); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailure, job.Output.Name(), err)
	}
	c.logger.Info().Str("output", job.Output.Name()).Msg("PDF written")

	if job.RemoveSource {
		c.removeSource(ctx, job.Input)
	}
	return nil
}

// load navigates to a URL input or injects a file input, then waits for
// network idle, all within job.Timeout.
func (c *Converter) load(ctx context.Context, page pageHandle, job Job) error {
	lctx, cancel := context.WithTimeout(ctx, job.Timeout)
	defer cancel()

	var err error
	switch in := job.Input.(type) {
	case *URLSource:
		c.logger.Debug().Str("url", in.Path).Msg("navigating")
		err = page.Navigate(lctx, in.Path)
	case *FileSource:
		c.logger.Debug().Str("file", in.Handle.Name()).Msg("loading content from file")
		var data []byte
		data, err = in.Handle.ReadAll(lctx)
		if err != nil {
			err = fmt.Errorf("reading %s: %w", in.Path, err)
			break
		}
		err = page.SetContent(lctx, string(data))
	default:
		return fmt.Errorf("%w: unknown input type %T", ErrConfig, job.Input)
	}

	if err == nil {
		return nil
	}
	if errors.Is(lctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w: %s after %s", ErrLoadTimeout, job.Input.Describe(), job.Timeout)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %s: %v", ErrPageLoad, job.Input.Describe(), err)
}

// render prints the loaded page within job.Timeout.
func (c *Converter) render(ctx context.Context, page pageHandle, job Job) ([]byte, error) {
	rctx, cancel := context.WithTimeout(ctx, job.Timeout)
	defer cancel()

	pdf, err := page.PDF(rctx, buildPrintOptions(job.PageFormat, job.Orientation))
	if err != nil {
		if errors.Is(rctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: after %s", ErrRenderTimeout, job.Timeout)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	if len(pdf) == 0 {
		return nil, ErrEmptyPDF
	}
	return pdf, nil
}

// compress returns the compressed PDF, or the original when compression
// fails for any reason.
func (c *Converter) compress(ctx context.Context, pdf []byte, preset compress.Preset) []byte {
	if preset == "" {
		preset = compress.PresetEbook
	}
	out, err := c.compressor.Compress(ctx, pdf, preset)
	if err != nil {
		c.logger.Warn().Err(err).Msg("compression failed, keeping uncompressed PDF")
		return pdf
	}
	c.logger.Info().
		Str("before", formatKB(len(pdf))).
		Str("after", formatKB(len(out))).
		Float64("ratio", compress.Ratio(len(pdf), len(out))).
		Msg("PDF compressed")
	return out
}

// removeSource deletes a local, non-URL file input. Other inputs are kept.
// Failure is logged; the PDF has already been written.
func (c *Converter) removeSource(ctx context.Context, in InputSource) {
	fs, ok := in.(*FileSource)
	if !ok || fs.Remote {
		c.logger.Debug().Str("input", in.Describe()).Msg("source is not a local file, not removing")
		return
	}
	if err := fs.Cleanup(ctx); err != nil {
		c.logger.Warn().Err(err).Str("path", fs.Path).Msg("removing source")
		return
	}
	c.logger.Info().Str("path", fs.Path).Msg("source removed")
}

// sessionErr marks page failures on a shared browser that no longer
// answers. There is no retry: the conversion fails.
func (c *Converter) sessionErr(ctx context.Context, sess *Session, err error) error {
	if sess.Ownership != Borrowed || errors.Is(err, ErrLoadTimeout) || errors.Is(err, ErrRenderTimeout) {
		return err
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if perr := sess.browser.Ping(pctx); perr != nil {
		return fmt.Errorf("%w: %w", ErrSessionLost, err)
	}
	return err
}

func formatKB(n int) string {
	return fmt.Sprintf("%.2f KB", float64(n)/1024)
}
