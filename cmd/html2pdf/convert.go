package main

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	html2pdf "github.com/vermaysha/html2pdf"
	"github.com/vermaysha/html2pdf/internal/browserpath"
	"github.com/vermaysha/html2pdf/internal/s3store"
)

// runConvert resolves settings, then finds a browser and resolves the
// input and output concurrently before handing the job to the converter.
func runConvert(ctx context.Context, env *Environment, fs *flag.FlagSet, f *convertFlags, args []string) error {
	logger := newLogger(env.Stdout, f.common.quiet, f.common.verbose)
	warnUnknownEnvVars(env.Stderr)

	envCfg := loadEnvConfig()
	cfg, cfgPath, err := loadConfig(f.common.config, envCfg.ConfigPath)
	if err != nil {
		return err
	}
	if cfgPath != "" {
		logger.Debug().Str("path", cfgPath).Msg("config loaded")
	}
	applyEnvConfig(envCfg, cfg)

	p, err := mergeFlags(fs, f, cfg, args)
	if err != nil {
		return err
	}

	logger.Info().Str("input", p.input).Str("output", p.output).Msg("starting HTML to PDF conversion")

	var store html2pdf.ObjectStore
	if needsS3(p.input, p.output) {
		st, err := s3store.New(ctx, p.s3)
		if err != nil {
			return fmt.Errorf("%w: %w", html2pdf.ErrConfig, err)
		}
		store = st
	}

	var (
		in      html2pdf.InputSource
		out     html2pdf.OutputSink
		browser string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if path, ok := browserpath.New(env.CacheDir, logger).Locate(p.chromePath); ok {
			browser = path
		}
		return nil
	})
	g.Go(func() error {
		var err error
		in, out, err = html2pdf.ResolveIO(gctx, p.input, p.output, store)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if browser == "" {
		logger.Debug().Msg("no local browser found, relying on the shared browser")
	}
	logger.Debug().Msg("input and output resolved")

	job := html2pdf.Job{
		Input:          in,
		Output:         out,
		PageFormat:     p.pageFormat,
		Orientation:    p.orientation,
		Timeout:        p.timeout,
		ChromePath:     browser,
		RemoveSource:   p.removeSource,
		Compress:       p.compress,
		CompressPreset: p.preset,
	}

	conv := env.NewConverter(html2pdf.WithLogger(logger), html2pdf.WithCacheDir(env.CacheDir))
	if err := conv.Convert(ctx, job); err != nil {
		return err
	}
	logger.Info().Str("output", out.Name()).Msg("conversion complete")
	return nil
}
