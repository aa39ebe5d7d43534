package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	html2pdf "github.com/vermaysha/html2pdf"
)

// converter runs one conversion job.
type converter interface {
	Convert(ctx context.Context, job html2pdf.Job) error
}

// browserServer controls the shared browser.
type browserServer interface {
	Start(ctx context.Context, chromePath string) error
	Stop(ctx context.Context) error
	Status(ctx context.Context) (html2pdf.ServerStatus, error)
	RecordPath() string
}

var (
	_ converter     = (*html2pdf.Converter)(nil)
	_ browserServer = (*html2pdf.Server)(nil)
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, the cache directory and the browser-backed services.
type Environment struct {
	Now      func() time.Time
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	CacheDir string

	NewConverter func(opts ...html2pdf.Option) converter
	NewServer    func(opts ...html2pdf.Option) browserServer
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:      time.Now,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		CacheDir: html2pdf.DefaultCacheDir(),
		NewConverter: func(opts ...html2pdf.Option) converter {
			return html2pdf.NewConverter(opts...)
		},
		NewServer: func(opts ...html2pdf.Option) browserServer {
			return html2pdf.NewServer(opts...)
		},
	}
}

// newLogger builds the console logger for one command run.
// quiet keeps warnings and errors only; verbose adds debug output and wins
// over quiet.
func newLogger(w io.Writer, quiet, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	switch {
	case verbose:
		level = zerolog.DebugLevel
	case quiet:
		level = zerolog.WarnLevel
	}

	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
		NoColor:    os.Getenv("NO_COLOR") != "",
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
