// Package compress shrinks PDF buffers by piping them through Ghostscript.
package compress

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Preset is a Ghostscript -dPDFSETTINGS quality preset.
type Preset string

// Supported presets, from smallest output to highest fidelity.
const (
	PresetScreen   Preset = "screen"
	PresetEbook    Preset = "ebook"
	PresetPrinter  Preset = "printer"
	PresetPrepress Preset = "prepress"
	PresetDefault  Preset = "default"
)

// Sentinel errors for compression.
var (
	ErrToolNotFound  = errors.New("ghostscript is not installed or not found in PATH")
	ErrToolFailed    = errors.New("ghostscript failed")
	ErrInvalidPreset = errors.New("invalid compression preset")
	ErrEmptyInput    = errors.New("nothing to compress")
)

// ToolError carries the exit status and stderr of a failed run.
type ToolError struct {
	ExitCode int
	Stderr   string
}

func (e *ToolError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("ghostscript exited with code %d", e.ExitCode)
	}
	return fmt.Sprintf("ghostscript exited with code %d: %s", e.ExitCode, msg)
}

// Unwrap lets errors.Is match ErrToolFailed.
func (e *ToolError) Unwrap() error { return ErrToolFailed }

// ParsePreset validates a preset name (case-insensitive).
// An empty name selects PresetEbook.
func ParsePreset(name string) (Preset, error) {
	p := Preset(strings.ToLower(strings.TrimSpace(name)))
	switch p {
	case "":
		return PresetEbook, nil
	case PresetScreen, PresetEbook, PresetPrinter, PresetPrepress, PresetDefault:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q (must be screen, ebook, printer, prepress or default)", ErrInvalidPreset, name)
}

// Ghostscript runs the gs binary. Zero-value fields use the real system.
type Ghostscript struct {
	GOOS     string
	LookPath func(file string) (string, error)
	Command  func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// New returns a Ghostscript bound to the host system.
func New() *Ghostscript {
	return &Ghostscript{
		GOOS:     runtime.GOOS,
		LookPath: exec.LookPath,
		Command:  exec.CommandContext,
	}
}

// Path returns the Ghostscript executable path.
func (g *Ghostscript) Path() (string, error) {
	lookPath := g.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	candidates := []string{"gs"}
	if g.goos() == "windows" {
		candidates = []string{"gswin64c.exe", "gswin64.exe"}
	}
	for _, name := range candidates {
		if path, err := lookPath(name); err == nil && path != "" {
			return path, nil
		}
	}
	return "", ErrToolNotFound
}

// Args returns the Ghostscript arguments for preset, reading the PDF from
// stdin and writing the result to stdout.
func Args(preset Preset) []string {
	return []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=/" + string(preset),
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-sOutputFile=-",
		"-",
	}
}

// Compress returns pdf rewritten with the given preset.
func (g *Ghostscript) Compress(ctx context.Context, pdf []byte, preset Preset) ([]byte, error) {
	if len(pdf) == 0 {
		return nil, ErrEmptyInput
	}
	preset, err := ParsePreset(string(preset))
	if err != nil {
		return nil, err
	}

	gsPath, err := g.Path()
	if err != nil {
		return nil, err
	}

	command := g.Command
	if command == nil {
		command = exec.CommandContext
	}
	cmd := command(ctx, gsPath, Args(preset)...)
	cmd.Stdin = bytes.NewReader(pdf)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ghostscript stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("ghostscript stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting ghostscript: %w", err)
	}

	// Both pipes are drained concurrently so a full stderr buffer
	// cannot block the process while we wait on stdout.
	var outBuf, errBuf bytes.Buffer
	var pipes errgroup.Group
	pipes.Go(func() error {
		_, err := io.Copy(&outBuf, stdout)
		return err
	})
	pipes.Go(func() error {
		_, err := io.Copy(&errBuf, stderr)
		return err
	})
	copyErr := pipes.Wait()

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ToolError{ExitCode: exitErr.ExitCode(), Stderr: errBuf.String()}
		}
		return nil, fmt.Errorf("running ghostscript: %w", err)
	}
	if copyErr != nil {
		return nil, fmt.Errorf("reading ghostscript output: %w", copyErr)
	}
	if outBuf.Len() == 0 {
		return nil, &ToolError{ExitCode: 0, Stderr: "empty output"}
	}
	return outBuf.Bytes(), nil
}

// Ratio returns (original - compressed) / original.
// Negative values mean the output grew.
func Ratio(original, compressed int) float64 {
	if original <= 0 {
		return 0
	}
	return float64(original-compressed) / float64(original)
}

func (g *Ghostscript) goos() string {
	if g.GOOS == "" {
		return runtime.GOOS
	}
	return g.GOOS
}
