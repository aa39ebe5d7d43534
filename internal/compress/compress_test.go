package compress

// Notes:
// - Ghostscript itself is never executed. Command is replaced with the
//   standard helper-process pattern: the test binary re-executes itself and
//   TestHelperProcess plays the part of gs.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strings"
	"testing"
)

const helperEnv = "HTML2PDF_WANT_GS_HELPER"

// helperCommand returns a Command func that runs TestHelperProcess in mode.
func helperCommand(mode string, gotArgs *[]string) func(context.Context, string, ...string) *exec.Cmd {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if gotArgs != nil {
			*gotArgs = append([]string{name}, args...)
		}
		cs := append([]string{"-test.run=TestHelperProcess", "--"}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(), helperEnv+"="+mode)
		return cmd
	}
}

// TestHelperProcess is not a real test; it impersonates gs.
func TestHelperProcess(t *testing.T) {
	mode := os.Getenv(helperEnv)
	if mode == "" {
		return
	}

	in, _ := io.ReadAll(os.Stdin)
	switch mode {
	case "halve":
		_, _ = os.Stdout.Write(in[:len(in)/2])
		os.Exit(0)
	case "fail":
		fmt.Fprint(os.Stderr, "Unrecoverable error, exit code 1")
		os.Exit(1)
	case "noisy":
		// Enough stderr to fill a pipe buffer before stdout is written.
		fmt.Fprint(os.Stderr, strings.Repeat("warning ", 64*1024))
		_, _ = os.Stdout.Write(in)
		os.Exit(0)
	case "empty":
		os.Exit(0)
	}
	os.Exit(2)
}

func fakeGhostscript(mode string, gotArgs *[]string) *Ghostscript {
	return &Ghostscript{
		GOOS:     "linux",
		LookPath: func(name string) (string, error) { return "/usr/bin/" + name, nil },
		Command:  helperCommand(mode, gotArgs),
	}
}

// ---------------------------------------------------------------------------
// TestCompress - Subprocess orchestration
// ---------------------------------------------------------------------------

func TestCompress_Success(t *testing.T) {
	t.Parallel()

	var gotArgs []string
	g := fakeGhostscript("halve", &gotArgs)
	input := bytes.Repeat([]byte("%PDF-1.4 "), 100)

	out, err := g.Compress(context.Background(), input, PresetEbook)
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	if len(out) != len(input)/2 {
		t.Errorf("len(out) = %d, want %d", len(out), len(input)/2)
	}

	want := append([]string{"/usr/bin/gs"}, Args(PresetEbook)...)
	if strings.Join(gotArgs, " ") != strings.Join(want, " ") {
		t.Errorf("args = %v, want %v", gotArgs, want)
	}
}

func TestCompress_NormalizesPreset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		preset Preset
		want   string
	}{
		{"upper case", "EBOOK", "-dPDFSETTINGS=/ebook"},
		{"padded", " Screen ", "-dPDFSETTINGS=/screen"},
		{"empty", "", "-dPDFSETTINGS=/ebook"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotArgs []string
			g := fakeGhostscript("halve", &gotArgs)
			if _, err := g.Compress(context.Background(), []byte("%PDF-1.4 body"), tt.preset); err != nil {
				t.Fatalf("Compress() error = %v", err)
			}
			if !slices.Contains(gotArgs, tt.want) {
				t.Errorf("args = %v, want %s", gotArgs, tt.want)
			}
		})
	}
}

func TestCompress_ToolFailed(t *testing.T) {
	t.Parallel()

	g := fakeGhostscript("fail", nil)
	_, err := g.Compress(context.Background(), []byte("%PDF"), PresetEbook)

	if !errors.Is(err, ErrToolFailed) {
		t.Fatalf("Compress() error = %v, want %v", err, ErrToolFailed)
	}
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("error %T is not *ToolError", err)
	}
	if toolErr.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", toolErr.ExitCode)
	}
	if !strings.Contains(toolErr.Stderr, "Unrecoverable") {
		t.Errorf("Stderr = %q, want captured stderr", toolErr.Stderr)
	}
}

func TestCompress_LargeStderrDoesNotDeadlock(t *testing.T) {
	t.Parallel()

	g := fakeGhostscript("noisy", nil)
	input := []byte("%PDF-1.4 body")

	out, err := g.Compress(context.Background(), input, PresetScreen)
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	if !bytes.Equal(out, input) {
		t.Errorf("out = %q, want %q", out, input)
	}
}

func TestCompress_EmptyOutputIsFailure(t *testing.T) {
	t.Parallel()

	g := fakeGhostscript("empty", nil)
	if _, err := g.Compress(context.Background(), []byte("%PDF"), PresetEbook); !errors.Is(err, ErrToolFailed) {
		t.Errorf("Compress() error = %v, want %v", err, ErrToolFailed)
	}
}

func TestCompress_ToolNotFound(t *testing.T) {
	t.Parallel()

	g := &Ghostscript{
		GOOS:     "linux",
		LookPath: func(string) (string, error) { return "", exec.ErrNotFound },
	}
	if _, err := g.Compress(context.Background(), []byte("%PDF"), PresetEbook); !errors.Is(err, ErrToolNotFound) {
		t.Errorf("Compress() error = %v, want %v", err, ErrToolNotFound)
	}
}

func TestCompress_EmptyInput(t *testing.T) {
	t.Parallel()

	g := fakeGhostscript("halve", nil)
	if _, err := g.Compress(context.Background(), nil, PresetEbook); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Compress(nil) error = %v, want %v", err, ErrEmptyInput)
	}
}

// ---------------------------------------------------------------------------
// TestPath - Binary lookup per platform
// ---------------------------------------------------------------------------

func TestPath_Windows(t *testing.T) {
	t.Parallel()

	var asked []string
	g := &Ghostscript{
		GOOS: "windows",
		LookPath: func(name string) (string, error) {
			asked = append(asked, name)
			if name == "gswin64.exe" {
				return `C:\gs\bin\gswin64.exe`, nil
			}
			return "", exec.ErrNotFound
		},
	}

	got, err := g.Path()
	if err != nil {
		t.Fatalf("Path() error = %v", err)
	}
	if got != `C:\gs\bin\gswin64.exe` {
		t.Errorf("Path() = %q", got)
	}
	if len(asked) != 2 || asked[0] != "gswin64c.exe" {
		t.Errorf("lookup order = %v, want console binary first", asked)
	}
}

// ---------------------------------------------------------------------------
// TestParsePreset / TestRatio
// ---------------------------------------------------------------------------

func TestParsePreset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Preset
		wantErr error
	}{
		{"", PresetEbook, nil},
		{"ebook", PresetEbook, nil},
		{"SCREEN", PresetScreen, nil},
		{" printer ", PresetPrinter, nil},
		{"prepress", PresetPrepress, nil},
		{"default", PresetDefault, nil},
		{"tiny", "", ErrInvalidPreset},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParsePreset(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParsePreset(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePreset(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                 string
		original, compressed int
		want                 float64
	}{
		{"half", 1000, 500, 0.5},
		{"unchanged", 1000, 1000, 0},
		{"grew", 100, 150, -0.5},
		{"zero original", 0, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Ratio(tt.original, tt.compressed); got != tt.want {
				t.Errorf("Ratio(%d, %d) = %v, want %v", tt.original, tt.compressed, got, tt.want)
			}
		})
	}
}
