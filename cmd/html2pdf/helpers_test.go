package main

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	html2pdf "github.com/vermaysha/html2pdf"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake converter and server
// ---------------------------------------------------------------------------

// fakeConverter records the jobs it receives.
type fakeConverter struct {
	mu   sync.Mutex
	jobs []html2pdf.Job
	err  error
}

func (f *fakeConverter) Convert(_ context.Context, job html2pdf.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
	return f.err
}

func (f *fakeConverter) lastJob(t *testing.T) html2pdf.Job {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.jobs) == 0 {
		t.Fatal("converter was not called")
	}
	return f.jobs[len(f.jobs)-1]
}

// fakeServer is a browserServer with canned answers.
type fakeServer struct {
	status     html2pdf.ServerStatus
	statusErr  error
	startErr   error
	stopErr    error
	started    bool
	stopped    bool
	chromePath string
}

func (f *fakeServer) Start(_ context.Context, chromePath string) error {
	f.started = true
	f.chromePath = chromePath
	return f.startErr
}

func (f *fakeServer) Stop(context.Context) error {
	f.stopped = true
	return f.stopErr
}

func (f *fakeServer) Status(context.Context) (html2pdf.ServerStatus, error) {
	return f.status, f.statusErr
}

func (f *fakeServer) RecordPath() string { return "/cache/endpoint" }

// testEnv holds an Environment wired to fakes and its captured output.
type testEnv struct {
	env    *Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	conv   *fakeConverter
	srv    *fakeServer
}

// newTestEnv returns an isolated environment. It points HOME and the
// config dirs at a temp dir so no user config file is picked up, which
// prevents t.Parallel in callers.
func newTestEnv(t *testing.T, stdin string) *testEnv {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("APPDATA", home)
	t.Setenv("HTML2PDF_CONFIG", "")
	t.Setenv("NO_COLOR", "1")

	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		conv:   &fakeConverter{},
		srv:    &fakeServer{},
	}
	te.env = &Environment{
		Now:      func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		Stdin:    strings.NewReader(stdin),
		Stdout:   te.stdout,
		Stderr:   te.stderr,
		CacheDir: t.TempDir(),
		NewConverter: func(...html2pdf.Option) converter {
			return te.conv
		},
		NewServer: func(...html2pdf.Option) browserServer {
			return te.srv
		},
	}
	return te
}
