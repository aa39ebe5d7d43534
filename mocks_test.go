package html2pdf

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"github.com/vermaysha/html2pdf/internal/compress"
	"github.com/vermaysha/html2pdf/internal/endpoint"
	"github.com/vermaysha/html2pdf/internal/s3store"
)

// ---------------------------------------------------------------------------
// Mock Implementations
// ---------------------------------------------------------------------------

// mockPage records page calls.
type mockPage struct {
	mu          sync.Mutex
	navigated   string
	content     string
	printReq    *proto.PagePrintToPDF
	closed      bool
	navigateErr error
	contentErr  error
	pdf         []byte
	pdfErr      error
	// block makes load or print wait for ctx to expire.
	blockLoad  bool
	blockPrint bool
}

func (p *mockPage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	p.navigated = url
	p.mu.Unlock()
	if p.blockLoad {
		<-ctx.Done()
		return ctx.Err()
	}
	return p.navigateErr
}

func (p *mockPage) SetContent(ctx context.Context, html string) error {
	p.mu.Lock()
	p.content = html
	p.mu.Unlock()
	if p.blockLoad {
		<-ctx.Done()
		return ctx.Err()
	}
	return p.contentErr
}

func (p *mockPage) PDF(ctx context.Context, req *proto.PagePrintToPDF) ([]byte, error) {
	p.mu.Lock()
	p.printReq = req
	p.mu.Unlock()
	if p.blockPrint {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if p.pdfErr != nil {
		return nil, p.pdfErr
	}
	return p.pdf, nil
}

func (p *mockPage) Close(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// mockBrowser records lifecycle calls.
type mockBrowser struct {
	mu           sync.Mutex
	endpoint     string
	page         *mockPage
	pageErr      error
	pingErr      error
	closed       bool
	disconnected bool
	done         chan struct{}
}

func newMockBrowser(endpoint string) *mockBrowser {
	return &mockBrowser{
		endpoint: endpoint,
		page:     &mockPage{pdf: []byte("%PDF-1.4 mock")},
		done:     make(chan struct{}),
	}
}

func (b *mockBrowser) Endpoint() string { return b.endpoint }

func (b *mockBrowser) NewPage(context.Context) (pageHandle, error) {
	if b.pageErr != nil {
		return nil, b.pageErr
	}
	return b.page, nil
}

func (b *mockBrowser) Close(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *mockBrowser) Disconnect() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnected = true
	return nil
}

func (b *mockBrowser) Ping(context.Context) error { return b.pingErr }

func (b *mockBrowser) Done() <-chan struct{} { return b.done }

func (b *mockBrowser) state() (closed, disconnected bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed, b.disconnected
}

// mockDriver serves a shared browser for known endpoints and launches
// fresh mock browsers.
type mockDriver struct {
	mu        sync.Mutex
	reachable map[string]*mockBrowser
	launchErr error
	launched  []*mockBrowser
	profiles  []string
	bins      []string
	connects  []string
}

func newMockDriver() *mockDriver {
	return &mockDriver{reachable: map[string]*mockBrowser{}}
}

func (d *mockDriver) Connect(_ context.Context, addr string) (browserHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connects = append(d.connects, addr)
	b, ok := d.reachable[addr]
	if !ok {
		return nil, errors.New("dial tcp: connection refused")
	}
	return b, nil
}

func (d *mockDriver) Launch(_ context.Context, bin, profileDir string) (browserHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bins = append(d.bins, bin)
	d.profiles = append(d.profiles, profileDir)
	if d.launchErr != nil {
		return nil, d.launchErr
	}
	b := newMockBrowser("ws://127.0.0.1:9222/devtools/browser/launched")
	d.launched = append(d.launched, b)
	return b, nil
}

func (d *mockDriver) lastLaunched() *mockBrowser {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.launched) == 0 {
		return nil
	}
	return d.launched[len(d.launched)-1]
}

// mockCompressor returns a fixed result.
type mockCompressor struct {
	out    []byte
	err    error
	called bool
	preset compress.Preset
}

func (m *mockCompressor) Compress(_ context.Context, pdf []byte, preset compress.Preset) ([]byte, error) {
	m.called = true
	m.preset = preset
	if m.err != nil {
		return nil, m.err
	}
	return m.out, nil
}

// mockStore is an in-memory ObjectStore.
type mockStore struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
	putErr  error
}

func newMockStore(bucket string) *mockStore {
	return &mockStore{bucket: bucket, objects: map[string][]byte{}}
}

func (s *mockStore) DefaultBucket() string { return s.bucket }

func (s *mockStore) Get(_ context.Context, loc s3store.Location) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[loc.String()]
	if !ok {
		return nil, s3store.ErrObjectNotFound
	}
	return data, nil
}

func (s *mockStore) Put(_ context.Context, loc s3store.Location, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[loc.String()] = append([]byte(nil), data...)
	return nil
}

func (s *mockStore) Exists(_ context.Context, loc s3store.Location) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[loc.String()]
	return ok, nil
}

func (s *mockStore) Delete(_ context.Context, loc s3store.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, loc.String())
	return nil
}

// mockSink captures the written PDF.
type mockSink struct {
	name    string
	data    []byte
	written bool
	err     error
}

func (s *mockSink) Name() string { return s.name }

func (s *mockSink) Write(_ context.Context, data []byte) error {
	if s.err != nil {
		return s.err
	}
	s.written = true
	s.data = append([]byte(nil), data...)
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// locateAt returns a locateFunc that always finds bin.
func locateAt(bin string) locateFunc {
	return func(custom string) (string, bool) {
		if custom != "" {
			return custom, true
		}
		return bin, true
	}
}

func locateNothing(custom string) (string, bool) {
	return custom, custom != ""
}

// silentEndpoint returns a DevTools-looking address whose listener accepts
// TCP connections and never writes a byte.
func silentEndpoint(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var conns []net.Conn
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return "ws://" + ln.Addr().String() + "/devtools/browser/silent"
}

// quickDriver is the real driver with a short connect timeout.
func quickDriver() rodDriver {
	return rodDriver{logger: zerolog.Nop(), connectTimeout: 200 * time.Millisecond}
}

// within fails the test if fn has not returned after limit.
func within(t *testing.T, limit time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(limit):
		t.Fatalf("still blocked after %v", limit)
	}
}

// newTestConverter wires a Converter to mocks. The endpoint record lives
// in cacheDir.
func newTestConverter(cacheDir string, driver browserDriver, comp Compressor, logger zerolog.Logger) *Converter {
	return &Converter{
		acq: &acquirer{
			endpoints: endpoint.NewStore(cacheDir),
			driver:    driver,
			locate:    locateAt("/usr/bin/chromium"),
			tempDir:   cacheDir,
			logger:    logger,
		},
		compressor:     comp,
		logger:         logger,
		cleanupTimeout: cleanupTimeout,
	}
}
