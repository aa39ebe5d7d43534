package html2pdf

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"github.com/vermaysha/html2pdf/internal/process"
)

// networkIdleWindow is how long the page must have no requests in flight
// before it counts as loaded.
const networkIdleWindow = 500 * time.Millisecond

// connectTimeout bounds the dial, handshake and first round trip to a
// recorded endpoint.
const connectTimeout = 5 * time.Second

// exitGrace bounds how long a closed browser may take to exit before its
// process tree is killed.
const exitGrace = 5 * time.Second

// hardenedFlags are passed to every browser this package launches.
// They keep Chromium working as root, in containers and without a GPU,
// and let file:// documents load sibling assets.
var hardenedFlags = []flags.Flag{
	"disable-setuid-sandbox",
	"disable-dev-shm-usage",
	"disable-gpu",
	"disable-software-rasterizer",
	"no-zygote",
	"allow-file-access-from-files",
	"enable-local-file-accesses",
	"ignore-certificate-errors",
}

// browserDriver starts or attaches to browsers.
type browserDriver interface {
	Connect(ctx context.Context, endpoint string) (browserHandle, error)
	Launch(ctx context.Context, bin, profileDir string) (browserHandle, error)
}

// browserHandle is one connection to a browser process.
type browserHandle interface {
	Endpoint() string
	NewPage(ctx context.Context) (pageHandle, error)
	// Close terminates the browser process.
	Close(ctx context.Context) error
	// Disconnect drops the connection and leaves the process running.
	Disconnect() error
	// Ping reports whether the browser still answers.
	Ping(ctx context.Context) error
	// Done is closed when a launched browser exits. It is nil for
	// connected browsers.
	Done() <-chan struct{}
}

// pageHandle is one tab.
type pageHandle interface {
	Navigate(ctx context.Context, url string) error
	SetContent(ctx context.Context, html string) error
	PDF(ctx context.Context, req *proto.PagePrintToPDF) ([]byte, error)
	Close(ctx context.Context) error
}

// rodDriver implements browserDriver with go-rod.
type rodDriver struct {
	logger zerolog.Logger
	// connectTimeout overrides the package default when positive.
	connectTimeout time.Duration
}

var _ browserDriver = rodDriver{}

// Connect attaches to a running browser. rod's handshake ignores ctx, so
// the socket carries a deadline until the first CDP call returns.
func (d rodDriver) Connect(ctx context.Context, endpoint string) (browserHandle, error) {
	timeout := d.connectTimeout
	if timeout <= 0 {
		timeout = connectTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	deadline, _ := cctx.Deadline()

	dialer := &deadlineDialer{deadline: deadline}
	ws := &cdp.WebSocket{Dialer: dialer}
	if err := ws.Connect(cctx, endpoint, nil); err != nil {
		dialer.close()
		return nil, err
	}
	b := rod.New().Context(ctx).Client(cdp.New().Start(ws))
	if err := b.Connect(); err != nil {
		_ = ws.Close()
		return nil, err
	}
	if err := dialer.conn.SetDeadline(time.Time{}); err != nil {
		_ = ws.Close()
		return nil, err
	}
	return &rodBrowser{browser: b, ws: ws, endpoint: endpoint, logger: d.logger}, nil
}

// deadlineDialer dials plain TCP and sets a deadline on the connection.
type deadlineDialer struct {
	deadline time.Time
	conn     net.Conn
}

func (d *deadlineDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	conn, err := (&net.Dialer{}).DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	if err := conn.SetDeadline(d.deadline); err != nil {
		_ = conn.Close()
		return nil, err
	}
	d.conn = conn
	return conn, nil
}

func (d *deadlineDialer) close() {
	if d.conn != nil {
		_ = d.conn.Close()
	}
}

func (d rodDriver) Launch(ctx context.Context, bin, profileDir string) (browserHandle, error) {
	l := launcher.New().
		Context(ctx).
		Bin(bin).
		Headless(true).
		NoSandbox(true).
		UserDataDir(profileDir)
	for _, f := range hardenedFlags {
		l = l.Set(f)
	}

	u, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, err
	}

	// The connection is not tied to ctx; Close and Disconnect end it.
	ws := &cdp.WebSocket{}
	if err := ws.Connect(context.Background(), u, nil); err != nil {
		l.Kill()
		return nil, err
	}
	b := rod.New().Client(cdp.New().Start(ws))
	if err := b.Connect(); err != nil {
		_ = ws.Close()
		l.Kill()
		return nil, err
	}

	rb := &rodBrowser{
		browser:  b,
		ws:       ws,
		endpoint: u,
		launcher: l,
		done:     make(chan struct{}),
		logger:   d.logger,
	}
	go func() {
		// Cleanup blocks until the process exits, then removes the profile.
		l.Cleanup()
		close(rb.done)
	}()
	return rb, nil
}

// rodBrowser is a browserHandle over a rod.Browser.
type rodBrowser struct {
	browser  *rod.Browser
	ws       *cdp.WebSocket
	endpoint string
	launcher *launcher.Launcher // nil for connected browsers
	done     chan struct{}
	logger   zerolog.Logger
}

func (b *rodBrowser) Endpoint() string { return b.endpoint }

func (b *rodBrowser) Done() <-chan struct{} {
	if b.done == nil {
		return nil
	}
	return b.done
}

func (b *rodBrowser) NewPage(ctx context.Context) (pageHandle, error) {
	p, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	return &rodPage{page: p}, nil
}

func (b *rodBrowser) Close(ctx context.Context) error {
	closeErr := b.browser.Context(ctx).Close()
	_ = b.ws.Close()

	if b.launcher == nil {
		return closeErr
	}

	select {
	case <-b.done:
		return nil
	case <-time.After(exitGrace):
	case <-ctx.Done():
	}

	pid := b.launcher.PID()
	b.logger.Warn().Int("pid", pid).Msg("browser did not exit, killing process tree")
	if err := process.KillTree(pid); err != nil {
		b.logger.Debug().Err(err).Msg("process tree kill failed")
	}
	b.launcher.Kill()
	if closeErr != nil {
		return fmt.Errorf("closing browser: %w", closeErr)
	}
	return nil
}

func (b *rodBrowser) Disconnect() error {
	return b.ws.Close()
}

func (b *rodBrowser) Ping(ctx context.Context) error {
	_, err := proto.BrowserGetVersion{}.Call(b.browser.Context(ctx))
	return err
}

// rodPage is a pageHandle over a rod.Page.
type rodPage struct {
	page *rod.Page
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	pg := p.page.Context(ctx)
	wait := pg.WaitRequestIdle(networkIdleWindow, nil, nil, nil)
	if err := pg.Navigate(url); err != nil {
		return err
	}
	wait()
	return ctx.Err()
}

func (p *rodPage) SetContent(ctx context.Context, html string) error {
	pg := p.page.Context(ctx)
	wait := pg.WaitRequestIdle(networkIdleWindow, nil, nil, nil)
	if err := pg.SetDocumentContent(html); err != nil {
		return err
	}
	wait()
	return ctx.Err()
}

func (p *rodPage) PDF(ctx context.Context, req *proto.PagePrintToPDF) ([]byte, error) {
	r, err := p.page.Context(ctx).PDF(req)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading PDF stream: %w", err)
	}
	return data, nil
}

func (p *rodPage) Close(ctx context.Context) error {
	return p.page.Context(ctx).Close()
}
