package html2pdf

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/vermaysha/html2pdf/internal/browserpath"
	"github.com/vermaysha/html2pdf/internal/endpoint"
)

// endpointStore is the endpoint record as seen by the server.
type endpointStore interface {
	Read() (string, error)
	Write(addr string) error
	Remove() error
	Exists() bool
}

var _ endpointStore = (*endpoint.Store)(nil)

// ServerState describes the shared browser as seen through its record.
type ServerState int

const (
	// Stopped means there is no endpoint record.
	Stopped ServerState = iota
	// Running means the recorded browser answers.
	Running
	// Stale means a record exists but nothing answers at its address.
	Stale
)

func (s ServerState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Stale:
		return "stale"
	}
	return fmt.Sprintf("ServerState(%d)", int(s))
}

// ServerStatus is the result of Server.Status.
type ServerStatus struct {
	State    ServerState
	Endpoint string
}

// Server manages the shared browser that conversions borrow.
type Server struct {
	store      endpointStore
	recordPath string
	driver     browserDriver
	locate     locateFunc
	tempDir    string
	logger     zerolog.Logger
}

// NewServer returns a Server using the endpoint record in the cache directory.
func NewServer(opts ...Option) *Server {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	store := endpoint.NewStore(o.cacheDir)
	return &Server{
		store:      store,
		recordPath: store.Path,
		driver:     rodDriver{logger: o.logger},
		locate:     browserpath.New(o.cacheDir, o.logger).Locate,
		logger:     o.logger,
	}
}

// RecordPath returns where the endpoint record is kept.
func (s *Server) RecordPath() string { return s.recordPath }

// Start launches the shared browser and blocks until ctx is cancelled or
// the browser goes away. A live shared browser already recorded makes Start
// return nil at once; a stale record is removed first.
//
// On cancellation the browser is closed and Start returns nil. If the
// browser disconnects on its own Start returns ErrServerDisconnected. The
// record is removed on every return path once it was written.
func (s *Server) Start(ctx context.Context, chromePath string) error {
	if addr, err := s.store.Read(); err == nil {
		if b, err := s.driver.Connect(ctx, addr); err == nil {
			_ = b.Disconnect()
			s.logger.Info().Str("endpoint", addr).Msg("shared browser is already running")
			return nil
		}
		s.logger.Warn().Str("endpoint", addr).Msg("removing stale endpoint record")
		if err := s.store.Remove(); err != nil {
			return fmt.Errorf("removing stale endpoint record: %w", err)
		}
	} else if !errors.Is(err, endpoint.ErrNoRecord) {
		return fmt.Errorf("reading endpoint record: %w", err)
	}

	bin, ok := s.locate(chromePath)
	if !ok {
		return ErrBrowserNotFound
	}
	s.logger.Info().Str("path", bin).Msg("browser found")

	profileDir := newProfileDir(s.tempDir)
	b, err := s.driver.Launch(ctx, bin, profileDir)
	if err != nil {
		_ = os.RemoveAll(profileDir)
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	sess := &Session{Ownership: Owned, browser: b, profileDir: profileDir}

	defer func() {
		if err := s.store.Remove(); err != nil {
			s.logger.Warn().Err(err).Str("record", s.recordPath).Msg("removing endpoint record")
		}
	}()

	if err := s.store.Write(b.Endpoint()); err != nil {
		s.release(ctx, sess)
		return fmt.Errorf("writing endpoint record: %w", err)
	}

	s.logger.Info().
		Str("endpoint", b.Endpoint()).
		Str("record", s.recordPath).
		Msg("shared browser started; press Ctrl+C or run 'html2pdf browser stop' to stop it")

	select {
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down shared browser")
		s.release(ctx, sess)
		return nil
	case <-b.Done():
		s.logger.Warn().Msg("shared browser disconnected unexpectedly")
		_ = os.RemoveAll(profileDir)
		return ErrServerDisconnected
	}
}

func (s *Server) release(ctx context.Context, sess *Session) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := sess.Release(cctx); err != nil {
		s.logger.Warn().Err(err).Msg("closing shared browser")
	}
}

// Stop closes the recorded shared browser. Failing to reach it is logged,
// not returned. The record is removed in every case.
func (s *Server) Stop(ctx context.Context) error {
	defer func() {
		if !s.store.Exists() {
			return
		}
		if err := s.store.Remove(); err != nil {
			s.logger.Warn().Err(err).Str("record", s.recordPath).Msg("removing endpoint record")
			return
		}
		s.logger.Info().Str("record", s.recordPath).Msg("endpoint record removed")
	}()

	addr, err := s.store.Read()
	if errors.Is(err, endpoint.ErrNoRecord) {
		s.logger.Info().Msg("no shared browser is running")
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading endpoint record: %w", err)
	}

	b, err := s.driver.Connect(ctx, addr)
	if err != nil {
		s.logger.Warn().Err(err).Str("endpoint", addr).Msg("could not reach shared browser, cleaning up")
		return nil
	}
	if err := b.Close(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("closing shared browser")
		return nil
	}
	s.logger.Info().Str("endpoint", addr).Msg("shared browser closed")
	return nil
}

// Status reports whether the recorded shared browser answers.
func (s *Server) Status(ctx context.Context) (ServerStatus, error) {
	addr, err := s.store.Read()
	if errors.Is(err, endpoint.ErrNoRecord) {
		return ServerStatus{State: Stopped}, nil
	}
	if err != nil {
		return ServerStatus{}, fmt.Errorf("reading endpoint record: %w", err)
	}

	b, err := s.driver.Connect(ctx, addr)
	if err != nil {
		s.logger.Debug().Err(err).Str("endpoint", addr).Msg("shared browser unreachable")
		return ServerStatus{State: Stale, Endpoint: addr}, nil
	}
	_ = b.Disconnect()
	return ServerStatus{State: Running, Endpoint: addr}, nil
}
