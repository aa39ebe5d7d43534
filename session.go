package html2pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vermaysha/html2pdf/internal/endpoint"
)

// Ownership records whether this process must terminate the browser it uses.
type Ownership int

const (
	// Borrowed sessions use the shared browser; release only disconnects.
	Borrowed Ownership = iota
	// Owned sessions launched their own browser; release terminates it
	// and removes its profile directory.
	Owned
)

func (o Ownership) String() string {
	switch o {
	case Borrowed:
		return "borrowed"
	case Owned:
		return "owned"
	}
	return fmt.Sprintf("Ownership(%d)", int(o))
}

// Session is a browser acquired for one conversion.
type Session struct {
	Ownership  Ownership
	browser    browserHandle
	profileDir string // empty for Borrowed
}

// Release gives the browser back. Owned sessions terminate the browser and
// remove the profile directory; Borrowed sessions only disconnect.
func (s *Session) Release(ctx context.Context) error {
	switch s.Ownership {
	case Owned:
		err := s.browser.Close(ctx)
		if s.profileDir != "" {
			if rmErr := os.RemoveAll(s.profileDir); rmErr != nil {
				err = errors.Join(err, fmt.Errorf("removing profile dir: %w", rmErr))
			}
		}
		return err
	case Borrowed:
		return s.browser.Disconnect()
	}
	return fmt.Errorf("release: unknown ownership %v", s.Ownership)
}

// endpointReader is the part of *endpoint.Store the acquirer reads.
type endpointReader interface {
	Read() (string, error)
}

var _ endpointReader = (*endpoint.Store)(nil)

// locateFunc finds a browser executable; custom is returned as-is when set.
type locateFunc func(custom string) (string, bool)

// acquirer hands out sessions: the shared browser if it answers, a fresh
// disposable browser otherwise.
type acquirer struct {
	endpoints endpointReader
	driver    browserDriver
	locate    locateFunc
	tempDir   string // parent of profile dirs; empty = os.TempDir()
	logger    zerolog.Logger
}

func (a *acquirer) acquire(ctx context.Context, chromePath string) (*Session, error) {
	if addr, err := a.endpoints.Read(); err == nil {
		b, err := a.driver.Connect(ctx, addr)
		if err == nil {
			a.logger.Info().Str("endpoint", addr).Msg("using shared browser")
			return &Session{Ownership: Borrowed, browser: b}, nil
		}
		a.logger.Debug().Err(err).Str("endpoint", addr).Msg("shared browser unreachable")
	} else if !errors.Is(err, endpoint.ErrNoRecord) {
		a.logger.Debug().Err(err).Msg("reading endpoint record")
	}

	bin, ok := a.locate(chromePath)
	if !ok {
		return nil, ErrBrowserNotFound
	}
	a.logger.Info().Str("path", bin).Msg("browser found")

	profileDir := newProfileDir(a.tempDir)
	b, err := a.driver.Launch(ctx, bin, profileDir)
	if err != nil {
		_ = os.RemoveAll(profileDir)
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	a.logger.Debug().Str("profile", profileDir).Msg("launched disposable browser")
	return &Session{Ownership: Owned, browser: b, profileDir: profileDir}, nil
}

// newProfileDir returns a unique, not yet created, profile directory path.
func newProfileDir(parent string) string {
	if parent == "" {
		parent = os.TempDir()
	}
	return filepath.Join(parent, "html2pdf-"+uuid.NewString())
}
