// Package browsercache manages Chromium builds downloaded into the local
// html2pdf cache directory.
//
// Builds live in "chromium-<revision>" directories, the layout used by
// go-rod's launcher downloader, so a build installed here is also usable
// by rod directly.
package browsercache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/rs/zerolog"

	"github.com/vermaysha/html2pdf/internal/fileutil"
	"github.com/vermaysha/html2pdf/internal/version"
)

// buildDirPrefix prefixes every build directory inside the cache.
const buildDirPrefix = "chromium-"

// ErrEmptyDir is returned when a Cache is used without a directory.
var ErrEmptyDir = errors.New("browser cache directory is not set")

// Build describes one installed browser build.
type Build struct {
	Revision   string
	Dir        string
	Executable string
}

// Cache lists, installs and clears builds under Dir.
type Cache struct {
	Dir      string
	Revision int
	Logger   zerolog.Logger

	// download fetches revision rev into root and returns the executable path.
	// Replaced in tests to avoid network access.
	download func(ctx context.Context, root string, rev int, logger zerolog.Logger) (string, error)
}

// New returns a Cache rooted at dir pinned to rod's default revision.
func New(dir string) *Cache {
	return &Cache{
		Dir:      dir,
		Revision: launcher.RevisionDefault,
		Logger:   zerolog.Nop(),
		download: rodDownload,
	}
}

// BinPath returns where the executable of revision rev lives.
func (c *Cache) BinPath(rev int) string {
	b := launcher.NewBrowser()
	b.RootDir = c.Dir
	b.Revision = rev
	return b.BinPath()
}

// List returns installed builds, newest first.
// A missing cache directory yields an empty list, not an error.
// Build directories without an executable are skipped.
func (c *Cache) List() ([]Build, error) {
	if c.Dir == "" {
		return nil, ErrEmptyDir
	}

	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading browser cache: %w", err)
	}

	var builds []Build
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		rev, ok := strings.CutPrefix(e.Name(), buildDirPrefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rev)
		if err != nil || n <= 0 {
			continue
		}
		bin := c.BinPath(n)
		if !fileutil.FileExists(bin) {
			continue
		}
		builds = append(builds, Build{
			Revision:   rev,
			Dir:        filepath.Join(c.Dir, e.Name()),
			Executable: bin,
		})
	}

	sort.SliceStable(builds, func(i, j int) bool {
		return version.Compare(builds[i].Revision, builds[j].Revision) > 0
	})
	return builds, nil
}

// Latest returns the newest installed build.
func (c *Cache) Latest() (Build, bool) {
	builds, err := c.List()
	if err != nil || len(builds) == 0 {
		return Build{}, false
	}
	return builds[0], true
}

// Install downloads the pinned revision unless it is already present.
// The returned bool reports whether a download happened.
func (c *Cache) Install(ctx context.Context) (Build, bool, error) {
	if c.Dir == "" {
		return Build{}, false, ErrEmptyDir
	}

	rev := strconv.Itoa(c.Revision)
	bin := c.BinPath(c.Revision)
	if fileutil.FileExists(bin) {
		return Build{Revision: rev, Dir: filepath.Dir(bin), Executable: bin}, false, nil
	}

	if err := os.MkdirAll(c.Dir, 0o750); err != nil {
		return Build{}, false, fmt.Errorf("creating browser cache: %w", err)
	}

	path, err := c.download(ctx, c.Dir, c.Revision, c.Logger)
	if err != nil {
		return Build{}, false, fmt.Errorf("downloading chromium %s: %w", rev, err)
	}
	return Build{Revision: rev, Dir: filepath.Join(c.Dir, buildDirPrefix+rev), Executable: path}, true, nil
}

// Clear removes the cache directory and everything in it.
func (c *Cache) Clear() error {
	if c.Dir == "" {
		return ErrEmptyDir
	}
	if err := os.RemoveAll(c.Dir); err != nil {
		return fmt.Errorf("clearing browser cache: %w", err)
	}
	return nil
}

// rodDownload fetches a build through rod's launcher downloader.
func rodDownload(ctx context.Context, root string, rev int, logger zerolog.Logger) (string, error) {
	b := launcher.NewBrowser()
	b.Context = ctx
	b.RootDir = root
	b.Revision = rev
	b.Logger = progressLogger{logger: logger}
	return b.Get()
}

// progressLogger adapts zerolog to rod's Println-style logger.
type progressLogger struct {
	logger zerolog.Logger
}

func (p progressLogger) Println(vs ...interface{}) {
	p.logger.Info().Msg(strings.TrimSpace(fmt.Sprintln(vs...)))
}
