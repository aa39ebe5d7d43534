package html2pdf

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/vermaysha/html2pdf/internal/fileutil"
	"github.com/vermaysha/html2pdf/internal/s3store"
)

// ObjectStore is the subset of *s3store.Store used for s3:// paths.
type ObjectStore interface {
	DefaultBucket() string
	Get(ctx context.Context, loc s3store.Location) ([]byte, error)
	Put(ctx context.Context, loc s3store.Location, data []byte, contentType string) error
	Exists(ctx context.Context, loc s3store.Location) (bool, error)
	Delete(ctx context.Context, loc s3store.Location) error
}

var _ ObjectStore = (*s3store.Store)(nil)

// Readable is a whole-content resource an input can be read from.
type Readable interface {
	Name() string
	Exists(ctx context.Context) (bool, error)
	ReadAll(ctx context.Context) ([]byte, error)
	Delete(ctx context.Context) error
}

// InputSource is either a *URLSource (navigated to) or a *FileSource
// (read and injected). No other implementations exist.
type InputSource interface {
	// Describe returns the path or URL for messages.
	Describe() string
	// Cleanup deletes the underlying resource, if there is one.
	Cleanup(ctx context.Context) error
	inputSource()
}

// URLSource is loaded by navigating the page to Path.
type URLSource struct {
	Path string
	// file is set when Path was built from a local .html file.
	file string
}

func (*URLSource) inputSource() {}

func (s *URLSource) Describe() string { return s.Path }

// Cleanup removes the local file behind a file:// URL. It is a no-op for
// web URLs.
func (s *URLSource) Cleanup(context.Context) error {
	if s.file == "" {
		return nil
	}
	return removeFile(s.file)
}

// FileSource is loaded by reading Handle and setting it as the page content.
type FileSource struct {
	Handle Readable
	Path   string
	// Remote marks sources addressed by URL (s3://, file://). Only
	// non-remote sources are removed by Job.RemoveSource.
	Remote bool
}

func (*FileSource) inputSource() {}

func (s *FileSource) Describe() string { return s.Path }

// Cleanup deletes the underlying object or file.
func (s *FileSource) Cleanup(ctx context.Context) error {
	return s.Handle.Delete(ctx)
}

// ResolveInput classifies pathOrURL into an InputSource. store may be nil
// unless the input is an s3:// URL.
func ResolveInput(ctx context.Context, pathOrURL string, store ObjectStore) (InputSource, error) {
	if strings.TrimSpace(pathOrURL) == "" {
		return nil, fmt.Errorf("%w: input path is empty", ErrConfig)
	}

	if !fileutil.IsURL(pathOrURL) {
		if fileutil.IsHTML(pathOrURL) {
			u, err := fileutil.ToFileURL(pathOrURL)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrConfig, err)
			}
			return &URLSource{Path: u, file: pathOrURL}, nil
		}
		return &FileSource{Handle: localFile{path: pathOrURL}, Path: pathOrURL}, nil
	}

	u, err := url.Parse(pathOrURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "s3":
		obj, err := newS3Object(pathOrURL, store)
		if err != nil {
			return nil, err
		}
		return &FileSource{Handle: obj, Path: pathOrURL, Remote: true}, nil
	case "http", "https":
		return &URLSource{Path: pathOrURL}, nil
	case "file":
		p, err := fileutil.FromFileURL(pathOrURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		return &FileSource{Handle: localFile{path: p}, Path: p, Remote: true}, nil
	}
	return nil, fmt.Errorf("%w: input scheme %q", ErrUnsupportedProtocol, u.Scheme)
}

// ResolveIO resolves both ends of a conversion and checks that a local,
// non-URL input exists.
func ResolveIO(ctx context.Context, input, output string, store ObjectStore) (InputSource, OutputSink, error) {
	in, err := ResolveInput(ctx, input, store)
	if err != nil {
		return nil, nil, err
	}
	out, err := ResolveOutput(output, store)
	if err != nil {
		return nil, nil, err
	}

	if fs, ok := in.(*FileSource); ok && !fs.Remote {
		exists, err := fs.Handle.Exists(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %v", ErrInputNotFound, fs.Path, err)
		}
		if !exists {
			return nil, nil, fmt.Errorf("%w: %s", ErrInputNotFound, fs.Path)
		}
	}
	return in, out, nil
}

// localFile is a Readable on the local filesystem.
type localFile struct {
	path string
}

func (f localFile) Name() string { return f.path }

func (f localFile) Exists(context.Context) (bool, error) {
	_, err := os.Stat(f.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (f localFile) ReadAll(context.Context) ([]byte, error) {
	return os.ReadFile(f.path) // #nosec G304 -- path is user-provided
}

func (f localFile) Delete(context.Context) error {
	return removeFile(f.path)
}

func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// s3Object is a Readable and OutputSink backed by an ObjectStore.
type s3Object struct {
	raw   string
	loc   s3store.Location
	store ObjectStore
}

func newS3Object(raw string, store ObjectStore) (*s3Object, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: S3 credentials are required for %s", ErrConfig, raw)
	}
	loc, err := s3store.ParseLocation(raw, store.DefaultBucket())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return &s3Object{raw: raw, loc: loc, store: store}, nil
}

func (o *s3Object) Name() string { return o.loc.String() }

func (o *s3Object) Exists(ctx context.Context) (bool, error) {
	return o.store.Exists(ctx, o.loc)
}

func (o *s3Object) ReadAll(ctx context.Context) ([]byte, error) {
	return o.store.Get(ctx, o.loc)
}

func (o *s3Object) Delete(ctx context.Context) error {
	return o.store.Delete(ctx, o.loc)
}

func (o *s3Object) Write(ctx context.Context, data []byte) error {
	return o.store.Put(ctx, o.loc, data, pdfContentType)
}
