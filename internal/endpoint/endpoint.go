// Package endpoint persists the address of the shared browser so that
// independent html2pdf invocations can find and reuse it.
//
// The record is advisory. Readers treat a missing, empty or unreachable
// record as "no shared browser" and fall back to launching their own.
package endpoint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the record file name inside the cache directory.
const FileName = "html2pdf-endpoint.ws"

// File permission constants.
const (
	dirPermissions  = 0o750
	filePermissions = 0o600
)

// Sentinel errors for endpoint operations.
var (
	ErrNoRecord     = errors.New("no shared browser endpoint recorded")
	ErrEmptyAddress = errors.New("endpoint address cannot be empty")
)

// Store reads and writes the endpoint record at Path.
type Store struct {
	Path string
}

// NewStore returns a Store for the record inside cacheDir.
func NewStore(cacheDir string) *Store {
	return &Store{Path: filepath.Join(cacheDir, FileName)}
}

// Read returns the recorded address.
// A missing file or one holding only whitespace yields ErrNoRecord.
func (s *Store) Read() (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNoRecord
		}
		return "", fmt.Errorf("reading endpoint record: %w", err)
	}

	addr := strings.TrimSpace(string(data))
	if addr == "" {
		return "", ErrNoRecord
	}
	return addr, nil
}

// Exists reports whether a record file is present, without validating it.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// Write replaces the record with addr. The write goes through a temp file
// and a rename so readers never observe a partially written address.
func (s *Store) Write(addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ErrEmptyAddress
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("creating endpoint directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, FileName+".*")
	if err != nil {
		return fmt.Errorf("creating endpoint record: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(addr); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing endpoint record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing endpoint record: %w", err)
	}
	if err := os.Chmod(tmpPath, filePermissions); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("setting endpoint record permissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving endpoint record: %w", err)
	}
	return nil
}

// Remove deletes the record. A missing record is not an error.
func (s *Store) Remove() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing endpoint record: %w", err)
	}
	return nil
}
