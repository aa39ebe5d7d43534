// Package fileutil provides file and path utility functions.
package fileutil

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsURL returns true if s parses as an absolute URL.
// Single-letter schemes are rejected so Windows drive paths
// like C:\report.html are treated as paths.
//
// Examples:
//   - "https://example.com" -> true
//   - "s3://bucket/key.pdf" -> true
//   - "file:///tmp/a.html" -> true
//   - "report.html" -> false
//   - "/abs/report.html" -> false
//   - "C:\\report.html" -> false
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return len(u.Scheme) > 1
}

// IsHTML returns true if the path has an .html or .htm extension (any case).
func IsHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// ToFileURL converts a local path (relative or absolute) to a file:// URL.
// Relative paths resolve against the working directory so that relative
// <link> and <img> references inside the document keep working.
func ToFileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", path, err)
	}

	p := filepath.ToSlash(abs)
	if runtime.GOOS == "windows" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String(), nil
}

// FromFileURL returns the local path referenced by a file:// URL.
func FromFileURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing %q: %w", raw, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("not a file URL: %q", raw)
	}

	p := u.Path
	if runtime.GOOS == "windows" {
		p = strings.TrimPrefix(p, "/")
	}
	return filepath.FromSlash(p), nil
}
