package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vermaysha/html2pdf/internal/confcodec"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrEmptyPath      = errors.New("config path cannot be empty")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrFieldTooLong   = errors.New("field exceeds maximum length")
	ErrInvalidValue   = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength       = 4096
	MaxPageFormatLength = 10 // "Tabloid", "Ledger"
	MaxLayoutLength     = 10 // "Portrait", "Landscape"
	MaxPresetLength     = 10 // "prepress"
	MaxBucketLength     = 63 // S3 bucket naming rules
	MaxRegionLength     = 50
	MaxCredentialLength = 256
	MaxURLLength        = 2048
	MaxTimeoutMinutes   = 24 * 60
)

// AppName names the per-user config directory.
const AppName = "html2pdf"

// Config holds the file-level defaults for a conversion. Zero values
// mean "not set" so that env vars and flags can layer over them.
type Config struct {
	ChromePath   string         `yaml:"chromePath" toml:"chromePath"`
	Timeout      int            `yaml:"timeout" toml:"timeout"` // minutes
	RemoveSource bool           `yaml:"removeSource" toml:"removeSource"`
	Page         PageConfig     `yaml:"page" toml:"page"`
	Compress     CompressConfig `yaml:"compress" toml:"compress"`
	S3           S3Config       `yaml:"s3" toml:"s3"`
}

// PageConfig defines PDF paper settings.
type PageConfig struct {
	Format string `yaml:"format" toml:"format"` // "A4", "Letter", "Legal", ...
	Layout string `yaml:"layout" toml:"layout"` // "Portrait", "Landscape"
}

// CompressConfig defines Ghostscript post-processing.
type CompressConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Preset  string `yaml:"preset" toml:"preset"` // screen, ebook, printer, prepress, default
}

// S3Config holds object storage credentials.
type S3Config struct {
	AccessKeyID     string `yaml:"accessKeyId" toml:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey" toml:"secretAccessKey"`
	Bucket          string `yaml:"bucket" toml:"bucket"`
	Region          string `yaml:"region" toml:"region"`
	Endpoint        string `yaml:"endpoint" toml:"endpoint"`
}

// Validate checks field lengths and numeric ranges. Page format and
// layout names are checked later against the renderer's tables.
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"chromePath", c.ChromePath, MaxPathLength},
		{"page.format", c.Page.Format, MaxPageFormatLength},
		{"page.layout", c.Page.Layout, MaxLayoutLength},
		{"compress.preset", c.Compress.Preset, MaxPresetLength},
		{"s3.accessKeyId", c.S3.AccessKeyID, MaxCredentialLength},
		{"s3.secretAccessKey", c.S3.SecretAccessKey, MaxCredentialLength},
		{"s3.bucket", c.S3.Bucket, MaxBucketLength},
		{"s3.region", c.S3.Region, MaxRegionLength},
		{"s3.endpoint", c.S3.Endpoint, MaxURLLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Timeout < 0 || c.Timeout > MaxTimeoutMinutes {
		return fmt.Errorf("%w: timeout must be between 0 and %d minutes, got %d", ErrInvalidValue, MaxTimeoutMinutes, c.Timeout)
	}

	if c.Page.Layout != "" {
		switch strings.ToLower(c.Page.Layout) {
		case "portrait", "landscape":
		default:
			return fmt.Errorf("%w: page.layout %q (must be Portrait or Landscape)", ErrInvalidValue, c.Page.Layout)
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns an empty configuration; every field is unset.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig reads and validates the config file at path. The format
// follows the extension: .yaml, .yml or .toml.
func LoadConfig(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}

	format, err := confcodec.FormatFor(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := confcodec.UnmarshalStrict(format, data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SearchPaths lists the default config locations in lookup order.
func SearchPaths() []string {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	dir := filepath.Join(userConfigDir, AppName)
	return []string{
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "config.yml"),
		filepath.Join(dir, "config.toml"),
	}
}

// Find returns the first existing file among paths, or "" when none exists.
func Find(paths []string) string {
	for _, p := range paths {
		if fileExists(p) {
			return p
		}
	}
	return ""
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
