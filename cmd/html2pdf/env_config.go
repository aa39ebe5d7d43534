package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	html2pdf "github.com/vermaysha/html2pdf"
	"github.com/vermaysha/html2pdf/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring config files.
type envConfig struct {
	ConfigPath string // HTML2PDF_CONFIG: config file path
	Timeout    int    // HTML2PDF_TIMEOUT: timeout in minutes
	PageFormat string // HTML2PDF_PAGE_FORMAT: A4, Letter, Legal, ...

	S3AccessKeyID     string // S3_ACCESS_KEY_ID
	S3SecretAccessKey string // S3_SECRET_ACCESS_KEY
	S3Bucket          string // S3_BUCKET
	S3Region          string // S3_REGION
	S3Endpoint        string // S3_ENDPOINT
}

// knownEnvVars lists valid HTML2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"HTML2PDF_CONFIG":      true,
	"HTML2PDF_TIMEOUT":     true,
	"HTML2PDF_PAGE_FORMAT": true,
	html2pdf.CacheDirEnv:   true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("HTML2PDF_CONFIG"),
		PageFormat: os.Getenv("HTML2PDF_PAGE_FORMAT"),

		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3Bucket:          os.Getenv("S3_BUCKET"),
		S3Region:          os.Getenv("S3_REGION"),
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
	}

	// Invalid or non-positive values are ignored, not errors.
	if timeout := os.Getenv("HTML2PDF_TIMEOUT"); timeout != "" {
		if m, err := strconv.Atoi(timeout); err == nil && m > 0 {
			cfg.Timeout = m
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized HTML2PDF_* variables.
// Helps catch typos like HTML2PDF_TIMOUT.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "HTML2PDF_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig layers environment values over the config file.
// Only set variables override. CLI flags are applied later in mergeFlags,
// giving: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Timeout > 0 {
		cfg.Timeout = env.Timeout
	}
	if env.PageFormat != "" {
		cfg.Page.Format = env.PageFormat
	}

	if env.S3AccessKeyID != "" {
		cfg.S3.AccessKeyID = env.S3AccessKeyID
	}
	if env.S3SecretAccessKey != "" {
		cfg.S3.SecretAccessKey = env.S3SecretAccessKey
	}
	if env.S3Bucket != "" {
		cfg.S3.Bucket = env.S3Bucket
	}
	if env.S3Region != "" {
		cfg.S3.Region = env.S3Region
	}
	if env.S3Endpoint != "" {
		cfg.S3.Endpoint = env.S3Endpoint
	}
}
