package main

import (
	"fmt"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	html2pdf "github.com/vermaysha/html2pdf"
	"github.com/vermaysha/html2pdf/internal/compress"
	"github.com/vermaysha/html2pdf/internal/config"
	"github.com/vermaysha/html2pdf/internal/fileutil"
	"github.com/vermaysha/html2pdf/internal/s3store"
)

// convertParams holds the merged settings for one conversion.
type convertParams struct {
	input        string
	output       string
	chromePath   string
	pageFormat   html2pdf.PageFormat
	orientation  html2pdf.Orientation
	timeout      time.Duration
	removeSource bool
	compress     bool
	preset       compress.Preset
	s3           s3store.Settings
}

// loadConfig resolves the config file from --config, then HTML2PDF_CONFIG,
// then the per-user search paths. An explicit path must exist; finding
// nothing in the search paths yields an empty config.
// Returns the config and the path it was read from ("" if none).
func loadConfig(flagPath, envPath string) (*config.Config, string, error) {
	path := flagPath
	if path == "" {
		path = envPath
	}
	if path == "" {
		path = config.Find(config.SearchPaths())
	}
	if path == "" {
		return config.DefaultConfig(), "", nil
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// mergeFlags applies explicitly set flags over cfg, which already carries
// file and environment values, then validates the result.
func mergeFlags(fs *flag.FlagSet, f *convertFlags, cfg *config.Config, args []string) (*convertParams, error) {
	p := &convertParams{
		input:  args[0],
		output: args[1],
	}

	p.chromePath = pick(fs, flagChromePath, f.chromePath, cfg.ChromePath)
	if p.chromePath != "" && !fileutil.FileExists(p.chromePath) {
		return nil, fmt.Errorf("%w: chrome path %q does not exist", html2pdf.ErrConfig, p.chromePath)
	}

	format, err := html2pdf.ParsePageFormat(pick(fs, flagPageFormat, f.page.format, cfg.Page.Format))
	if err != nil {
		return nil, err
	}
	p.pageFormat = format

	orientation, err := html2pdf.ParseOrientation(pick(fs, flagPageLayout, f.page.layout, cfg.Page.Layout))
	if err != nil {
		return nil, err
	}
	p.orientation = orientation

	minutes := f.timeout
	if !fs.Changed(flagTimeout) && cfg.Timeout > 0 {
		minutes = cfg.Timeout
	}
	if minutes <= 0 || minutes > config.MaxTimeoutMinutes {
		return nil, fmt.Errorf("%w: %d minutes (must be 1-%d)", html2pdf.ErrInvalidTimeout, minutes, config.MaxTimeoutMinutes)
	}
	p.timeout = time.Duration(minutes) * time.Minute

	p.removeSource = cfg.RemoveSource
	if fs.Changed(flagRemoveSource) {
		p.removeSource = f.removeSource
	}
	p.compress = cfg.Compress.Enabled
	if fs.Changed(flagCompress) {
		p.compress = f.compress.enabled
	}

	preset, err := compress.ParsePreset(pick(fs, flagCompressPreset, f.compress.preset, cfg.Compress.Preset))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", html2pdf.ErrConfig, err)
	}
	p.preset = preset

	p.s3 = s3store.Settings{
		AccessKeyID:     override(f.s3.accessKeyID, cfg.S3.AccessKeyID),
		SecretAccessKey: override(f.s3.secretAccessKey, cfg.S3.SecretAccessKey),
		Bucket:          override(f.s3.bucket, cfg.S3.Bucket),
		Region:          override(f.s3.region, cfg.S3.Region),
		Endpoint:        override(f.s3.endpoint, cfg.S3.Endpoint),
	}

	return p, nil
}

// pick returns the flag value when the flag was set on the command line,
// then the config value, then the flag default.
func pick(fs *flag.FlagSet, name, flagValue, cfgValue string) string {
	if fs.Changed(name) || cfgValue == "" {
		return flagValue
	}
	return cfgValue
}

// override returns flagValue unless it is empty.
func override(flagValue, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	return fallback
}

// needsS3 reports whether either end of the conversion is an S3 object.
func needsS3(input, output string) bool {
	return hasS3Scheme(input) || hasS3Scheme(output)
}

func hasS3Scheme(s string) bool {
	return strings.HasPrefix(strings.ToLower(s), "s3://")
}
