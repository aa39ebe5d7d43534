package main

import (
	flag "github.com/spf13/pflag"

	html2pdf "github.com/vermaysha/html2pdf"
	"github.com/vermaysha/html2pdf/internal/compress"
)

// Flag names looked up with FlagSet.Changed when merging sources.
const (
	flagChromePath     = "chrome-path"
	flagPageFormat     = "page-format"
	flagPageLayout     = "page-layout"
	flagTimeout        = "timeout"
	flagRemoveSource   = "remove-source"
	flagCompress       = "compress"
	flagCompressPreset = "compress-preset"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pageFlags holds page layout flags.
type pageFlags struct {
	format string
	layout string
}

// compressFlags holds Ghostscript post-processing flags.
type compressFlags struct {
	enabled bool
	preset  string
}

// s3Flags holds object storage settings.
type s3Flags struct {
	accessKeyID     string
	secretAccessKey string
	bucket          string
	region          string
	endpoint        string
}

// convertFlags holds all flags for the root conversion command.
type convertFlags struct {
	common       commonFlags
	chromePath   string
	timeout      int // minutes
	removeSource bool
	page         pageFlags
	compress     compressFlags
	s3           s3Flags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVar(&f.config, "config", "", "config file path (YAML or TOML)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show warnings and errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug output")
}

// addChromePathFlag adds the browser executable flag to a FlagSet.
func addChromePathFlag(fs *flag.FlagSet, dst *string) {
	fs.StringVarP(dst, flagChromePath, "c", "", "path to a Chrome or Chromium executable")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.format, flagPageFormat, "p", string(html2pdf.DefaultPageFormat), "page format: A0-A6, Letter, Legal, Tabloid, Ledger")
	fs.StringVarP(&f.layout, flagPageLayout, "l", string(html2pdf.Portrait), "page layout: Portrait, Landscape")
}

// addCompressFlags adds compression flags to a FlagSet.
func addCompressFlags(fs *flag.FlagSet, f *compressFlags) {
	fs.BoolVarP(&f.enabled, flagCompress, "z", false, "compress the PDF with Ghostscript")
	fs.StringVar(&f.preset, flagCompressPreset, string(compress.PresetEbook), "compression preset: screen, ebook, printer, prepress, default")
}

// addS3Flags adds object storage flags to a FlagSet.
func addS3Flags(fs *flag.FlagSet, f *s3Flags) {
	fs.StringVar(&f.accessKeyID, "s3-access-key-id", "", "S3 access key ID (env S3_ACCESS_KEY_ID)")
	fs.StringVar(&f.secretAccessKey, "s3-secret-access-key", "", "S3 secret access key (env S3_SECRET_ACCESS_KEY)")
	fs.StringVar(&f.bucket, "s3-bucket", "", "default S3 bucket (env S3_BUCKET)")
	fs.StringVar(&f.region, "s3-region", "", "S3 region (env S3_REGION)")
	fs.StringVar(&f.endpoint, "s3-endpoint", "", "S3 endpoint URL (env S3_ENDPOINT)")
}

// addConvertFlags registers the conversion flags. Common flags are
// registered separately as persistent flags on the root command.
func addConvertFlags(fs *flag.FlagSet, f *convertFlags) {
	addChromePathFlag(fs, &f.chromePath)
	fs.IntVarP(&f.timeout, flagTimeout, "t", int(html2pdf.DefaultTimeout.Minutes()), "page load and render timeout in minutes")
	fs.BoolVarP(&f.removeSource, flagRemoveSource, "d", false, "delete the local input file after a successful conversion")
	addPageFlags(fs, &f.page)
	addCompressFlags(fs, &f.compress)
	addS3Flags(fs, &f.s3)
}
