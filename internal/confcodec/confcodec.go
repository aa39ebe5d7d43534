// Package confcodec decodes configuration files in YAML or TOML.
// Callers pick the format from the file extension and never import
// the underlying parsers directly.
package confcodec

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// MaxInputSize limits config input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

// Format identifies a config file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var (
	ErrNilData           = errors.New("confcodec: nil or empty data")
	ErrNilDestination    = errors.New("confcodec: nil destination pointer")
	ErrInputTooLarge     = errors.New("confcodec: input exceeds maximum size")
	ErrUnsupportedFormat = errors.New("confcodec: unsupported format")
)

// FormatFor maps a file path to its format by extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %q (use .yaml, .yml or .toml)", ErrUnsupportedFormat, filepath.Ext(path))
}

func validateInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

// UnmarshalStrict decodes data in the given format and rejects unknown fields.
func UnmarshalStrict(format Format, data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	switch format {
	case FormatYAML:
		if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
			return fmt.Errorf("confcodec: yaml: %w", err)
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("confcodec: toml: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return nil
}

// Marshal encodes v in the given format.
func Marshal(format Format, v any) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch format {
	case FormatYAML:
		out, err = yaml.Marshal(v)
	case FormatTOML:
		out, err = toml.Marshal(v)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("confcodec: %s: %w", format, err)
	}
	return out, nil
}
