package converter

import (
	"fmt"
	"strings"
)

// ImageFormat is the encoding used for the rasterized pages.
type ImageFormat string

const (
	FormatJPEG ImageFormat = "JPEG"
	FormatPNG  ImageFormat = "PNG"
)

// PointsPerInch is the PDF native resolution baseline.
const PointsPerInch = 72.0

// Settings holds the rasterization options for one conversion run. Build it
// with NewSettings so invalid combinations are rejected before any file is
// touched; treat it as immutable afterwards.
type Settings struct {
	DPI         int
	Format      ImageFormat
	JPEGQuality int
	Verbose     bool
}

// NewSettings validates and returns conversion settings. The format string is
// case insensitive ("jpeg" and "png" are fine). Any out of range value is
// reported as a ConfigurationError.
func NewSettings(dpi int, format string, jpegQuality int, verbose bool) (Settings, error) {
	settings := Settings{
		DPI:         dpi,
		Format:      ImageFormat(strings.ToUpper(format)),
		JPEGQuality: jpegQuality,
		Verbose:     verbose,
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Validate checks the enumerated ranges. NewSettings calls this already; the
// orchestrator calls it again so hand-built Settings values cannot sneak past.
func (settings Settings) Validate() error {
	switch settings.DPI {
	case 72, 150, 300:
	default:
		return &ConfigurationError{Setting: "dpi", Reason: fmt.Sprintf("must be 72, 150 or 300, got %d", settings.DPI)}
	}
	switch settings.Format {
	case FormatJPEG, FormatPNG:
	default:
		return &ConfigurationError{Setting: "format", Reason: fmt.Sprintf("must be JPEG or PNG, got %q", string(settings.Format))}
	}
	if settings.JPEGQuality < 1 || settings.JPEGQuality > 100 {
		return &ConfigurationError{Setting: "quality", Reason: fmt.Sprintf("must be between 1 and 100, got %d", settings.JPEGQuality)}
	}
	return nil
}

// Scale is the rendering scale factor relative to the PDF's 72 points per inch.
func (settings Settings) Scale() float64 {
	return float64(settings.DPI) / PointsPerInch
}

// extension returns the scratch file extension for the configured format.
func (settings Settings) extension() string {
	if settings.Format == FormatPNG {
		return "png"
	}
	return "jpg"
}
