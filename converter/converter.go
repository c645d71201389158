// Package converter implements the PDF flattening pipeline: every page of a
// source PDF is rasterized to an image at a configurable resolution and a new
// PDF is assembled from those images, one page per image, with each output
// page sized exactly like the original page.
package converter

import (
	"log/slog"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger = slog.Default()

// PageImage is one rasterized page, encoded and written to the scratch
// directory. Index is 0-based and defines the output page order. Width and
// Height are the original page dimensions in points, independent of the DPI
// the raster was produced at.
type PageImage struct {
	Index  int
	Path   string
	Format ImageFormat
	Width  float64
	Height float64
}

// Result describes one completed conversion. It is only produced on full
// success; a failed conversion never leaves an output file behind.
type Result struct {
	InputPath  string
	OutputPath string
	PageCount  int
	InputSize  int64
	OutputSize int64
}
