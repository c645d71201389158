package converter

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Rasterize opens the PDF at path and renders every page, in order, to an
// encoded image file inside scratchDir. The returned slice has one PageImage
// per source page, carrying the page's original dimensions in points.
//
// The document handle is closed before return on every path. Scratch files
// are left for the caller to reclaim together with scratchDir. Cancellation
// via ctx is checked between pages.
func Rasterize(ctx context.Context, path string, scratchDir string, settings Settings) ([]PageImage, error) {
	// Exact point geometry comes from pdfcpu when the cross reference table
	// is intact; a damaged file that MuPDF can still repair falls back to
	// deriving points from the rendered pixel grid.
	dims, dimsErr := api.PageDimsFile(path)
	if dimsErr != nil {
		Logger.Debug("Unable to read page dimensions, will derive from raster", "path", path, "error", dimsErr)
	}

	doc, err := fitz.New(path)
	if err != nil {
		if errors.Is(err, fitz.ErrNeedsPassword) {
			return nil, &OpenError{Path: path, Encrypted: true, Err: err}
		}
		return nil, &OpenError{Path: path, Err: err}
	}
	defer doc.Close()

	// A document that opened with the empty owner password is still encrypted
	// content; reject it the same way as one that demands a password.
	if enc := metadataValue(doc.Metadata()["encryption"]); enc != "" && !strings.EqualFold(enc, "none") {
		return nil, &OpenError{Path: path, Encrypted: true}
	}

	pageCount := doc.NumPage()
	Logger.Info("Rasterizing document", "path", path, "pages", pageCount, "dpi", settings.DPI, "format", settings.Format)

	pages := make([]PageImage, 0, pageCount)
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := doc.ImageDPI(pageNum, float64(settings.DPI))
		if err != nil {
			return nil, &PageRenderError{Page: pageNum + 1, Err: err}
		}

		width, height := pageDims(dims, dimsErr, pageNum, img, settings)

		imagePath := filepath.Join(scratchDir, fmt.Sprintf("page_%04d.%s", pageNum, settings.extension()))
		if err := encodePage(img, imagePath, settings); err != nil {
			return nil, &PageRenderError{Page: pageNum + 1, Err: err}
		}

		pages = append(pages, PageImage{
			Index:  pageNum,
			Path:   imagePath,
			Format: settings.Format,
			Width:  width,
			Height: height,
		})
		Logger.Debug("Processed page", "page", pageNum+1, "total", pageCount, "width_pt", width, "height_pt", height)
	}

	return pages, nil
}

// metadataValue cleans up a go-fitz metadata entry, which arrives NUL padded
// out of a fixed size C buffer.
func metadataValue(raw string) string {
	return strings.TrimRight(raw, "\x00")
}

// pageDims returns the original page size in points. The rendered raster is
// the fallback source of truth: dividing pixels by the render scale recovers
// points.
func pageDims(dims []types.Dim, dimsErr error, pageNum int, img image.Image, settings Settings) (float64, float64) {
	if dimsErr == nil && pageNum < len(dims) {
		return dims[pageNum].Width, dims[pageNum].Height
	}
	bounds := img.Bounds()
	return float64(bounds.Dx()) / settings.Scale(), float64(bounds.Dy()) / settings.Scale()
}

// encodePage writes the raster to path in the configured format. JPEG has no
// transparency, so non-opaque rasters are composited onto white first.
func encodePage(img image.Image, path string, settings Settings) error {
	switch settings.Format {
	case FormatJPEG:
		if !isOpaque(img) {
			background := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
			img = imaging.Overlay(background, img, image.Pt(0, 0), 1.0)
		}
		return imaging.Save(img, path, imaging.JPEGQuality(settings.JPEGQuality))
	case FormatPNG:
		return imaging.Save(img, path, imaging.PNGCompressionLevel(png.BestCompression))
	default:
		return fmt.Errorf("unsupported image format %q", string(settings.Format))
	}
}

func isOpaque(img image.Image) bool {
	if opaquer, ok := img.(interface{ Opaque() bool }); ok {
		return opaquer.Opaque()
	}
	return false
}
