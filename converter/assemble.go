package converter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// BuildPDF assembles a new PDF from the rasterized pages and writes it to
// outputPath. Pages are re-sorted by index first, so the call stays correct
// even if a future caller renders pages out of order. Each output page is
// sized exactly (Width, Height) points with the image centered at relative
// scale 1.0, so a raster sharing the page's aspect ratio fills it edge to
// edge.
//
// The document is built in a work file next to the scratch images and only
// moved to outputPath once complete, so a partial file is never mistaken for
// a result.
func BuildPDF(pages []PageImage, outputPath string) error {
	if len(pages) == 0 {
		return &ReassemblyError{Err: fmt.Errorf("no pages to assemble")}
	}

	ordered := make([]PageImage, len(pages))
	copy(ordered, pages)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	workPath := filepath.Join(filepath.Dir(ordered[0].Path), "assembled.pdf")
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	Logger.Info("Assembling output PDF", "output", outputPath, "pages", len(ordered))
	for _, page := range ordered {
		// pos:full would size the page to the raster's pixel grid instead of
		// the recorded point dimensions, so anchor at center and let the
		// relative scale fill the page.
		description := fmt.Sprintf("dim:%.2f %.2f, pos:c, scale:1.0", page.Width, page.Height)
		imp, err := pdfcpu.ParseImportDetails(description, types.POINTS)
		if err != nil {
			return &ReassemblyError{Err: fmt.Errorf("page %d import config: %w", page.Index+1, err)}
		}
		if err := api.ImportImagesFile([]string{page.Path}, workPath, imp, conf); err != nil {
			return &ReassemblyError{Err: fmt.Errorf("page %d: %w", page.Index+1, err)}
		}
		Logger.Debug("Appended page to output PDF", "page", page.Index+1, "total", len(ordered))
	}

	if err := moveFile(workPath, outputPath); err != nil {
		return &ReassemblyError{Err: err}
	}
	return nil
}

// moveFile renames src to dst, copying when the rename crosses filesystems
// (the scratch directory usually lives on a different mount than the output).
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Remove(src)
}
