package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BatchResult is the outcome for one input of a batch run: either Result or
// Err is set, never both.
type BatchResult struct {
	InputPath string
	Result    *Result
	Err       error
}

// BatchSummary is the final tally of a batch run.
type BatchSummary struct {
	Succeeded int
	Failed    int
	Total     int
}

// ConvertFile converts a single PDF into an image-based PDF. When outputPath
// is empty a name of the form {stem}_image_{dpi}dpi.pdf is derived next to
// the input, suffixed to avoid overwriting an existing file.
//
// Temporary raster storage is reclaimed on every exit path, and a failure
// after the output file exists deletes it before the error is returned: the
// caller never observes a broken output PDF on disk.
func ConvertFile(ctx context.Context, inputPath string, outputPath string, settings Settings) (*Result, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if !IsValidPDF(inputPath) {
		return nil, &ValidationError{Path: inputPath, Reason: "not a PDF or file unreadable"}
	}
	if outputPath == "" {
		outputPath = OutputFilename(inputPath, settings.DPI)
	}

	scratchDir, err := os.MkdirTemp("", "goflattenpdf-")
	if err != nil {
		return nil, fmt.Errorf("unable to create scratch directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratchDir); err != nil {
			Logger.Warn("Unable to remove scratch directory", "dir", scratchDir, "error", err)
		}
	}()
	Logger.Debug("Using scratch directory", "dir", scratchDir)

	pages, err := Rasterize(ctx, inputPath, scratchDir, settings)
	if err != nil {
		return nil, err
	}

	if err := BuildPDF(pages, outputPath); err != nil {
		removeIfExists(outputPath)
		return nil, err
	}

	inputInfo, err := os.Stat(inputPath)
	if err != nil {
		removeIfExists(outputPath)
		return nil, fmt.Errorf("unable to stat input file: %w", err)
	}
	outputInfo, err := os.Stat(outputPath)
	if err != nil {
		removeIfExists(outputPath)
		return nil, fmt.Errorf("unable to stat output file: %w", err)
	}

	result := &Result{
		InputPath:  inputPath,
		OutputPath: outputPath,
		PageCount:  len(pages),
		InputSize:  inputInfo.Size(),
		OutputSize: outputInfo.Size(),
	}
	Logger.Info("Conversion completed", "input", inputPath, "output", outputPath, "pages", result.PageCount)
	return result, nil
}

// ConvertBatch converts each input in order with per-file failure isolation:
// one file's error is recorded in its BatchResult and the remaining files are
// still attempted. When outputDir is non-empty every output lands there under
// the derived name; otherwise each output sits next to its input.
//
// A cancelled ctx stops the batch before the next file starts; the file in
// flight still runs its cleanup.
func ConvertBatch(ctx context.Context, inputPaths []string, outputDir string, settings Settings) ([]BatchResult, BatchSummary) {
	results := make([]BatchResult, 0, len(inputPaths))
	summary := BatchSummary{Total: len(inputPaths)}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			for _, inputPath := range inputPaths {
				results = append(results, BatchResult{InputPath: inputPath, Err: fmt.Errorf("unable to create output directory %s: %w", outputDir, err)})
			}
			summary.Failed = len(inputPaths)
			return results, summary
		}
	}

	for i, inputPath := range inputPaths {
		if err := ctx.Err(); err != nil {
			results = append(results, BatchResult{InputPath: inputPath, Err: err})
			summary.Failed++
			continue
		}

		Logger.Info("Batch processing file", "number", i+1, "total", len(inputPaths), "input", inputPath)

		outputPath := ""
		if outputDir != "" {
			stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
			outputPath = filepath.Join(outputDir, fmt.Sprintf("%s_image_%ddpi.pdf", stem, settings.DPI))
		}

		result, err := ConvertFile(ctx, inputPath, outputPath, settings)
		if err != nil {
			Logger.Error("Batch conversion failed for file", "input", inputPath, "error", err)
			results = append(results, BatchResult{InputPath: inputPath, Err: err})
			summary.Failed++
			continue
		}
		results = append(results, BatchResult{InputPath: inputPath, Result: result})
		summary.Succeeded++
	}

	Logger.Info("Batch conversion completed", "successful", summary.Succeeded, "failed", summary.Failed, "total", summary.Total)
	return results, summary
}

func removeIfExists(path string) {
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			Logger.Warn("Unable to remove partial output file", "path", path, "error", err)
		}
	}
}
