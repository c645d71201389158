package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/drummonds/goFlattenPDF/config"
	"github.com/drummonds/goFlattenPDF/converter"
	"github.com/drummonds/goFlattenPDF/engine"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// injectGlobals injects all of our globals into their packages
func injectGlobals(logger *slog.Logger) {
	Logger = logger
	config.Logger = logger
	converter.Logger = logger
	engine.Logger = logger
}

func main() {
	// SIGINT cancels the context; per-file cleanup still runs before exit
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := rootCmd()
	root.AddCommand(serveCmd())

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var output string
	var outputDir string
	var batch bool
	var dpi int
	var format string
	var quality int
	var verbose bool

	cmd := &cobra.Command{
		Use:          "goflattenpdf [flags] input.pdf...",
		Short:        "Convert PDFs to image-based PDFs with configurable rasterization settings",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Settings are checked before any file is touched
			settings, err := converter.NewSettings(dpi, format, quality, verbose)
			if err != nil {
				return err
			}
			injectGlobals(cliLogger(verbose))

			inputs := converter.ExpandGlobs(args)
			if len(inputs) == 0 {
				return fmt.Errorf("no input files found")
			}
			if len(inputs) > 1 && !batch {
				return fmt.Errorf("multiple input files require --batch mode")
			}
			if batch && output != "" {
				return fmt.Errorf("cannot use --output in batch mode, use --output-dir instead")
			}

			if batch {
				return runBatch(cmd.Context(), inputs, outputDir, settings)
			}
			return runSingle(cmd.Context(), inputs[0], output, settings)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (single file mode only)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory (batch mode)")
	cmd.Flags().BoolVar(&batch, "batch", false, "enable batch mode for multiple files")
	cmd.Flags().IntVar(&dpi, "dpi", 150, "rasterization DPI: 72, 150 or 300")
	cmd.Flags().StringVar(&format, "format", "JPEG", "image format: JPEG or PNG")
	cmd.Flags().IntVar(&quality, "quality", 85, "JPEG quality percentage (1-100)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	return cmd
}

// runSingle converts one file; any failure makes the process exit nonzero
func runSingle(ctx context.Context, inputPath string, outputPath string, settings converter.Settings) error {
	result, err := converter.ConvertFile(ctx, inputPath, outputPath, settings)
	if err != nil {
		return err
	}

	fmt.Println("Conversion completed:")
	fmt.Printf("  Input:  %s (%s)\n", result.InputPath, humanize.Bytes(uint64(result.InputSize)))
	fmt.Printf("  Output: %s (%s)\n", result.OutputPath, humanize.Bytes(uint64(result.OutputSize)))
	fmt.Printf("  Pages:  %d\n", result.PageCount)
	fmt.Printf("  Format: %s at %d DPI\n", settings.Format, settings.DPI)
	if settings.Format == converter.FormatJPEG {
		fmt.Printf("  Quality: %d%%\n", settings.JPEGQuality)
	}
	return nil
}

// runBatch converts many files with per-file failure isolation. The exit code
// stays zero as long as the run itself completed; failures show in the tally.
func runBatch(ctx context.Context, inputs []string, outputDir string, settings converter.Settings) error {
	fmt.Printf("Starting batch conversion of %d files...\n", len(inputs))

	results, summary := converter.ConvertBatch(ctx, inputs, outputDir, settings)
	for _, batchResult := range results {
		if batchResult.Err != nil {
			fmt.Printf("ERROR: Failed to convert %s: %v\n", batchResult.InputPath, batchResult.Err)
			continue
		}
		result := batchResult.Result
		fmt.Printf("Converted %s -> %s (%d pages, %s)\n",
			batchResult.InputPath, result.OutputPath, result.PageCount, humanize.Bytes(uint64(result.OutputSize)))
	}

	fmt.Println("\nBatch conversion completed:")
	fmt.Printf("  Successful: %d\n", summary.Succeeded)
	fmt.Printf("  Failed: %d\n", summary.Failed)
	fmt.Printf("  Total: %d\n", summary.Total)
	return nil
}

// cliLogger logs to stderr so conversion reports on stdout stay clean
func cliLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
