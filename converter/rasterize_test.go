package converter

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func decodeConfig(t *testing.T, path string) (image.Config, string) {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open encoded page %s: %v", path, err)
	}
	defer file.Close()
	config, format, err := image.DecodeConfig(file)
	if err != nil {
		t.Fatalf("Failed to decode page image %s: %v", path, err)
	}
	return config, format
}

func TestRasterize_PageCountAndGeometry(t *testing.T) {
	tempDir := t.TempDir()
	inputPath := writeTestPDF(t, tempDir, "two_pages.pdf", [][2]float64{letterPage, letterPage})
	settings, err := NewSettings(150, "JPEG", 85, false)
	if err != nil {
		t.Fatalf("Unexpected settings error: %v", err)
	}

	pages, err := Rasterize(context.Background(), inputPath, tempDir, settings)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}

	if len(pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d", len(pages))
	}
	for i, page := range pages {
		if page.Index != i {
			t.Errorf("Page %d has index %d", i, page.Index)
		}
		if math.Abs(page.Width-612) > 0.5 || math.Abs(page.Height-792) > 0.5 {
			t.Errorf("Page %d geometry %fx%f, want 612x792 within 0.5pt", i, page.Width, page.Height)
		}

		// 150 DPI over the 72pt baseline: 612pt -> 1275px, 792pt -> 1650px
		config, format := decodeConfig(t, page.Path)
		if format != "jpeg" {
			t.Errorf("Page %d encoded as %s, want jpeg", i, format)
		}
		if config.Width != 1275 || config.Height != 1650 {
			t.Errorf("Page %d raster %dx%d px, want 1275x1650", i, config.Width, config.Height)
		}
	}
}

func TestRasterize_PNG(t *testing.T) {
	tempDir := t.TempDir()
	inputPath := writeTestPDF(t, tempDir, "one_page.pdf", [][2]float64{letterPage})
	settings, err := NewSettings(72, "PNG", 85, false)
	if err != nil {
		t.Fatalf("Unexpected settings error: %v", err)
	}

	pages, err := Rasterize(context.Background(), inputPath, tempDir, settings)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("Expected 1 page, got %d", len(pages))
	}

	config, format := decodeConfig(t, pages[0].Path)
	if format != "png" {
		t.Errorf("Page encoded as %s, want png", format)
	}
	if config.Width != 612 || config.Height != 792 {
		t.Errorf("Raster at 72 DPI is %dx%d px, want 612x792", config.Width, config.Height)
	}
}

func TestRasterize_MixedPageSizes(t *testing.T) {
	a4 := [2]float64{595.28, 841.89}
	tempDir := t.TempDir()
	inputPath := writeTestPDF(t, tempDir, "mixed.pdf", [][2]float64{letterPage, a4})
	settings, err := NewSettings(150, "JPEG", 85, false)
	if err != nil {
		t.Fatalf("Unexpected settings error: %v", err)
	}

	pages, err := Rasterize(context.Background(), inputPath, tempDir, settings)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d", len(pages))
	}
	if math.Abs(pages[0].Width-612) > 0.5 || math.Abs(pages[1].Width-595.28) > 0.5 {
		t.Errorf("Per page widths %f and %f, want 612 and 595.28", pages[0].Width, pages[1].Width)
	}
}

func TestRasterize_UnparseableFile(t *testing.T) {
	tempDir := t.TempDir()
	inputPath := filepath.Join(tempDir, "broken.pdf")
	// Passes the cheap sanity check, fails to open
	content := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{0}, 200)...)
	if err := os.WriteFile(inputPath, content, 0644); err != nil {
		t.Fatalf("Failed to write broken file: %v", err)
	}
	if !IsValidPDF(inputPath) {
		t.Fatal("Test expects the broken file to pass validation first")
	}

	settings, err := NewSettings(150, "JPEG", 85, false)
	if err != nil {
		t.Fatalf("Unexpected settings error: %v", err)
	}
	_, err = Rasterize(context.Background(), inputPath, tempDir, settings)

	var openError *OpenError
	if !errors.As(err, &openError) {
		t.Fatalf("Expected OpenError, got %v", err)
	}
	if openError.Encrypted {
		t.Error("Broken file should not be reported as encrypted")
	}
}

// MuPDF metadata values arrive NUL padded out of fixed size C buffers, so a
// plain document reports its encryption as "None\x00\x00...". That padding
// must not make an unencrypted document look locked.
func TestMetadataValue_TrimsNULPadding(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"None\x00\x00\x00\x00", "None"},
		{"None", "None"},
		{"\x00\x00\x00", ""},
		{"", ""},
		{"Standard V5 R6 256-bit AES\x00", "Standard V5 R6 256-bit AES"},
	}
	for _, test := range tests {
		if got := metadataValue(test.raw); got != test.want {
			t.Errorf("metadataValue(%q) = %q, want %q", test.raw, got, test.want)
		}
	}
}

func TestRasterize_PlainDocumentNotEncrypted(t *testing.T) {
	tempDir := t.TempDir()
	inputPath := writeTestPDF(t, tempDir, "plain.pdf", [][2]float64{letterPage})
	settings, err := NewSettings(72, "JPEG", 85, false)
	if err != nil {
		t.Fatalf("Unexpected settings error: %v", err)
	}

	pages, err := Rasterize(context.Background(), inputPath, tempDir, settings)
	if err != nil {
		var openError *OpenError
		if errors.As(err, &openError) && openError.Encrypted {
			t.Fatalf("Plain document reported as password protected: %v", err)
		}
		t.Fatalf("Rasterize failed: %v", err)
	}
	if len(pages) != 1 {
		t.Errorf("Expected 1 page, got %d", len(pages))
	}
}

func TestRasterize_EncryptedRejected(t *testing.T) {
	tempDir := t.TempDir()
	inputPath := filepath.Join(tempDir, "locked.pdf")
	if err := os.WriteFile(inputPath, buildEncryptedTestPDF(), 0644); err != nil {
		t.Fatalf("Failed to write encrypted file: %v", err)
	}

	settings, err := NewSettings(150, "JPEG", 85, false)
	if err != nil {
		t.Fatalf("Unexpected settings error: %v", err)
	}
	_, err = Rasterize(context.Background(), inputPath, tempDir, settings)

	var openError *OpenError
	if !errors.As(err, &openError) {
		t.Fatalf("Expected OpenError for encrypted input, got %v", err)
	}
	if !openError.Encrypted {
		t.Errorf("Expected the encrypted flag to be set, got %v", err)
	}
}

func TestRasterize_Cancelled(t *testing.T) {
	tempDir := t.TempDir()
	inputPath := writeTestPDF(t, tempDir, "cancel.pdf", [][2]float64{letterPage})
	settings, err := NewSettings(72, "JPEG", 85, false)
	if err != nil {
		t.Fatalf("Unexpected settings error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Rasterize(ctx, inputPath, tempDir, settings); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
