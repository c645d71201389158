package converter

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// OutputFilename derives the default output path for inputPath: the input's
// stem plus an _image_{dpi}dpi suffix, in the input's directory. If that file
// already exists a numeric suffix (_1, _2, ...) is tried, giving up after
// 1000 attempts and returning the last candidate.
func OutputFilename(inputPath string, dpi int) string {
	dir := filepath.Dir(inputPath)
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	outputPath := filepath.Join(dir, fmt.Sprintf("%s_image_%ddpi.pdf", stem, dpi))
	for counter := 1; counter <= 1000; counter++ {
		if _, err := os.Stat(outputPath); os.IsNotExist(err) {
			break
		}
		outputPath = filepath.Join(dir, fmt.Sprintf("%s_image_%ddpi_%d.pdf", stem, dpi, counter))
	}
	return outputPath
}

// SanitizeFilename strips characters that are unsafe in filenames, trims
// leading and trailing dots and spaces, and caps the length. An empty result
// falls back to "converted_pdf".
func SanitizeFilename(filename string) string {
	sanitized := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`<>:"/\|?*`, r) {
			return '_'
		}
		return r
	}, filename)

	sanitized = strings.Trim(sanitized, " .")
	if sanitized == "" {
		sanitized = "converted_pdf"
	}
	if len(sanitized) > 200 {
		sanitized = sanitized[:200]
	}
	return sanitized
}

// ExpandGlobs expands glob patterns into concrete file paths, preserving the
// argument order and dropping duplicates. Plain paths pass through untouched;
// a pattern with no matches is logged and skipped.
func ExpandGlobs(patterns []string) []string {
	seen := make(map[string]bool)
	var expanded []string

	appendPath := func(path string) {
		if !seen[path] {
			seen[path] = true
			expanded = append(expanded, path)
		}
	}

	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[") {
			appendPath(pattern)
			continue
		}
		matches, err := filepath.Glob(pattern)
		if err != nil || len(matches) == 0 {
			Logger.Warn("No files found matching pattern", "pattern", pattern)
			continue
		}
		sort.Strings(matches)
		for _, match := range matches {
			appendPath(match)
		}
	}
	return expanded
}

// EstimateMemory gives a rough upper bound in bytes for converting a document
// with the given page count, assuming US Letter pages and an overhead factor
// for decoding and scratch buffers.
func EstimateMemory(pageCount int, dpi int, format ImageFormat) int64 {
	const (
		widthInches        = 8.5
		heightInches       = 11.0
		overheadMultiplier = 2.5
	)

	widthPixels := int64(widthInches * float64(dpi))
	heightPixels := int64(heightInches * float64(dpi))

	bytesPerPixel := int64(4)
	if format == FormatJPEG {
		bytesPerPixel = 3
	}

	bytesPerPage := widthPixels * heightPixels * bytesPerPixel
	return int64(float64(int64(pageCount)*bytesPerPage) * overheadMultiplier)
}

// AvailableMemory reports the system's available memory in bytes, read from
// /proc/meminfo. The second return is false on platforms where that is not
// available.
func AvailableMemory() (int64, bool) {
	file, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, false
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "MemAvailable:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, false
		}
		kb, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return 0, false
		}
		return kb * 1024, true
	}
	return 0, false
}
