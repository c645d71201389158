package converter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// buildTestPDF produces a minimal but well formed PDF with one empty page per
// entry of pageSizes, each sized [width height] in points. Offsets in the
// cross reference table are computed, so pdfcpu parses it without repair.
func buildTestPDF(pageSizes [][2]float64) []byte {
	var buf bytes.Buffer
	var offsets []int

	addObject := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")

	var kids []string
	for i := range pageSizes {
		kids = append(kids, fmt.Sprintf("%d 0 R", i+3))
	}

	addObject("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	addObject(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n",
		strings.Join(kids, " "), len(pageSizes)))
	for i, size := range pageSizes {
		addObject(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %.2f %.2f] >>\nendobj\n",
			i+3, size[0], size[1]))
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, offset := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offset)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xrefOffset)
	return buf.Bytes()
}

// buildEncryptedTestPDF produces a single page PDF whose trailer references a
// standard security handler with junk key material. No password, not even the
// empty one, authenticates against it, which is exactly how a
// password protected document presents to the rasterizer.
func buildEncryptedTestPDF() []byte {
	var buf bytes.Buffer
	var offsets []int

	addObject := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	junk := strings.Repeat("58", 32) // 32 bytes of 'X' as a hex string

	buf.WriteString("%PDF-1.4\n")
	addObject("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	addObject("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	addObject("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>\nendobj\n")
	addObject(fmt.Sprintf("4 0 obj\n<< /Filter /Standard /V 1 /R 2 /O <%s> /U <%s> /P -44 >>\nendobj\n", junk, junk))

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, offset := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offset)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Encrypt 4 0 R /ID [<1111111111111111> <1111111111111111>] >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xrefOffset)
	return buf.Bytes()
}

// writeTestPDF writes a generated PDF into dir and returns its path
func writeTestPDF(t *testing.T, dir, name string, pageSizes [][2]float64) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buildTestPDF(pageSizes), 0644); err != nil {
		t.Fatalf("Failed to write test PDF: %v", err)
	}
	return path
}

// letterPage is US Letter in points
var letterPage = [2]float64{612, 792}
