package converter

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// minPDFSize is the smallest file size accepted as a PDF. Even an empty
// document carries a few hundred bytes of structure.
const minPDFSize = 100

var pdfMagic = []byte("%PDF-")

// IsValidPDF reports whether path is plausibly a PDF: a regular file with a
// .pdf extension whose sniffed content type is application/pdf or whose first
// bytes carry the %PDF- magic, and which is at least 100 bytes long.
//
// This is a cheap sanity check, not a structural parse. A file can pass here
// and still fail to open in the rasterizer, which surfaces later as an
// OpenError. Any I/O error is treated as "invalid".
func IsValidPDF(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return false
	}
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	header := make([]byte, 512)
	n, err := file.Read(header)
	if err != nil && n == 0 {
		return false
	}
	header = header[:n]
	if http.DetectContentType(header) != "application/pdf" && !bytes.HasPrefix(header, pdfMagic) {
		return false
	}
	return info.Size() >= minPDFSize
}
