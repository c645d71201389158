package engine

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"

	"github.com/drummonds/goFlattenPDF/converter"
)

type uploadResponse struct {
	Success       bool         `json:"success"`
	FileID        string       `json:"file_id"`
	Filename      string       `json:"filename"`
	PageCount     int          `json:"page_count"`
	OriginalSize  string       `json:"original_size"`
	ConvertedSize string       `json:"converted_size"`
	Settings      settingsEcho `json:"settings"`
}

type settingsEcho struct {
	DPI     int    `json:"dpi"`
	Format  string `json:"format"`
	Quality *int   `json:"quality,omitempty"` //only meaningful for JPEG
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Health reports service liveness
func (serverHandler *ServerHandler) Health(context echo.Context) error {
	return context.JSON(http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// UploadConvert handles a PDF upload with conversion settings, runs the
// conversion and reports where the result can be downloaded from
func (serverHandler *ServerHandler) UploadConvert(context echo.Context) error {
	request := context.Request()

	file, fileHeader, err := request.FormFile("file")
	if err != nil {
		return context.JSON(http.StatusBadRequest, errorResponse{Error: "No file uploaded"})
	}
	defer file.Close()
	if fileHeader.Filename == "" {
		return context.JSON(http.StatusBadRequest, errorResponse{Error: "No file selected"})
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf") {
		return context.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid file type. Please upload a PDF file."})
	}

	settings, err := serverHandler.requestSettings(context)
	if err != nil {
		Logger.Warn("Upload rejected, bad conversion settings", "error", err)
		return context.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	// Artifact names carry a per-upload ULID so one client cannot guess or
	// clobber another's files.
	fileID := ulid.Make().String()
	secureName := converter.SanitizeFilename(fileHeader.Filename)
	inputPath := filepath.Join(serverHandler.ServerConfig.UploadPath, fmt.Sprintf("%s_%s", fileID, secureName))

	if err := saveUpload(file, inputPath); err != nil {
		Logger.Error("Unable to store uploaded file", "path", inputPath, "error", err)
		return context.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to store uploaded file"})
	}
	defer func() {
		if err := os.Remove(inputPath); err != nil && !os.IsNotExist(err) {
			Logger.Warn("Unable to remove uploaded file", "path", inputPath, "error", err)
		}
	}()

	if !converter.IsValidPDF(inputPath) {
		return context.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid or corrupted PDF file"})
	}

	stem := strings.TrimSuffix(secureName, filepath.Ext(secureName))
	outputName := fmt.Sprintf("%s_%s_image_%ddpi.pdf", fileID, stem, settings.DPI)
	outputPath := filepath.Join(serverHandler.ServerConfig.OutputPath, outputName)

	result, err := converter.ConvertFile(request.Context(), inputPath, outputPath, settings)
	if err != nil {
		Logger.Error("Upload conversion failed", "input", fileHeader.Filename, "error", err)
		return context.JSON(errorStatus(err), errorResponse{Error: fmt.Sprintf("Conversion failed: %v", err)})
	}

	response := uploadResponse{
		Success:       true,
		FileID:        fileID,
		Filename:      outputName,
		PageCount:     result.PageCount,
		OriginalSize:  humanize.Bytes(uint64(result.InputSize)),
		ConvertedSize: humanize.Bytes(uint64(result.OutputSize)),
		Settings: settingsEcho{
			DPI:    settings.DPI,
			Format: string(settings.Format),
		},
	}
	if settings.Format == converter.FormatJPEG {
		quality := settings.JPEGQuality
		response.Settings.Quality = &quality
	}
	return context.JSON(http.StatusOK, response)
}

// DownloadConverted serves a converted PDF as an attachment
func (serverHandler *ServerHandler) DownloadConverted(context echo.Context) error {
	fileID := context.Param("id")
	filename := context.Param("filename")

	path, err := artifactPath(serverHandler.ServerConfig.OutputPath, fileID, filename)
	if err != nil {
		return context.JSON(http.StatusForbidden, errorResponse{Error: "Invalid file access"})
	}
	if _, err := os.Stat(path); err != nil {
		return context.JSON(http.StatusNotFound, errorResponse{Error: "File not found"})
	}
	return context.Attachment(path, downloadName(fileID, filename))
}

// CleanupConverted removes a converted PDF once the client has it
func (serverHandler *ServerHandler) CleanupConverted(context echo.Context) error {
	fileID := context.Param("id")
	filename := context.Param("filename")

	path, err := artifactPath(serverHandler.ServerConfig.OutputPath, fileID, filename)
	if err != nil {
		return context.JSON(http.StatusForbidden, errorResponse{Error: "Invalid file access"})
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		Logger.Error("Unable to remove converted file", "path", path, "error", err)
		return context.JSON(http.StatusInternalServerError, errorResponse{Error: "Cleanup failed"})
	}
	return context.JSON(http.StatusOK, map[string]bool{"success": true})
}

// requestSettings builds conversion settings from the upload form, falling
// back to the configured defaults for fields the client omitted
func (serverHandler *ServerHandler) requestSettings(context echo.Context) (converter.Settings, error) {
	serverConfig := serverHandler.ServerConfig

	dpi := serverConfig.DefaultDPI
	if value := context.FormValue("dpi"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return converter.Settings{}, &converter.ConfigurationError{Setting: "dpi", Reason: "not a number"}
		}
		dpi = parsed
	}

	format := serverConfig.DefaultFormat
	if value := context.FormValue("format"); value != "" {
		format = value
	}

	quality := serverConfig.DefaultQuality
	if value := context.FormValue("quality"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return converter.Settings{}, &converter.ConfigurationError{Setting: "quality", Reason: "not a number"}
		}
		quality = parsed
	}

	return converter.NewSettings(dpi, format, quality, false)
}

// downloadName recovers a friendly attachment name from the stored artifact
// name {ulid}_{stem}_image_{dpi}dpi.pdf
func downloadName(fileID, filename string) string {
	stem := strings.TrimPrefix(filename, fileID+"_")
	if idx := strings.LastIndex(stem, "_image_"); idx > 0 {
		stem = stem[:idx]
	} else {
		stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	}
	return stem + "_converted.pdf"
}

func saveUpload(file io.Reader, path string) error {
	body, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	return os.WriteFile(path, body, 0644)
}
