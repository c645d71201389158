package engine

import (
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/drummonds/goFlattenPDF/config"
	"github.com/drummonds/goFlattenPDF/converter"
)

// ServerHandler will inject the variables needed into routes
type ServerHandler struct {
	Echo         *echo.Echo
	ServerConfig config.ServerConfig
}

//go:embed index.html
var indexPage []byte

// NewServerHandler wires an echo instance with middleware and all routes
func NewServerHandler(serverConfig config.ServerConfig) *ServerHandler {
	e := echo.New()
	e.HideBanner = true

	serverHandler := &ServerHandler{
		Echo:         e,
		ServerConfig: serverConfig,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", serverConfig.MaxUploadMB)))

	serverHandler.RegisterRoutes()
	return serverHandler
}

// RegisterRoutes adds the conversion service routes to the echo instance
func (serverHandler *ServerHandler) RegisterRoutes() {
	serverHandler.Echo.GET("/", serverHandler.Index)
	serverHandler.Echo.GET("/health", serverHandler.Health)
	serverHandler.Echo.POST("/upload", serverHandler.UploadConvert)
	serverHandler.Echo.GET("/download/:id/:filename", serverHandler.DownloadConverted)
	serverHandler.Echo.POST("/cleanup/:id/:filename", serverHandler.CleanupConverted)
}

// Start runs the server until it is stopped
func (serverHandler *ServerHandler) Start() error {
	addr := fmt.Sprintf("%s:%s", serverHandler.ServerConfig.ListenAddrIP, serverHandler.ServerConfig.ListenAddrPort)
	Logger.Info("Starting web service", "addr", addr)
	return serverHandler.Echo.Start(addr)
}

// Index serves the one-page upload interface
func (serverHandler *ServerHandler) Index(context echo.Context) error {
	return context.HTMLBlob(http.StatusOK, indexPage)
}

// errorStatus maps a conversion error to the HTTP status the caller should
// see: configuration and validation problems are the client's fault, the
// rest are ours.
func errorStatus(err error) int {
	var configurationError *converter.ConfigurationError
	var validationError *converter.ValidationError
	if errors.As(err, &configurationError) || errors.As(err, &validationError) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// artifactPath resolves filename inside dir, rejecting anything that would
// escape it or that does not carry the expected id prefix.
func artifactPath(dir, id, filename string) (string, error) {
	if !strings.HasPrefix(filename, id) {
		return "", fmt.Errorf("invalid file access")
	}
	if filename != converter.SanitizeFilename(filename) || strings.Contains(filename, "..") {
		return "", fmt.Errorf("invalid file name")
	}
	return filepath.Join(dir, filename), nil
}
