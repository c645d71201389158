package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// ServerConfig contains all of the web service settings
type ServerConfig struct {
	ListenAddrIP   string
	ListenAddrPort string
	UploadPath     string //absolute path uploaded PDFs land in before conversion
	OutputPath     string //absolute path converted PDFs are served from
	MaxUploadMB    int
	Retention      time.Duration //converted and uploaded artifacts older than this get swept
	SweepInterval  int           //minutes between stale artifact sweeps
	DefaultDPI     int
	DefaultFormat  string
	DefaultQuality int
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolVal
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

// SetupServer loads configuration and returns ServerConfig and Logger
func SetupServer() (ServerConfig, *slog.Logger) {
	serverConfigLive := ServerConfig{}

	// Load .env file (silently ignore if doesn't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("config.env")

	logger := setupLogging()
	Logger = logger

	// Load configuration from environment variables with defaults

	// Server configuration
	serverConfigLive.ListenAddrPort = getEnv("SERVER_PORT", "8000")
	serverConfigLive.ListenAddrIP = getEnv("SERVER_ADDR", "")

	// Artifact storage configuration
	uploadDir := filepath.ToSlash(getEnv("UPLOAD_PATH", "uploads"))
	uploadDirAbs, err := filepath.Abs(uploadDir)
	if err != nil {
		logger.Error("Failed creating absolute path for upload directory", "error", err)
	}
	serverConfigLive.UploadPath = uploadDirAbs

	outputDir := filepath.ToSlash(getEnv("OUTPUT_PATH", "outputs"))
	outputDirAbs, err := filepath.Abs(outputDir)
	if err != nil {
		logger.Error("Failed creating absolute path for output directory", "error", err)
	}
	serverConfigLive.OutputPath = outputDirAbs

	for _, dir := range []string{serverConfigLive.UploadPath, serverConfigLive.OutputPath} {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			logger.Error("Failed creating artifact directory", "dir", dir, "error", err)
		}
	}

	// Upload and retention policy
	serverConfigLive.MaxUploadMB = getEnvInt("MAX_UPLOAD_MB", 50)
	serverConfigLive.Retention = getEnvDuration("RETENTION_WINDOW", time.Hour)
	serverConfigLive.SweepInterval = getEnvInt("SWEEP_INTERVAL", 10)

	// Default conversion settings for requests that omit them
	serverConfigLive.DefaultDPI = getEnvInt("DEFAULT_DPI", 150)
	serverConfigLive.DefaultFormat = getEnv("DEFAULT_FORMAT", "JPEG")
	serverConfigLive.DefaultQuality = getEnvInt("DEFAULT_QUALITY", 85)

	fmt.Println("\n========================================")
	fmt.Println("  goFlattenPDF - PDF to Image Converter")
	fmt.Println("========================================")
	fmt.Printf("Server will start on: %s:%s\n", serverConfigLive.ListenAddrIP, serverConfigLive.ListenAddrPort)
	if serverConfigLive.ListenAddrIP == "" {
		fmt.Println("(Listening on all network interfaces)")
	}
	fmt.Printf("Upload folder: %s\n", serverConfigLive.UploadPath)
	fmt.Printf("Output folder: %s\n", serverConfigLive.OutputPath)
	fmt.Printf("Detailed logs: %s\n", getEnv("LOG_FILE", "goflattenpdf.log"))
	fmt.Println("Initializing...")

	return serverConfigLive, logger
}

// setupLogging configures the application logger
func setupLogging() *slog.Logger {
	logLevel := getEnv("LOG_LEVEL", "debug")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelDebug
	}

	handlerOptions := &slog.HandlerOptions{Level: level}

	logOutput := getEnv("LOG_OUTPUT", "file")
	var logWriter io.Writer

	if logOutput == "stdout" {
		logWriter = os.Stdout
	} else {
		logPath, err := filepath.Abs(filepath.ToSlash(getEnv("LOG_FILE", "goflattenpdf.log")))
		if err != nil {
			fmt.Printf("Error creating log file path: %v\n", err)
			logWriter = os.Stdout
		} else {
			logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				fmt.Printf("Failed to open log file: %v\n", err)
				logWriter = os.Stdout
			} else {
				logWriter = logFile
				fmt.Println("Logging to file: ", logPath)
			}
		}
	}

	handler := slog.NewTextHandler(logWriter, handlerOptions)
	return slog.New(handler)
}
