package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// InitializeSchedules starts all the cron jobs (currently just one)
func (serverHandler *ServerHandler) InitializeSchedules() {
	// Run the sweep immediately at startup in a goroutine
	Logger.Info("Running stale artifact sweep at startup")
	go serverHandler.sweepJobFunc()

	c := cron.New()
	var sweepJob cron.Job
	sweepJob = cron.FuncJob(func() { serverHandler.sweepJobFunc() })
	sweepJob = cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(sweepJob) //ensure we don't kick off another if old one is still running
	c.AddJob(fmt.Sprintf("@every %dm", serverHandler.ServerConfig.SweepInterval), sweepJob)
	Logger.Info("Adding stale artifact sweep scheduler", "interval_minutes", serverHandler.ServerConfig.SweepInterval)
	c.Start()
}

// sweepJobFunc removes uploads and converted outputs that outlived the
// retention window. Conversions never take anywhere near that long, so
// anything old enough is an abandoned artifact.
func (serverHandler *ServerHandler) sweepJobFunc() {
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Panic recovered in sweep job", "panic", r)
		}
	}()

	cutoff := time.Now().Add(-serverHandler.ServerConfig.Retention)
	removed := 0
	for _, folder := range []string{serverHandler.ServerConfig.UploadPath, serverHandler.ServerConfig.OutputPath} {
		removed += sweepFolder(folder, cutoff)
	}
	if removed > 0 {
		Logger.Info("Stale artifact sweep finished", "removed", removed)
	}
}

// sweepFolder deletes regular files in folder modified before cutoff and
// returns how many went
func sweepFolder(folder string, cutoff time.Time) int {
	entries, err := os.ReadDir(folder)
	if err != nil {
		Logger.Warn("Unable to read artifact folder for sweep", "folder", folder, "error", err)
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(folder, entry.Name())
		if err := os.Remove(path); err != nil {
			Logger.Warn("Unable to remove stale artifact", "path", path, "error", err)
			continue
		}
		Logger.Debug("Removed stale artifact", "path", path)
		removed++
	}
	return removed
}
