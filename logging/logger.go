// Package logging provides structured logging for the disease insight API:
// a global slog service, a weekly rotating file writer with retention
// cleanup, and an HTTP request-logging middleware.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// RotatingLogger writes to one log file per ISO week and removes files
// older than the retention period.
type RotatingLogger struct {
	logDir      string
	retention   time.Duration
	mu          sync.Mutex
	currentFile *os.File
	currentWeek string
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewRotatingLogger creates a rotating logger writing under logDir.
func NewRotatingLogger(logDir string, retentionWeeks int) *RotatingLogger {
	if retentionWeeks <= 0 {
		retentionWeeks = 4
	}
	rl := &RotatingLogger{
		logDir:    logDir,
		retention: time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		stop:      make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// getWeekKey returns the week key in YYYY-Www format (ISO week)
func getWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Write appends to the current week's file, rotating when the week rolls over.
func (rl *RotatingLogger) Write(p []byte) (int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	week := getWeekKey(time.Now())
	if rl.currentFile == nil || rl.currentWeek != week {
		if err := rl.rotate(week); err != nil {
			return 0, err
		}
	}
	return rl.currentFile.Write(p)
}

// rotate opens the file for targetWeek (caller must hold the lock).
func (rl *RotatingLogger) rotate(targetWeek string) error {
	if rl.currentFile != nil {
		if err := rl.currentFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file during rotation: %v\n", err)
		}
	}

	logPath := filepath.Join(rl.logDir, fmt.Sprintf("app-%s.log", targetWeek))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	rl.currentFile = file
	rl.currentWeek = targetWeek
	return nil
}

// cleanupLoop removes expired log files twice a day.
func (rl *RotatingLogger) cleanupLoop() {
	ticker := time.NewTicker(12 * time.Hour)
	defer ticker.Stop()

	rl.cleanupOldLogs()
	for {
		select {
		case <-ticker.C:
			rl.cleanupOldLogs()
		case <-rl.stop:
			return
		}
	}
}

// cleanupOldLogs removes log files older than the retention period.
func (rl *RotatingLogger) cleanupOldLogs() {
	entries, err := os.ReadDir(rl.logDir)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-rl.retention)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "app-") || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(rl.logDir, name)); err != nil {
				fmt.Fprintf(os.Stderr, "failed to remove old log file %s: %v\n", name, err)
			}
		}
	}
}

// Close stops the cleanup loop and closes the current file.
func (rl *RotatingLogger) Close() error {
	rl.stopOnce.Do(func() { close(rl.stop) })

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.currentFile == nil {
		return nil
	}
	err := rl.currentFile.Close()
	rl.currentFile = nil
	return err
}

// SetupLogger builds a slog.Logger writing to stdout and, when the log
// directory can be created, to a weekly rotating file.
func SetupLogger(logDir string, level string, retentionWeeks int) *slog.Logger {
	var out io.Writer = os.Stdout
	if err := os.MkdirAll(logDir, 0o755); err == nil {
		out = io.MultiWriter(os.Stdout, NewRotatingLogger(logDir, retentionWeeks))
	} else {
		fmt.Fprintf(os.Stderr, "failed to create log directory %s, logging to console only: %v\n", logDir, err)
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
