package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	filePrefix         = "mymedic-"
	fileSuffix         = ".log"
	defaultMaxFileSize = 100 * 1024 * 1024
)

var numberedFileRegex = regexp.MustCompile(`^mymedic-\d{4}-W\d{2}_(\d{2})\.log$`)

// RotatingLogger writes to one file per ISO week, starting a numbered file
// when the current one reaches maxFileSize. Old files are removed by
// CleanupOldLogs.
type RotatingLogger struct {
	logDir      string
	retention   time.Duration
	maxFileSize int64

	mu          sync.Mutex
	currentFile *os.File
	currentWeek string
	currentSize int64
	now         func() time.Time
}

// NewRotatingLogger creates logDir if needed and opens the file for the
// current week. A maxFileSize of zero uses 100MB.
func NewRotatingLogger(logDir string, retentionWeeks int, maxFileSize int64) (*RotatingLogger, error) {
	if maxFileSize <= 0 {
		maxFileSize = defaultMaxFileSize
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	rl := &RotatingLogger{
		logDir:      logDir,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
		now:         time.Now,
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if err := rl.rotate(weekKey(rl.now()), false); err != nil {
		return nil, err
	}
	return rl, nil
}

// weekKey returns the ISO week in YYYY-Www format.
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// rotate opens the file to write for week. Caller holds mu.
func (rl *RotatingLogger) rotate(week string, full bool) error {
	if rl.currentFile != nil {
		_ = rl.currentFile.Close()
		rl.currentFile = nil
	}

	name := rl.pickFile(week, full)
	path := filepath.Join(rl.logDir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	rl.currentFile = file
	rl.currentWeek = week
	rl.currentSize = 0
	if info, err := file.Stat(); err == nil {
		rl.currentSize = info.Size()
	}
	return nil
}

// pickFile returns the base file of week unless it is full, otherwise the
// last numbered file with room, otherwise the next numbered file.
func (rl *RotatingLogger) pickFile(week string, full bool) string {
	base := filePrefix + week + fileSuffix
	if !full {
		info, err := os.Stat(filepath.Join(rl.logDir, base))
		if err != nil || info.Size() < rl.maxFileSize {
			return base
		}
	}

	highest := 0
	var lastSize int64
	matches, _ := filepath.Glob(filepath.Join(rl.logDir, filePrefix+week+"_??"+fileSuffix))
	for _, match := range matches {
		m := numberedFileRegex.FindStringSubmatch(filepath.Base(match))
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		if n > highest {
			highest = n
			lastSize = 0
			if info, err := os.Stat(match); err == nil {
				lastSize = info.Size()
			}
		}
	}

	if highest > 0 && !full && lastSize < rl.maxFileSize {
		return fmt.Sprintf("%s%s_%02d%s", filePrefix, week, highest, fileSuffix)
	}
	return fmt.Sprintf("%s%s_%02d%s", filePrefix, week, highest+1, fileSuffix)
}

// Write implements io.Writer.
func (rl *RotatingLogger) Write(p []byte) (int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	week := weekKey(rl.now())
	switch {
	case week != rl.currentWeek:
		if err := rl.rotate(week, false); err != nil {
			return 0, err
		}
	case rl.currentSize+int64(len(p)) > rl.maxFileSize && rl.currentSize > 0:
		if err := rl.rotate(week, true); err != nil {
			return 0, err
		}
	}

	if rl.currentFile == nil {
		return 0, fmt.Errorf("no log file available")
	}

	n, err := rl.currentFile.Write(p)
	rl.currentSize += int64(n)
	return n, err
}

// CurrentFile returns the path of the file being written.
func (rl *RotatingLogger) CurrentFile() string {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.currentFile == nil {
		return ""
	}
	return rl.currentFile.Name()
}

// CleanupOldLogs removes log files last modified before the retention
// period and returns how many were removed. The open file is never removed.
func (rl *RotatingLogger) CleanupOldLogs() (int, error) {
	entries, err := os.ReadDir(rl.logDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	current := rl.CurrentFile()
	cutoff := rl.now().Add(-rl.retention)
	deleted := 0

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		path := filepath.Join(rl.logDir, name)
		if path == current {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) && os.Remove(path) == nil {
			deleted++
		}
	}

	return deleted, nil
}

func (rl *RotatingLogger) Close() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.currentFile == nil {
		return nil
	}
	err := rl.currentFile.Close()
	rl.currentFile = nil
	return err
}
