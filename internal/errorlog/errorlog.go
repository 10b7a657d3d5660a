// Package errorlog keeps an optional JSON lines record of failed tool calls,
// separate from the main log, so failures can be reviewed after the fact.
package errorlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// FileName is the name of the log file inside the log directory.
	FileName = "tool-errors.log"
	// DefaultRetentionDays is how long entries are kept before rotation drops them.
	DefaultRetentionDays = 60
)

// Entry is one line of the tool error log.
type Entry struct {
	Timestamp string         `json:"timestamp"`
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Outcome   string         `json:"outcome"`
	Error     string         `json:"error"`
	Transport string         `json:"transport,omitempty"`
}

// Logger appends Entry records to a file. A disabled Logger, including the
// zero value and a nil pointer, discards everything.
type Logger struct {
	enabled   bool
	retention int
	filePath  string
	logger    *logrus.Logger

	mu      sync.Mutex
	logFile *os.File
	rotated chan struct{}
}

// Options configures New.
type Options struct {
	Enabled       bool
	Dir           string
	RetentionDays int
}

// Disabled returns a Logger that discards everything.
func Disabled() *Logger {
	return &Logger{}
}

// New opens the error log in opts.Dir. Old entries are rotated out in the
// background so startup is not delayed.
func New(logger *logrus.Logger, opts Options) (*Logger, error) {
	if !opts.Enabled {
		return Disabled(), nil
	}

	if opts.Dir == "" {
		return nil, fmt.Errorf("tool error log directory is not set")
	}
	if err := os.MkdirAll(opts.Dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	retention := opts.RetentionDays
	if retention <= 0 {
		retention = DefaultRetentionDays
	}

	l := &Logger{
		enabled:   true,
		retention: retention,
		filePath:  filepath.Join(opts.Dir, FileName),
		logger:    logger,
		rotated:   make(chan struct{}),
	}
	if err := l.reopenLocked(); err != nil {
		return nil, err
	}

	go func() {
		defer close(l.rotated)
		if err := l.Rotate(); err != nil && logger != nil {
			logger.WithError(err).Warn("Failed to rotate old tool error logs")
		}
	}()

	if logger != nil {
		logger.Infof("Tool error logging enabled: %s", l.filePath)
	}
	return l, nil
}

// Enabled reports whether entries are written.
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}

// Path returns the log file path, empty when disabled.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.filePath
}

// Record appends one failed call.
func (l *Logger) Record(toolName string, args map[string]any, outcome string, err error, transport string) {
	if !l.Enabled() || err == nil {
		return
	}

	entry := Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		ToolName:  toolName,
		Arguments: args,
		Outcome:   outcome,
		Error:     err.Error(),
		Transport: transport,
	}
	data, marshalErr := json.Marshal(entry)
	if marshalErr != nil {
		l.warn(marshalErr, "Failed to marshal tool error log entry")
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile == nil {
		return
	}
	if _, writeErr := l.logFile.Write(append(data, '\n')); writeErr != nil {
		l.warn(writeErr, "Failed to write tool error log entry")
		return
	}
	if syncErr := l.logFile.Sync(); syncErr != nil {
		l.warn(syncErr, "Failed to sync tool error log file")
	}
}

// Close waits for startup rotation and closes the underlying file.
func (l *Logger) Close() error {
	if !l.Enabled() {
		return nil
	}
	if l.rotated != nil {
		<-l.rotated
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile == nil {
		return nil
	}
	err := l.logFile.Close()
	l.logFile = nil
	return err
}

// Rotate drops entries older than the retention period. Malformed lines are
// kept. The file is replaced atomically and reopened for appending.
func (l *Logger) Rotate() error {
	if !l.Enabled() {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile != nil {
		if err := l.logFile.Close(); err != nil {
			return fmt.Errorf("failed to close log file for rotation: %w", err)
		}
		l.logFile = nil
	}

	file, err := os.Open(l.filePath)
	if err != nil {
		return l.reopenLocked()
	}

	cutoff := time.Now().AddDate(0, 0, -l.retention)
	var kept []string

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			kept = append(kept, line)
			continue
		}
		ts, err := time.Parse(time.RFC3339, entry.Timestamp)
		if err != nil || ts.After(cutoff) {
			kept = append(kept, line)
		}
	}
	scanErr := scanner.Err()
	_ = file.Close()

	if scanErr != nil {
		_ = l.reopenLocked()
		return fmt.Errorf("error reading log file during rotation: %w", scanErr)
	}

	var content string
	if len(kept) > 0 {
		content = strings.Join(kept, "\n") + "\n"
	}

	tmpPath := l.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(content), 0600); err != nil {
		_ = l.reopenLocked()
		return fmt.Errorf("failed to write temporary rotated log file: %w", err)
	}
	if err := os.Rename(tmpPath, l.filePath); err != nil {
		_ = os.Remove(tmpPath)
		_ = l.reopenLocked()
		return fmt.Errorf("failed to rename temporary log file during rotation: %w", err)
	}

	return l.reopenLocked()
}

// reopenLocked opens the log file for appending. Caller holds l.mu or owns l.
func (l *Logger) reopenLocked() error {
	f, err := os.OpenFile(l.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open tool error log file: %w", err)
	}
	l.logFile = f
	return nil
}

func (l *Logger) warn(err error, msg string) {
	if l.logger != nil {
		l.logger.WithError(err).Warn(msg)
	}
}
