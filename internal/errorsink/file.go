// Package errorsink is the append-only diagnostics log for terminal fetch failures.
package errorsink

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TimestampLayout formats the leading timestamp of each entry.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

type localClock struct{}

func (localClock) Now() time.Time { return time.Now() }

// FileSink appends "[timestamp] message" lines to a file. Appends are serialized
// so concurrent pipelines never interleave entries.
type FileSink struct {
	path   string
	clock  Clock
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFileSink returns a sink appending to path. The file is created lazily.
func NewFileSink(path string, clock Clock, logger *zap.Logger) *FileSink {
	if clock == nil {
		clock = localClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSink{path: path, clock: clock, logger: logger}
}

// Record appends one entry. Write failures are logged, never returned.
func (s *FileSink) Record(message string) {
	line := fmt.Sprintf("[%s] %s\n", s.clock.Now().Format(TimestampLayout), message)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.appendLine(line); err != nil {
		s.logger.Warn("Failed to write error log entry",
			zap.String("path", s.path),
			zap.String("entry", message),
			zap.Error(err),
		)
	}
}

func (s *FileSink) appendLine(line string) (err error) {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create error log dir %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open error log %s: %w", s.path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close error log %s: %w", s.path, cerr)
		}
	}()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append error log %s: %w", s.path, err)
	}
	return nil
}
