package checkinlog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrClosed is returned by Append after Close.
var ErrClosed = errors.New("checkinlog: sink closed")

// File permissions.
const (
	DefaultFilePerm = 0640
	DefaultDirPerm  = 0750
)

// TimestampFormat is the ISO-8601 layout (millisecond precision, UTC) used
// at the start of every line.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

var lineEscaper = strings.NewReplacer(`\`, `\\`, "\r", `\r`, "\n", `\n`)

// FormatLine renders one log line, including the trailing newline.
// Backslash, CR and LF inside message are escaped so a record never spans
// lines and the message can be recovered exactly.
func FormatLine(at time.Time, message string) string {
	return at.UTC().Format(TimestampFormat) + " - " + lineEscaper.Replace(message) + "\n"
}

// FileSink appends check-in lines to a file.
type FileSink struct {
	path string

	mu     sync.Mutex
	file   *os.File
	closed bool
}

// Open opens path for appending, creating it and its directory if needed.
func Open(path string) (*FileSink, error) {
	if path == "" {
		return nil, errors.New("checkinlog: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), DefaultDirPerm); err != nil {
		return nil, fmt.Errorf("checkinlog: create dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, DefaultFilePerm)
	if err != nil {
		return nil, fmt.Errorf("checkinlog: open %s: %w", path, err)
	}

	return &FileSink{path: path, file: f}, nil
}

// Path returns the file the sink writes to.
func (s *FileSink) Path() string {
	return s.path
}

// Append writes one line stamped with at.
func (s *FileSink) Append(at time.Time, message string) error {
	line := FormatLine(at, message)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if _, err := s.file.WriteString(line); err != nil {
		return fmt.Errorf("checkinlog: append: %w", err)
	}
	return nil
}

// Close flushes and closes the file. Further appends fail with ErrClosed.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.file.Sync(); err != nil {
		s.file.Close()
		return fmt.Errorf("checkinlog: sync: %w", err)
	}
	return s.file.Close()
}
