package keyfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

var (
	// ErrNotFound means the key file does not exist.
	ErrNotFound = errors.New("keyfile: not found")

	// ErrTooLarge means the key file exceeds the reader's size limit.
	ErrTooLarge = errors.New("keyfile: file too large")

	// ErrNotRegular means the path names a directory or other non-regular file.
	ErrNotRegular = errors.New("keyfile: not a regular file")
)

// DefaultMaxSize bounds a single read. Public keys are well under 16KiB even
// with long certificate extensions.
const DefaultMaxSize = 64 << 10

// Reader reads a single key file.
type Reader struct {
	path    string
	maxSize int64
}

// Option configures a Reader.
type Option func(*Reader)

// WithMaxSize overrides DefaultMaxSize.
func WithMaxSize(n int64) Option {
	return func(r *Reader) {
		if n > 0 {
			r.maxSize = n
		}
	}
}

// NewReader creates a Reader for path. The file is not touched until Read.
func NewReader(path string, opts ...Option) *Reader {
	r := &Reader{path: path, maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the key file path.
func (r *Reader) Path() string {
	return r.path
}

// Read returns the full contents of the key file.
func (r *Reader) Read() ([]byte, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, r.path)
		}
		return nil, fmt.Errorf("keyfile: open: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("keyfile: stat: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotRegular, r.path)
	}
	if info.Size() > r.maxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, info.Size())
	}

	// The file may grow between Stat and Read.
	data, err := io.ReadAll(io.LimitReader(f, r.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("keyfile: read: %w", err)
	}
	if int64(len(data)) > r.maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, r.maxSize)
	}
	return data, nil
}
