package handler

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/provisiond-go/internal/telemetry/metric"
)

// memSink records appends in memory.
type memSink struct {
	mu      sync.Mutex
	records []string
	times   []time.Time
	err     error
}

func (s *memSink) Append(at time.Time, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, message)
	s.times = append(s.times, at)
	return nil
}

func (s *memSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// staticKeys returns fixed data or an error.
type staticKeys struct {
	data []byte
	err  error
}

func (k staticKeys) Read() ([]byte, error) {
	return k.data, k.err
}

func newPost(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Length", strconv.Itoa(len(body)))
	return req
}

func readBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	data, err := io.ReadAll(rec.Result().Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

var errDisk = errors.New("disk full")

func newTestMetrics() *metric.Registry {
	return metric.NewRegistry("test")
}
