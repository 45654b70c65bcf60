package handler

import (
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/yndnr/provisiond-go/internal/telemetry/logger"
	"github.com/yndnr/provisiond-go/internal/telemetry/metric"
)

// CheckinAck is the response body for an accepted check-in.
const CheckinAck = "Check-in received"

// checkinPrefix starts every check-in log message.
const checkinPrefix = "Check-in received: "

// DefaultMaxBodyBytes is used when NewCheckin gets a non-positive cap.
const DefaultMaxBodyBytes = 1 << 20

// Rejection reasons, used as metric labels.
const (
	reasonMethod    = "method"
	reasonNoLength  = "no_length"
	reasonTooLarge  = "too_large"
	reasonShortBody = "short_body"
	reasonEncoding  = "encoding"
	reasonSink      = "sink"
)

// Checkin accepts POSTed check-ins at any path and appends each one to a
// sink.
type Checkin struct {
	sink    CheckinSink
	maxBody int64
	metrics *metric.Registry
	now     func() time.Time
}

// CheckinOption configures a Checkin handler.
type CheckinOption func(*Checkin)

// WithClock replaces time.Now for the timestamp of each record.
func WithClock(now func() time.Time) CheckinOption {
	return func(h *Checkin) {
		h.now = now
	}
}

// NewCheckin creates a check-in handler writing to sink. Bodies larger than
// maxBody bytes are refused. m may be nil.
func NewCheckin(sink CheckinSink, maxBody int64, m *metric.Registry, opts ...CheckinOption) *Checkin {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	h := &Checkin{
		sink:    sink,
		maxBody: maxBody,
		metrics: m,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *Checkin) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.L(r.Context())

	if r.Method != http.MethodPost {
		h.reject(reasonMethod)
		w.Header().Set("Allow", http.MethodPost)
		writeText(w, r, http.StatusMethodNotAllowed, contentTypeText, []byte("method not allowed\n"))
		return
	}

	// Chunked bodies arrive with ContentLength -1 and the header removed.
	if r.Header.Get("Content-Length") == "" || r.ContentLength < 0 {
		h.reject(reasonNoLength)
		writeText(w, r, http.StatusBadRequest, contentTypeText, []byte("Content-Length required\n"))
		return
	}

	if r.ContentLength > h.maxBody {
		h.reject(reasonTooLarge)
		log.Warn("check-in body too large", "content_length", r.ContentLength, "limit", h.maxBody)
		writeText(w, r, http.StatusRequestEntityTooLarge, contentTypeText, []byte("request body too large\n"))
		return
	}

	body := make([]byte, r.ContentLength)
	if _, err := io.ReadFull(r.Body, body); err != nil {
		h.reject(reasonShortBody)
		log.Warn("check-in body incomplete", "content_length", r.ContentLength, "error", err)
		writeText(w, r, http.StatusBadRequest, contentTypeText, []byte("incomplete request body\n"))
		return
	}

	if !utf8.Valid(body) {
		h.reject(reasonEncoding)
		writeText(w, r, http.StatusBadRequest, contentTypeText, []byte("request body is not valid UTF-8\n"))
		return
	}

	if err := h.sink.Append(h.now(), checkinPrefix+string(body)); err != nil {
		h.reject(reasonSink)
		log.Error("check-in not recorded", "error", err)
		writeText(w, r, http.StatusInternalServerError, contentTypeText, []byte("internal server error\n"))
		return
	}

	if h.metrics != nil {
		h.metrics.CheckinsAccepted.Inc()
		h.metrics.CheckinBytes.Observe(float64(len(body)))
	}
	log.Debug("check-in recorded", "bytes", len(body))

	writeText(w, r, http.StatusOK, contentTypeText, []byte(CheckinAck))
}

func (h *Checkin) reject(reason string) {
	if h.metrics != nil {
		h.metrics.CheckinsRejected.WithLabelValues(reason).Inc()
	}
}
