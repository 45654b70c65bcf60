package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/yndnr/provisiond-go/internal/telemetry/logger"
)

// CheckinSink stores accepted check-ins.
type CheckinSink interface {
	Append(at time.Time, message string) error
}

// KeySource returns the bytes of the served key file.
type KeySource interface {
	Read() ([]byte, error)
}

const (
	contentTypeText      = "text/plain; charset=utf-8"
	contentTypeTextPlain = "text/plain"
	contentTypeJSON      = "application/json"
)

// writeText writes body with an explicit length.
func writeText(w http.ResponseWriter, r *http.Request, status int, contentType string, body []byte) {
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(len(body)))
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(body); err != nil {
		logger.L(r.Context()).Debug("write response failed", "error", err)
	}
}

// writeJSON writes v as a JSON document.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.L(r.Context()).Error("failed to encode response", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeText(w, r, status, contentTypeJSON, append(data, '\n'))
}

// writeEmpty writes a status with no body.
func writeEmpty(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Length", "0")
	w.WriteHeader(status)
}
