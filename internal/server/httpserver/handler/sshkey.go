package handler

import (
	"errors"
	"net/http"

	"github.com/yndnr/provisiond-go/internal/storage/keyfile"
	"github.com/yndnr/provisiond-go/internal/telemetry/logger"
	"github.com/yndnr/provisiond-go/internal/telemetry/metric"
)

// SSHKeyPath is the only path the key server answers.
const SSHKeyPath = "/ssh_key"

// Key request results, used as metric labels.
const (
	resultServed   = "served"
	resultNotFound = "not_found"
	resultError    = "error"
)

// SSHKey serves the key file at GET /ssh_key and 404 for everything else.
type SSHKey struct {
	keys    KeySource
	metrics *metric.Registry
}

// NewSSHKey creates a key handler reading from keys on every request.
// m may be nil.
func NewSSHKey(keys KeySource, m *metric.Registry) *SSHKey {
	return &SSHKey{keys: keys, metrics: m}
}

// ServeHTTP implements http.Handler. The path is matched in its escaped
// form, so /ssh%5Fkey is not an alias. The query string is ignored.
func (h *SSHKey) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || r.URL.EscapedPath() != SSHKeyPath {
		writeEmpty(w, http.StatusNotFound)
		return
	}

	data, err := h.keys.Read()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.observe(resultServed)
	writeText(w, r, http.StatusOK, contentTypeTextPlain, data)
}

// fail maps a key file error to a response. A missing file is 503 since it
// is expected to appear once provisioning has placed it.
func (h *SSHKey) fail(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.L(r.Context())

	if errors.Is(err, keyfile.ErrNotFound) {
		h.observe(resultNotFound)
		log.Warn("ssh key file missing", "error", err)
		writeText(w, r, http.StatusServiceUnavailable, contentTypeText, []byte("ssh key unavailable\n"))
		return
	}

	h.observe(resultError)
	log.Error("ssh key file unreadable", "error", err)
	writeText(w, r, http.StatusInternalServerError, contentTypeText, []byte("internal server error\n"))
}

func (h *SSHKey) observe(result string) {
	if h.metrics != nil {
		h.metrics.KeyRequests.WithLabelValues(result).Inc()
	}
}
