package httpserver

import (
	"net/http"

	"github.com/yndnr/provisiond-go/internal/telemetry/logger"
	"github.com/yndnr/provisiond-go/internal/telemetry/metric"
)

// StackConfig selects the middleware wrapped around a service handler.
type StackConfig struct {
	Logger  logger.Logger
	Metrics *metric.Registry

	// RateLimit is requests per second per client IP; 0 disables it.
	RateLimit float64
	RateBurst int
}

// NewStack wraps h with the standard middleware.
//
// Order: RequestID -> Audit -> Recover -> RateLimit -> h. Recover sits
// inside Audit so a recovered panic is still logged and counted as a 500.
func NewStack(h http.Handler, cfg StackConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	middlewares := []Middleware{
		RequestID(cfg.Logger),
		Audit(cfg.Metrics),
		Recover(),
	}
	if cfg.RateLimit > 0 {
		middlewares = append(middlewares, RateLimit(cfg.RateLimit, cfg.RateBurst, cfg.Metrics))
	}

	return Chain(h, middlewares...)
}
