// Package config defines the service configuration structure.
package config

import (
	"errors"
	"fmt"

	"github.com/yndnr/provisiond-go/internal/telemetry/logger"
)

// Validation errors callers may want to match.
var (
	ErrCertRequired = errors.New("config: server.cert (--cert) is required")
	ErrKeyRequired  = errors.New("config: server.key (--key) is required")
)

// Verify validates the configuration for the given service.
// All problems are reported together.
func Verify(cfg *Config, svc Service) error {
	errs := verifyServer(&cfg.Server)
	errs = append(errs, verifyLog(&cfg.Log)...)

	switch svc {
	case ServiceCheckin:
		errs = append(errs, verifyCheckin(&cfg.Checkin)...)
	case ServiceSSHKey:
		if cfg.SSHKey.KeyFile == "" {
			errs = append(errs, errors.New("config: sshkey.key_file is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown service %q", svc))
	}

	return errors.Join(errs...)
}

func verifyServer(s *ServerSection) []error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: server.port %d out of range 1-65535", s.Port))
	}
	if s.Cert == "" {
		errs = append(errs, ErrCertRequired)
	}
	if s.Key == "" {
		errs = append(errs, ErrKeyRequired)
	}

	timeouts := []struct {
		name string
		val  int64
	}{
		{"server.read_header_timeout", int64(s.ReadHeaderTimeout)},
		{"server.read_timeout", int64(s.ReadTimeout)},
		{"server.write_timeout", int64(s.WriteTimeout)},
		{"server.idle_timeout", int64(s.IdleTimeout)},
		{"server.shutdown_timeout", int64(s.ShutdownTimeout)},
	}
	for _, to := range timeouts {
		if to.val <= 0 {
			errs = append(errs, fmt.Errorf("config: %s must be positive", to.name))
		}
	}

	if s.MaxConns < 0 {
		errs = append(errs, errors.New("config: server.max_conns must not be negative"))
	}
	if s.RateLimit < 0 {
		errs = append(errs, errors.New("config: server.rate_limit must not be negative"))
	}
	if s.RateLimit > 0 && s.RateBurst < 1 {
		errs = append(errs, errors.New("config: server.rate_burst must be at least 1 when rate_limit is set"))
	}

	return errs
}

func verifyCheckin(c *CheckinSection) []error {
	var errs []error
	if c.LogFile == "" {
		errs = append(errs, errors.New("config: checkin.log_file is required"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("config: checkin.max_body_bytes must be positive"))
	}
	return errs
}

func verifyLog(l *LogSection) []error {
	var errs []error
	if !logger.ValidLevel(l.Level) {
		errs = append(errs, fmt.Errorf("config: log.level %q is not one of debug, info, warn, error", l.Level))
	}
	if !logger.ValidFormat(l.Format) {
		errs = append(errs, fmt.Errorf("config: log.format %q is not one of json, text", l.Format))
	}
	return errs
}
