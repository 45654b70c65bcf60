// Package config defines the service configuration structure.
package config

import (
	"net"
	"strconv"
	"time"
)

// Service identifies which binary a configuration belongs to.
type Service string

// Services shipped by this repository.
const (
	ServiceCheckin Service = "checkin-listener"
	ServiceSSHKey  Service = "sshkey-server"
)

// Config is the root configuration shared by both services. Each service
// reads the sections it needs; unused sections are ignored.
type Config struct {
	Server  ServerSection  `koanf:"server"`
	Checkin CheckinSection `koanf:"checkin"`
	SSHKey  SSHKeySection  `koanf:"sshkey"`
	Metrics MetricsSection `koanf:"metrics"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures the TLS listener.
type ServerSection struct {
	// Port is bound on all interfaces.
	Port int `koanf:"port"`

	// Cert and Key are PEM files for the server certificate.
	Cert string `koanf:"cert"`
	Key  string `koanf:"key"`

	// WatchCert reloads Cert/Key when they change on disk.
	WatchCert bool `koanf:"watch_cert"`

	// ReadHeaderTimeout also bounds the TLS handshake.
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`

	// MaxConns caps concurrent connections. 0 means unlimited.
	MaxConns int `koanf:"max_conns"`

	// RateLimit is requests per second per client IP. 0 disables.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`
}

// Addr returns the listen address for Port on all interfaces.
func (s ServerSection) Addr() string {
	return net.JoinHostPort("", strconv.Itoa(s.Port))
}

// CheckinSection configures the check-in listener.
type CheckinSection struct {
	// LogFile receives one line per accepted check-in.
	LogFile string `koanf:"log_file"`

	// MaxBodyBytes rejects larger check-ins with 413.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// SSHKeySection configures the key server.
type SSHKeySection struct {
	// KeyFile is the public key served at /ssh_key.
	KeyFile string `koanf:"key_file"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	// Addr is a plain-HTTP listen address. Empty disables metrics.
	Addr string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
