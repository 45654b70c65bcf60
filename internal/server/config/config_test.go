// Package config defines the service configuration structure.
package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Server.Cert = "/etc/provisiond/server.crt"
	cfg.Server.Key = "/etc/provisiond/server.key"
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Server.Addr() != ":8080" {
		t.Errorf("Server.Addr() = %q, want %q", cfg.Server.Addr(), ":8080")
	}
	if cfg.Server.ReadHeaderTimeout != DefaultReadHeaderTimeout {
		t.Errorf("ReadHeaderTimeout = %v, want %v", cfg.Server.ReadHeaderTimeout, DefaultReadHeaderTimeout)
	}
	if cfg.Server.RateLimit != 0 {
		t.Errorf("RateLimit = %v, want disabled", cfg.Server.RateLimit)
	}
	if cfg.Checkin.LogFile != DefaultCheckinLogFile {
		t.Errorf("Checkin.LogFile = %q, want %q", cfg.Checkin.LogFile, DefaultCheckinLogFile)
	}
	if cfg.Checkin.MaxBodyBytes != DefaultMaxBodyBytes {
		t.Errorf("Checkin.MaxBodyBytes = %d, want %d", cfg.Checkin.MaxBodyBytes, DefaultMaxBodyBytes)
	}
	if cfg.SSHKey.KeyFile != DefaultSSHKeyFile {
		t.Errorf("SSHKey.KeyFile = %q, want %q", cfg.SSHKey.KeyFile, DefaultSSHKeyFile)
	}
	if cfg.Metrics.Addr != "" {
		t.Errorf("Metrics.Addr = %q, want disabled", cfg.Metrics.Addr)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, DefaultLogFormat)
	}
}

func TestVerify_ValidConfig(t *testing.T) {
	for _, svc := range []Service{ServiceCheckin, ServiceSSHKey} {
		if err := Verify(validConfig(), svc); err != nil {
			t.Errorf("Verify(%s) error = %v", svc, err)
		}
	}
}

func TestVerify_MissingTLSMaterial(t *testing.T) {
	cfg := Default()

	err := Verify(cfg, ServiceCheckin)
	if !errors.Is(err, ErrCertRequired) {
		t.Errorf("Verify() error = %v, want ErrCertRequired", err)
	}
	if !errors.Is(err, ErrKeyRequired) {
		t.Errorf("Verify() error = %v, want ErrKeyRequired", err)
	}
}

func TestVerify_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		svc     Service
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "port zero",
			svc:     ServiceCheckin,
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "port too large",
			svc:     ServiceSSHKey,
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "zero read timeout",
			svc:     ServiceCheckin,
			mutate:  func(c *Config) { c.Server.ReadTimeout = 0 },
			wantErr: "server.read_timeout",
		},
		{
			name:    "negative max conns",
			svc:     ServiceCheckin,
			mutate:  func(c *Config) { c.Server.MaxConns = -1 },
			wantErr: "server.max_conns",
		},
		{
			name: "rate limit without burst",
			svc:  ServiceSSHKey,
			mutate: func(c *Config) {
				c.Server.RateLimit = 5
				c.Server.RateBurst = 0
			},
			wantErr: "server.rate_burst",
		},
		{
			name:    "empty check-in log file",
			svc:     ServiceCheckin,
			mutate:  func(c *Config) { c.Checkin.LogFile = "" },
			wantErr: "checkin.log_file",
		},
		{
			name:    "zero body cap",
			svc:     ServiceCheckin,
			mutate:  func(c *Config) { c.Checkin.MaxBodyBytes = 0 },
			wantErr: "checkin.max_body_bytes",
		},
		{
			name:    "empty key file",
			svc:     ServiceSSHKey,
			mutate:  func(c *Config) { c.SSHKey.KeyFile = "" },
			wantErr: "sshkey.key_file",
		},
		{
			name:    "bad log level",
			svc:     ServiceSSHKey,
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "log.level",
		},
		{
			name:    "bad log format",
			svc:     ServiceCheckin,
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "log.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Verify(cfg, tt.svc)
			if err == nil {
				t.Fatal("Verify() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Verify() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestVerify_ServiceSpecificSections(t *testing.T) {
	cfg := validConfig()
	cfg.SSHKey.KeyFile = ""
	if err := Verify(cfg, ServiceCheckin); err != nil {
		t.Errorf("check-in listener should ignore sshkey section, got %v", err)
	}

	cfg = validConfig()
	cfg.Checkin.MaxBodyBytes = 0
	if err := Verify(cfg, ServiceSSHKey); err != nil {
		t.Errorf("key server should ignore checkin section, got %v", err)
	}
}

func TestVerify_UnknownService(t *testing.T) {
	if err := Verify(validConfig(), Service("nope")); err == nil {
		t.Error("Verify() expected error for unknown service")
	}
}

func TestServerSection_Addr(t *testing.T) {
	s := ServerSection{Port: 8443, ReadTimeout: time.Second}
	if got := s.Addr(); got != ":8443" {
		t.Errorf("Addr() = %q, want %q", got, ":8443")
	}
}
