// Package config defines the service configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultPort              = 8080
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultReadTimeout       = 30 * time.Second
	DefaultWriteTimeout      = 30 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultShutdownTimeout   = 15 * time.Second
	DefaultRateBurst         = 10

	DefaultCheckinLogFile       = "/var/log/checkin.log"
	DefaultMaxBodyBytes   int64 = 1 << 20 // 1MB

	DefaultSSHKeyFile = "/root/.ssh/id_rsa.pub"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerSection{
			Port:              DefaultPort,
			WatchCert:         true,
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
			ReadTimeout:       DefaultReadTimeout,
			WriteTimeout:      DefaultWriteTimeout,
			IdleTimeout:       DefaultIdleTimeout,
			ShutdownTimeout:   DefaultShutdownTimeout,
			RateBurst:         DefaultRateBurst,
		},
		Checkin: CheckinSection{
			LogFile:      DefaultCheckinLogFile,
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
		SSHKey: SSHKeySection{
			KeyFile: DefaultSSHKeyFile,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
