// Package config provides service configuration for the provisioning
// services.
//
//   - spec.go: Config struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation per service
//
// Configuration is loaded via internal/infra/confloader and supports
// multiple sources: files, environment variables, and flags.
package config
