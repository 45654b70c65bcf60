package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/provisiond-go/internal/infra/confloader"
	"github.com/yndnr/provisiond-go/internal/server/config"
)

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"port":           "server.port",
	"cert":           "server.cert",
	"key":            "server.key",
	"watch-cert":     "server.watch_cert",
	"rate-limit":     "server.rate_limit",
	"max-conns":      "server.max_conns",
	"log-level":      "log.level",
	"log-format":     "log.format",
	"metrics-addr":   "metrics.addr",
	"log-file":       "checkin.log_file",
	"max-body-bytes": "checkin.max_body_bytes",
	"key-file":       "sshkey.key_file",
}

// flagOverrides returns the flags given on the command line as config keys.
// Flags left at their default do not override the file or environment.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := make(map[string]any)
	for name, key := range flagKeys {
		if c.IsSet(name) {
			overrides[key] = c.Value(name)
		}
	}
	return overrides
}

// loaderOptions returns the sources for def in priority order.
func loaderOptions(c *cli.Context, def serviceDef) []confloader.Option {
	return []confloader.Option{
		confloader.WithConfigFile(c.String("config")),
		confloader.WithEnvPrefix(def.envPrefix),
		confloader.WithOverrides(flagOverrides(c)),
	}
}

// loadConfig builds and validates the configuration.
func loadConfig(svc config.Service, opts []confloader.Option) (*config.Config, error) {
	cfg := config.Default()
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Verify(cfg, svc); err != nil {
		return nil, err
	}
	return cfg, nil
}
