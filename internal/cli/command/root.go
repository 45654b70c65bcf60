package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/provisiond-go/internal/infra/buildinfo"
	"github.com/yndnr/provisiond-go/internal/server/config"
)

// serviceDef describes one binary.
type serviceDef struct {
	service   config.Service
	usage     string
	title     string
	envPrefix string
	flags     []cli.Flag
	build     buildFunc
}

var checkinDef = serviceDef{
	service:   config.ServiceCheckin,
	usage:     "Accept provisioning check-ins over HTTPS and append them to a log file",
	title:     "check-in listener",
	envPrefix: "CHECKIN_",
	flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "File that receives one line per check-in",
			Value: config.DefaultCheckinLogFile,
		},
		&cli.Int64Flag{
			Name:  "max-body-bytes",
			Usage: "Largest accepted check-in body in bytes",
			Value: config.DefaultMaxBodyBytes,
		},
	},
	build: buildCheckin,
}

var sshKeyDef = serviceDef{
	service:   config.ServiceSSHKey,
	usage:     "Serve a public SSH key over HTTPS at GET /ssh_key",
	title:     "SSH key server",
	envPrefix: "SSHKEY_",
	flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "key-file",
			Usage: "Public key file served at /ssh_key",
			Value: config.DefaultSSHKeyFile,
		},
	},
	build: buildSSHKey,
}

// CheckinApp creates the checkin-listener application.
func CheckinApp() *cli.App {
	return newApp(checkinDef)
}

// SSHKeyApp creates the sshkey-server application.
func SSHKeyApp() *cli.App {
	return newApp(sshKeyDef)
}

func newApp(def serviceDef) *cli.App {
	return &cli.App{
		Name:            string(def.service),
		Usage:           def.usage,
		Version:         buildinfo.Get(string(def.service)).Detail(),
		Flags:           append(globalFlags(), def.flags...),
		HideHelpCommand: true,
		Action: func(c *cli.Context) error {
			return run(c, def)
		},
	}
}

// globalFlags returns the flags shared by both services.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to YAML configuration file",
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "Port to listen on (all interfaces)",
			Value:   config.DefaultPort,
		},
		&cli.StringFlag{
			Name:  "cert",
			Usage: "TLS certificate file (PEM)",
		},
		&cli.StringFlag{
			Name:  "key",
			Usage: "TLS private key file (PEM)",
		},
		&cli.BoolFlag{
			Name:  "watch-cert",
			Usage: "Reload the certificate when the files change",
			Value: true,
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
			Value: config.DefaultLogLevel,
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: json, text",
			Value: config.DefaultLogFormat,
		},
		&cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "Address for /metrics, /health and /ready over plain HTTP (empty disables)",
		},
		&cli.Float64Flag{
			Name:  "rate-limit",
			Usage: "Requests per second per client IP (0 disables)",
		},
		&cli.IntFlag{
			Name:  "max-conns",
			Usage: "Maximum concurrent connections (0 is unlimited)",
		},
	}
}
