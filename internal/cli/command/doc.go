// Package command provides the CLI definitions for checkin-listener and
// sshkey-server.
//
// Both binaries share one set of flags and one serve loop. They differ
// only in the handler they mount and a few service-specific flags.
// Configuration is layered with koanf: defaults, then the YAML file named
// by --config, then CHECKIN_* or SSHKEY_* environment variables, then flags
// given on the command line.
package command
