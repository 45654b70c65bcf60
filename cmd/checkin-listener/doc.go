// Package main provides the entry point for checkin-listener.
//
// checkin-listener accepts HTTPS POST check-ins from hosts being
// provisioned and appends each body to a log file, one line per check-in.
//
// Usage:
//
//	checkin-listener --cert server.crt --key server.key [--port 8080]
//	checkin-listener --config /etc/provisiond/checkin.yaml
package main
