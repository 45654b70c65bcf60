// Package main provides the entry point for sshkey-server.
//
// sshkey-server serves a public SSH key file over HTTPS at GET /ssh_key
// so freshly installed hosts can fetch it. Every other request gets 404.
//
// Usage:
//
//	sshkey-server --cert server.crt --key server.key [--key-file ~/.ssh/id_rsa.pub]
package main
