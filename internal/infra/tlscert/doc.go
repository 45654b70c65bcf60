// Package tlscert owns the server certificate of a provisioning service.
//
// A Watcher loads the certificate/key pair once at construction, so a
// service cannot start listening without valid key material, then keeps it
// current by watching both files with fsnotify. The server's tls.Config reads
// the active pair through GetCertificate on every handshake.
package tlscert
