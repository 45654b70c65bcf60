// Package httpserver provides the TLS transport shared by the check-in
// listener and the SSH key server.
//
// A Server binds its TCP socket in Listen, so bind errors reach the caller
// before anything is served. Accepted connections pass through an optional
// connection cap and a server-side TLS handshake, then net/http serves one
// goroutine per connection. A failed handshake drops that connection only;
// it is logged at WARN and counted.
//
// Middleware:
//
//   - RequestID: X-Request-ID (ULID) and a request-scoped logger
//   - Recover: panics become 500
//   - Audit: access log and request metrics
//   - RateLimit: optional per-client token bucket (429)
//
// NewStack assembles them in the order both services use.
package httpserver
