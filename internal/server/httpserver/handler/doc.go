// Package handler provides the HTTP request handlers for the provisioning
// services.
//
//   - checkin.go: POST check-ins appended to the check-in log
//   - sshkey.go: GET /ssh_key serving the public key file
//   - health.go: liveness and readiness on the operations listener
//
// Handlers take their collaborators (sink, key source, metrics) as
// constructor arguments and log through the request-scoped logger.
package handler
