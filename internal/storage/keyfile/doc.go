// Package keyfile reads the public key served by the SSH key server.
//
// The file is read on every request: open, read fully, close. A missing
// file is reported as ErrNotFound so callers can map it to a distinct
// status instead of treating it as an internal failure.
package keyfile
