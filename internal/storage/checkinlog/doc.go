// Package checkinlog persists accepted check-ins.
//
// A FileSink appends one line per check-in to a log file:
//
//	2024-05-01T12:00:00.000Z - Check-in received: host-17 done
//
// The sink is constructed explicitly and handed to the check-in handler.
// Appends are serialised, so concurrent requests never interleave lines.
package checkinlog
