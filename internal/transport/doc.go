// Package transport owns the byte-channel boundary for an exchange.
//
// Ownership boundary:
// - Channel contract (non-blocking receive, send, readiness waits)
// - Unix-domain socket channel implementation
// - the cooperative run loop and the readiness adapter onto it
package transport
