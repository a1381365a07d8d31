// Package protocol owns the wire contract for one request/response
// exchange on the raw byte channel.
//
// Ownership boundary:
// - fixed-width word codec (all wire values are uint64, little-endian)
// - handshake and request-signal constants
// - decode-side limits
package protocol
