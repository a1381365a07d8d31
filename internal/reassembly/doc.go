// Package reassembly owns the receive-side protocol logic for one
// request/response exchange: handshake wait, header/payload framing,
// segment buffer growth, and completion detection.
//
// The state machine runs entirely on a transport.Loop. Each receive is
// first attempted non-blocking; on would-block it registers a single
// continuation with the readiness adapter and suspends. At most one
// receive is pending per exchange and it is resumed exactly once.
package reassembly
