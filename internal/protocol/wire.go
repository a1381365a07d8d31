package protocol

import "encoding/binary"

// WordLen is the width of every fixed-width wire value. The byte order
// is little-endian throughout, matching Cap'n Proto serialization.
const WordLen = 8

// Opaque wire markers. Their values are never interpreted by either
// peer; presence alone carries the meaning. Kept as named constants so
// the wire traffic is recognizable in captures.
const (
	// HandshakeSyn is sent by the server once per exchange to signal
	// that it is ready to serve a request.
	HandshakeSyn uint64 = 0x53594e00_53594e00

	// RequestSignal is sent by the client to trigger response
	// production. It doubles as the RTT timing boundary.
	RequestSignal uint64 = 0

	// SegmentWordMultiple is the alignment unit every segment length
	// must satisfy before structured decoding (the Cap'n Proto word).
	SegmentWordMultiple = 8
)

// PutWord encodes v into the first WordLen bytes of b.
func PutWord(b []byte, v uint64) {
	binary.LittleEndian.PutUint64(b, v)
}

// Word decodes one fixed-width value from the first WordLen bytes of b.
func Word(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}

// AppendWord appends the wire encoding of v to b.
func AppendWord(b []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(b, v)
}

// Limits constrains decode-side memory use for one exchange.
type Limits struct {
	MaxSegments     uint64
	MaxSegmentBytes uint64
}

func DefaultLimits() Limits {
	return Limits{
		MaxSegments:     512,
		MaxSegmentBytes: 256 * 1024 * 1024,
	}
}
