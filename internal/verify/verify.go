// Package verify checks a decoded response payload against its
// embedded size and hash fields. Verification is fail-fast: the first
// mismatching part aborts without examining later parts.
package verify

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

var (
	// ErrNoParts is reported for a response with an empty parts list;
	// no valid response has zero parts.
	ErrNoParts = errors.New("verify: response has no parts")
	// ErrContentMismatch is reported when a part's bytes disagree with
	// its declared size or hash.
	ErrContentMismatch = errors.New("verify: content mismatch")
)

// Part is one decoded unit of the response payload. The concrete type
// comes from the structured decoder; the interface keeps verification
// testable against fakes.
type Part interface {
	Data() ([]byte, error)
	DeclaredSize() uint64
	DeclaredHash() uint64
}

// ContentHash is the fixed content hash both peers agree on: BLAKE2b
// with an 8-byte digest, read little-endian.
func ContentHash(b []byte) uint64 {
	h, err := blake2b.New(8, nil)
	if err != nil {
		// Only reachable with an invalid digest size or key.
		panic(err)
	}
	h.Write(b)
	var sum [8]byte
	h.Sum(sum[:0])
	return binary.LittleEndian.Uint64(sum[:])
}

// Response walks parts in order and fails on the first inconsistency.
func Response(parts []Part) error {
	if len(parts) == 0 {
		return ErrNoParts
	}
	for i, part := range parts {
		data, err := part.Data()
		if err != nil {
			return fmt.Errorf("verify: part %d data: %w", i, err)
		}
		if want := part.DeclaredSize(); want != uint64(len(data)) {
			return fmt.Errorf("%w: part %d size: declared %d, got %d",
				ErrContentMismatch, i, want, len(data))
		}
		if want, got := part.DeclaredHash(), ContentHash(data); want != got {
			return fmt.Errorf("%w: part %d hash: declared %#x, got %#x",
				ErrContentMismatch, i, want, got)
		}
	}
	return nil
}
