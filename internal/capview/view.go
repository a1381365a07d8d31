package capview

import (
	"errors"
	"fmt"
	"math"

	"capnproto.org/go/capnp/v3"

	"github.com/danmuck/ipcbench/internal/protocol"
)

// ErrUnalignedSegment is reported when a segment's byte length is not
// a multiple of the decoder's word size.
var ErrUnalignedSegment = errors.New("capview: segment not word-aligned")

type options struct {
	noReadLimits bool
}

// Option configures view building.
type Option func(*options)

// WithoutReadLimits disables the decoder's default traversal-size and
// depth safety limits. The reassembler has already done its own size
// accounting, so a trusted benchmark payload can skip them.
func WithoutReadLimits() Option {
	return func(o *options) { o.noReadLimits = true }
}

// View is a structured, zero-copy view over completed segments. It
// owns the segment slice headers but not fresh copies of the bytes.
type View struct {
	ranges [][]byte
	msg    *capnp.Message
}

// Build validates segment boundaries and constructs the decoder over
// them. Ownership of segs transfers in; no payload bytes are copied.
func Build(segs [][]byte, opts ...Option) (*View, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	for i, seg := range segs {
		if len(seg)%protocol.SegmentWordMultiple != 0 {
			return nil, fmt.Errorf("%w: segment %d length %d", ErrUnalignedSegment, i, len(seg))
		}
	}

	msg := &capnp.Message{Arena: capnp.MultiSegment(segs)}
	if o.noReadLimits {
		msg.TraverseLimit = math.MaxUint64
		msg.DepthLimit = math.MaxUint
	}
	return &View{ranges: segs, msg: msg}, nil
}

// Ranges exposes the per-segment byte ranges backing the view, in
// original order. The slices alias the reassembled buffers.
func (v *View) Ranges() [][]byte {
	return v.ranges
}

// Message exposes the underlying decoder instance.
func (v *View) Message() *capnp.Message {
	return v.msg
}

// CacheResponse returns the typed root of the decoded payload.
func (v *View) CacheResponse() (GetCacheRsp, error) {
	return ReadRootGetCacheRsp(v.msg)
}
