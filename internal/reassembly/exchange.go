package reassembly

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/ipcbench/internal/protocol"
	"github.com/danmuck/ipcbench/internal/transport"
)

// state tags which wire value the exchange is currently receiving.
type state int

const (
	awaitSyn state = iota
	awaitCount
	awaitSegmentHeader
	awaitSegmentPayload
	finished
)

func (s state) String() string {
	switch s {
	case awaitSyn:
		return "syn handshake"
	case awaitCount:
		return "segment count"
	case awaitSegmentHeader:
		return "segment header"
	case awaitSegmentPayload:
		return "segment payload"
	default:
		return "finished"
	}
}

// Exchange drives one request/response cycle over a channel. It owns
// the channel and the segment buffers for its duration; the completed
// segment list transfers out through Result.
type Exchange struct {
	ch     transport.Channel
	loop   *transport.Loop
	waiter *transport.Waiter
	limits protocol.Limits
	log    zerolog.Logger

	state    state
	word     [protocol.WordLen]byte
	wordFill int
	count    uint64
	segs     []*Segment

	reqSentAt time.Time
	rtt       time.Duration

	err    error
	result [][]byte
	done   chan struct{}
}

// Option configures an Exchange.
type Option func(*Exchange)

func WithLimits(l protocol.Limits) Option {
	return func(x *Exchange) { x.limits = l }
}

func WithLogger(log zerolog.Logger) Option {
	return func(x *Exchange) { x.log = log }
}

func New(ch transport.Channel, loop *transport.Loop, opts ...Option) *Exchange {
	x := &Exchange{
		ch:     ch,
		loop:   loop,
		waiter: transport.NewWaiter(loop),
		limits: protocol.DefaultLimits(),
		log:    zerolog.Nop(),
		state:  awaitSyn,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Start posts the first protocol step to the loop.
func (x *Exchange) Start() {
	x.loop.Post(x.step)
}

// step is the single receive site for the whole protocol. It loops
// while data is immediately available, suspends on would-block by
// registering itself as the continuation, and terminates the exchange
// on any transport error.
func (x *Exchange) step() {
	for x.state != finished {
		n, err := x.ch.TryRecv(x.recvTarget())
		if errors.Is(err, transport.ErrWouldBlock) {
			x.waiter.Await(x.ch, transport.Readable, x.step)
			return
		}
		if err != nil {
			x.fail(err)
			return
		}
		if err := x.advance(n); err != nil {
			x.fail(err)
			return
		}
	}
}

// recvTarget returns the buffer the current state is filling: the
// partial fixed-width word for header states, or the unfilled tail of
// the segment being reassembled.
func (x *Exchange) recvTarget() []byte {
	if x.state == awaitSegmentPayload {
		return x.segs[len(x.segs)-1].Tail()
	}
	return x.word[x.wordFill:]
}

// advance consumes n received bytes and transitions the state machine.
func (x *Exchange) advance(n int) error {
	if x.state == awaitSegmentPayload {
		seg := x.segs[len(x.segs)-1]
		seg.Advance(n)
		if !seg.Complete() {
			return nil
		}
		if uint64(len(x.segs)) == x.count {
			x.complete()
			return nil
		}
		x.state = awaitSegmentHeader
		return nil
	}

	x.wordFill += n
	if x.wordFill < protocol.WordLen {
		return nil
	}
	x.wordFill = 0
	v := protocol.Word(x.word[:])

	switch x.state {
	case awaitSyn:
		// The SYN value is opaque; its arrival alone unblocks the
		// request. Timing starts before the request signal goes out.
		return x.sendRequestSignal()

	case awaitCount:
		if v == 0 {
			return protocol.ErrZeroSegmentCount
		}
		if v > x.limits.MaxSegments {
			return fmt.Errorf("%w: %d", protocol.ErrTooManySegments, v)
		}
		x.count = v
		x.segs = make([]*Segment, 0, v)
		x.state = awaitSegmentHeader

	case awaitSegmentHeader:
		if v > x.limits.MaxSegmentBytes {
			return fmt.Errorf("%w: %d", protocol.ErrSegmentTooLarge, v)
		}
		seg := NewSegment(int(v))
		x.segs = append(x.segs, seg)
		if seg.Complete() {
			// Zero-length segment: complete on arrival of its header.
			if uint64(len(x.segs)) == x.count {
				x.complete()
			}
			return nil
		}
		x.state = awaitSegmentPayload
	}
	return nil
}

func (x *Exchange) sendRequestSignal() error {
	var req [protocol.WordLen]byte
	protocol.PutWord(req[:], protocol.RequestSignal)
	x.reqSentAt = time.Now()
	if err := x.ch.Send(req[:]); err != nil {
		return err
	}
	x.state = awaitCount
	return nil
}

func (x *Exchange) complete() {
	x.rtt = time.Since(x.reqSentAt)
	x.result = make([][]byte, len(x.segs))
	var total int
	for i, seg := range x.segs {
		x.result[i] = seg.Bytes()
		total += seg.Len()
	}
	x.segs = nil
	x.state = finished
	x.log.Debug().
		Int("segments", len(x.result)).
		Int("bytes", total).
		Dur("rtt", x.rtt).
		Msg("response reassembled")
	close(x.done)
	x.loop.Stop()
}

func (x *Exchange) fail(err error) {
	step := x.state
	x.err = fmt.Errorf("reassembly: %s: %w", step, err)
	x.segs = nil
	x.state = finished
	x.log.Error().Err(x.err).Msg("exchange aborted")
	close(x.done)
	x.loop.Stop()
}

// Result reports the completed segment list, transferring ownership to
// the caller; the exchange must not be touched afterward. Valid once
// the loop has returned. A torn-down exchange reports ErrCancelled.
func (x *Exchange) Result() ([][]byte, error) {
	select {
	case <-x.done:
	default:
		return nil, ErrCancelled
	}
	if x.err != nil {
		return nil, x.err
	}
	segs := x.result
	x.result = nil
	return segs, nil
}

// RTT reports the request-to-complete-response duration. Zero until
// the exchange completes successfully.
func (x *Exchange) RTT() time.Duration {
	return x.rtt
}
