// Package bench runs timed request/response exchanges against a serving
// peer and aggregates the round trip timings.
package bench

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/ipcbench/internal/capview"
	"github.com/danmuck/ipcbench/internal/logging"
	"github.com/danmuck/ipcbench/internal/observability"
	"github.com/danmuck/ipcbench/internal/protocol"
	"github.com/danmuck/ipcbench/internal/reassembly"
	"github.com/danmuck/ipcbench/internal/session"
	"github.com/danmuck/ipcbench/internal/transport"
	"github.com/danmuck/ipcbench/internal/verify"
)

var ErrNoIterations = errors.New("bench: iterations must be positive")

// Config carries the client-side run parameters.
type Config struct {
	SocketPath string
	ClientName string
	Iterations int
	Warmup     int
	Limits     protocol.Limits
}

// Summary aggregates the measured exchanges of one run.
type Summary struct {
	Count      int
	Min        time.Duration
	Max        time.Duration
	Mean       time.Duration
	TotalBytes int64
	Segments   int
}

// Runner owns one session and drives exchanges over it.
type Runner struct {
	cfg Config
	log zerolog.Logger
}

func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Iterations <= 0 {
		return nil, ErrNoIterations
	}
	if cfg.Limits == (protocol.Limits{}) {
		cfg.Limits = protocol.DefaultLimits()
	}
	return &Runner{
		cfg: cfg,
		log: logging.New("bench"),
	}, nil
}

// Run dials the server, performs the warm-up exchanges, then the
// measured ones, and reports the aggregate. Any failed exchange aborts
// the run.
func (r *Runner) Run() (Summary, error) {
	sess, err := session.Dial(r.cfg.SocketPath, r.cfg.ClientName)
	if err != nil {
		return Summary{}, fmt.Errorf("bench: %w", err)
	}
	defer sess.Close()

	ch, err := transport.NewUnixChannel(sess.Conn)
	if err != nil {
		return Summary{}, fmt.Errorf("bench: %w", err)
	}

	r.log.Info().
		Str("peer", sess.Peer).
		Str("session_id", sess.ID.String()).
		Int("warmup", r.cfg.Warmup).
		Int("iterations", r.cfg.Iterations).
		Msg("session established")

	for i := 0; i < r.cfg.Warmup; i++ {
		if _, _, _, err := r.exchange(ch); err != nil {
			return Summary{}, fmt.Errorf("bench: warmup %d: %w", i, err)
		}
	}

	var sum Summary
	var totalRTT time.Duration
	for i := 0; i < r.cfg.Iterations; i++ {
		rtt, segs, bytes, err := r.exchange(ch)
		if err != nil {
			observability.RecordExchange(r.cfg.ClientName, "error", 0, 0, 0)
			return Summary{}, fmt.Errorf("bench: exchange %d: %w", i, err)
		}
		observability.RecordExchange(r.cfg.ClientName, "ok", rtt, segs, bytes)

		totalRTT += rtt
		sum.Count++
		sum.TotalBytes += int64(bytes)
		sum.Segments += segs
		if sum.Min == 0 || rtt < sum.Min {
			sum.Min = rtt
		}
		if rtt > sum.Max {
			sum.Max = rtt
		}
	}
	sum.Mean = totalRTT / time.Duration(sum.Count)

	r.log.Info().
		Int("count", sum.Count).
		Dur("min", sum.Min).
		Dur("mean", sum.Mean).
		Dur("max", sum.Max).
		Int64("bytes", sum.TotalBytes).
		Msg("run complete")
	return sum, nil
}

// exchange performs one full cycle: reassemble the response, map it as
// a structured message in place, and verify every part's content hash.
func (r *Runner) exchange(ch transport.Channel) (time.Duration, int, int, error) {
	loop := transport.NewLoop()
	x := reassembly.New(ch, loop,
		reassembly.WithLimits(r.cfg.Limits),
		reassembly.WithLogger(r.log),
	)
	x.Start()
	loop.Run()

	segs, err := x.Result()
	if err != nil {
		return 0, 0, 0, err
	}

	view, err := capview.Build(segs, capview.WithoutReadLimits())
	if err != nil {
		return 0, 0, 0, err
	}
	rsp, err := view.CacheResponse()
	if err != nil {
		return 0, 0, 0, err
	}
	parts, err := capview.Parts(rsp)
	if err != nil {
		return 0, 0, 0, err
	}
	if err := verify.Response(parts); err != nil {
		return 0, 0, 0, err
	}

	var bytes int
	for _, s := range segs {
		bytes += len(s)
	}
	return x.RTT(), len(segs), bytes, nil
}
