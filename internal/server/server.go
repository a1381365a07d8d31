// Package server implements the serving side of the benchmark
// protocol: it accepts sessions on a unix socket, announces readiness
// with a handshake word, and answers each request signal with a framed
// multi-segment response message.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"capnproto.org/go/capnp/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/danmuck/ipcbench/internal/capview"
	"github.com/danmuck/ipcbench/internal/logging"
	"github.com/danmuck/ipcbench/internal/protocol"
	"github.com/danmuck/ipcbench/internal/session"
	"github.com/danmuck/ipcbench/internal/verify"
)

var ErrNoPartSizes = errors.New("server: at least one part size required")

// Config carries the serving parameters.
type Config struct {
	SocketPath string
	ServerName string

	// PartSizes are the payload byte sizes of the response parts. The
	// response message is built once at startup and reused verbatim
	// for every request.
	PartSizes []int

	// ChunkBytes caps the size of each payload write. Zero writes each
	// segment in one call. Small values exercise the client's partial
	// read handling.
	ChunkBytes int
}

// Server owns the listener and the prebuilt response segments.
type Server struct {
	cfg  Config
	log  zerolog.Logger
	ln   *net.UnixListener
	segs [][]byte
}

func New(cfg Config) (*Server, error) {
	if len(cfg.PartSizes) == 0 {
		return nil, ErrNoPartSizes
	}
	segs, err := buildResponse(cfg.PartSizes)
	if err != nil {
		return nil, fmt.Errorf("server: build response: %w", err)
	}
	return &Server{
		cfg:  cfg,
		log:  logging.New("server"),
		segs: segs,
	}, nil
}

// Listen binds the unix socket, replacing a stale socket file from a
// previous run.
func (s *Server) Listen() error {
	if err := os.Remove(s.cfg.SocketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("server: remove stale socket: %w", err)
	}
	ln, err := net.ListenUnix("unix", &net.UnixAddr{Name: s.cfg.SocketPath, Net: "unix"})
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	s.ln = ln
	s.log.Info().Str("socket", s.cfg.SocketPath).Msg("listening")
	return nil
}

// Serve accepts sessions until ctx is cancelled or the listener fails.
// Each session is served on its own goroutine.
func (s *Server) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return s.ln.Close()
	})
	g.Go(func() error {
		for {
			conn, err := s.ln.AcceptUnix()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("server: accept: %w", err)
			}
			g.Go(func() error {
				halt := context.AfterFunc(ctx, func() { conn.Close() })
				defer halt()
				if err := s.serveConn(conn); err != nil && !errors.Is(err, net.ErrClosed) {
					s.log.Error().Err(err).Msg("session ended with error")
				}
				return nil
			})
		}
	})
	return g.Wait()
}

// serveConn handles one session: handshake, then exchange cycles until
// the client hangs up.
func (s *Server) serveConn(conn *net.UnixConn) error {
	defer conn.Close()

	sess, err := session.Accept(conn, s.cfg.ServerName)
	if err != nil {
		return err
	}
	log := s.log.With().Str("session_id", sess.ID.String()).Str("peer", sess.Peer).Logger()
	log.Info().Msg("session accepted")

	var word [protocol.WordLen]byte
	for {
		protocol.PutWord(word[:], protocol.HandshakeSyn)
		if _, err := conn.Write(word[:]); err != nil {
			return fmt.Errorf("send handshake: %w", err)
		}

		if _, err := io.ReadFull(conn, word[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				log.Info().Msg("client hung up")
				return nil
			}
			return fmt.Errorf("await request: %w", err)
		}

		if err := s.writeResponse(conn); err != nil {
			return fmt.Errorf("send response: %w", err)
		}
		log.Debug().Int("segments", len(s.segs)).Msg("response sent")
	}
}

// writeResponse frames the prebuilt segments: count, then per segment
// its length followed by its bytes.
func (s *Server) writeResponse(conn *net.UnixConn) error {
	var word [protocol.WordLen]byte
	protocol.PutWord(word[:], uint64(len(s.segs)))
	if _, err := conn.Write(word[:]); err != nil {
		return err
	}
	for _, seg := range s.segs {
		protocol.PutWord(word[:], uint64(len(seg)))
		if _, err := conn.Write(word[:]); err != nil {
			return err
		}
		if err := s.writePayload(conn, seg); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) writePayload(conn *net.UnixConn, seg []byte) error {
	if s.cfg.ChunkBytes <= 0 {
		_, err := conn.Write(seg)
		return err
	}
	for len(seg) > 0 {
		n := min(s.cfg.ChunkBytes, len(seg))
		if _, err := conn.Write(seg[:n]); err != nil {
			return err
		}
		seg = seg[n:]
	}
	return nil
}

// Close shuts the listener down. Safe to call before Listen.
func (s *Server) Close() error {
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}

// buildResponse constructs the response message with one part per
// requested size, each carrying deterministic content plus its size
// and content hash for client-side verification.
func buildResponse(sizes []int) ([][]byte, error) {
	msg, first, err := capnp.NewMessage(capnp.MultiSegment(nil))
	if err != nil {
		return nil, err
	}
	rsp, err := capview.NewRootGetCacheRsp(first)
	if err != nil {
		return nil, err
	}
	list, err := rsp.NewFileParts(int32(len(sizes)))
	if err != nil {
		return nil, err
	}
	for i, size := range sizes {
		data := fillPattern(i, size)
		fp := list.At(i)
		if err := fp.SetData(data); err != nil {
			return nil, err
		}
		fp.SetDataSizeToVerify(uint64(size))
		fp.SetDataHashToVerify(verify.ContentHash(data))
	}

	segs := make([][]byte, msg.NumSegments())
	for i := range segs {
		seg, err := msg.Segment(capnp.SegmentID(i))
		if err != nil {
			return nil, err
		}
		segs[i] = seg.Data()
	}
	return segs, nil
}

// fillPattern produces repeatable content so repeated runs transfer
// identical bytes.
func fillPattern(part, size int) []byte {
	b := make([]byte, size)
	for i := range b {
		b[i] = byte('a' + (part+i)%26)
	}
	return b
}
