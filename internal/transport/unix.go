package transport

import (
	"errors"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// UnixChannel implements Channel over a Unix-domain stream socket. The
// socket's file descriptor stays in non-blocking mode (the net package
// guarantees this), so receives can be attempted immediately and
// readiness waits ride the runtime poller.
type UnixChannel struct {
	conn *net.UnixConn
	raw  syscall.RawConn
}

func NewUnixChannel(conn *net.UnixConn) (*UnixChannel, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("transport: raw conn: %w", err)
	}
	return &UnixChannel{conn: conn, raw: raw}, nil
}

// DialUnix connects a channel to the peer listening at path.
func DialUnix(path string) (*UnixChannel, error) {
	conn, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", path, err)
	}
	return NewUnixChannel(conn)
}

func (c *UnixChannel) TryRecv(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	var n int
	var rerr error
	err := c.raw.Read(func(fd uintptr) bool {
		n, rerr = unix.Read(int(fd), p)
		// Never park inside the poller; would-block surfaces to the
		// caller so the state machine can register a readiness wait.
		return true
	})
	if err != nil {
		return 0, c.mapClosed(err)
	}
	if rerr != nil {
		if errors.Is(rerr, unix.EAGAIN) {
			return 0, ErrWouldBlock
		}
		return 0, fmt.Errorf("transport: recv: %w", rerr)
	}
	if n == 0 {
		return 0, ErrPeerClosed
	}
	return n, nil
}

func (c *UnixChannel) Send(p []byte) error {
	if _, err := c.conn.Write(p); err != nil {
		return fmt.Errorf("transport: send: %w", c.mapClosed(err))
	}
	return nil
}

// Await registers a one-shot readiness wait. The wait goroutine parks
// in the runtime poller until the descriptor is ready; closing the
// channel aborts the wait and delivers the teardown error to ready.
func (c *UnixChannel) Await(dir Direction, ready func(error)) {
	go func() {
		parked := false
		wait := func(uintptr) bool {
			if !parked {
				parked = true
				return false
			}
			return true
		}
		var err error
		if dir == Writable {
			err = c.raw.Write(wait)
		} else {
			err = c.raw.Read(wait)
		}
		ready(c.mapClosed(err))
	}()
}

func (c *UnixChannel) Close() error {
	return c.conn.Close()
}

// LocalAddr reports the channel's local socket address for logging.
func (c *UnixChannel) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

func (c *UnixChannel) mapClosed(err error) error {
	if err != nil && errors.Is(err, net.ErrClosed) {
		return ErrChannelClosed
	}
	return err
}
