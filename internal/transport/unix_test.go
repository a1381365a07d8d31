package transport

import (
	"bytes"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"
)

// testPair returns a channel and the raw conn at the other end of a
// Unix-domain socket pair.
func testPair(t *testing.T) (*UnixChannel, net.Conn) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chan.sock")
	l, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		accepted <- conn
	}()

	ch, err := DialUnix(path)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ch.Close() })

	select {
	case peer := <-accepted:
		t.Cleanup(func() { peer.Close() })
		return ch, peer
	case <-time.After(2 * time.Second):
		t.Fatalf("accept timed out")
		return nil, nil
	}
}

func TestTryRecvWouldBlockWhenEmpty(t *testing.T) {
	ch, _ := testPair(t)
	buf := make([]byte, 8)
	if _, err := ch.TryRecv(buf); !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("expected ErrWouldBlock, got %v", err)
	}
}

func TestTryRecvReturnsAvailableBytes(t *testing.T) {
	ch, peer := testPair(t)
	if _, err := peer.Write([]byte("abcd")); err != nil {
		t.Fatalf("peer write: %v", err)
	}

	buf := make([]byte, 16)
	deadline := time.Now().Add(2 * time.Second)
	for {
		n, err := ch.TryRecv(buf)
		if errors.Is(err, ErrWouldBlock) {
			if time.Now().After(deadline) {
				t.Fatalf("data never arrived")
			}
			time.Sleep(time.Millisecond)
			continue
		}
		if err != nil {
			t.Fatalf("recv: %v", err)
		}
		if !bytes.Equal(buf[:n], []byte("abcd")) {
			t.Fatalf("payload: got %q", buf[:n])
		}
		return
	}
}

func TestTryRecvPeerClose(t *testing.T) {
	ch, peer := testPair(t)
	peer.Close()

	buf := make([]byte, 8)
	deadline := time.Now().Add(2 * time.Second)
	for {
		_, err := ch.TryRecv(buf)
		if errors.Is(err, ErrWouldBlock) {
			if time.Now().After(deadline) {
				t.Fatalf("close never observed")
			}
			time.Sleep(time.Millisecond)
			continue
		}
		if !errors.Is(err, ErrPeerClosed) {
			t.Fatalf("expected ErrPeerClosed, got %v", err)
		}
		return
	}
}

func TestAwaitReadableFiresOnData(t *testing.T) {
	ch, peer := testPair(t)

	ready := make(chan error, 1)
	ch.Await(Readable, func(err error) { ready <- err })

	if _, err := peer.Write([]byte{1}); err != nil {
		t.Fatalf("peer write: %v", err)
	}

	select {
	case err := <-ready:
		if err != nil {
			t.Fatalf("await error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("await never fired")
	}
}

func TestAwaitCancelledByClose(t *testing.T) {
	ch, _ := testPair(t)

	ready := make(chan error, 1)
	ch.Await(Readable, func(err error) { ready <- err })
	ch.Close()

	select {
	case err := <-ready:
		if !errors.Is(err, ErrChannelClosed) {
			t.Fatalf("expected ErrChannelClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("cancelled await never resolved")
	}
}

func TestWaiterAbsorbsCancelledWait(t *testing.T) {
	ch, _ := testPair(t)

	loop := NewLoop()
	w := NewWaiter(loop)

	fired := make(chan struct{}, 1)
	w.Await(ch, Readable, func() { fired <- struct{}{} })
	ch.Close()

	go loop.Run()
	defer loop.Stop()

	select {
	case <-fired:
		t.Fatalf("continuation fired after cancellation")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWaiterResumesOnLoop(t *testing.T) {
	ch, peer := testPair(t)

	loop := NewLoop()
	w := NewWaiter(loop)

	fired := make(chan struct{})
	w.Await(ch, Readable, func() { close(fired) })

	go loop.Run()
	defer loop.Stop()

	if _, err := peer.Write([]byte{1}); err != nil {
		t.Fatalf("peer write: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("continuation never ran")
	}
}

func TestSendDeliversToPeer(t *testing.T) {
	ch, peer := testPair(t)
	if err := ch.Send([]byte("ping")); err != nil {
		t.Fatalf("send: %v", err)
	}
	buf := make([]byte, 4)
	peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := peer.Read(buf); err != nil {
		t.Fatalf("peer read: %v", err)
	}
	if string(buf) != "ping" {
		t.Fatalf("payload: got %q", buf)
	}
}
