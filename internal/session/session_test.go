package session

import (
	"bytes"
	"errors"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHelloRoundTrip(t *testing.T) {
	in := Hello{ProtoVersion: ProtoVersion, SessionID: uuid.New().String(), ClientName: "bench-client"}
	var buf bytes.Buffer
	if err := WriteHello(&buf, in); err != nil {
		t.Fatalf("write hello: %v", err)
	}
	out, err := ReadHello(&buf)
	if err != nil {
		t.Fatalf("read hello: %v", err)
	}
	if out != in {
		t.Fatalf("hello mismatch: got %+v want %+v", out, in)
	}
}

func TestHelloValidation(t *testing.T) {
	cases := []struct {
		name  string
		hello Hello
	}{
		{"bad proto", Hello{ProtoVersion: 99, SessionID: uuid.New().String(), ClientName: "c"}},
		{"bad session id", Hello{ProtoVersion: ProtoVersion, SessionID: "nope", ClientName: "c"}},
		{"missing client name", Hello{ProtoVersion: ProtoVersion, SessionID: uuid.New().String(), ClientName: " "}},
	}
	for _, tc := range cases {
		if err := tc.hello.Validate(); !errors.Is(err, ErrInvalidHello) {
			t.Fatalf("%s: expected ErrInvalidHello, got %v", tc.name, err)
		}
	}
}

func TestWelcomeValidation(t *testing.T) {
	w := Welcome{Status: "perhaps", SessionID: uuid.New().String(), TimestampMS: 1}
	if err := w.Validate(); !errors.Is(err, ErrInvalidWelcome) {
		t.Fatalf("expected ErrInvalidWelcome, got %v", err)
	}
}

func TestReadDoesNotConsumePastNewline(t *testing.T) {
	var buf bytes.Buffer
	hello := Hello{ProtoVersion: ProtoVersion, SessionID: uuid.New().String(), ClientName: "c"}
	if err := WriteHello(&buf, hello); err != nil {
		t.Fatalf("write hello: %v", err)
	}
	trailing := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	buf.Write(trailing)

	if _, err := ReadHello(&buf); err != nil {
		t.Fatalf("read hello: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), trailing) {
		t.Fatalf("reader consumed framing bytes: %x left", buf.Bytes())
	}
}

func TestReadRejectsOversizeControlLine(t *testing.T) {
	line := strings.Repeat("x", maxControlLine+2)
	_, err := ReadHello(strings.NewReader(line))
	if !errors.Is(err, ErrControlMessageTooLarge) {
		t.Fatalf("expected ErrControlMessageTooLarge, got %v", err)
	}
}

func testListener(t *testing.T) (*net.UnixListener, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sess.sock")
	l, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l, path
}

func TestDialAcceptHandshake(t *testing.T) {
	l, path := testListener(t)

	type acceptResult struct {
		sess *Session
		err  error
	}
	accepted := make(chan acceptResult, 1)
	go func() {
		conn, err := l.AcceptUnix()
		if err != nil {
			accepted <- acceptResult{err: err}
			return
		}
		sess, err := Accept(conn, "bench-server")
		accepted <- acceptResult{sess: sess, err: err}
	}()

	cli, err := Dial(path, "bench-client")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer cli.Close()

	select {
	case res := <-accepted:
		if res.err != nil {
			t.Fatalf("accept: %v", res.err)
		}
		defer res.sess.Close()
		if res.sess.ID != cli.ID {
			t.Fatalf("session id mismatch: %s != %s", res.sess.ID, cli.ID)
		}
		if res.sess.Peer != "bench-client" || cli.Peer != "bench-server" {
			t.Fatalf("peer names: server saw %q, client saw %q", res.sess.Peer, cli.Peer)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("accept timed out")
	}
}

func TestAcceptRejectsMalformedHello(t *testing.T) {
	l, path := testListener(t)

	accepted := make(chan error, 1)
	go func() {
		conn, err := l.AcceptUnix()
		if err != nil {
			accepted <- err
			return
		}
		defer conn.Close()
		_, err = Accept(conn, "bench-server")
		accepted <- err
	}()

	conn, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte(`{"type":"bench.hello"}` + "\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	welcome, err := ReadWelcome(conn)
	if err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	if welcome.Status != StatusRejected {
		t.Fatalf("expected rejected welcome, got %+v", welcome)
	}

	select {
	case err := <-accepted:
		if !errors.Is(err, ErrInvalidHello) {
			t.Fatalf("expected ErrInvalidHello, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("accept timed out")
	}
}
