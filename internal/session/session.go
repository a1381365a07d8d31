// Package session establishes the control relationship between the
// benchmark peers before any exchange runs: a hello/welcome handshake
// of newline-delimited JSON envelopes on the raw stream. Transport
// security and peer authentication stay outside this package.
package session

import (
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
)

// Session is one accepted client/server relationship. The underlying
// connection carries the wire exchanges after the handshake.
type Session struct {
	Conn *net.UnixConn
	ID   uuid.UUID
	Peer string
}

// Dial connects to the peer at path and performs the session
// handshake as the client side.
func Dial(path, clientName string) (*Session, error) {
	conn, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, fmt.Errorf("session: dial %s: %w", path, err)
	}

	id := uuid.New()
	hello := Hello{
		ProtoVersion: ProtoVersion,
		SessionID:    id.String(),
		ClientName:   clientName,
	}
	if err := WriteHello(conn, hello); err != nil {
		conn.Close()
		return nil, fmt.Errorf("session: send hello: %w", err)
	}

	welcome, err := ReadWelcome(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("session: read welcome: %w", err)
	}
	if welcome.Status != StatusAccepted {
		conn.Close()
		return nil, fmt.Errorf("%w: code %d: %s", ErrSessionRejected, welcome.Code, welcome.Message)
	}

	return &Session{Conn: conn, ID: id, Peer: welcome.ServerName}, nil
}

// Accept performs the server side of the handshake on an accepted
// connection. An invalid hello is answered with a rejected welcome
// before the error is returned.
func Accept(conn *net.UnixConn, serverName string) (*Session, error) {
	hello, err := ReadHello(conn)
	if err != nil {
		_ = WriteWelcome(conn, Welcome{
			Status:      StatusRejected,
			Code:        1,
			Message:     err.Error(),
			SessionID:   uuid.Nil.String(),
			ServerName:  serverName,
			TimestampMS: uint64(time.Now().UnixMilli()),
		})
		return nil, fmt.Errorf("session: read hello: %w", err)
	}

	welcome := Welcome{
		Status:      StatusAccepted,
		SessionID:   hello.SessionID,
		ServerName:  serverName,
		TimestampMS: uint64(time.Now().UnixMilli()),
	}
	if err := WriteWelcome(conn, welcome); err != nil {
		return nil, fmt.Errorf("session: send welcome: %w", err)
	}

	id, _ := uuid.Parse(hello.SessionID)
	return &Session{Conn: conn, ID: id, Peer: hello.ClientName}, nil
}

// Close tears the session's connection down.
func (s *Session) Close() error {
	return s.Conn.Close()
}
