package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

const (
	// ProtoVersion gates hello/welcome compatibility.
	ProtoVersion = 1

	controlTypeHello   = "bench.hello"
	controlTypeWelcome = "bench.welcome"

	StatusAccepted = "accepted"
	StatusRejected = "rejected"

	maxControlLine = 64 * 1024
)

var (
	ErrInvalidHello           = errors.New("session: invalid hello")
	ErrInvalidWelcome         = errors.New("session: invalid welcome")
	ErrSessionRejected        = errors.New("session: rejected by peer")
	ErrControlMessageTooLarge = errors.New("session: control message too large")
)

// Hello is the client->server session-open payload.
type Hello struct {
	ProtoVersion uint32 `json:"proto_version"`
	SessionID    string `json:"session_id"`
	ClientName   string `json:"client_name"`
}

func (h Hello) Validate() error {
	if h.ProtoVersion != ProtoVersion {
		return fmt.Errorf("%w: proto version %d", ErrInvalidHello, h.ProtoVersion)
	}
	if _, err := uuid.Parse(h.SessionID); err != nil {
		return fmt.Errorf("%w: bad session_id", ErrInvalidHello)
	}
	if strings.TrimSpace(h.ClientName) == "" {
		return fmt.Errorf("%w: missing client_name", ErrInvalidHello)
	}
	return nil
}

// Welcome is the server->client session acceptance.
type Welcome struct {
	Status      string `json:"status"`
	Code        uint32 `json:"code"`
	Message     string `json:"message"`
	SessionID   string `json:"session_id"`
	ServerName  string `json:"server_name"`
	TimestampMS uint64 `json:"timestamp_ms"`
}

func (w Welcome) Validate() error {
	status := strings.TrimSpace(w.Status)
	if status != StatusAccepted && status != StatusRejected {
		return fmt.Errorf("%w: invalid status", ErrInvalidWelcome)
	}
	if strings.TrimSpace(w.SessionID) == "" {
		return fmt.Errorf("%w: missing session_id", ErrInvalidWelcome)
	}
	if w.TimestampMS == 0 {
		return fmt.Errorf("%w: missing timestamp_ms", ErrInvalidWelcome)
	}
	return nil
}

type controlEnvelope struct {
	Type    string   `json:"type"`
	Hello   *Hello   `json:"hello,omitempty"`
	Welcome *Welcome `json:"welcome,omitempty"`
}

func WriteHello(w io.Writer, hello Hello) error {
	if err := hello.Validate(); err != nil {
		return err
	}
	return writeControlEnvelope(w, controlEnvelope{
		Type:  controlTypeHello,
		Hello: &hello,
	})
}

func ReadHello(r io.Reader) (Hello, error) {
	env, err := readControlEnvelope(r)
	if err != nil {
		return Hello{}, err
	}
	if env.Type != controlTypeHello || env.Hello == nil {
		return Hello{}, fmt.Errorf("%w: unexpected control type", ErrInvalidHello)
	}
	if err := env.Hello.Validate(); err != nil {
		return Hello{}, err
	}
	return *env.Hello, nil
}

func WriteWelcome(w io.Writer, welcome Welcome) error {
	if err := welcome.Validate(); err != nil {
		return err
	}
	return writeControlEnvelope(w, controlEnvelope{
		Type:    controlTypeWelcome,
		Welcome: &welcome,
	})
}

func ReadWelcome(r io.Reader) (Welcome, error) {
	env, err := readControlEnvelope(r)
	if err != nil {
		return Welcome{}, err
	}
	if env.Type != controlTypeWelcome || env.Welcome == nil {
		return Welcome{}, fmt.Errorf("%w: unexpected control type", ErrInvalidWelcome)
	}
	if err := env.Welcome.Validate(); err != nil {
		return Welcome{}, err
	}
	return *env.Welcome, nil
}

func writeControlEnvelope(w io.Writer, env controlEnvelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	if _, err := w.Write(payload); err != nil {
		return err
	}
	return nil
}

// readControlEnvelope reads one newline-terminated envelope byte-wise.
// Wire framing bytes follow the control line on the same stream, so
// the reader must not consume past the newline.
func readControlEnvelope(r io.Reader) (controlEnvelope, error) {
	var line []byte
	var b [1]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return controlEnvelope{}, err
		}
		if b[0] == '\n' {
			break
		}
		line = append(line, b[0])
		if len(line) > maxControlLine {
			return controlEnvelope{}, ErrControlMessageTooLarge
		}
	}
	var env controlEnvelope
	if err := json.Unmarshal(line, &env); err != nil {
		return controlEnvelope{}, err
	}
	return env, nil
}
