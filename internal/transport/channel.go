package transport

// Direction selects which readiness event a wait is for.
type Direction int

const (
	Readable Direction = iota
	Writable
)

func (d Direction) String() string {
	if d == Writable {
		return "writable"
	}
	return "readable"
}

// Channel is the byte channel an exchange runs over. One exchange owns
// the channel exclusively for its duration; sequencing of receives is
// the caller's responsibility.
type Channel interface {
	// TryRecv attempts a non-blocking receive into p. It returns the
	// number of bytes received (1..len(p)), ErrWouldBlock when no data
	// is available, or ErrPeerClosed when the remote end closed.
	TryRecv(p []byte) (int, error)

	// Send writes all of p. Sends are small fixed-width signals in
	// this protocol, so a blocking full write is acceptable here.
	Send(p []byte) error

	// Await arranges for ready to be invoked exactly once when the
	// channel becomes ready in the given direction. ready receives a
	// non-nil error when the wait was cancelled by channel teardown.
	Await(dir Direction, ready func(error))

	// Close tears the channel down and cancels outstanding waits.
	Close() error
}
