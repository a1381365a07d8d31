package transport

import "errors"

var (
	// ErrWouldBlock reports that a non-blocking receive found no data.
	ErrWouldBlock = errors.New("transport: would block")
	// ErrPeerClosed reports an orderly close by the remote end.
	ErrPeerClosed = errors.New("transport: peer closed channel")
	// ErrChannelClosed is returned when operating on a closed channel.
	ErrChannelClosed = errors.New("transport: channel closed")
)
