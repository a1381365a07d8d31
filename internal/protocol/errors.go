package protocol

import "errors"

var (
	ErrZeroSegmentCount = errors.New("protocol: segment count of zero")
	ErrTooManySegments  = errors.New("protocol: segment count exceeds limit")
	ErrSegmentTooLarge  = errors.New("protocol: segment length exceeds limit")
)
