package reassembly

// Segment is one length-prefixed chunk of the response message. Its
// capacity is fixed by the segment header; the filled length grows as
// payload bytes arrive. Once filled equals capacity the segment is
// complete and never mutated again.
type Segment struct {
	buf    []byte
	filled int
}

func NewSegment(capacity int) *Segment {
	return &Segment{buf: make([]byte, capacity)}
}

// Tail returns the unfilled portion of the buffer for the next receive.
func (s *Segment) Tail() []byte {
	return s.buf[s.filled:]
}

// Advance records n more received bytes.
func (s *Segment) Advance(n int) {
	s.filled += n
}

func (s *Segment) Complete() bool {
	return s.filled == len(s.buf)
}

func (s *Segment) Len() int {
	return s.filled
}

func (s *Segment) Cap() int {
	return len(s.buf)
}

// Bytes exposes the underlying buffer. Only meaningful once the
// segment is complete.
func (s *Segment) Bytes() []byte {
	return s.buf
}
