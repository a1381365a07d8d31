// Package capview builds a non-owning structured view over reassembled
// message segments. The builder validates range boundaries and hands
// the segments to the Cap'n Proto decoder as a multi-segment arena
// without copying payload bytes; the returned view's byte ranges alias
// the segment buffers and must not outlive them.
package capview
