package sandbox

import "bytes"

// boundedBuffer retains at most limit bytes and keeps counting past it, so
// the caller can distinguish "full" from "overflowed". Writes never error;
// a write error here would surface as a pipe failure inside the child.
type boundedBuffer struct {
	buf   bytes.Buffer
	limit int
	total int
}

func newBoundedBuffer(limit int) *boundedBuffer {
	return &boundedBuffer{limit: limit}
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	b.total += n
	if remaining := b.limit - b.buf.Len(); remaining > 0 {
		if len(p) > remaining {
			p = p[:remaining]
		}
		b.buf.Write(p)
	}
	return n, nil
}

func (b *boundedBuffer) String() string { return b.buf.String() }

func (b *boundedBuffer) Overflowed() bool { return b.total > b.limit }
