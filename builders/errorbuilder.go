package builders

import (
	"redisasync/reply"
)

// errorBuilder accumulates bytes until CRLF and emits the text as an
// Error Reply.
type errorBuilder struct {
	ready bool
	value string
}

func (b *errorBuilder) Feed(buf *[]byte) error {
	if b.ready {
		return nil
	}
	idx := findCRLF(*buf)
	if idx < 0 {
		return nil
	}
	b.value = string((*buf)[:idx])
	*buf = (*buf)[idx+2:]
	b.ready = true
	return nil
}

func (b *errorBuilder) Ready() bool { return b.ready }

func (b *errorBuilder) Take() reply.Reply { return reply.NewError(b.value) }
