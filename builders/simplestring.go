package builders

import (
	"redisasync/reply"
)

// simpleStringBuilder accumulates bytes until CRLF and emits the text as
// a SimpleString Reply.
type simpleStringBuilder struct {
	ready bool
	value string
}

func (b *simpleStringBuilder) Feed(buf *[]byte) error {
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

func (b *simpleStringBuilder) Ready() bool { return b.ready }

func (b *simpleStringBuilder) Take() reply.Reply { return reply.NewSimpleString(b.value) }
