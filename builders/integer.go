package builders

import (
	"strconv"

	"redisasync/errors"
	"redisasync/reply"
)

// integerBuilder accumulates bytes until a CRLF-terminated ASCII signed
// decimal line is available, grounded on cpp_redis's int_builder: a plain
// line accumulator followed by a single parse.
type integerBuilder struct {
	line  []byte
	ready bool
	value int64
}

func (b *integerBuilder) Feed(buf *[]byte) error {
	if b.ready {
		return nil
	}

	idx := findCRLF(*buf)
	if idx < 0 {
		// Not enough data yet; keep nothing, *buf is untouched so the
		// caller can append more and retry the whole accumulated buffer.
		return nil
	}

	line := (*buf)[:idx]
	*buf = (*buf)[idx+2:]

	v, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		return errors.NewParseError("invalid integer '" + string(line) + "'")
	}

	b.value = v
	b.ready = true
	return nil
}

func (b *integerBuilder) Ready() bool { return b.ready }

func (b *integerBuilder) Take() reply.Reply { return reply.NewInteger(b.value) }

// integer exposes the raw parsed value for composing builders (bulk
// string and array) that need the integer without boxing it in a Reply.
func (b *integerBuilder) integer() int64 { return b.value }
