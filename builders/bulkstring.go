package builders

import (
	"redisasync/errors"
	"redisasync/reply"
)

// bulkStringBuilder runs an integerBuilder to learn the declared length,
// then waits for that many payload bytes plus a trailing CRLF. Grounded
// on cpp_redis's bulk_string_builder: fetch_size / fetch_str two-stage
// split, kept verbatim in shape.
type bulkStringBuilder struct {
	sizeBuilder integerBuilder
	size        int64
	sizeKnown   bool
	isNull      bool
	value       []byte
	ready       bool
}

func (b *bulkStringBuilder) Feed(buf *[]byte) error {
	if b.ready {
		return nil
	}

	if !b.sizeKnown {
		if err := b.sizeBuilder.Feed(buf); err != nil {
			return err
		}
		if !b.sizeBuilder.Ready() {
			return nil
		}
		b.size = b.sizeBuilder.integer()
		b.sizeKnown = true
		if b.size == -1 {
			b.isNull = true
			b.ready = true
			return nil
		}
		if b.size < -1 {
			return errors.NewParseError("invalid bulk string length")
		}
	}

	need := int(b.size) + 2 // payload + CRLF
	if len(*buf) < need {
		return nil
	}

	if (*buf)[b.size] != '\r' || (*buf)[b.size+1] != '\n' {
		return errors.NewParseError("wrong ending sequence")
	}

	b.value = (*buf)[:b.size]
	*buf = (*buf)[need:]
	b.ready = true
	return nil
}

func (b *bulkStringBuilder) Ready() bool { return b.ready }

func (b *bulkStringBuilder) Take() reply.Reply {
	if b.isNull {
		return reply.NewNull(reply.NullOriginBulkString)
	}
	return reply.NewBulkString(b.value)
}
