package builders

import (
	"redisasync/reply"
)

// arrayBuilder runs an integerBuilder to learn the element count, then
// repeatedly instantiates a child Builder from the next type-tag byte and
// feeds it until it is ready. Grounded on cpp_redis's array_builder:
// fetch_array_size / build_row.
type arrayBuilder struct {
	depth int

	sizeBuilder integerBuilder
	size        int64
	sizeKnown   bool
	isNull      bool

	children []reply.Reply
	current  Builder

	ready bool
}

func (b *arrayBuilder) Feed(buf *[]byte) error {
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
		if b.size < 0 {
			b.isNull = true
			b.ready = true
			return nil
		}
		b.children = make([]reply.Reply, 0, b.size)
		if b.size == 0 {
			b.ready = true
			return nil
		}
	}

	for int64(len(b.children)) < b.size {
		if b.current == nil {
			if len(*buf) == 0 {
				return nil
			}
			tag := (*buf)[0]
			*buf = (*buf)[1:]
			child, err := New(tag, b.depth+1)
			if err != nil {
				return err
			}
			b.current = child
		}

		if err := b.current.Feed(buf); err != nil {
			return err
		}
		if !b.current.Ready() {
			return nil
		}

		b.children = append(b.children, b.current.Take())
		b.current = nil
	}

	b.ready = true
	return nil
}

func (b *arrayBuilder) Ready() bool { return b.ready }

func (b *arrayBuilder) Take() reply.Reply {
	if b.isNull {
		return reply.NewNull(reply.NullOriginArray)
	}
	return reply.NewArray(b.children)
}
