// Package parser drives a sequence of builders.Builder instances over an
// accumulating byte buffer, exposing a FIFO queue of completed replies.
// It is the Go rendering of cpp_redis's reply_builder: operator<<,
// build_reply, get_front/pop_front, reset.
package parser

import (
	"redisasync/builders"
	"redisasync/errors"
	"redisasync/reply"
)

// ReplyBuilder incrementally decodes a stream of RESP replies. It is not
// safe for concurrent use; a connection drives it from a single goroutine
// (see connection.Connection).
type ReplyBuilder struct {
	buffer    []byte
	current   builders.Builder
	completed []reply.Reply
}

// New returns an empty ReplyBuilder.
func New() *ReplyBuilder {
	return &ReplyBuilder{}
}

// PushBytes appends b to the internal accumulator and drives the current
// builder (instantiating one from the next type-tag byte when needed)
// until either the accumulator is exhausted or the current builder still
// needs more bytes. Every fully-built reply is appended to the completed
// queue, in the order bytes arrived. A malformed reply anywhere in the
// stream returns a *errors.ParseError; the caller must treat this as
// fatal to the session (see connection.Connection's read loop).
func (rb *ReplyBuilder) PushBytes(b []byte) error {
	rb.buffer = append(rb.buffer, b...)

	for {
		progressed, err := rb.buildOne()
		if err != nil {
			return err
		}
		if !progressed {
			return nil
		}
	}
}

// buildOne attempts to make one unit of progress: either completing the
// current builder's reply, or, if there is no current builder yet,
// starting a new one from the buffer's leading type-tag byte. It reports
// whether it made progress, so PushBytes knows whether to loop again.
func (rb *ReplyBuilder) buildOne() (bool, error) {
	if rb.current == nil {
		if len(rb.buffer) == 0 {
			return false, nil
		}
		tag := rb.buffer[0]
		rb.buffer = rb.buffer[1:]
		b, err := builders.New(tag, 0)
		if err != nil {
			return false, err
		}
		rb.current = b
	}

	if err := rb.current.Feed(&rb.buffer); err != nil {
		return false, err
	}

	if !rb.current.Ready() {
		return false, nil
	}

	rb.completed = append(rb.completed, rb.current.Take())
	rb.current = nil
	return true, nil
}

// HasReply reports whether at least one fully-built reply is queued.
func (rb *ReplyBuilder) HasReply() bool {
	return len(rb.completed) > 0
}

// Front returns the oldest completed reply without removing it, or
// errors.ErrNoReplyAvailable if the queue is empty.
func (rb *ReplyBuilder) Front() (reply.Reply, error) {
	if !rb.HasReply() {
		return reply.Reply{}, errors.ErrNoReplyAvailable
	}
	return rb.completed[0], nil
}

// Pop removes the oldest completed reply, or returns
// errors.ErrNoReplyAvailable if the queue is empty.
func (rb *ReplyBuilder) Pop() error {
	if !rb.HasReply() {
		return errors.ErrNoReplyAvailable
	}
	rb.completed = rb.completed[1:]
	return nil
}

// Reset discards the current builder and the accumulator. It leaves the
// completed-reply queue untouched: a connection tearing itself down
// clears that separately with DiscardReplies, mirroring cpp_redis's split
// between reply_builder::reset and redis_connection's own buffer clear.
func (rb *ReplyBuilder) Reset() {
	rb.buffer = nil
	rb.current = nil
}

// DiscardReplies drops every queued-but-undelivered reply.
func (rb *ReplyBuilder) DiscardReplies() {
	rb.completed = nil
}
