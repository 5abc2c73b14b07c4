package builders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redisasync/reply"
)

// feedAll drives a Builder to readiness across an arbitrary fragmentation
// of payload, asserting that partial feeds never report ready early.
func feedAll(t *testing.T, b Builder, chunks ...string) {
	t.Helper()
	var buf []byte
	for i, chunk := range chunks {
		buf = append(buf, chunk...)
		err := b.Feed(&buf)
		require.NoError(t, err)
		if i < len(chunks)-1 {
			require.False(t, b.Ready(), "builder reported ready before last chunk")
		}
	}
}

func TestIntegerBuilder(t *testing.T) {
	b := &integerBuilder{}
	feedAll(t, b, "1234\r\n")
	require.True(t, b.Ready())
	assert.Equal(t, int64(1234), b.Take().Integer())
}

func TestIntegerBuilderNegative(t *testing.T) {
	b := &integerBuilder{}
	buf := []byte("-42\r\n")
	require.NoError(t, b.Feed(&buf))
	require.True(t, b.Ready())
	assert.Equal(t, int64(-42), b.Take().Integer())
}

func TestIntegerBuilderBadDigit(t *testing.T) {
	b := &integerBuilder{}
	buf := []byte("12a4\r\n")
	err := b.Feed(&buf)
	require.Error(t, err)
}

func TestSimpleStringBuilder(t *testing.T) {
	b := &simpleStringBuilder{}
	buf := []byte("OK\r\n")
	require.NoError(t, b.Feed(&buf))
	require.True(t, b.Ready())
	assert.Equal(t, "OK", b.Take().Str())
}

func TestErrorBuilder(t *testing.T) {
	b := &errorBuilder{}
	buf := []byte("ERR bad\r\n")
	require.NoError(t, b.Feed(&buf))
	require.True(t, b.Ready())
	r := b.Take()
	assert.True(t, r.IsError())
	assert.Equal(t, "ERR bad", r.Str())
}

func TestBulkStringBuilder(t *testing.T) {
	b := &bulkStringBuilder{}
	feedAll(t, b, "5\r\nhel", "lo\r\n")
	require.True(t, b.Ready())
	r := b.Take()
	assert.False(t, r.IsNil())
	assert.Equal(t, "hello", string(r.Bytes()))
}

func TestBulkStringBuilderNull(t *testing.T) {
	b := &bulkStringBuilder{}
	buf := []byte("-1\r\n")
	require.NoError(t, b.Feed(&buf))
	require.True(t, b.Ready())
	r := b.Take()
	assert.True(t, r.IsNil())
	assert.Equal(t, reply.NullOriginBulkString, r.NullOrigin())
}

func TestBulkStringBuilderEmpty(t *testing.T) {
	b := &bulkStringBuilder{}
	buf := []byte("0\r\n\r\n")
	require.NoError(t, b.Feed(&buf))
	require.True(t, b.Ready())
	r := b.Take()
	assert.False(t, r.IsNil())
	assert.Equal(t, "", string(r.Bytes()))
}

func TestBulkStringBuilderWrongEndingSequence(t *testing.T) {
	b := &bulkStringBuilder{}
	buf := []byte("3\r\nabcXY")
	err := b.Feed(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong ending sequence")
}

func TestArrayBuilderFragmented(t *testing.T) {
	b := &arrayBuilder{}
	feedAll(t, b, "3\r\n:1\r\n", ":2\r\n$5\r\nhel", "lo\r\n")
	require.True(t, b.Ready())
	r := b.Take()
	require.Equal(t, reply.KindArray, r.Kind())
	require.Len(t, r.Array(), 3)
	assert.Equal(t, int64(1), r.Array()[0].Integer())
	assert.Equal(t, int64(2), r.Array()[1].Integer())
	assert.Equal(t, "hello", string(r.Array()[2].Bytes()))
}

func TestArrayBuilderNull(t *testing.T) {
	b := &arrayBuilder{}
	buf := []byte("-1\r\n")
	require.NoError(t, b.Feed(&buf))
	require.True(t, b.Ready())
	r := b.Take()
	assert.True(t, r.IsNil())
	assert.Equal(t, reply.NullOriginArray, r.NullOrigin())
}

func TestArrayBuilderEmpty(t *testing.T) {
	b := &arrayBuilder{}
	buf := []byte("0\r\n")
	require.NoError(t, b.Feed(&buf))
	require.True(t, b.Ready())
	r := b.Take()
	assert.False(t, r.IsNil())
	assert.Empty(t, r.Array())
}

func TestArrayBuilderNested(t *testing.T) {
	b := &arrayBuilder{}
	buf := []byte("1\r\n*2\r\n:1\r\n:2\r\n")
	require.NoError(t, b.Feed(&buf))
	require.True(t, b.Ready())
	r := b.Take()
	require.Len(t, r.Array(), 1)
	inner := r.Array()[0]
	require.Equal(t, reply.KindArray, inner.Kind())
	require.Len(t, inner.Array(), 2)
}

func TestFactoryUnknownTag(t *testing.T) {
	_, err := New('?', 0)
	require.Error(t, err)
}

func TestFactoryDepthLimit(t *testing.T) {
	_, err := New('*', maxNestingDepth+1)
	require.Error(t, err)
}
