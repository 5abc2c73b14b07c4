package sentinel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redisasync/connection"
	redisErrors "redisasync/errors"
	"redisasync/network/networktest"
	"redisasync/reply"
)

func newTestClient(t *testing.T) (*Client, *networktest.FakeFacade) {
	t.Helper()
	fake := networktest.NewFakeFacade()
	conn := connection.New(connection.WithFacade(fake))
	c := New(WithConnection(conn))
	return c, fake
}

func TestPipelinedEchoCallbackOrder(t *testing.T) {
	c, fake := newTestClient(t)
	require.NoError(t, c.Connect("localhost", 26379, nil, 0))

	var got []reply.Reply
	c.Send(argv("PING"), func(r reply.Reply) { got = append(got, r) })
	c.Send(argv("ECHO", "hi"), func(r reply.Reply) { got = append(got, r) })
	require.NoError(t, c.Commit())

	fake.Deliver([]byte("+PONG\r\n$2\r\nhi\r\n"))

	require.Len(t, got, 2)
	assert.Equal(t, "PONG", got[0].Str())
	assert.Equal(t, "hi", string(got[1].Bytes()))
}

func TestSyncCommitWaitsForCallbacks(t *testing.T) {
	c, fake := newTestClient(t)
	require.NoError(t, c.Connect("localhost", 26379, nil, 0))

	done := make(chan struct{})
	c.Send(argv("PING"), func(r reply.Reply) { close(done) })

	go func() {
		fake.Deliver([]byte("+PONG\r\n"))
	}()

	require.NoError(t, c.SyncCommit())

	select {
	case <-done:
	default:
		t.Fatal("callback did not run before SyncCommit returned")
	}

	c.callbackMu.Lock()
	assert.Equal(t, 0, c.runningCount)
	assert.Empty(t, c.callbacks)
	c.callbackMu.Unlock()
}

func TestDisconnectClearsCallbackQueue(t *testing.T) {
	c, fake := newTestClient(t)
	require.NoError(t, c.Connect("localhost", 26379, nil, 0))

	c.Send(argv("PING"), func(r reply.Reply) {})
	fake.SimulatePeerClose()

	c.callbackMu.Lock()
	assert.Empty(t, c.callbacks)
	c.callbackMu.Unlock()
}

func TestGetMasterAddrByNameEmptyRegistryAutoConnect(t *testing.T) {
	c, _ := newTestClient(t)

	host, port, err := c.GetMasterAddrByName("mymaster", true)
	require.Error(t, err)
	assert.Equal(t, "", host)
	assert.Equal(t, 0, port)

	var cfgErr *redisErrors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestGetMasterAddrByNameNotConnectedNoAutoConnect(t *testing.T) {
	c, _ := newTestClient(t)

	_, _, err := c.GetMasterAddrByName("mymaster", false)
	require.Error(t, err)
	var notConnected *redisErrors.NotConnectedError
	assert.ErrorAs(t, err, &notConnected)
}

func TestConnectSentinelRoundRobinFailThrough(t *testing.T) {
	fake := networktest.NewFakeFacade()
	fake.FailConnectOnHost("badhost", assert.AnError)

	conn := connection.New(connection.WithFacade(fake))
	c := New(WithConnection(conn))
	c.AddSentinel("badhost", 1, 50)
	c.AddSentinel("goodhost", 26379, 500)

	require.NoError(t, c.ConnectSentinel(nil))
	assert.True(t, c.IsConnected())
}

func TestGetMasterAddrByNameAutoConnectDiscoversMaster(t *testing.T) {
	fake := networktest.NewFakeFacade()
	fake.FailConnectOnHost("badhost", assert.AnError)

	conn := connection.New(connection.WithFacade(fake))
	c := New(WithConnection(conn))
	c.AddSentinel("badhost", 1, 50)
	c.AddSentinel("goodhost", 26379, 500)

	resultCh := make(chan struct {
		host string
		port int
		err  error
	}, 1)

	go func() {
		host, port, err := c.GetMasterAddrByName("mymaster", true)
		resultCh <- struct {
			host string
			port int
			err  error
		}{host, port, err}
	}()

	require.Eventually(t, func() bool {
		return fake.WrittenCount() == 1
	}, time.Second, time.Millisecond)

	fake.Deliver([]byte("*2\r\n$9\r\n127.0.0.1\r\n$4\r\n6379\r\n"))

	result := <-resultCh
	require.NoError(t, result.err)
	assert.Equal(t, "127.0.0.1", result.host)
	assert.Equal(t, 6379, result.port)
	assert.False(t, c.IsConnected())
}
