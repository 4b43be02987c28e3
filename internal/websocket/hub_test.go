package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub(nil, quietLogger())
	hub.Start()
	t.Cleanup(hub.Stop)

	a := NewClient(hub, NewMockConnection(), new(mockViewService), testClientConfig(), "", quietLogger())
	b := NewClient(hub, NewMockConnection(), new(mockViewService), testClientConfig(), "", quietLogger())

	require.True(t, hub.Register(a))
	require.True(t, hub.Register(b))
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.Unregister(a)
	hub.Unregister(a)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(2), hub.TotalConnections())
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub(nil, quietLogger())
	hub.Start()

	conn := NewMockConnection()
	c := NewClient(hub, conn, new(mockViewService), testClientConfig(), "", quietLogger())
	require.True(t, hub.Register(c))
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Stop()

	assert.True(t, conn.IsClosed())
	assert.Equal(t, 0, hub.ClientCount())
	assert.False(t, hub.Register(c), "register after stop")

	// Unregister after stop must not block
	done := make(chan struct{})
	go func() {
		hub.Unregister(c)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("unregister blocked after stop")
	}
}

func TestHub_StartAndStopAreIdempotent(t *testing.T) {
	hub := NewHub(nil, nil)
	hub.Start()
	hub.Start()
	hub.Stop()
	hub.Stop()
	assert.Equal(t, 0, hub.ClientCount())
}
