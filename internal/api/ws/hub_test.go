package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/reunite/pkg/dto"
)

func recvWithin(t *testing.T, ch chan []byte, d time.Duration) ([]byte, bool) {
	t.Helper()
	select {
	case msg, ok := <-ch:
		return msg, ok
	case <-time.After(d):
		t.Fatal("timed out waiting on client send channel")
		return nil, false
	}
}

func TestBroadcastReachesClients(t *testing.T) {
	h := NewHub()
	go h.Run()

	a := &Client{send: make(chan []byte, 16)}
	b := &Client{send: make(chan []byte, 16)}
	h.register <- a
	h.register <- b

	h.BroadcastEvent(&dto.WSEvent{Type: "candidates_found"})

	msgA, _ := recvWithin(t, a.send, time.Second)
	msgB, _ := recvWithin(t, b.send, time.Second)
	assert.Contains(t, string(msgA), "candidates_found")
	assert.Contains(t, string(msgB), "candidates_found")
}

func TestBroadcastEvictsSlowClientOnly(t *testing.T) {
	h := NewHub()
	go h.Run()

	slow := &Client{send: make(chan []byte, 1)}
	fast := &Client{send: make(chan []byte, 16)}
	h.register <- slow
	h.register <- fast
	slow.send <- []byte("backlog") // Fill the buffer so the next send overflows

	h.BroadcastEvent(&dto.WSEvent{Type: "match_confirmed"})

	// The fast client still gets the event.
	msg, _ := recvWithin(t, fast.send, time.Second)
	assert.Contains(t, string(msg), "match_confirmed")

	// The slow client is removed and its channel drained then closed.
	backlog, ok := recvWithin(t, slow.send, time.Second)
	require.True(t, ok)
	assert.Equal(t, "backlog", string(backlog))
	_, ok = recvWithin(t, slow.send, time.Second)
	assert.False(t, ok, "slow client channel should be closed after eviction")

	h.mu.RLock()
	_, stillThere := h.clients[slow]
	_, fastThere := h.clients[fast]
	h.mu.RUnlock()
	assert.False(t, stillThere)
	assert.True(t, fastThere)
}

func TestRegisterAfterEviction(t *testing.T) {
	h := NewHub()
	go h.Run()

	slow := &Client{send: make(chan []byte)} // unbuffered, overflows immediately
	h.register <- slow
	h.BroadcastEvent(&dto.WSEvent{Type: "match_confirmed"})

	_, ok := recvWithin(t, slow.send, time.Second)
	require.False(t, ok, "unbuffered client should be evicted")

	late := &Client{send: make(chan []byte, 16)}
	h.register <- late
	h.BroadcastEvent(&dto.WSEvent{Type: "sms_delivered"})

	msg, _ := recvWithin(t, late.send, time.Second)
	assert.Contains(t, string(msg), "sms_delivered")
}
