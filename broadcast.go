/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"sync"

	"github.com/gorilla/websocket"
)

// viewerBuffer is how many events a viewer may fall behind before it gets
// dropped instead of slowing everyone else down.
const viewerBuffer = 16

// viewerConn is the send half of one connected viewer. Events are queued on
// send by the broadcaster and drained onto the socket by the viewer's
// writePump.
type viewerConn struct {
	id   string
	conn *websocket.Conn
	send chan Event
}

// Broadcaster is the registry of connected viewers. Connecting transfers no
// state: a fresh viewer fetches its own snapshot and only then has a
// projection worth patching.
type Broadcaster struct {
	cfg *Config

	mu      sync.Mutex
	viewers map[*viewerConn]struct{}
}

func newBroadcaster(cfg *Config) *Broadcaster {
	return &Broadcaster{
		cfg:     cfg,
		viewers: make(map[*viewerConn]struct{}),
	}
}

func (b *Broadcaster) register(v *viewerConn) {
	b.mu.Lock()
	b.viewers[v] = struct{}{}
	online := len(b.viewers)
	b.mu.Unlock()

	logf(b.cfg, "WS: Viewer %s connected (%d online)", v.id, online)
}

// unregister drops a viewer and closes its send channel. Calling it again
// for the same viewer, or for one already dropped by emit, is a no-op.
func (b *Broadcaster) unregister(v *viewerConn) {
	b.mu.Lock()
	_, ok := b.viewers[v]
	if ok {
		delete(b.viewers, v)
		close(v.send)
	}
	online := len(b.viewers)
	b.mu.Unlock()

	if ok {
		logf(b.cfg, "WS: Viewer %s disconnected (%d online)", v.id, online)
	}
}

// emit queues the event for every connected viewer: best effort, at most
// once each, no acknowledgment, no retry, nothing kept for viewers that
// arrive later. The whole fan-out happens under one lock, so every viewer
// sees events in the same order they were emitted.
func (b *Broadcaster) emit(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for v := range b.viewers {
		select {
		case v.send <- ev:
		default:
			// This viewer stopped draining its buffer. Cut it loose rather
			// than hold up the mutation or the other viewers; it can
			// reconnect and refetch.
			delete(b.viewers, v)
			close(v.send)
			logf(b.cfg, "WS: Dropped slow viewer %s", v.id)
		}
	}
}

func (b *Broadcaster) viewerCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.viewers)
}

// closeAll disconnects every viewer. Closing the send channel ends each
// viewer's writePump, whose deferred conn.Close unblocks the readPump.
func (b *Broadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for v := range b.viewers {
		delete(b.viewers, v)
		close(v.send)
	}
}
