// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/quickpoll/poll"
)

func dialHub(t *testing.T, hub *Hub, pollID uint64) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, pollID)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_InitialSnapshotAndBroadcast(t *testing.T) {
	var version atomic.Int32
	hub := NewHub(func(pollID uint64) (any, error) {
		return map[string]int32{"version": version.Load()}, nil
	})

	conn := dialHub(t, hub, 4)

	msg := readMessage(t, conn)
	if msg.Type != "results" || msg.PollID != 4 {
		t.Errorf("unexpected initial message %+v", msg)
	}
	waitFor(t, func() bool { return hub.Subscribers(4) == 1 })

	version.Store(1)
	hub.Listener()(poll.Event{Kind: poll.EventVoteCast, PollID: 4})

	msg = readMessage(t, conn)
	payload, _ := json.Marshal(msg.Payload)
	if string(payload) != `{"version":1}` {
		t.Errorf("unexpected payload %s", payload)
	}
}

func TestHub_IgnoresOtherPollsAndCreations(t *testing.T) {
	var calls atomic.Int32
	hub := NewHub(func(pollID uint64) (any, error) {
		calls.Add(1)
		return pollID, nil
	})

	conn := dialHub(t, hub, 1)
	readMessage(t, conn)
	waitFor(t, func() bool { return hub.Subscribers(1) == 1 })

	before := calls.Load()
	hub.Listener()(poll.Event{Kind: poll.EventVoteCast, PollID: 2})
	hub.Listener()(poll.Event{Kind: poll.EventPollCreated, PollID: 1})
	if calls.Load() != before {
		t.Error("snapshot should only be built for watched polls on vote or close")
	}
}

func TestHub_ShutdownDisconnects(t *testing.T) {
	hub := NewHub(func(pollID uint64) (any, error) { return nil, nil })

	conn := dialHub(t, hub, 0)
	readMessage(t, conn)
	waitFor(t, func() bool { return hub.Subscribers(0) == 1 })

	hub.Shutdown()
	if hub.Subscribers(0) != 0 {
		t.Error("expected no subscribers after shutdown")
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected connection to be closed")
	}
}

func TestHub_ClientDisconnectUnregisters(t *testing.T) {
	hub := NewHub(func(pollID uint64) (any, error) { return nil, nil })

	conn := dialHub(t, hub, 7)
	readMessage(t, conn)
	waitFor(t, func() bool { return hub.Subscribers(7) == 1 })

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	waitFor(t, func() bool { return hub.Subscribers(7) == 0 })
}
