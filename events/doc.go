// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package events fans committed poll events out of the process.

# Publishers

A Publisher ships an Envelope somewhere else:

  - RedisPublisher: PUBLISH to a channel (go-redis)
  - AMQPPublisher: persistent message on a durable queue (amqp091-go)
  - Nop: discards everything

New builds the one selected by EVENTS_BACKEND.

The store calls its listeners synchronously, so a Forwarder sits between
the two: its Listener only enqueues, and Run drains the queue into the
publisher on its own goroutine.

	fwd := events.NewForwarder(pub, 256)
	go fwd.Run(ctx)
	store := poll.NewStore(poll.WithListener(fwd.Listener()))

# Live Results

Hub keeps websocket subscribers per poll. A subscriber gets the current
results on connect and again after every vote on or closure of that poll:

	hub := events.NewHub(snapshotFunc)
	store := poll.NewStore(poll.WithListener(hub.Listener()))
	hub.ServeWS(w, r, pollID)

# Wire Format

	{"type":"vote_cast","poll_id":0,"principal":"…","option_index":1,"at":"2025-01-01T12:00:00Z"}

poll_created also carries question, options and deadline.
*/
package events
