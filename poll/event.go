// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"context"
	"time"
)

type EventKind string

const (
	EventPollCreated EventKind = "poll_created"
	EventVoteCast    EventKind = "vote_cast"
	EventPollEnded   EventKind = "poll_ended"
)

// Event describes one committed mutation.
// Question, Options and Deadline are set for EventPollCreated only;
// OptionIndex for EventVoteCast only.
type Event struct {
	Kind        EventKind
	PollID      uint64
	Principal   Principal
	At          time.Time
	Question    string
	Options     []string
	Deadline    time.Time
	OptionIndex int
}

// Journal records events durably. Append is called with the store locked,
// before the event is applied; returning an error aborts the mutation.
type Journal interface {
	Append(ctx context.Context, e Event) error
}

// Listener is told about every committed event, in commit order.
// It runs outside the store lock and must not block for long.
type Listener func(Event)
