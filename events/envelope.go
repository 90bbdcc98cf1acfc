// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"time"

	"github.com/danielhkuo/quickpoll/poll"
)

// Envelope is the JSON shape of an event outside the process.
type Envelope struct {
	Type        poll.EventKind `json:"type"`
	PollID      uint64         `json:"poll_id"`
	Principal   string         `json:"principal"`
	At          time.Time      `json:"at"`
	Question    string         `json:"question,omitempty"`
	Options     []string       `json:"options,omitempty"`
	Deadline    *time.Time     `json:"deadline,omitempty"`
	OptionIndex *int           `json:"option_index,omitempty"`
}

func NewEnvelope(e poll.Event) Envelope {
	env := Envelope{
		Type:      e.Kind,
		PollID:    e.PollID,
		Principal: string(e.Principal),
		At:        e.At.UTC(),
	}
	switch e.Kind {
	case poll.EventPollCreated:
		deadline := e.Deadline.UTC()
		env.Question = e.Question
		env.Options = e.Options
		env.Deadline = &deadline
	case poll.EventVoteCast:
		idx := e.OptionIndex
		env.OptionIndex = &idx
	}
	return env
}
