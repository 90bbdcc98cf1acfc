// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Poll status values as shown to clients
const (
	StatusOpen    = "open"
	StatusExpired = "expired" // deadline passed, not yet closed by its creator
	StatusClosed  = "closed"
)

// Request types

type CreatePollRequest struct {
	Question        string   `json:"question"`
	Options         []string `json:"options"`
	DurationSeconds int64    `json:"duration_seconds"`
}

// OptionIndex is a pointer so a missing field is distinguishable from 0
type VoteRequest struct {
	OptionIndex *int `json:"option_index"`
}

// Response types

type IssuePrincipalResponse struct {
	Principal string `json:"principal"`
	Token     string `json:"token"`
}

type CreatePollResponse struct {
	PollID uint64 `json:"poll_id"`
}

type PollCountResponse struct {
	Count uint64 `json:"count"`
}

type VoteResponse struct {
	PollID      uint64 `json:"poll_id"`
	OptionIndex int    `json:"option_index"`
	Message     string `json:"message"`
}

type HasVotedResponse struct {
	PollID    uint64 `json:"poll_id"`
	Principal string `json:"principal"`
	HasVoted  bool   `json:"has_voted"`
}

type PrincipalInfo struct {
	Principal    string   `json:"principal"`
	CreatedPolls []uint64 `json:"created_polls"`
	VotedPolls   []uint64 `json:"voted_polls"`
}

// Domain types

type PollDetails struct {
	ID        uint64    `json:"id"`
	Question  string    `json:"question"`
	Options   []string  `json:"options"`
	Creator   string    `json:"creator"`
	IsActive  bool      `json:"is_active"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Deadline  time.Time `json:"deadline"`
}

type OptionResult struct {
	Index      int     `json:"index"`
	Label      string  `json:"label"`
	Votes      uint64  `json:"votes"`
	Percentage float64 `json:"percentage"`
}

// Results are provisional until Final is true
type PollResults struct {
	PollID     uint64         `json:"poll_id"`
	Options    []OptionResult `json:"options"`
	VoteCounts []uint64       `json:"vote_counts"`
	TotalVotes uint64         `json:"total_votes"`
	Leaders    []int          `json:"leaders"` // more than one on a tie, empty with no votes
	Final      bool           `json:"final"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
