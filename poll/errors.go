// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import "errors"

var (
	ErrInvalidQuestion   = errors.New("question is required")
	ErrInvalidOptions    = errors.New("there must be at least two possible answers")
	ErrInvalidDuration   = errors.New("duration must be a positive number of seconds")
	ErrPollNotFound      = errors.New("poll not found")
	ErrInvalidOption     = errors.New("option index out of range")
	ErrPollInactive      = errors.New("voting is not active")
	ErrDuplicateVote     = errors.New("you have already voted")
	ErrNotCreator        = errors.New("only the creator may close this poll")
	ErrVotingStillActive = errors.New("voting is still active")
	ErrAlreadyClosed     = errors.New("poll is already closed")
	ErrNoPrincipal       = errors.New("no principal in context")
)
