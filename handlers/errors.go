// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/quickpoll/middleware"
	"github.com/danielhkuo/quickpoll/poll"
)

// statusFor maps store errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, poll.ErrPollNotFound):
		return http.StatusNotFound
	case errors.Is(err, poll.ErrInvalidQuestion),
		errors.Is(err, poll.ErrInvalidOptions),
		errors.Is(err, poll.ErrInvalidDuration),
		errors.Is(err, poll.ErrInvalidOption):
		return http.StatusBadRequest
	case errors.Is(err, poll.ErrPollInactive),
		errors.Is(err, poll.ErrDuplicateVote),
		errors.Is(err, poll.ErrVotingStillActive),
		errors.Is(err, poll.ErrAlreadyClosed):
		return http.StatusConflict
	case errors.Is(err, poll.ErrNotCreator):
		return http.StatusForbidden
	case errors.Is(err, poll.ErrNoPrincipal):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// writeError responds with the status for err. Unexpected errors are logged
// and their text is not sent to the client.
func writeError(w http.ResponseWriter, err error, action string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("failed to "+action, "error", err)
		middleware.ErrorResponse(w, status, "Failed to "+action)
		return
	}
	middleware.ErrorResponse(w, status, err.Error())
}

// pollIDFrom parses the {id} path segment
func pollIDFrom(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := r.PathValue("id")
	if raw == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id must be a non-negative integer")
		return 0, false
	}
	return id, true
}
