// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickpoll/middleware"
	"github.com/danielhkuo/quickpoll/models"
	"github.com/danielhkuo/quickpoll/poll"
)

type PollHandler struct {
	store *poll.Store
}

func NewPollHandler(store *poll.Store) *PollHandler {
	return &PollHandler{store: store}
}

// toDetails converts a store view into the API shape, deriving status at now
func toDetails(d poll.Details, now time.Time) models.PollDetails {
	status := models.StatusOpen
	switch {
	case !d.IsActive:
		status = models.StatusClosed
	case d.Expired(now):
		status = models.StatusExpired
	}

	return models.PollDetails{
		ID:        d.ID,
		Question:  d.Question,
		Options:   d.Options,
		Creator:   string(d.Creator),
		IsActive:  d.IsActive,
		Status:    status,
		CreatedAt: d.CreatedAt,
		Deadline:  d.Deadline,
	}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	pollID, err := h.store.CreatePoll(r.Context(), req.Question, req.Options, req.DurationSeconds)
	if err != nil {
		writeError(w, err, "create poll")
		return
	}

	if d, err := h.store.PollDetails(pollID); err == nil {
		slog.Info("poll created",
			"poll_id", pollID,
			"creator", d.Creator,
			"options", len(d.Options),
			"closes", humanize.RelTime(d.CreatedAt, d.Deadline, "ago", "from now"),
		)
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		PollID: pollID,
	})
}

// ListPolls handles GET /polls
// Optional filters: ?status=open|expired|closed and ?creator=<principal>
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "", models.StatusOpen, models.StatusExpired, models.StatusClosed:
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "status must be one of: open, expired, closed")
		return
	}
	creator := r.URL.Query().Get("creator")

	now := h.store.Now()
	polls := []models.PollDetails{}
	for _, d := range h.store.Polls() {
		details := toDetails(d, now)
		if status != "" && details.Status != status {
			continue
		}
		if creator != "" && details.Creator != creator {
			continue
		}
		polls = append(polls, details)
	}

	middleware.JSONResponse(w, http.StatusOK, polls)
}

// PollCount handles GET /polls/count
func (h *PollHandler) PollCount(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.PollCountResponse{
		Count: h.store.PollCount(),
	})
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pollIDFrom(w, r)
	if !ok {
		return
	}

	d, err := h.store.PollDetails(pollID)
	if err != nil {
		writeError(w, err, "get poll")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, toDetails(d, h.store.Now()))
}

// Vote handles POST /polls/{id}/votes
func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pollIDFrom(w, r)
	if !ok {
		return
	}

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.OptionIndex == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "option_index is required")
		return
	}

	if err := h.store.Vote(r.Context(), pollID, *req.OptionIndex); err != nil {
		writeError(w, err, "record vote")
		return
	}

	voter, _ := poll.PrincipalFrom(r.Context())
	slog.Info("vote recorded", "poll_id", pollID, "voter", voter, "option_index", *req.OptionIndex)

	middleware.JSONResponse(w, http.StatusCreated, models.VoteResponse{
		PollID:      pollID,
		OptionIndex: *req.OptionIndex,
		Message:     "Vote recorded",
	})
}

// EndPoll handles POST /polls/{id}/end
// Only the creator may end a poll, and only once its deadline has passed
func (h *PollHandler) EndPoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pollIDFrom(w, r)
	if !ok {
		return
	}

	if err := h.store.EndPoll(r.Context(), pollID); err != nil {
		writeError(w, err, "end poll")
		return
	}

	d, err := h.store.PollDetails(pollID)
	if err != nil {
		writeError(w, err, "get poll")
		return
	}

	results, _ := h.store.Results(pollID)
	slog.Info("poll ended",
		"poll_id", pollID,
		"total_votes", humanize.Comma(int64(results.Total())),
		"deadline", humanize.Time(d.Deadline),
	)

	middleware.JSONResponse(w, http.StatusOK, toDetails(d, h.store.Now()))
}
