// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"math"
	"net/http"

	"github.com/danielhkuo/quickpoll/middleware"
	"github.com/danielhkuo/quickpoll/models"
	"github.com/danielhkuo/quickpoll/poll"
)

// Summarize adds totals, percentages and the leading options to raw tallies.
// Leaders holds every option tied for the most votes; it is empty when no
// votes have been cast.
func Summarize(res poll.Results) models.PollResults {
	total := res.Total()

	var top uint64
	for _, c := range res.VoteCounts {
		top = max(top, c)
	}

	out := models.PollResults{
		PollID:     res.PollID,
		Options:    make([]models.OptionResult, len(res.Options)),
		VoteCounts: res.VoteCounts,
		TotalVotes: total,
		Leaders:    []int{},
		Final:      !res.IsActive,
	}
	for i, label := range res.Options {
		out.Options[i] = models.OptionResult{
			Index: i,
			Label: label,
			Votes: res.VoteCounts[i],
		}
		if total > 0 {
			pct := float64(res.VoteCounts[i]) / float64(total) * 100
			out.Options[i].Percentage = math.Round(pct*100) / 100
			if res.VoteCounts[i] == top {
				out.Leaders = append(out.Leaders, i)
			}
		}
	}
	return out
}

// Snapshot returns the summarized results of a poll. It backs the live hub.
func (h *PollHandler) Snapshot(pollID uint64) (any, error) {
	res, err := h.store.Results(pollID)
	if err != nil {
		return nil, err
	}
	return Summarize(res), nil
}

// GetResults handles GET /polls/{id}/results
// Tallies are provisional until the creator ends the poll (final=true)
func (h *PollHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pollIDFrom(w, r)
	if !ok {
		return
	}

	res, err := h.store.Results(pollID)
	if err != nil {
		writeError(w, err, "get results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, Summarize(res))
}

// HasVoted handles GET /polls/{id}/voters/{principal}
func (h *PollHandler) HasVoted(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pollIDFrom(w, r)
	if !ok {
		return
	}

	principal := r.PathValue("principal")
	if principal == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "principal is required")
		return
	}

	voted, err := h.store.HasUserVoted(pollID, poll.Principal(principal))
	if err != nil {
		writeError(w, err, "check vote")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.HasVotedResponse{
		PollID:    pollID,
		Principal: principal,
		HasVoted:  voted,
	})
}
