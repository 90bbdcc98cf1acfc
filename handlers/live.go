// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickpoll/events"
	"github.com/danielhkuo/quickpoll/poll"
)

type LiveHandler struct {
	store *poll.Store
	hub   *events.Hub
}

func NewLiveHandler(store *poll.Store, hub *events.Hub) *LiveHandler {
	return &LiveHandler{store: store, hub: hub}
}

// Watch handles GET /polls/{id}/live
// Upgrades to a websocket that receives the poll's results on every change
func (h *LiveHandler) Watch(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pollIDFrom(w, r)
	if !ok {
		return
	}

	if _, err := h.store.PollDetails(pollID); err != nil {
		writeError(w, err, "get poll")
		return
	}

	if err := h.hub.ServeWS(w, r, pollID); err != nil {
		slog.Warn("live subscription failed", "poll_id", pollID, "error", err)
	}
}
