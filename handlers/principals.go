// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickpoll/auth"
	"github.com/danielhkuo/quickpoll/cliparse"
	"github.com/danielhkuo/quickpoll/middleware"
	"github.com/danielhkuo/quickpoll/models"
	"github.com/danielhkuo/quickpoll/poll"
)

type PrincipalHandler struct {
	store *poll.Store
	cfg   cliparse.Config
}

func NewPrincipalHandler(store *poll.Store, cfg cliparse.Config) *PrincipalHandler {
	return &PrincipalHandler{store: store, cfg: cfg}
}

// Issue handles POST /principals
// Mints a new principal and the token that proves it. Nothing is stored.
func (h *PrincipalHandler) Issue(w http.ResponseWriter, r *http.Request) {
	id := auth.NewPrincipalID()
	token := auth.IssueToken(id, h.cfg.TokenSalt)

	slog.Info("principal issued", "principal", id)

	middleware.JSONResponse(w, http.StatusCreated, models.IssuePrincipalResponse{
		Principal: id,
		Token:     token,
	})
}

// Me handles GET /principals/me
// Returns the polls the caller created and voted in
func (h *PrincipalHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := poll.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, poll.ErrNoPrincipal, "get principal")
		return
	}

	created, voted := h.store.Participation(p)
	middleware.JSONResponse(w, http.StatusOK, models.PrincipalInfo{
		Principal:    string(p),
		CreatedPolls: created,
		VotedPolls:   voted,
	})
}
