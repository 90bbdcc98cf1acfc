// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quickpoll/cliparse"
	"github.com/danielhkuo/quickpoll/events"
	"github.com/danielhkuo/quickpoll/handlers"
	"github.com/danielhkuo/quickpoll/middleware"
	"github.com/danielhkuo/quickpoll/poll"
)

func NewRouter(store *poll.Store, hub *events.Hub, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(store)
	principalHandler := handlers.NewPrincipalHandler(store, cfg)
	liveHandler := handlers.NewLiveHandler(store, hub)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TokenSalt, cfg.TrustProxy)

	// authed attaches the caller's principal; mutate also rate limits
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.WithPrincipal(cfg.TokenSalt, h))
	}
	mutate := func(h http.HandlerFunc) http.HandlerFunc {
		return authed(limiter.Limit(h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Principals
	mux.HandleFunc("POST /principals", mutate(principalHandler.Issue))
	mux.HandleFunc("GET /principals/me", authed(principalHandler.Me))

	// Poll lifecycle
	mux.HandleFunc("POST /polls", mutate(pollHandler.CreatePoll))
	mux.HandleFunc("POST /polls/{id}/votes", mutate(pollHandler.Vote))
	mux.HandleFunc("POST /polls/{id}/end", mutate(pollHandler.EndPoll))

	// Queries (public)
	mux.HandleFunc("GET /polls", middleware.WithLogging(pollHandler.ListPolls))
	mux.HandleFunc("GET /polls/count", middleware.WithLogging(pollHandler.PollCount))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("GET /polls/{id}/results", middleware.WithLogging(pollHandler.GetResults))
	mux.HandleFunc("GET /polls/{id}/voters/{principal}", middleware.WithLogging(pollHandler.HasVoted))

	// Live results
	mux.HandleFunc("GET /polls/{id}/live", middleware.WithLogging(liveHandler.Watch))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickpoll API v1"))
	})

	return mux
}
