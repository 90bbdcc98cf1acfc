// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (request_id, method, path, remote) and completion
(status, duration_ms). The request id is taken from X-Request-ID when the
client sends one and generated otherwise; it is echoed in the response.

# Principals

WithPrincipal verifies the token issued by POST /principals and stores the
principal in the request context, where the poll package reads it:

	mux.HandleFunc("POST /polls", middleware.WithPrincipal(salt, h.CreatePoll))

The token is accepted as "Authorization: Bearer <token>" or in the
X-Principal-Token header. A missing token is not an error at this layer.

# Rate Limiting

RateLimiter keeps one token bucket per principal (or per hashed client IP
for anonymous requests) and answers 429 when it is empty. The client IP is
the peer address; X-Forwarded-For is only honored when trustProxy is set:

	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TokenSalt, cfg.TrustProxy)
	mux.HandleFunc("POST /polls/{id}/votes", middleware.WithPrincipal(salt, rl.Limit(h.Vote)))

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Handles X-Forwarded-For and X-Real-IP. Used for anonymous rate limit keys.
*/
package middleware
