// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/quickpoll/auth"
	"github.com/danielhkuo/quickpoll/poll"
)

// TokenHeader is the alternative to "Authorization: Bearer <token>"
const TokenHeader = "X-Principal-Token"

// tokenFrom returns the bearer token or the X-Principal-Token header, if any
func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get(TokenHeader))
}

// WithPrincipal verifies the caller's token and attaches its principal to the
// request context. Requests without a token pass through anonymously, so
// operations that need a principal fail later with poll.ErrNoPrincipal.
// A token that does not verify is rejected outright.
func WithPrincipal(salt string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := tokenFrom(r)
		if token == "" {
			next(w, r)
			return
		}

		principal, err := auth.ParseToken(token, salt)
		if err != nil {
			slog.Warn("rejected principal token", "path", r.URL.Path, "remote", r.RemoteAddr)
			ErrorResponse(w, http.StatusUnauthorized, "Invalid principal token")
			return
		}

		ctx := poll.WithPrincipal(r.Context(), poll.Principal(principal))
		next(w, r.WithContext(ctx))
	}
}
