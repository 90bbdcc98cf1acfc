// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token format")

// NewPrincipalID creates a fresh random principal identifier
func NewPrincipalID() string {
	return uuid.NewString()
}

// tag computes the URL-safe HMAC of a principal ID
func tag(principalID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(principalID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner tokens
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// IssueToken binds a principal ID to the server's salt.
// The token is "<principal>.<tag>"; it is deterministic and needs no storage.
func IssueToken(principalID, salt string) string {
	return principalID + "." + tag(principalID, salt)
}

// ParseToken verifies a token and returns the principal it was issued for
func ParseToken(token, salt string) (string, error) {
	i := strings.LastIndexByte(token, '.')
	if i <= 0 || i == len(token)-1 {
		return "", ErrInvalidToken
	}

	principalID, got := token[:i], token[i+1:]
	if _, err := uuid.Parse(principalID); err != nil {
		return "", ErrInvalidToken
	}
	if !hmac.Equal([]byte(got), []byte(tag(principalID, salt))) {
		return "", ErrInvalidToken
	}
	return principalID, nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for rate limit keys
	return hex.EncodeToString(sum[:8])
}
