// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth issues and verifies principal tokens.

The poll store trusts whatever principal it is handed; this package is how
the HTTP server decides who that is.

# Principal Tokens

A principal is a random UUID. Its token appends an HMAC-SHA256 tag keyed
with the server's TOKEN_SALT:

	id := auth.NewPrincipalID()
	token := auth.IssueToken(id, salt)     // "<uuid>.<tag>"
	id, err := auth.ParseToken(token, salt)

The tag is URL-safe base64 without padding. Tokens are deterministic and
stateless: nothing is stored, and rotating the salt revokes every token.

# IP Hashing

Anonymous callers are rate limited by a hash of their address:

	key := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
