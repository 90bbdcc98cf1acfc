// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/quickpoll/auth"
	"github.com/danielhkuo/quickpoll/cliparse"
	"github.com/danielhkuo/quickpoll/db"
	"github.com/danielhkuo/quickpoll/poll"
)

// Epoch is where every test clock starts
var Epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// SetupTestDB opens a private in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseURL:    ":memory:",
		DatabaseType:   db.TypeSQLite,
		TokenSalt:      "test-token-salt",
		EventsBackend:  cliparse.EventsNone,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
}

// NewTestStore returns an empty store driven by a manual clock set to Epoch
func NewTestStore(t *testing.T, opts ...poll.StoreOption) (*poll.Store, *poll.ManualClock) {
	t.Helper()

	clock := poll.NewManualClock(Epoch)
	opts = append([]poll.StoreOption{poll.WithClock(clock)}, opts...)
	return poll.NewStore(opts...), clock
}

// As returns a context carrying principal p
func As(p string) context.Context {
	return poll.WithPrincipal(context.Background(), poll.Principal(p))
}

// CreateTestPoll creates a poll owned by creator and returns its ID
func CreateTestPoll(t *testing.T, store *poll.Store, creator string, options []string, durationSeconds int64) uint64 {
	t.Helper()

	id, err := store.CreatePoll(As(creator), "Test Poll", options, durationSeconds)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return id
}

// CastTestVote records a vote, failing the test on error
func CastTestVote(t *testing.T, store *poll.Store, voter string, pollID uint64, optionIndex int) {
	t.Helper()

	if err := store.Vote(As(voter), pollID, optionIndex); err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}
}

// NewTestPrincipal issues a principal and returns its id with the headers that authenticate it
func NewTestPrincipal(cfg cliparse.Config) (string, map[string]string) {
	id := auth.NewPrincipalID()
	return id, AuthHeader(id, cfg)
}

// AuthHeader builds the Authorization header for principal id
func AuthHeader(id string, cfg cliparse.Config) map[string]string {
	return map[string]string{"Authorization": "Bearer " + auth.IssueToken(id, cfg.TokenSalt)}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
