// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/quickpoll/cliparse"
	"github.com/danielhkuo/quickpoll/middleware"
	"github.com/danielhkuo/quickpoll/models"
	"github.com/danielhkuo/quickpoll/poll"
	"github.com/danielhkuo/quickpoll/testutil"
)

type fixture struct {
	store *poll.Store
	clock *poll.ManualClock
	cfg   cliparse.Config
	polls *PollHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, clock := testutil.NewTestStore(t)
	return &fixture{
		store: store,
		clock: clock,
		cfg:   testutil.GetTestConfig(),
		polls: NewPollHandler(store),
	}
}

// serve runs h behind the principal middleware, as the router does
func (f *fixture) serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	middleware.WithPrincipal(f.cfg.TokenSalt, h)(w, req)
	return w
}

func (f *fixture) principal() (string, map[string]string) {
	return testutil.NewTestPrincipal(f.cfg)
}

func TestCreatePoll(t *testing.T) {
	f := newFixture(t)
	_, headers := f.principal()

	testCases := []struct {
		name           string
		body           interface{}
		headers        map[string]string
		expectedStatus int
	}{
		{
			name:           "valid poll",
			body:           models.CreatePollRequest{Question: "Favorite Color?", Options: []string{"Red", "Blue", "Green"}, DurationSeconds: 60},
			headers:        headers,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing principal",
			body:           models.CreatePollRequest{Question: "Q", Options: []string{"a", "b"}, DurationSeconds: 60},
			headers:        nil,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "empty question",
			body:           models.CreatePollRequest{Question: "   ", Options: []string{"a", "b"}, DurationSeconds: 60},
			headers:        headers,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "single option",
			body:           models.CreatePollRequest{Question: "Q", Options: []string{"Single Option"}, DurationSeconds: 60},
			headers:        headers,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "blank option",
			body:           models.CreatePollRequest{Question: "Q", Options: []string{"a", ""}, DurationSeconds: 60},
			headers:        headers,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "zero duration",
			body:           models.CreatePollRequest{Question: "Q", Options: []string{"a", "b"}, DurationSeconds: 0},
			headers:        headers,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "negative duration",
			body:           models.CreatePollRequest{Question: "Q", Options: []string{"a", "b"}, DurationSeconds: -5},
			headers:        headers,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/polls", tc.body, tc.headers)
			w := f.serve(f.polls.CreatePoll, req)
			testutil.AssertStatus(t, w, tc.expectedStatus)
		})
	}

	// only the valid poll was stored
	if f.store.PollCount() != 1 {
		t.Errorf("Expected 1 poll, got %d", f.store.PollCount())
	}
}

func TestCreatePoll_InvalidJSON(t *testing.T) {
	f := newFixture(t)
	_, headers := f.principal()

	req := httptest.NewRequest("POST", "/polls", strings.NewReader("{not json"))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := f.serve(f.polls.CreatePoll, req)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestCreatePoll_SequentialIDs(t *testing.T) {
	f := newFixture(t)
	creator, headers := f.principal()

	for want := uint64(0); want < 3; want++ {
		req := testutil.MakeRequest("POST", "/polls", models.CreatePollRequest{
			Question: "Q", Options: []string{"a", "b"}, DurationSeconds: 60,
		}, headers)
		w := f.serve(f.polls.CreatePoll, req)
		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.CreatePollResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.PollID != want {
			t.Errorf("Expected poll_id %d, got %d", want, resp.PollID)
		}
	}

	d, _ := f.store.PollDetails(2)
	if string(d.Creator) != creator {
		t.Errorf("Expected creator %s, got %s", creator, d.Creator)
	}
}

func TestGetPoll(t *testing.T) {
	f := newFixture(t)
	id := testutil.CreateTestPoll(t, f.store, "alice", []string{"Yes", "No"}, 60)

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", path, nil)
		req.SetPathValue("id", strings.Split(path, "/")[2])
		return f.serve(f.polls.GetPoll, req)
	}

	t.Run("open", func(t *testing.T) {
		w := get("/polls/0")
		testutil.AssertStatus(t, w, http.StatusOK)

		var d models.PollDetails
		testutil.AssertJSON(t, w, &d)
		if d.ID != id || d.Question != "Test Poll" || d.Creator != "alice" {
			t.Errorf("Unexpected details: %+v", d)
		}
		if !d.IsActive || d.Status != models.StatusOpen {
			t.Errorf("Expected open active poll, got %s active=%v", d.Status, d.IsActive)
		}
		if !d.Deadline.Equal(testutil.Epoch.Add(time.Minute)) {
			t.Errorf("Expected deadline %v, got %v", testutil.Epoch.Add(time.Minute), d.Deadline)
		}
	})

	t.Run("expired", func(t *testing.T) {
		f.clock.Advance(time.Minute)
		var d models.PollDetails
		testutil.AssertJSON(t, get("/polls/0"), &d)
		if !d.IsActive || d.Status != models.StatusExpired {
			t.Errorf("Expected expired active poll, got %s active=%v", d.Status, d.IsActive)
		}
	})

	t.Run("closed", func(t *testing.T) {
		if err := f.store.EndPoll(testutil.As("alice"), id); err != nil {
			t.Fatal(err)
		}
		var d models.PollDetails
		testutil.AssertJSON(t, get("/polls/0"), &d)
		if d.IsActive || d.Status != models.StatusClosed {
			t.Errorf("Expected closed poll, got %s active=%v", d.Status, d.IsActive)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		testutil.AssertStatus(t, get("/polls/99"), http.StatusNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		testutil.AssertStatus(t, get("/polls/abc"), http.StatusBadRequest)
		testutil.AssertStatus(t, get("/polls/-1"), http.StatusBadRequest)
	})
}

func TestListPolls(t *testing.T) {
	f := newFixture(t)
	testutil.CreateTestPoll(t, f.store, "alice", []string{"a", "b"}, 60)
	testutil.CreateTestPoll(t, f.store, "bob", []string{"a", "b"}, 3600)
	testutil.CreateTestPoll(t, f.store, "alice", []string{"a", "b"}, 60)

	f.clock.Advance(2 * time.Minute)
	if err := f.store.EndPoll(testutil.As("alice"), 2); err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name     string
		query    string
		expected []uint64
		status   int
	}{
		{"all", "", []uint64{0, 1, 2}, http.StatusOK},
		{"open", "?status=open", []uint64{1}, http.StatusOK},
		{"expired", "?status=expired", []uint64{0}, http.StatusOK},
		{"closed", "?status=closed", []uint64{2}, http.StatusOK},
		{"by creator", "?creator=alice", []uint64{0, 2}, http.StatusOK},
		{"no match", "?creator=nobody", []uint64{}, http.StatusOK},
		{"bad status", "?status=draft", nil, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/polls"+tc.query, nil)
			w := f.serve(f.polls.ListPolls, req)
			testutil.AssertStatus(t, w, tc.status)
			if tc.status != http.StatusOK {
				return
			}

			var polls []models.PollDetails
			testutil.AssertJSON(t, w, &polls)
			if len(polls) != len(tc.expected) {
				t.Fatalf("Expected %d polls, got %d", len(tc.expected), len(polls))
			}
			for i, p := range polls {
				if p.ID != tc.expected[i] {
					t.Errorf("Expected poll %d at %d, got %d", tc.expected[i], i, p.ID)
				}
			}
		})
	}
}

func TestPollCount(t *testing.T) {
	f := newFixture(t)

	count := func() uint64 {
		w := f.serve(f.polls.PollCount, httptest.NewRequest("GET", "/polls/count", nil))
		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.PollCountResponse
		testutil.AssertJSON(t, w, &resp)
		return resp.Count
	}

	if got := count(); got != 0 {
		t.Errorf("Expected 0 polls, got %d", got)
	}
	testutil.CreateTestPoll(t, f.store, "alice", []string{"a", "b"}, 60)
	testutil.CreateTestPoll(t, f.store, "alice", []string{"a", "b"}, 60)
	if got := count(); got != 2 {
		t.Errorf("Expected 2 polls, got %d", got)
	}
}

func intPtr(i int) *int { return &i }

func TestVote(t *testing.T) {
	f := newFixture(t)
	testutil.CreateTestPoll(t, f.store, "alice", []string{"Option A", "Option B"}, 60)
	_, voter := f.principal()
	_, other := f.principal()

	testCases := []struct {
		name           string
		pollID         string
		body           interface{}
		headers        map[string]string
		expectedStatus int
	}{
		{"valid vote", "0", models.VoteRequest{OptionIndex: intPtr(1)}, voter, http.StatusCreated},
		{"duplicate vote", "0", models.VoteRequest{OptionIndex: intPtr(0)}, voter, http.StatusConflict},
		{"missing option_index", "0", map[string]string{}, other, http.StatusBadRequest},
		{"option out of range", "0", models.VoteRequest{OptionIndex: intPtr(2)}, other, http.StatusBadRequest},
		{"negative option", "0", models.VoteRequest{OptionIndex: intPtr(-1)}, other, http.StatusBadRequest},
		{"unknown poll", "7", models.VoteRequest{OptionIndex: intPtr(0)}, other, http.StatusNotFound},
		{"no principal", "0", models.VoteRequest{OptionIndex: intPtr(0)}, nil, http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/polls/"+tc.pollID+"/votes", tc.body, tc.headers)
			req.SetPathValue("id", tc.pollID)
			w := f.serve(f.polls.Vote, req)
			testutil.AssertStatus(t, w, tc.expectedStatus)
		})
	}

	res, _ := f.store.Results(0)
	if res.VoteCounts[0] != 0 || res.VoteCounts[1] != 1 {
		t.Errorf("Expected tallies [0 1], got %v", res.VoteCounts)
	}
}

func TestVote_AfterDeadline(t *testing.T) {
	f := newFixture(t)
	testutil.CreateTestPoll(t, f.store, "alice", []string{"a", "b"}, 60)
	f.clock.Advance(60 * time.Second)

	_, voter := f.principal()
	req := testutil.MakeRequest("POST", "/polls/0/votes", models.VoteRequest{OptionIndex: intPtr(0)}, voter)
	req.SetPathValue("id", "0")
	w := f.serve(f.polls.Vote, req)
	testutil.AssertStatus(t, w, http.StatusConflict)

	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Message != poll.ErrPollInactive.Error() {
		t.Errorf("Expected message %q, got %q", poll.ErrPollInactive.Error(), resp.Message)
	}
}

func TestEndPoll(t *testing.T) {
	f := newFixture(t)
	creator, creatorHeaders := f.principal()
	_, otherHeaders := f.principal()

	id := testutil.CreateTestPoll(t, f.store, creator, []string{"a", "b"}, 60)
	testutil.CastTestVote(t, f.store, "voter", id, 0)

	end := func(headers map[string]string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/polls/0/end", nil, headers)
		req.SetPathValue("id", "0")
		return f.serve(f.polls.EndPoll, req)
	}

	testutil.AssertStatus(t, end(creatorHeaders), http.StatusConflict)

	f.clock.Advance(time.Minute)
	testutil.AssertStatus(t, end(otherHeaders), http.StatusForbidden)
	testutil.AssertStatus(t, end(nil), http.StatusUnauthorized)

	w := end(creatorHeaders)
	testutil.AssertStatus(t, w, http.StatusOK)
	var d models.PollDetails
	testutil.AssertJSON(t, w, &d)
	if d.IsActive || d.Status != models.StatusClosed {
		t.Errorf("Expected closed poll, got %+v", d)
	}

	testutil.AssertStatus(t, end(creatorHeaders), http.StatusConflict)
}

func TestStatusFor(t *testing.T) {
	testCases := []struct {
		err      error
		expected int
	}{
		{poll.ErrPollNotFound, http.StatusNotFound},
		{poll.ErrInvalidQuestion, http.StatusBadRequest},
		{poll.ErrInvalidOptions, http.StatusBadRequest},
		{poll.ErrInvalidDuration, http.StatusBadRequest},
		{poll.ErrInvalidOption, http.StatusBadRequest},
		{poll.ErrPollInactive, http.StatusConflict},
		{poll.ErrDuplicateVote, http.StatusConflict},
		{poll.ErrVotingStillActive, http.StatusConflict},
		{poll.ErrAlreadyClosed, http.StatusConflict},
		{poll.ErrNotCreator, http.StatusForbidden},
		{poll.ErrNoPrincipal, http.StatusUnauthorized},
		{http.ErrHandlerTimeout, http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			if got := statusFor(tc.err); got != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, got)
			}
		})
	}
}
