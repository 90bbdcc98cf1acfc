// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/danielhkuo/quickpoll/models"
	"github.com/danielhkuo/quickpoll/testutil"
)

// TestConcurrentVotes tests many voters hitting the same poll at once
func TestConcurrentVotes(t *testing.T) {
	f := newFixture(t)
	id := testutil.CreateTestPoll(t, f.store, "alice", []string{"a", "b", "c"}, 60)

	const numVoters = 60
	var wg sync.WaitGroup
	codes := make([]int, numVoters)

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, headers := f.principal()
			req := testutil.MakeRequest("POST", "/polls/0/votes", models.VoteRequest{OptionIndex: intPtr(i % 3)}, headers)
			req.SetPathValue("id", "0")
			codes[i] = f.serve(f.polls.Vote, req).Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		if code != http.StatusCreated {
			t.Errorf("Voter %d: expected 201, got %d", i, code)
		}
	}

	res, _ := f.store.Results(id)
	for i, c := range res.VoteCounts {
		if c != numVoters/3 {
			t.Errorf("Option %d: expected %d votes, got %d", i, numVoters/3, c)
		}
	}
}

// TestConcurrentDuplicateVotes tests that one principal racing itself votes once
func TestConcurrentDuplicateVotes(t *testing.T) {
	f := newFixture(t)
	id := testutil.CreateTestPoll(t, f.store, "alice", []string{"a", "b"}, 60)
	_, headers := f.principal()

	const attempts = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	created, conflicts := 0, 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := testutil.MakeRequest("POST", "/polls/0/votes", models.VoteRequest{OptionIndex: intPtr(i % 2)}, headers)
			req.SetPathValue("id", "0")
			code := f.serve(f.polls.Vote, req).Code

			mu.Lock()
			defer mu.Unlock()
			switch code {
			case http.StatusCreated:
				created++
			case http.StatusConflict:
				conflicts++
			default:
				t.Errorf("Unexpected status %d", code)
			}
		}(i)
	}
	wg.Wait()

	if created != 1 || conflicts != attempts-1 {
		t.Errorf("Expected 1 success and %d conflicts, got %d and %d", attempts-1, created, conflicts)
	}

	res, _ := f.store.Results(id)
	if res.VoteCounts[0]+res.VoteCounts[1] != 1 {
		t.Errorf("Expected exactly one vote, got %v", res.VoteCounts)
	}
}

// TestConcurrentCreates tests that concurrent creations get dense, unique ids
func TestConcurrentCreates(t *testing.T) {
	f := newFixture(t)
	_, headers := f.principal()

	const numPolls = 40
	var wg sync.WaitGroup
	ids := make([]uint64, numPolls)

	for i := 0; i < numPolls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := testutil.MakeRequest("POST", "/polls", models.CreatePollRequest{
				Question: "Q", Options: []string{"a", "b"}, DurationSeconds: 60,
			}, headers)
			w := f.serve(f.polls.CreatePoll, req)
			if w.Code != http.StatusCreated {
				t.Errorf("Expected 201, got %d", w.Code)
				return
			}
			var resp models.CreatePollResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Errorf("Failed to decode response: %v", err)
				return
			}
			ids[i] = resp.PollID
		}(i)
	}
	wg.Wait()

	seen := make(map[uint64]bool)
	for _, id := range ids {
		if id >= numPolls || seen[id] {
			t.Errorf("Id %d is out of range or duplicated", id)
		}
		seen[id] = true
	}
	if f.store.PollCount() != numPolls {
		t.Errorf("Expected %d polls, got %d", numPolls, f.store.PollCount())
	}
}
