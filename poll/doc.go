// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package poll holds the authoritative record of polls, voters and tallies.

# Lifecycle

A poll is created open with a fixed question, at least two options and a
deadline. Principals vote once each while the poll is open and the deadline
has not passed. Only the creator may close it, and only once the deadline
has passed:

	store := poll.NewStore()
	ctx := poll.WithPrincipal(context.Background(), "alice")

	id, err := store.CreatePoll(ctx, "Lunch?", []string{"Pizza", "Sushi"}, 3600)
	err = store.Vote(poll.WithPrincipal(ctx, "bob"), id, 1)
	err = store.EndPoll(ctx, id) // ErrVotingStillActive until the deadline

Expiry is a computed predicate (now >= deadline). Nothing flips a poll
closed in the background; a vote after the deadline is rejected with
ErrPollInactive even while the poll is still marked active.

# Identity

The acting principal travels in the context (WithPrincipal). Mutations on a
context without one fail with ErrNoPrincipal.

# Time

The store reads time from a Clock. Production code uses SystemClock; tests
use ManualClock and Advance it to cross deadlines.

# Atomicity

Each mutation checks its preconditions and applies its effects under one
lock. A Journal, when configured, receives the event inside the same
critical section before anything is applied; a journal failure aborts the
mutation. Listeners are called after commit, in commit order.

Restore rebuilds a store from journaled events.
*/
package poll
