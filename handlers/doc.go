// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the QuickPoll API.

# Handler Types

Each handler is a struct over the shared *poll.Store:

  - PollHandler: poll lifecycle, voting and results
  - PrincipalHandler: principal tokens and per-principal history
  - LiveHandler: websocket subscriptions to a poll's results

	pollHandler := handlers.NewPollHandler(store)

Handlers never touch the database. Persistence happens inside the store
through its journal, so a rejected mutation never reaches SQL.

# Poll Lifecycle

	POST /polls            → CreatePoll (creator = caller)
	POST /polls/{id}/votes → Vote (once per principal, before the deadline)
	POST /polls/{id}/end   → EndPoll (creator only, after the deadline)

A poll is reported as "open" until its deadline, "expired" from the
deadline until its creator ends it, and "closed" afterwards. Votes are
refused from the deadline on even though the poll is still active.

# Errors

Store errors map to status codes in statusFor: unknown poll 404, bad input
400, state conflicts 409, non-creator 403, missing principal 401.

# Results

Summarize turns raw tallies into percentages and the set of leading
options. Ties produce several leaders; results are marked final only
after the poll is ended.
*/
package handlers
