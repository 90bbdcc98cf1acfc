// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreatePollRequest: question, options, duration_seconds
  - VoteRequest: option_index

# Response Types

Types for JSON responses:

  - IssuePrincipalResponse: principal, token
  - CreatePollResponse: poll_id
  - PollCountResponse: count
  - VoteResponse: poll_id, option_index, message
  - HasVotedResponse: poll_id, principal, has_voted
  - PrincipalInfo: principal, created_polls, voted_polls
  - ErrorResponse: error, message

# Domain Types

  - PollDetails: question, options, creator, is_active, status, deadline
  - PollResults: per-option votes and percentages, total, leaders, final
  - OptionResult: one row of PollResults

# Constants

Status values:

	StatusOpen    = "open"
	StatusExpired = "expired"
	StatusClosed  = "closed"

"expired" means the deadline has passed but the creator has not closed the
poll yet; votes are already refused.
*/
package models
