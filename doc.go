// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the QuickPoll API server.

QuickPoll runs timed single-choice polls: anyone holding a principal token
can open a poll with a question, two or more options and a duration; every
principal votes at most once before the deadline; after the deadline the
creator ends the poll and the tallies become final.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	TOKEN_SALT=change-me go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -token-salt change-me

A .env file in the working directory is loaded when present.

# Configuration

Required settings:

  - TOKEN_SALT (-token-salt): Secret for principal token HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - DATABASE_URL (-d): Journal database (default: file:quickpoll.db)
  - EVENTS_BACKEND (-events): none (default), redis or amqp
  - REDIS_URL, REDIS_CHANNEL: Redis publisher settings
  - AMQP_URL, AMQP_QUEUE: RabbitMQ publisher settings
  - RATE_LIMIT_RPS, RATE_LIMIT_BURST: Per-principal limits on mutations
  - TRUST_PROXY: Take anonymous client IPs from X-Forwarded-For (default false)

# Architecture

All poll state lives in one in-memory poll.Store. Every accepted mutation
is written to the SQL journal before it is applied, and the store is
rebuilt from the journal on startup.

  - poll: the poll store, its rules and events
  - db: SQL journal (SQLite or PostgreSQL)
  - events: Redis/AMQP publishers and the websocket results hub
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, principal tokens, rate limiting, JSON helpers
  - models: Request/response types
  - auth: Principal ids and tokens
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
