// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db mirrors the poll store into SQL.

# Connecting

Open picks the driver from the configured database type:

	conn, err := db.Open("sqlite", "file:quickpoll.db")
	conn, err := db.Open("postgres", "postgres://...")

SQLite uses modernc.org/sqlite (pure Go); PostgreSQL uses lib/pq.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same DDL runs on both SQLite and PostgreSQL.

# Tables

  - poll: question, creator, creation time, deadline, closure
  - poll_option: ordered option labels (poll_id, idx)
  - vote: one row per (poll_id, voter)

Times are stored as Unix nanoseconds, so a replayed deadline matches the
live one exactly.

# Journal

Journal implements poll.Journal. Each event is written in its own
transaction while the store is locked, so the tables only ever hold
committed history:

	journal := db.NewJournal(conn)
	events, err := journal.Load(ctx)
	store, err := poll.Restore(events, poll.WithJournal(journal))
*/
package db
