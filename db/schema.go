// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Open connects to the database and verifies the connection.
func Open(dbType, url string) (*sql.DB, error) {
	var driver string
	switch dbType {
	case TypeSQLite:
		driver = "sqlite"
	case TypePostgres:
		driver = "postgres"
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dbType, err)
	}

	// SQLite has a single writer; an in-memory database also only exists per connection
	if dbType == TypeSQLite {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dbType, err)
	}

	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Polls
CREATE TABLE IF NOT EXISTS poll (
    id BIGINT PRIMARY KEY,
    question TEXT NOT NULL,
    creator TEXT NOT NULL,
    created_at_ns BIGINT NOT NULL,
    deadline_ns BIGINT NOT NULL,
    closed_at_ns BIGINT,
    closed_by TEXT
);

CREATE INDEX IF NOT EXISTS idx_poll_creator ON poll(creator);

-- Options
CREATE TABLE IF NOT EXISTS poll_option (
    poll_id BIGINT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    idx INTEGER NOT NULL,
    label TEXT NOT NULL,
    PRIMARY KEY (poll_id, idx)
);

-- Votes
CREATE TABLE IF NOT EXISTS vote (
    poll_id BIGINT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    voter TEXT NOT NULL,
    option_index INTEGER NOT NULL,
    cast_at_ns BIGINT NOT NULL,
    PRIMARY KEY (poll_id, voter)
);

CREATE INDEX IF NOT EXISTS idx_vote_voter ON vote(voter);
`
