// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/quickpoll/poll"
)

var ErrAlreadyJournaled = errors.New("event already journaled")

// Journal persists poll events. It satisfies poll.Journal.
type Journal struct {
	db *sql.DB
}

func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db}
}

// Append writes one event in its own transaction.
func (j *Journal) Append(ctx context.Context, e poll.Event) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	switch e.Kind {
	case poll.EventPollCreated:
		err = appendCreated(ctx, tx, e)
	case poll.EventVoteCast:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO vote (poll_id, voter, option_index, cast_at_ns)
			VALUES ($1, $2, $3, $4)
		`, int64(e.PollID), string(e.Principal), e.OptionIndex, e.At.UnixNano())
	case poll.EventPollEnded:
		err = appendEnded(ctx, tx, e)
	default:
		err = fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", e.Kind, err)
	}
	return nil
}

func appendCreated(ctx context.Context, tx *sql.Tx, e poll.Event) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO poll (id, question, creator, created_at_ns, deadline_ns)
		VALUES ($1, $2, $3, $4, $5)
	`, int64(e.PollID), e.Question, string(e.Principal), e.At.UnixNano(), e.Deadline.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}

	for i, label := range e.Options {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO poll_option (poll_id, idx, label)
			VALUES ($1, $2, $3)
		`, int64(e.PollID), i, label)
		if err != nil {
			return fmt.Errorf("failed to insert option %d: %w", i, err)
		}
	}
	return nil
}

func appendEnded(ctx context.Context, tx *sql.Tx, e poll.Event) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE poll
		SET closed_at_ns = $1, closed_by = $2
		WHERE id = $3 AND closed_at_ns IS NULL
	`, e.At.UnixNano(), string(e.Principal), int64(e.PollID))
	if err != nil {
		return fmt.Errorf("failed to close poll: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to close poll: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("close poll %d: %w", e.PollID, ErrAlreadyJournaled)
	}
	return nil
}

type closure struct {
	pollID uint64
	at     int64
	by     string
}

// Load returns the journaled history in an order poll.Restore accepts:
// every creation by id, then every vote, then every closure.
func (j *Journal) Load(ctx context.Context) ([]poll.Event, error) {
	events, closures, err := j.loadPolls(ctx)
	if err != nil {
		return nil, err
	}

	if err := j.loadOptions(ctx, events); err != nil {
		return nil, err
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT poll_id, voter, option_index, cast_at_ns
		FROM vote
		ORDER BY poll_id, cast_at_ns, voter
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pollID, castAt int64
		var voter string
		var idx int
		if err := rows.Scan(&pollID, &voter, &idx, &castAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		events = append(events, poll.Event{
			Kind:        poll.EventVoteCast,
			PollID:      uint64(pollID),
			Principal:   poll.Principal(voter),
			At:          fromNanos(castAt),
			OptionIndex: idx,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read votes: %w", err)
	}

	for _, c := range closures {
		events = append(events, poll.Event{
			Kind:      poll.EventPollEnded,
			PollID:    c.pollID,
			Principal: poll.Principal(c.by),
			At:        fromNanos(c.at),
		})
	}

	return events, nil
}

func (j *Journal) loadPolls(ctx context.Context) ([]poll.Event, []closure, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, question, creator, created_at_ns, deadline_ns, closed_at_ns, closed_by
		FROM poll
		ORDER BY id
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query polls: %w", err)
	}
	defer rows.Close()

	var events []poll.Event
	var closures []closure
	for rows.Next() {
		var id, createdAt, deadline int64
		var question, creator string
		var closedAt sql.NullInt64
		var closedBy sql.NullString
		if err := rows.Scan(&id, &question, &creator, &createdAt, &deadline, &closedAt, &closedBy); err != nil {
			return nil, nil, fmt.Errorf("failed to scan poll: %w", err)
		}

		events = append(events, poll.Event{
			Kind:      poll.EventPollCreated,
			PollID:    uint64(id),
			Principal: poll.Principal(creator),
			At:        fromNanos(createdAt),
			Question:  question,
			Deadline:  fromNanos(deadline),
		})
		if closedAt.Valid {
			closures = append(closures, closure{pollID: uint64(id), at: closedAt.Int64, by: closedBy.String})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read polls: %w", err)
	}

	return events, closures, nil
}

// loadOptions fills in Options on the creation events, which are indexed by poll id.
func (j *Journal) loadOptions(ctx context.Context, created []poll.Event) error {
	rows, err := j.db.QueryContext(ctx, `
		SELECT poll_id, idx, label
		FROM poll_option
		ORDER BY poll_id, idx
	`)
	if err != nil {
		return fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pollID int64
		var idx int
		var label string
		if err := rows.Scan(&pollID, &idx, &label); err != nil {
			return fmt.Errorf("failed to scan option: %w", err)
		}
		if pollID < 0 || pollID >= int64(len(created)) || created[pollID].PollID != uint64(pollID) {
			return fmt.Errorf("option %d references unknown poll %d", idx, pollID)
		}
		if idx != len(created[pollID].Options) {
			return fmt.Errorf("poll %d: option index %d out of sequence", pollID, idx)
		}
		created[pollID].Options = append(created[pollID].Options, label)
	}
	return rows.Err()
}

func fromNanos(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}
