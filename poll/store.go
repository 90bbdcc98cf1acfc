// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

const maxDurationSeconds = math.MaxInt64 / int64(time.Second)

// Details is a read-only view of a poll.
type Details struct {
	ID        uint64
	Question  string
	Options   []string
	Creator   Principal
	IsActive  bool
	CreatedAt time.Time
	Deadline  time.Time
}

// Expired reports whether the voting window has elapsed at now.
func (d Details) Expired(now time.Time) bool {
	return !now.Before(d.Deadline)
}

// Results is a copy of a poll's tallies, index-aligned with Options.
type Results struct {
	PollID     uint64
	Options    []string
	VoteCounts []uint64
	IsActive   bool
}

// Total is the number of votes cast.
func (r Results) Total() uint64 {
	var total uint64
	for _, c := range r.VoteCounts {
		total += c
	}
	return total
}

type record struct {
	id        uint64
	question  string
	options   []string
	creator   Principal
	createdAt time.Time
	deadline  time.Time
	active    bool
	counts    []uint64
	voters    map[Principal]struct{}
}

func (r *record) details() Details {
	return Details{
		ID:        r.id,
		Question:  r.question,
		Options:   append([]string(nil), r.options...),
		Creator:   r.creator,
		IsActive:  r.active,
		CreatedAt: r.createdAt,
		Deadline:  r.deadline,
	}
}

func (r *record) mustHoldInvariants() {
	if len(r.options) != len(r.counts) {
		panic(fmt.Sprintf("poll %d: invariant violated: %d options, %d tallies", r.id, len(r.options), len(r.counts)))
	}
	var sum uint64
	for _, c := range r.counts {
		sum += c
	}
	if sum != uint64(len(r.voters)) {
		panic(fmt.Sprintf("poll %d: invariant violated: %d votes, %d voters", r.id, sum, len(r.voters)))
	}
}

// Store is the authoritative, in-process collection of polls.
// All methods are safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	polls     []*record
	clock     Clock
	journal   Journal
	listeners []Listener

	// committed is the number of events assigned a delivery turn; it is only
	// advanced under mu. delivered counts the events whose listeners have
	// returned. Listeners for event n run once delivered == n, after mu has
	// been released, so a listener may read the store.
	committed  uint64
	notifyMu   sync.Mutex
	notifyCond *sync.Cond
	delivered  uint64
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock replaces the wall clock.
func WithClock(c Clock) StoreOption {
	return func(s *Store) { s.clock = c }
}

// WithJournal makes every mutation write through j before it is applied.
func WithJournal(j Journal) StoreOption {
	return func(s *Store) { s.journal = j }
}

// WithListener registers l for committed events. Listeners may read the
// store but must not mutate it.
func WithListener(l Listener) StoreOption {
	return func(s *Store) { s.listeners = append(s.listeners, l) }
}

// NewStore returns an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{clock: SystemClock{}}
	s.notifyCond = sync.NewCond(&s.notifyMu)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.clock.Now()
}

// CreatePoll opens a new poll owned by the context's principal and returns its id.
func (s *Store) CreatePoll(ctx context.Context, question string, options []string, durationSeconds int64) (uint64, error) {
	creator, ok := PrincipalFrom(ctx)
	if !ok {
		return 0, ErrNoPrincipal
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return 0, ErrInvalidQuestion
	}
	if len(options) < 2 {
		return 0, ErrInvalidOptions
	}
	labels := make([]string, len(options))
	for i, o := range options {
		labels[i] = strings.TrimSpace(o)
		if labels[i] == "" {
			return 0, fmt.Errorf("option %d is blank: %w", i, ErrInvalidOptions)
		}
	}
	if durationSeconds <= 0 || durationSeconds > maxDurationSeconds {
		return 0, ErrInvalidDuration
	}

	s.mu.Lock()
	now := s.clock.Now()
	ev := Event{
		Kind:      EventPollCreated,
		PollID:    uint64(len(s.polls)),
		Principal: creator,
		At:        now,
		Question:  question,
		Options:   labels,
		Deadline:  now.Add(time.Duration(durationSeconds) * time.Second),
	}
	if err := s.commitLocked(ctx, ev); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	s.publishAndUnlock(ev)

	return ev.PollID, nil
}

// Vote records the context's principal as voting for optionIndex.
func (s *Store) Vote(ctx context.Context, pollID uint64, optionIndex int) error {
	voter, ok := PrincipalFrom(ctx)
	if !ok {
		return ErrNoPrincipal
	}

	s.mu.Lock()
	ev := Event{
		Kind:        EventVoteCast,
		PollID:      pollID,
		Principal:   voter,
		At:          s.clock.Now(),
		OptionIndex: optionIndex,
	}
	if err := s.commitLocked(ctx, ev); err != nil {
		s.mu.Unlock()
		return err
	}
	s.publishAndUnlock(ev)
	return nil
}

// EndPoll closes a poll. Only its creator may do so, once the deadline has passed.
func (s *Store) EndPoll(ctx context.Context, pollID uint64) error {
	caller, ok := PrincipalFrom(ctx)
	if !ok {
		return ErrNoPrincipal
	}

	s.mu.Lock()
	ev := Event{
		Kind:      EventPollEnded,
		PollID:    pollID,
		Principal: caller,
		At:        s.clock.Now(),
	}
	if err := s.commitLocked(ctx, ev); err != nil {
		s.mu.Unlock()
		return err
	}
	s.publishAndUnlock(ev)
	return nil
}

// PollCount returns the number of polls ever created.
func (s *Store) PollCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.polls))
}

// PollDetails returns a copy of the poll's metadata and status.
func (s *Store) PollDetails(pollID uint64) (Details, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, err := s.lookupLocked(pollID)
	if err != nil {
		return Details{}, err
	}
	return r.details(), nil
}

// Results returns the current tallies. They are provisional while the poll is active.
func (s *Store) Results(pollID uint64) (Results, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, err := s.lookupLocked(pollID)
	if err != nil {
		return Results{}, err
	}
	return Results{
		PollID:     r.id,
		Options:    append([]string(nil), r.options...),
		VoteCounts: append([]uint64(nil), r.counts...),
		IsActive:   r.active,
	}, nil
}

// HasUserVoted reports whether p has voted in the poll.
func (s *Store) HasUserVoted(pollID uint64, p Principal) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, err := s.lookupLocked(pollID)
	if err != nil {
		return false, err
	}
	_, voted := r.voters[p]
	return voted, nil
}

// Polls returns details for every poll, in id order.
func (s *Store) Polls() []Details {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Details, len(s.polls))
	for i, r := range s.polls {
		out[i] = r.details()
	}
	return out
}

// Participation lists the polls p created and the polls p voted in.
func (s *Store) Participation(p Principal) (created, voted []uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	created, voted = []uint64{}, []uint64{}
	for _, r := range s.polls {
		if r.creator == p {
			created = append(created, r.id)
		}
		if _, ok := r.voters[p]; ok {
			voted = append(voted, r.id)
		}
	}
	return created, voted
}

func (s *Store) lookupLocked(pollID uint64) (*record, error) {
	if pollID >= uint64(len(s.polls)) {
		return nil, ErrPollNotFound
	}
	return s.polls[pollID], nil
}

// commitLocked validates ev against the current state, journals it and applies it.
func (s *Store) commitLocked(ctx context.Context, ev Event) error {
	if err := s.validateLocked(ev, true); err != nil {
		return err
	}
	if s.journal != nil {
		if err := s.journal.Append(ctx, ev); err != nil {
			return fmt.Errorf("journal %s for poll %d: %w", ev.Kind, ev.PollID, err)
		}
	}
	s.applyLocked(ev)
	return nil
}

// validateLocked checks ev's preconditions. Time and ownership rules only apply
// to live mutations; replayed events were already accepted once.
func (s *Store) validateLocked(ev Event, live bool) error {
	switch ev.Kind {
	case EventPollCreated:
		if ev.PollID != uint64(len(s.polls)) {
			return fmt.Errorf("poll id %d out of sequence, next is %d", ev.PollID, len(s.polls))
		}
		if len(ev.Options) < 2 {
			return ErrInvalidOptions
		}
		return nil

	case EventVoteCast:
		r, err := s.lookupLocked(ev.PollID)
		if err != nil {
			return err
		}
		if ev.OptionIndex < 0 || ev.OptionIndex >= len(r.options) {
			return ErrInvalidOption
		}
		if !r.active {
			return ErrPollInactive
		}
		if live && !ev.At.Before(r.deadline) {
			return ErrPollInactive
		}
		if _, ok := r.voters[ev.Principal]; ok {
			return ErrDuplicateVote
		}
		return nil

	case EventPollEnded:
		r, err := s.lookupLocked(ev.PollID)
		if err != nil {
			return err
		}
		if live {
			if ev.Principal != r.creator {
				return ErrNotCreator
			}
			if ev.At.Before(r.deadline) {
				return ErrVotingStillActive
			}
		}
		if !r.active {
			return ErrAlreadyClosed
		}
		return nil
	}

	return fmt.Errorf("unknown event kind %q", ev.Kind)
}

func (s *Store) applyLocked(ev Event) {
	switch ev.Kind {
	case EventPollCreated:
		r := &record{
			id:        ev.PollID,
			question:  ev.Question,
			options:   append([]string(nil), ev.Options...),
			creator:   ev.Principal,
			createdAt: ev.At,
			deadline:  ev.Deadline,
			active:    true,
			counts:    make([]uint64, len(ev.Options)),
			voters:    make(map[Principal]struct{}),
		}
		s.polls = append(s.polls, r)
		r.mustHoldInvariants()

	case EventVoteCast:
		r := s.polls[ev.PollID]
		r.voters[ev.Principal] = struct{}{}
		r.counts[ev.OptionIndex]++
		r.mustHoldInvariants()

	case EventPollEnded:
		s.polls[ev.PollID].active = false
	}
}

// publishAndUnlock releases the store lock and hands ev to the listeners.
// Events are delivered in commit order.
func (s *Store) publishAndUnlock(ev Event) {
	if len(s.listeners) == 0 {
		s.mu.Unlock()
		return
	}
	turn := s.committed
	s.committed++
	s.mu.Unlock()

	s.notifyMu.Lock()
	for s.delivered != turn {
		s.notifyCond.Wait()
	}
	s.notifyMu.Unlock()

	defer func() {
		s.notifyMu.Lock()
		s.delivered++
		s.notifyCond.Broadcast()
		s.notifyMu.Unlock()
	}()

	for _, l := range s.listeners {
		l(ev)
	}
}
