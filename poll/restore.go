// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import "fmt"

// Restore rebuilds a store by replaying events in order. Deadlines and
// creator checks are not re-evaluated, but the structural rules are: ids must
// be dense, option indexes in range, one vote per principal, one close per poll.
//
// The journal passed via opts is not written to during replay. Listeners are
// not called either.
func Restore(events []Event, opts ...StoreOption) (*Store, error) {
	s := NewStore(opts...)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, ev := range events {
		if err := s.validateLocked(ev, false); err != nil {
			return nil, fmt.Errorf("replay event %d (%s, poll %d): %w", i, ev.Kind, ev.PollID, err)
		}
		s.applyLocked(ev)
	}
	return s, nil
}
