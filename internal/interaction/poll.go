package interaction

import "github.com/pscheid92/streampulse/internal/domain"

// StartPoll creates a poll for the stream, overwriting any prior poll.
// Polls need a question and at least two options; anything else is a silent
// no-op.
func (s *Store) StartPoll(streamID, question string, options []string) {
	if question == "" || len(options) < 2 {
		return
	}

	opts := make([]string, len(options))
	copy(opts, options)

	s.mu.Lock()
	s.polls[streamID] = &pollState{
		poll: domain.Poll{
			Question: question,
			Options:  opts,
			Counts:   make([]int, len(opts)),
			Active:   true,
		},
		voters: make(map[string]struct{}),
	}
	s.mu.Unlock()

	s.emitter.ToRoom(streamID, domain.PollEvent{
		Type:     domain.EventPollStarted,
		StreamID: streamID,
		Question: question,
		Options:  opts,
		Counts:   make([]int, len(opts)),
	})
}

// Vote records one vote per voter key. Inactive polls, repeat voters, and
// out-of-range indexes are silent no-ops. Only the tally is broadcast, never
// the voter set.
func (s *Store) Vote(streamID, voterKey string, optionIndex int) {
	if voterKey == "" {
		return
	}

	s.mu.Lock()
	state, exists := s.polls[streamID]
	if !exists || !state.poll.Active {
		s.mu.Unlock()
		return
	}
	if optionIndex < 0 || optionIndex >= len(state.poll.Options) {
		s.mu.Unlock()
		return
	}
	if _, voted := state.voters[voterKey]; voted {
		s.mu.Unlock()
		return
	}
	state.voters[voterKey] = struct{}{}
	state.poll.Counts[optionIndex]++
	counts := make([]int, len(state.poll.Counts))
	copy(counts, state.poll.Counts)
	s.mu.Unlock()

	s.emitter.ToRoom(streamID, domain.PollEvent{
		Type:     domain.EventPollUpdate,
		StreamID: streamID,
		Counts:   counts,
	})
}

// StopPoll deactivates the poll and broadcasts the final tally.
func (s *Store) StopPoll(streamID string) {
	s.mu.Lock()
	state, exists := s.polls[streamID]
	if !exists || !state.poll.Active {
		s.mu.Unlock()
		return
	}
	state.poll.Active = false
	final := state.poll
	counts := make([]int, len(final.Counts))
	copy(counts, final.Counts)
	s.mu.Unlock()

	s.emitter.ToRoom(streamID, domain.PollEvent{
		Type:     domain.EventPollEnded,
		StreamID: streamID,
		Question: final.Question,
		Options:  final.Options,
		Counts:   counts,
	})
}

// Poll returns a copy of the stream's poll, if any.
func (s *Store) Poll(streamID string) (domain.Poll, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, exists := s.polls[streamID]
	if !exists {
		return domain.Poll{}, false
	}
	poll := state.poll
	poll.Counts = make([]int, len(state.poll.Counts))
	copy(poll.Counts, state.poll.Counts)
	return poll, true
}
