package interaction

import "github.com/pscheid92/streampulse/internal/domain"

// PinMessage replaces the stream's pinned message and broadcasts it.
func (s *Store) PinMessage(streamID, messageID, authorName, text, pinnedBy string) {
	if messageID == "" || text == "" {
		return
	}

	pinned := &domain.PinnedMessage{
		MessageID:  messageID,
		AuthorName: authorName,
		Text:       text,
		PinnedBy:   pinnedBy,
		PinnedAt:   s.clock.Now(),
	}

	s.mu.Lock()
	s.pins[streamID] = pinned
	snapshot := *pinned
	s.mu.Unlock()

	s.emitter.ToRoom(streamID, domain.PinEvent{
		Type:     domain.EventMessagePinned,
		StreamID: streamID,
		Pinned:   &snapshot,
	})
}

// UnpinMessage removes the pinned message and broadcasts the removal.
func (s *Store) UnpinMessage(streamID string) {
	s.mu.Lock()
	_, exists := s.pins[streamID]
	delete(s.pins, streamID)
	s.mu.Unlock()

	if exists {
		s.emitter.ToRoom(streamID, domain.PinEvent{
			Type:     domain.EventMessageUnpinned,
			StreamID: streamID,
		})
	}
}

// PinnedMessage returns a copy of the stream's pinned message, if any.
func (s *Store) PinnedMessage(streamID string) (domain.PinnedMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pinned, exists := s.pins[streamID]
	if !exists {
		return domain.PinnedMessage{}, false
	}
	return *pinned, true
}
