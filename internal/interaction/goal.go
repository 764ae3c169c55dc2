package interaction

import "github.com/pscheid92/streampulse/internal/domain"

// SetGoal replaces any existing goal for the stream wholesale and broadcasts
// it. Invalid shapes (unknown type, non-positive target) are silent no-ops.
func (s *Store) SetGoal(streamID string, goalType domain.GoalType, target float64, title string) {
	if goalType != domain.GoalLikes && goalType != domain.GoalDonations {
		return
	}
	if target <= 0 {
		return
	}

	goal := &domain.Goal{Type: goalType, Target: target, Title: title}

	s.mu.Lock()
	s.goals[streamID] = goal
	snapshot := *goal
	s.mu.Unlock()

	s.emitGoal(domain.EventGoalUpdate, streamID, &snapshot)
}

// IncrementGoal adds to the goal's progress and re-broadcasts. An "achieved"
// event fires on the increment that crosses the target; later increments
// beyond the target do not re-fire it.
func (s *Store) IncrementGoal(streamID string, amount float64) {
	if amount <= 0 {
		return
	}

	s.mu.Lock()
	goal, exists := s.goals[streamID]
	if !exists {
		s.mu.Unlock()
		return
	}
	previous := goal.Progress
	goal.Progress += amount
	snapshot := *goal
	s.mu.Unlock()

	s.emitGoal(domain.EventGoalUpdate, streamID, &snapshot)
	if snapshot.Target > 0 && snapshot.Progress >= snapshot.Target && previous < snapshot.Target {
		s.emitGoal(domain.EventGoalAchieved, streamID, &snapshot)
	}
}

// ClearGoal removes the goal and broadcasts a clear event.
func (s *Store) ClearGoal(streamID string) {
	s.mu.Lock()
	_, exists := s.goals[streamID]
	delete(s.goals, streamID)
	s.mu.Unlock()

	if exists {
		s.emitGoal(domain.EventGoalCleared, streamID, nil)
	}
}

// Goal returns a copy of the stream's goal, if any.
func (s *Store) Goal(streamID string) (domain.Goal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	goal, exists := s.goals[streamID]
	if !exists {
		return domain.Goal{}, false
	}
	return *goal, true
}

func (s *Store) emitGoal(eventType, streamID string, goal *domain.Goal) {
	s.emitter.ToRoom(streamID, domain.GoalEvent{
		Type:     eventType,
		StreamID: streamID,
		Goal:     goal,
	})
}
