package game

import "time"

// Turn timer. At most one timer is armed per match; arming captures
// the (turn, deadline) pair and OnTimeout revalidates it, so cancel is
// only best-effort and a fire racing a cancel resolves safely. The
// timer itself holds no lock while waiting.

// scheduleDeadline arms the deadline timer for the current turn.
// Caller holds m.mu; any previous timer was already cancelled.
func (m *Match) scheduleDeadline(turn Symbol, deadline time.Time) {
	m.timer = time.AfterFunc(time.Until(deadline), func() {
		m.OnTimeout(turn, deadline)
	})
}

// cancelDeadline disarms the current timer if one is pending. Caller
// holds m.mu.
func (m *Match) cancelDeadline() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
