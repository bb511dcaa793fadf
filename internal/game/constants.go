package game

import "time"

// Board geometry and the protocol limits. These are fixed by the wire
// protocol and are not configurable.
const (
	BoardSize = 15
	WinLength = 5

	MaxNameLen = 50
	MaxChatLen = 500

	RateLimitRequests = 20
)

// Timing values. Package variables rather than constants so tests can
// shorten them; production always runs the defaults.
var (
	// ThinkTime is how long the current-turn player has to move.
	ThinkTime = 30 * time.Second

	// HighlightDelay is the pause between publishing the winning cells
	// and publishing match_end.
	HighlightDelay = 3 * time.Second

	// BroadcastDebounce coalesces user_list sends after membership churn.
	BroadcastDebounce = 100 * time.Millisecond

	// RateLimitWindow is the sliding window for the per-connection
	// frame limit; RateLimitPenalty is the pause after a rejection.
	RateLimitWindow  = 2 * time.Second
	RateLimitPenalty = 1 * time.Second
)

// deadlineEpsilon bounds how far a timer's recorded deadline may drift
// from the match's current deadline before the fire is treated as stale.
const deadlineEpsilon = 100 * time.Millisecond
