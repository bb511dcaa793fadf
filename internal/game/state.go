package game

import "errors"

// Symbol is a player's mark. The challenger is X and moves first.
type Symbol string

const (
	SymbolX Symbol = "X"
	SymbolO Symbol = "O"
)

// Other returns the opposing symbol.
func (s Symbol) Other() Symbol {
	if s == SymbolX {
		return SymbolO
	}
	return SymbolX
}

// Match end reasons as they appear in match_end frames.
const (
	ReasonWin        = "win"
	ReasonTimeout    = "timeout"
	ReasonDisconnect = "disconnect"
	ReasonDraw       = "draw"
)

// Per-recipient results in match_end frames.
const (
	ResultWin  = "win"
	ResultLose = "lose"
	ResultDraw = "draw"
)

// WinnerDraw is the winner sentinel persisted for drawn matches.
const WinnerDraw = "draw"

// Recoverable protocol errors. The messages are the exact strings sent
// in error frames, so they are capitalized for the wire.
var (
	ErrInvalidName          = errors.New("Invalid name (1-50 characters)")
	ErrNameInUse            = errors.New("Name already in use")
	ErrOpponentNotFound     = errors.New("Opponent not found")
	ErrSelfChallenge        = errors.New("Cannot challenge yourself")
	ErrAlreadyInMatch       = errors.New("You are already in a match")
	ErrOpponentInMatch      = errors.New("Opponent is already in a match")
	ErrChallengeAlreadySent = errors.New("Challenge already sent")
	ErrNoInvite             = errors.New("No invite found")
	ErrOpponentOffline      = errors.New("Challenger is offline")
	ErrSomeoneInMatch       = errors.New("Someone is already in a match")
	ErrNotInMatch           = errors.New("Not in a match")
	ErrNotYourTurn          = errors.New("Not your turn")
	ErrCellOccupied         = errors.New("Cell occupied")
	ErrMatchFinished        = errors.New("Match already finished")
)
