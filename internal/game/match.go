package game

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/models"
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/protocol"
)

// timeLayout is the seconds-precision form persisted for match
// timestamps.
const timeLayout = "2006-01-02T15:04:05"

// MoveRecord is one accepted move as it appears in the persisted log.
type MoveRecord struct {
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Symbol Symbol  `json:"symbol"`
	TS     float64 `json:"ts"`
}

// Match is one authoritative game between two clients. The players and
// id are fixed at creation; everything else is guarded by mu. All
// transitions funnel through the terminal flag, so every ending path
// (win, draw, timeout, self-report, disconnect) produces exactly one
// match_end pair.
type Match struct {
	ID        string
	PlayerX   *Client
	PlayerO   *Client
	StartedAt time.Time

	mgr *GameManager

	mu       sync.Mutex
	board    Board
	turn     Symbol
	deadline time.Time
	moves    []MoveRecord
	terminal bool
	timer    *time.Timer
	lastX    int
	lastY    int
}

func newMatch(id string, playerX, playerO *Client, mgr *GameManager) *Match {
	return &Match{
		ID:        id,
		PlayerX:   playerX,
		PlayerO:   playerO,
		StartedAt: time.Now(),
		mgr:       mgr,
		turn:      SymbolX,
		lastX:     -1,
		lastY:     -1,
	}
}

// symbolOf returns the symbol assigned to name, or "" for outsiders.
func (m *Match) symbolOf(name string) Symbol {
	switch name {
	case m.PlayerX.Name:
		return SymbolX
	case m.PlayerO.Name:
		return SymbolO
	}
	return ""
}

func (m *Match) clientFor(sym Symbol) *Client {
	if sym == SymbolX {
		return m.PlayerX
	}
	return m.PlayerO
}

// Start publishes match_start to both players and opens X's first turn.
func (m *Match) Start() {
	m.PlayerX.Send(protocol.MustEncode(protocol.NewMatchStart(string(SymbolX), m.PlayerO.Name, BoardSize)))
	m.PlayerO.Send(protocol.MustEncode(protocol.NewMatchStart(string(SymbolO), m.PlayerX.Name, BoardSize)))
	log.Printf("[MATCH] %s started: X=%s O=%s", m.ID, m.PlayerX.Name, m.PlayerO.Name)

	m.mgr.publishMatchEvent("match_start", m.ID, map[string]interface{}{
		"player_x": m.PlayerX.Name,
		"player_o": m.PlayerO.Name,
	})

	m.mu.Lock()
	m.beginTurnLocked()
	m.mu.Unlock()
}

// beginTurnLocked sets the absolute deadline, tells the current-turn
// player, and arms the timer. Caller holds mu.
func (m *Match) beginTurnLocked() {
	m.deadline = time.Now().Add(ThinkTime)
	m.clientFor(m.turn).Send(protocol.MustEncode(protocol.NewYourTurn(m.deadline.Unix())))
	m.scheduleDeadline(m.turn, m.deadline)
}

// ApplyMove validates and applies one move by actor. Errors are
// recoverable; the session forwards them as error frames.
func (m *Match) ApplyMove(actorName string, x, y int) error {
	sym := m.symbolOf(actorName)
	if sym == "" {
		return ErrNotInMatch
	}

	m.mu.Lock()
	if m.terminal {
		m.mu.Unlock()
		return ErrMatchFinished
	}
	if sym != m.turn {
		m.mu.Unlock()
		return ErrNotYourTurn
	}
	if !InRange(x, y) {
		m.mu.Unlock()
		return fmt.Errorf("Invalid coordinates: x=%d, y=%d", x, y)
	}
	if !m.board.IsEmpty(x, y) {
		m.mu.Unlock()
		return ErrCellOccupied
	}

	m.cancelDeadline()
	m.deadline = time.Time{}
	m.board.Place(x, y, sym)
	m.lastX, m.lastY = x, y
	m.moves = append(m.moves, MoveRecord{
		X:      x,
		Y:      y,
		Symbol: sym,
		TS:     float64(time.Now().UnixNano()) / 1e9,
	})

	actor := m.clientFor(sym)
	opponent := m.clientFor(sym.Other())
	actor.Send(protocol.MustEncode(protocol.NewMoveOK(x, y, string(sym))))
	opponent.Send(protocol.MustEncode(protocol.NewOpponentMove(x, y, string(sym))))

	// Win takes precedence over a full board; the match is terminal
	// from this instant even though match_end trails the highlight.
	if line := m.board.FindWinLine(x, y, sym); line != nil {
		rec := m.finishLocked(actorName, ReasonWin)
		highlight := protocol.MustEncode(protocol.NewHighlight(line, actorName))
		m.PlayerX.Send(highlight)
		m.PlayerO.Send(highlight)
		m.mu.Unlock()

		m.mgr.publishMatchEvent("move", m.ID, map[string]interface{}{"x": x, "y": y, "symbol": sym})
		m.mgr.publishMatchEvent("highlight", m.ID, map[string]interface{}{"cells": line, "winner": actorName})
		time.AfterFunc(HighlightDelay, func() { m.complete(rec, ReasonWin) })
		return nil
	}

	if m.board.IsFull() {
		rec := m.finishLocked(WinnerDraw, ReasonDraw)
		m.mu.Unlock()

		m.mgr.publishMatchEvent("move", m.ID, map[string]interface{}{"x": x, "y": y, "symbol": sym})
		m.complete(rec, ReasonDraw)
		return nil
	}

	m.turn = m.turn.Other()
	m.beginTurnLocked()
	nextTurn := m.turn
	m.mu.Unlock()

	m.mgr.publishMatchEvent("move", m.ID, map[string]interface{}{"x": x, "y": y, "symbol": sym, "turn": nextTurn})
	return nil
}

// OnTimeout is delivered by the armed timer. The (turn, deadline) pair
// captured at arm time is revalidated against current state, so a fire
// racing a cancel is harmless.
func (m *Match) OnTimeout(turnAtArm Symbol, deadlineAtArm time.Time) {
	m.mu.Lock()
	if m.terminal || m.turn != turnAtArm || m.deadline.IsZero() {
		m.mu.Unlock()
		return
	}
	if d := m.deadline.Sub(deadlineAtArm); d > deadlineEpsilon || d < -deadlineEpsilon {
		log.Printf("[TIMER] stale fire for match %s discarded", m.ID)
		m.mu.Unlock()
		return
	}

	winner := m.clientFor(turnAtArm.Other()).Name
	rec := m.finishLocked(winner, ReasonTimeout)
	m.mu.Unlock()

	log.Printf("[MATCH] %s: %s timed out, %s wins", m.ID, m.clientFor(turnAtArm).Name, winner)
	m.complete(rec, ReasonTimeout)
}

// OnClientTimeout is a self-reported deadline miss. It is honored only
// when it is actually the reporter's turn.
func (m *Match) OnClientTimeout(actorName string) error {
	sym := m.symbolOf(actorName)
	if sym == "" {
		return ErrNotInMatch
	}

	m.mu.Lock()
	if m.terminal {
		m.mu.Unlock()
		return ErrMatchFinished
	}
	if sym != m.turn {
		m.mu.Unlock()
		return ErrNotYourTurn
	}

	winner := m.clientFor(sym.Other()).Name
	rec := m.finishLocked(winner, ReasonTimeout)
	m.mu.Unlock()

	m.complete(rec, ReasonTimeout)
	return nil
}

// OnDisconnect forfeits the match for actor if it is still live.
func (m *Match) OnDisconnect(actorName string) {
	sym := m.symbolOf(actorName)
	if sym == "" {
		return
	}

	m.mu.Lock()
	if m.terminal {
		m.mu.Unlock()
		return
	}
	winner := m.clientFor(sym.Other()).Name
	rec := m.finishLocked(winner, ReasonDisconnect)
	m.mu.Unlock()

	log.Printf("[MATCH] %s: %s disconnected, %s wins", m.ID, actorName, winner)
	m.complete(rec, ReasonDisconnect)
}

// RelayChat forwards a chat line to the opponent only. The session has
// already trimmed and length-checked the text.
func (m *Match) RelayChat(actorName, text string) error {
	sym := m.symbolOf(actorName)
	if sym == "" {
		return ErrNotInMatch
	}
	if text == "" || len(text) > MaxChatLen {
		return nil
	}
	m.clientFor(sym.Other()).Send(protocol.MustEncode(protocol.NewChat(actorName, text)))
	return nil
}

// finishLocked flips the terminal flag, disarms the timer and builds
// the durable record. Caller holds mu; first caller wins, later ending
// paths see terminal already set and back off.
func (m *Match) finishLocked(winner, reason string) models.MatchRecord {
	m.terminal = true
	m.cancelDeadline()
	m.deadline = time.Time{}

	movesJSON, err := json.Marshal(m.moves)
	if err != nil {
		log.Printf("[MATCH] %s: marshal moves failed: %v", m.ID, err)
		movesJSON = []byte("[]")
	}
	if m.moves == nil {
		movesJSON = []byte("[]")
	}
	return models.MatchRecord{
		ID:         m.ID,
		PlayerX:    m.PlayerX.Name,
		PlayerO:    m.PlayerO.Name,
		Winner:     winner,
		StartedAt:  m.StartedAt.Format(timeLayout),
		FinishedAt: time.Now().Format(timeLayout),
		Moves:      string(movesJSON),
	}
}

// complete publishes match_end, releases both players back to the
// lobby and persists the record. Runs without mu so it can take the
// manager lock.
func (m *Match) complete(rec models.MatchRecord, reason string) {
	for _, c := range []*Client{m.PlayerX, m.PlayerO} {
		result, winner := ResultDraw, "none"
		if rec.Winner != WinnerDraw {
			if c.Name == rec.Winner {
				result, winner = ResultWin, "you"
			} else {
				result, winner = ResultLose, "opponent"
			}
		}
		c.Send(protocol.MustEncode(protocol.NewMatchEnd(result, reason, winner)))
	}

	m.mgr.removeMatch(m)
	m.mgr.saveHistory(rec)
	m.mgr.publishMatchEvent("match_end", m.ID, map[string]interface{}{
		"winner": rec.Winner,
		"reason": reason,
	})
	log.Printf("[MATCH] %s finished: winner=%s reason=%s moves=%d", m.ID, rec.Winner, reason, len(m.moves))
}

// MatchSummary is one live match as listed by the observer API.
type MatchSummary struct {
	ID        string `json:"id"`
	PlayerX   string `json:"player_x"`
	PlayerO   string `json:"player_o"`
	Turn      Symbol `json:"turn"`
	MoveCount int    `json:"move_count"`
	StartedAt string `json:"started_at"`
}

// MatchSnapshot is a consistent view of one live board.
type MatchSnapshot struct {
	ID       string   `json:"id"`
	PlayerX  string   `json:"player_x"`
	PlayerO  string   `json:"player_o"`
	Board    []string `json:"board"`
	Turn     Symbol   `json:"turn"`
	LastX    int      `json:"last_x"`
	LastY    int      `json:"last_y"`
	LastCell string   `json:"last_cell,omitempty"`
	Deadline int64    `json:"deadline"`
}

// Summary snapshots the listing fields under the match lock.
func (m *Match) Summary() MatchSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MatchSummary{
		ID:        m.ID,
		PlayerX:   m.PlayerX.Name,
		PlayerO:   m.PlayerO.Name,
		Turn:      m.turn,
		MoveCount: len(m.moves),
		StartedAt: m.StartedAt.Format(timeLayout),
	}
}

// Snapshot copies the board under the match lock so observers never
// see a torn grid.
func (m *Match) Snapshot() MatchSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := MatchSnapshot{
		ID:      m.ID,
		PlayerX: m.PlayerX.Name,
		PlayerO: m.PlayerO.Name,
		Board:   m.board.Rows(),
		Turn:    m.turn,
		LastX:   m.lastX,
		LastY:   m.lastY,
	}
	if m.lastX >= 0 {
		snap.LastCell = CellLabel(m.lastX, m.lastY)
	}
	if !m.deadline.IsZero() {
		snap.Deadline = m.deadline.Unix()
	}
	return snap
}

// Moves returns a copy of the move log, for tests and tooling.
func (m *Match) Moves() []MoveRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MoveRecord, len(m.moves))
	copy(out, m.moves)
	return out
}

// Terminal reports whether the match has ended.
func (m *Match) Terminal() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.terminal
}
