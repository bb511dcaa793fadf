// Package history persists finished matches. One row per match,
// upserted by id; writes are serialized so Save is callable from any
// goroutine.
package history

import (
	"database/sql"
	"errors"
	"log"
	"sync"

	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/models"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no row exists for a match id.
var ErrNotFound = errors.New("match not found")

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Store is the append-only finished-match store.
type Store struct {
	db *sqlx.DB
	mu sync.Mutex
}

// NewStore wraps a database handle. A nil handle is allowed; Save then
// logs and drops records, which keeps the game path alive without
// PostgreSQL.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Save upserts one finished match. Failures are the caller's to log;
// they never affect match termination.
func (s *Store) Save(rec models.MatchRecord) error {
	if s.db == nil {
		log.Printf("[DB] no database, dropping record for match %s", rec.ID)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO matches (id, player_x, player_o, winner, started_at, finished_at, moves)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			player_x = EXCLUDED.player_x,
			player_o = EXCLUDED.player_o,
			winner = EXCLUDED.winner,
			started_at = EXCLUDED.started_at,
			finished_at = EXCLUDED.finished_at,
			moves = EXCLUDED.moves
	`, rec.ID, rec.PlayerX, rec.PlayerO, rec.Winner, rec.StartedAt, rec.FinishedAt, rec.Moves)
	return err
}

// Recent returns up to limit finished matches, newest first, with the
// moves column omitted.
func (s *Store) Recent(limit int) ([]models.MatchRecord, error) {
	if s.db == nil {
		return nil, errors.New("no database")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	var recs []models.MatchRecord
	err := s.db.Select(&recs, `
		SELECT id, player_x, player_o, winner, started_at, finished_at, '' AS moves
		FROM matches
		ORDER BY finished_at DESC, id DESC
		LIMIT $1
	`, limit)
	return recs, err
}

// Get returns one finished match including its moves JSON.
func (s *Store) Get(id string) (*models.MatchRecord, error) {
	if s.db == nil {
		return nil, errors.New("no database")
	}

	var rec models.MatchRecord
	err := s.db.Get(&rec, `
		SELECT id, player_x, player_o, winner, started_at, finished_at, moves
		FROM matches
		WHERE id = $1
	`, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
