package models

import (
	"database/sql"
	"time"
)

// MatchRecord is a finished match as stored in the matches table.
// Timestamps are seconds-precision ISO strings and Moves is the raw
// JSON move log, both kept as TEXT so the API returns them verbatim.
type MatchRecord struct {
	ID         string `db:"id" json:"id"`
	PlayerX    string `db:"player_x" json:"player_x"`
	PlayerO    string `db:"player_o" json:"player_o"`
	Winner     string `db:"winner" json:"winner"`
	StartedAt  string `db:"started_at" json:"started_at"`
	FinishedAt string `db:"finished_at" json:"finished_at"`
	Moves      string `db:"moves" json:"moves,omitempty"`
}

// OperatorAccount is an observer-API operator credential.
type OperatorAccount struct {
	Name      string    `db:"name" json:"name"`
	TokenHash string    `db:"token_hash" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// OperatorAudit is one logged operator action.
type OperatorAudit struct {
	ID           int            `db:"id" json:"id"`
	OperatorName string         `db:"operator_name" json:"operator_name"`
	IP           string         `db:"ip" json:"ip"`
	Route        string         `db:"route" json:"route"`
	Action       sql.NullString `db:"action" json:"action,omitempty"`
	Success      bool           `db:"success" json:"success"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}
