package history

import (
	"testing"

	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/models"
)

func TestSaveWithoutDatabase(t *testing.T) {
	s := NewStore(nil)
	rec := models.MatchRecord{
		ID:         "M1700000000000",
		PlayerX:    "A",
		PlayerO:    "B",
		Winner:     "B",
		StartedAt:  "2026-08-25T10:00:00",
		FinishedAt: "2026-08-25T10:05:00",
		Moves:      `[{"x":5,"y":5,"symbol":"X","ts":1774000000.5}]`,
	}
	// Match termination must survive a missing database.
	if err := s.Save(rec); err != nil {
		t.Errorf("nil-db save should be a logged no-op, got %v", err)
	}
}

func TestReadsWithoutDatabase(t *testing.T) {
	s := NewStore(nil)
	if _, err := s.Recent(10); err == nil {
		t.Error("Recent without a database should fail")
	}
	if _, err := s.Get("M1"); err == nil {
		t.Error("Get without a database should fail")
	}
}
