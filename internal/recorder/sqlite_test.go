package recorder

import (
	"encoding/json"
	"path/filepath"
	"reflect"
	"testing"

	"moneta/internal/game"
)

func newTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	t.Cleanup(func() { rec.Close() })
	return rec
}

func TestSQLiteRecordTurn(t *testing.T) {
	rec := newTestRecorder(t)

	record := game.LogRecord{
		Month:             3,
		Stage:             "banking",
		IncomeMicros:      60_000_000_000,
		SavingsMicros:     15_000_000_000,
		EndNetWorthMicros: 40_000_000_000,
		Defaulted:         true,
	}
	if err := rec.RecordTurn("tester", record); err != nil {
		t.Fatalf("RecordTurn: %v", err)
	}
	if err := rec.RecordTurn("tester", game.LogRecord{Month: 4, Stage: "banking"}); err != nil {
		t.Fatalf("RecordTurn: %v", err)
	}

	var count int
	if err := rec.db.QueryRow(`SELECT COUNT(*) FROM turns WHERE player = ?`, "tester").Scan(&count); err != nil {
		t.Fatalf("count turns: %v", err)
	}
	if count != 2 {
		t.Fatalf("turns = %d, want 2", count)
	}

	var (
		endNetWorth int64
		defaulted   int
		raw         string
	)
	err := rec.db.QueryRow(
		`SELECT end_net_worth, defaulted, record_json FROM turns WHERE player = ? AND month = ?`,
		"tester", 3,
	).Scan(&endNetWorth, &defaulted, &raw)
	if err != nil {
		t.Fatalf("select turn: %v", err)
	}
	if endNetWorth != record.EndNetWorthMicros || defaulted != 1 {
		t.Fatalf("stored columns: net_worth=%d defaulted=%d", endNetWorth, defaulted)
	}
	var back game.LogRecord
	if err := json.Unmarshal([]byte(raw), &back); err != nil {
		t.Fatalf("decode record_json: %v", err)
	}
	if !reflect.DeepEqual(back, record) {
		t.Fatalf("record_json round trip: %+v vs %+v", back, record)
	}
}

func TestSQLiteRecordStandings(t *testing.T) {
	rec := newTestRecorder(t)

	rows := []game.Summary{
		{Player: "alpha", Status: game.StatusCompleted, MonthsCompleted: 12, NetWorthMicros: 90_000_000_000},
		{Player: "beta", Status: game.StatusDefaulted, MonthsCompleted: 6, NetWorthMicros: 5_000_000_000, DebtMicros: 2_000_000_000},
	}
	if err := rec.RecordStandings(rows); err != nil {
		t.Fatalf("RecordStandings: %v", err)
	}

	var (
		player string
		rank   int
		status string
	)
	err := rec.db.QueryRow(`SELECT player, rank, status FROM standings ORDER BY rank LIMIT 1`).Scan(&player, &rank, &status)
	if err != nil {
		t.Fatalf("select standings: %v", err)
	}
	if player != "alpha" || rank != 1 || status != string(game.StatusCompleted) {
		t.Fatalf("first row: player=%s rank=%d status=%s", player, rank, status)
	}

	var count int
	if err := rec.db.QueryRow(`SELECT COUNT(*) FROM standings`).Scan(&count); err != nil {
		t.Fatalf("count standings: %v", err)
	}
	if count != len(rows) {
		t.Fatalf("standings = %d, want %d", count, len(rows))
	}
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()
	if err := rec.RecordTurn("anyone", game.LogRecord{Month: 1}); err != nil {
		t.Fatalf("RecordTurn: %v", err)
	}
	if err := rec.RecordStandings(nil); err != nil {
		t.Fatalf("RecordStandings: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
