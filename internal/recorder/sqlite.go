package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"moneta/internal/game"
)

// SQLiteRecorder persists turn records and standings to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS turns (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at        INTEGER NOT NULL,
			player             TEXT NOT NULL,
			month              INTEGER NOT NULL,
			stage              TEXT,
			income_micros      INTEGER,
			savings_micros     INTEGER,
			fees_micros        INTEGER,
			theft_loss_micros  INTEGER,
			bank_loss_micros   INTEGER,
			interest_earned    INTEGER,
			interest_accrued   INTEGER,
			returns_micros     INTEGER,
			borrowed_micros    INTEGER,
			repaid_micros      INTEGER,
			end_net_worth      INTEGER,
			defaulted          INTEGER NOT NULL DEFAULT 0,
			record_json        TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_player_month ON turns(player, month)`,

		`CREATE TABLE IF NOT EXISTS standings (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at      INTEGER NOT NULL,
			rank             INTEGER NOT NULL,
			player           TEXT NOT NULL,
			status           TEXT NOT NULL,
			months_completed INTEGER,
			net_worth_micros INTEGER,
			debt_micros      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_standings_ts ON standings(recorded_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordTurn(player string, rec game.LogRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = r.db.Exec(`INSERT INTO turns
		(recorded_at, player, month, stage, income_micros, savings_micros,
		 fees_micros, theft_loss_micros, bank_loss_micros,
		 interest_earned, interest_accrued, returns_micros,
		 borrowed_micros, repaid_micros, end_net_worth, defaulted, record_json)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), player, rec.Month, rec.Stage,
		rec.IncomeMicros, rec.SavingsMicros,
		rec.FeesMicros, rec.TheftLossMicros, rec.BankLossMicros,
		rec.InterestEarnedMicros, rec.InterestAccruedMicros, rec.ReturnsMicros,
		rec.BorrowedMicros, rec.RepaidMicros, rec.EndNetWorthMicros,
		boolToInt(rec.Defaulted), string(raw),
	)
	return err
}

func (r *SQLiteRecorder) RecordStandings(rows []game.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().Unix()
	for i, row := range rows {
		_, err := r.db.Exec(`INSERT INTO standings
			(recorded_at, rank, player, status, months_completed, net_worth_micros, debt_micros)
			VALUES (?,?,?,?,?,?,?)`,
			now, i+1, row.Player, string(row.Status),
			row.MonthsCompleted, row.NetWorthMicros, row.DebtMicros,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
