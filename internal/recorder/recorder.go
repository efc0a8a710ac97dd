package recorder

import "moneta/internal/game"

// Recorder persists the audit trail of a session: every resolved month and
// the final standings. The core engine never depends on it; wiring a
// recorder is optional and a session replays identically without one.
type Recorder interface {
	RecordTurn(player string, rec game.LogRecord) error
	RecordStandings(rows []game.Summary) error
	Close() error
}
