package recorder

import "moneta/internal/game"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordTurn(_ string, _ game.LogRecord) error { return nil }
func (n *NoopRecorder) RecordStandings(_ []game.Summary) error      { return nil }
func (n *NoopRecorder) Close() error                                { return nil }
