package game

// Decisions carries one player's choices for a single month. Amounts are
// micros; allocation values are percentages of post-expense savings in
// [0, 100]. Negative values are rejected outright; amounts above what is
// available are clamped, and allocation percentages summing over 100 are
// normalized back down to 100.
type Decisions struct {
	DiscretionaryMicros int64 `json:"discretionary_micros"`

	Allocations map[AllocTarget]float64 `json:"allocations,omitempty"`

	Sells             map[AssetKind]int64 `json:"sells,omitempty"`
	DemandWithdrawals map[BankID]int64    `json:"demand_withdrawals,omitempty"`
	TermBreaks        map[BankID]int64    `json:"term_breaks,omitempty"`

	BorrowMicros int64   `json:"borrow_micros"`
	RepayPercent float64 `json:"repay_percent"`

	DemandBank BankID `json:"demand_bank,omitempty"`
	TermBank   BankID `json:"term_bank,omitempty"`
	LoanBank   BankID `json:"loan_bank,omitempty"`
}

type TurnOutcome string

const (
	OutcomeOK        TurnOutcome = "ok"
	OutcomeCompleted TurnOutcome = "completed"
	OutcomeDefaulted TurnOutcome = "defaulted"
)

// TurnResult is what one call to ResolveTurn produced: the terminal-or-not
// outcome plus the month's log record.
type TurnResult struct {
	Outcome TurnOutcome `json:"outcome"`
	Record  LogRecord   `json:"record"`
}

// Summary is one leaderboard row.
type Summary struct {
	Player          string `json:"player"`
	Status          Status `json:"status"`
	MonthsCompleted int    `json:"months_completed"`
	NetWorthMicros  int64  `json:"net_worth_micros"`
	DebtMicros      int64  `json:"debt_micros"`
}
