package game

// LogRecord is the immutable snapshot of one month's flows and ending
// balances. Every field holds the amount actually applied to the portfolio
// (after rounding), so aggregates never need recomputation and the monthly
// wealth identity holds:
//
//	endNetWorth - startNetWorth = income - fixedCost - discretionary - fees
//	  - theftLoss - bankLoss + interestEarned + assetReturns - interestAccrued
type LogRecord struct {
	Month int    `json:"month"`
	Stage string `json:"stage"`

	IncomeMicros        int64 `json:"income_micros"`
	FixedCostMicros     int64 `json:"fixed_cost_micros"`
	DiscretionaryMicros int64 `json:"discretionary_micros"`
	SavingsMicros       int64 `json:"savings_micros"`

	InflationRate       float64 `json:"inflation_rate"`
	InflationCostMicros int64   `json:"inflation_cost_micros"`

	BuysMicros  map[AllocTarget]int64 `json:"buys_micros,omitempty"`
	SellsMicros map[AssetKind]int64   `json:"sells_micros,omitempty"`

	DemandWithdrawnMicros int64 `json:"demand_withdrawn_micros"`
	TermBrokenMicros      int64 `json:"term_broken_micros"`

	FeesMicros            int64 `json:"fees_micros"`
	TheftLossMicros       int64 `json:"theft_loss_micros"`
	BankLossMicros        int64 `json:"bank_loss_micros"`
	InterestEarnedMicros  int64 `json:"interest_earned_micros"`
	InterestAccruedMicros int64 `json:"interest_accrued_micros"`
	ReturnsMicros         int64 `json:"returns_micros"`

	BorrowedMicros int64 `json:"borrowed_micros"`
	RepaidMicros   int64 `json:"repaid_micros"`

	StartNetWorthMicros int64 `json:"start_net_worth_micros"`
	EndCashMicros       int64 `json:"end_cash_micros"`
	EndDepositsMicros   int64 `json:"end_deposits_micros"`
	EndInvestedMicros   int64 `json:"end_invested_micros"`
	EndDebtMicros       int64 `json:"end_debt_micros"`
	EndNetWorthMicros   int64 `json:"end_net_worth_micros"`

	Defaulted bool `json:"defaulted"`
}
