package game

import "sort"

// BankID is a weak reference into the month's bank market snapshot; the
// portfolio owns the balances, never the bank.
type BankID string

// Loan is a one-month credit line: taken in month m, settled in full
// (principal plus one month of interest) in month m+1.
type Loan struct {
	PrincipalMicros int64   `json:"principal_micros"`
	Rate            float64 `json:"rate"`
	Bank            BankID  `json:"bank"`
	TakenMonth      int     `json:"taken_month"`
	DueMonth        int     `json:"due_month"`
}

type Status string

const (
	StatusContinuing Status = "continuing"
	StatusCompleted  Status = "completed"
	StatusDefaulted  Status = "defaulted"
)

// Portfolio is the full per-player game state. It is owned by exactly one
// session player and mutated only by the engine.
type Portfolio struct {
	Player    string `json:"player"`
	Month     int    `json:"month"`
	Finished  bool   `json:"finished"`
	Defaulted bool   `json:"defaulted"`

	CashMicros   int64                `json:"cash_micros"`
	Holdings     map[AssetKind]int64  `json:"holdings"`
	DemandMicros map[BankID]int64     `json:"demand_micros"`
	TermMicros   map[BankID]int64     `json:"term_micros"`
	Loans        []Loan               `json:"loans"`

	FixedCostMicros int64   `json:"fixed_cost_micros"`
	Inflation       float64 `json:"inflation"`
	CostDeltaMicros int64   `json:"cost_delta_micros"`

	// TheftMonths is drawn once at creation and never mutated; it guarantees
	// a minimum number of theft events per play-through.
	TheftMonths []int `json:"theft_months"`

	Log []LogRecord `json:"log"`
}

// NewPortfolio creates month-1 state for a player. The guaranteed theft
// months come from the player's month-0 stream, independent of any per-turn
// draw.
func NewPortfolio(player string, rules Rules, streams *Streams) *Portfolio {
	p := &Portfolio{
		Player:          player,
		Month:           1,
		CashMicros:      LiraToMicros(rules.StartCash),
		Holdings:        map[AssetKind]int64{},
		DemandMicros:    map[BankID]int64{},
		TermMicros:      map[BankID]int64{},
		FixedCostMicros: LiraToMicros(rules.StartFixedCost),
		Inflation:       rules.StartInflation,
	}

	if rules.GuaranteedThefts > 0 && rules.Months > 0 {
		rng := streams.Player(player, 0)
		picked := map[int]bool{}
		for len(picked) < rules.GuaranteedThefts && len(picked) < rules.Months {
			picked[1+rng.Intn(rules.Months)] = true
		}
		for m := range picked {
			p.TheftMonths = append(p.TheftMonths, m)
		}
		sort.Ints(p.TheftMonths)
	}
	return p
}

func (p *Portfolio) hasTheftMonth(month int) bool {
	for _, m := range p.TheftMonths {
		if m == month {
			return true
		}
	}
	return false
}

// InvestedMicros is the market value of all risky holdings.
func (p *Portfolio) InvestedMicros() int64 {
	var total int64
	for _, v := range p.Holdings {
		total += v
	}
	return total
}

// DepositsMicros sums demand and term balances across all banks.
func (p *Portfolio) DepositsMicros() int64 {
	var total int64
	for _, v := range p.DemandMicros {
		total += v
	}
	for _, v := range p.TermMicros {
		total += v
	}
	return total
}

// DebtMicros is the outstanding loan principal.
func (p *Portfolio) DebtMicros() int64 {
	var total int64
	for _, l := range p.Loans {
		total += l.PrincipalMicros
	}
	return total
}

// NetWorthMicros is cash plus deposits plus investments minus debt.
func (p *Portfolio) NetWorthMicros() int64 {
	return p.CashMicros + p.DepositsMicros() + p.InvestedMicros() - p.DebtMicros()
}

func (p *Portfolio) Status() Status {
	switch {
	case p.Defaulted:
		return StatusDefaulted
	case p.Finished:
		return StatusCompleted
	default:
		return StatusContinuing
	}
}

// MonthsCompleted counts months that resolved without default.
func (p *Portfolio) MonthsCompleted() int {
	n := 0
	for _, rec := range p.Log {
		if !rec.Defaulted {
			n++
		}
	}
	return n
}

// clone deep-copies everything the engine mutates, including the log slice
// header so appends on the copy never reach the original.
func (p *Portfolio) clone() *Portfolio {
	c := *p
	c.Holdings = make(map[AssetKind]int64, len(p.Holdings))
	for k, v := range p.Holdings {
		c.Holdings[k] = v
	}
	c.DemandMicros = make(map[BankID]int64, len(p.DemandMicros))
	for k, v := range p.DemandMicros {
		c.DemandMicros[k] = v
	}
	c.TermMicros = make(map[BankID]int64, len(p.TermMicros))
	for k, v := range p.TermMicros {
		c.TermMicros[k] = v
	}
	c.Loans = append([]Loan(nil), p.Loans...)
	c.Log = append([]LogRecord(nil), p.Log...)
	return &c
}
