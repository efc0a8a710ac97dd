package game

import (
	"encoding/json"
	"testing"
)

func TestNewPortfolioTheftMonths(t *testing.T) {
	rules := DefaultRules()
	rules.GuaranteedThefts = 3
	streams := NewStreams(31)

	p := NewPortfolio("zeynep", rules, streams)
	if len(p.TheftMonths) != 3 {
		t.Fatalf("theft months = %v, want 3 distinct entries", p.TheftMonths)
	}
	seen := map[int]bool{}
	for i, m := range p.TheftMonths {
		if m < 1 || m > rules.Months {
			t.Fatalf("theft month %d out of range", m)
		}
		if seen[m] {
			t.Fatalf("duplicate theft month %d", m)
		}
		seen[m] = true
		if i > 0 && p.TheftMonths[i-1] > m {
			t.Fatalf("theft months not sorted: %v", p.TheftMonths)
		}
	}

	// Same seed and name, same draw.
	again := NewPortfolio("zeynep", rules, NewStreams(31))
	for i := range p.TheftMonths {
		if again.TheftMonths[i] != p.TheftMonths[i] {
			t.Fatalf("theft months not reproducible: %v vs %v", p.TheftMonths, again.TheftMonths)
		}
	}
	other := NewPortfolio("burak", rules, streams)
	if len(other.TheftMonths) != 3 {
		t.Fatalf("second player theft months = %v", other.TheftMonths)
	}
}

func TestPortfolioAggregates(t *testing.T) {
	p := &Portfolio{
		CashMicros:   LiraToMicros(1_000),
		Holdings:     map[AssetKind]int64{AssetEquity: LiraToMicros(2_000), AssetGold: LiraToMicros(500)},
		DemandMicros: map[BankID]int64{"bank-01": LiraToMicros(300)},
		TermMicros:   map[BankID]int64{"bank-01": LiraToMicros(700), "bank-02": LiraToMicros(1_000)},
		Loans:        []Loan{{PrincipalMicros: LiraToMicros(1_500)}},
	}
	if got := p.InvestedMicros(); got != LiraToMicros(2_500) {
		t.Fatalf("invested = %d", got)
	}
	if got := p.DepositsMicros(); got != LiraToMicros(2_000) {
		t.Fatalf("deposits = %d", got)
	}
	if got := p.DebtMicros(); got != LiraToMicros(1_500) {
		t.Fatalf("debt = %d", got)
	}
	if got := p.NetWorthMicros(); got != LiraToMicros(4_000) {
		t.Fatalf("net worth = %d", got)
	}
}

func TestPortfolioJSONRoundTrip(t *testing.T) {
	rules := DefaultRules()
	e, streams := newTestEngine(t, rules, 33)
	p := NewPortfolio("seda", rules, streams)
	for i := 0; i < 4 && !p.Finished; i++ {
		if _, err := e.ResolveTurn(p, Decisions{}); err != nil {
			t.Fatalf("month %d: %v", p.Month, err)
		}
	}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Portfolio
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.NetWorthMicros() != p.NetWorthMicros() {
		t.Fatalf("net worth changed over the wire: %d vs %d", back.NetWorthMicros(), p.NetWorthMicros())
	}
	if back.Month != p.Month || back.Finished != p.Finished || back.Defaulted != p.Defaulted {
		t.Fatalf("flags changed over the wire: %+v vs %+v", back, p)
	}
	if len(back.Log) != len(p.Log) {
		t.Fatalf("log length changed: %d vs %d", len(back.Log), len(p.Log))
	}
	for i := range p.Log {
		if back.Log[i].EndNetWorthMicros != p.Log[i].EndNetWorthMicros {
			t.Fatalf("log record %d changed over the wire", i)
		}
	}
}

func TestCloneIsolation(t *testing.T) {
	rules := DefaultRules()
	streams := NewStreams(34)
	p := NewPortfolio("cem", rules, streams)
	p.Holdings[AssetEquity] = 100
	p.Loans = append(p.Loans, Loan{PrincipalMicros: 50})

	c := p.clone()
	c.Holdings[AssetEquity] = 999
	c.Loans[0].PrincipalMicros = 999
	c.Log = append(c.Log, LogRecord{Month: 1})

	if p.Holdings[AssetEquity] != 100 || p.Loans[0].PrincipalMicros != 50 || len(p.Log) != 0 {
		t.Fatalf("clone shares state with original: %+v", p)
	}
}
