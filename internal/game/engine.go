package game

import (
	"fmt"
	"log/slog"
	mathrand "math/rand"
	"sort"
)

// Engine resolves one month at a time. The step order below is part of the
// contract: later steps read the cash level earlier steps produced.
//
//	 1. voluntary liquidation (sells, withdrawals, term breaks)
//	 2. income and mandatory expense
//	 3. shortfall resolution (default before credit, auto-loan after)
//	 4. voluntary borrowing
//	 5. purchases from savings allocation
//	 6. cash theft hazard
//	 7. bank incident hazard
//	 8. term deposit interest
//	 9. risky asset returns (with crisis shock)
//	10. debt service
//	11. snapshot and log
//	12. advance month, escalate living cost
type Engine struct {
	rules   Rules
	market  *Market
	streams *Streams
	log     *slog.Logger
}

func NewEngine(rules Rules, market *Market, streams *Streams, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{rules: rules, market: market, streams: streams, log: logger}
}

// ResolveTurn applies one month of decisions to the portfolio. On success or
// default the portfolio is updated in place; on a decision error it is left
// untouched so the caller can re-submit. Default is terminal: the portfolio
// freezes with the last valid balances, never a negative one.
func (e *Engine) ResolveTurn(p *Portfolio, d Decisions) (TurnResult, error) {
	if p.Finished {
		return TurnResult{}, ErrGameOver
	}
	month := p.Month
	offers := e.market.OffersForMonth(month)
	if err := e.validate(month, d, offers); err != nil {
		return TurnResult{}, err
	}

	w := p.clone()
	rng := e.streams.Player(p.Player, month)
	rec := LogRecord{
		Month:               month,
		Stage:               e.rules.StageLabel(month),
		IncomeMicros:        LiraToMicros(e.rules.Income),
		FixedCostMicros:     w.FixedCostMicros,
		InflationRate:       w.Inflation,
		InflationCostMicros: w.CostDeltaMicros,
		StartNetWorthMicros: w.NetWorthMicros(),
		BuysMicros:          map[AllocTarget]int64{},
		SellsMicros:         map[AssetKind]int64{},
	}

	// Step 1.
	e.liquidate(w, d, &rec)
	if w.CashMicros < 0 {
		return TurnResult{}, fmt.Errorf("%w: negative cash after liquidation", ErrInvariant)
	}

	// Steps 2-3. The snapshot lets a shortfall default freeze the portfolio
	// at the last valid balances instead of a negative cash position.
	snap := w.clone()
	rec.DiscretionaryMicros = d.DiscretionaryMicros
	rec.SavingsMicros = rec.IncomeMicros - w.FixedCostMicros - d.DiscretionaryMicros
	w.CashMicros += rec.IncomeMicros
	w.CashMicros -= w.FixedCostMicros + d.DiscretionaryMicros
	if w.CashMicros < 0 {
		deficit := -w.CashMicros
		offer, ok := e.shortfallBank(month, d, offers)
		if !ok {
			return e.defaultTurn(p, snap, rec, "income shortfall before credit"), nil
		}
		w.Loans = append(w.Loans, Loan{PrincipalMicros: deficit, Rate: offer.LoanRate, Bank: offer.ID, TakenMonth: month, DueMonth: month + 1})
		w.CashMicros = 0
		rec.BorrowedMicros += deficit
	}

	// Step 4.
	if d.BorrowMicros > 0 {
		offer, _ := e.shortfallBank(month, d, offers)
		w.Loans = append(w.Loans, Loan{PrincipalMicros: d.BorrowMicros, Rate: offer.LoanRate, Bank: offer.ID, TakenMonth: month, DueMonth: month + 1})
		w.CashMicros += d.BorrowMicros
		rec.BorrowedMicros += d.BorrowMicros
	}

	// Step 5.
	e.purchase(w, d, offers, &rec)

	// Step 6.
	e.applyTheft(w, rng, &rec)

	// Step 7.
	e.applyBankIncidents(w, rng, &rec)

	// Step 8.
	e.accrueDepositInterest(w, offers, &rec)

	// Step 9.
	e.applyAssetReturns(w, rng, &rec)

	// Step 10.
	snap = w.clone()
	if defaulted := e.serviceDebt(w, d, &rec); defaulted {
		return e.defaultTurn(p, snap, rec, "missed mandatory loan repayment"), nil
	}

	// Step 11.
	if w.CashMicros < 0 {
		return TurnResult{}, fmt.Errorf("%w: negative cash at month end", ErrInvariant)
	}
	rec.EndCashMicros = w.CashMicros
	rec.EndDepositsMicros = w.DepositsMicros()
	rec.EndInvestedMicros = w.InvestedMicros()
	rec.EndDebtMicros = w.DebtMicros()
	rec.EndNetWorthMicros = w.NetWorthMicros()
	w.Log = append(w.Log, rec)

	// Step 12.
	outcome := OutcomeOK
	if month == e.rules.Months {
		w.Finished = true
		outcome = OutcomeCompleted
	} else {
		w.Month = month + 1
		next, delta := nextPriceLevel(e.rules, w.Inflation, rng)
		w.Inflation = next
		nextCost := escalateFixedCost(w.FixedCostMicros, delta)
		w.CostDeltaMicros = nextCost - w.FixedCostMicros
		w.FixedCostMicros = nextCost
	}

	*p = *w
	e.log.Debug("turn resolved",
		"player", p.Player,
		"month", rec.Month,
		"net_worth", MicrosToLira(rec.EndNetWorthMicros),
		"outcome", string(outcome))
	return TurnResult{Outcome: outcome, Record: rec}, nil
}

// validate rejects malformed decisions before anything mutates. Overshooting
// amounts are clamped later; negative values and unusable references are
// errors.
func (e *Engine) validate(month int, d Decisions, offers []BankOffer) error {
	if d.DiscretionaryMicros < 0 {
		return fmt.Errorf("%w: discretionary spend must be non-negative", ErrInvalidDecision)
	}
	if d.RepayPercent < 0 {
		return fmt.Errorf("%w: repay percent must be non-negative", ErrInvalidDecision)
	}
	for kind, amount := range d.Sells {
		if _, ok := e.rules.Assets[kind]; !ok {
			return fmt.Errorf("%w: unknown asset %q in sells", ErrInvalidDecision, kind)
		}
		if amount < 0 {
			return fmt.Errorf("%w: negative sell amount for %s", ErrInvalidDecision, kind)
		}
	}
	for bank, amount := range d.DemandWithdrawals {
		if amount < 0 {
			return fmt.Errorf("%w: negative withdrawal for %s", ErrInvalidDecision, bank)
		}
	}
	for bank, amount := range d.TermBreaks {
		if amount < 0 {
			return fmt.Errorf("%w: negative term break for %s", ErrInvalidDecision, bank)
		}
	}
	for target, pct := range d.Allocations {
		if pct < 0 {
			return fmt.Errorf("%w: negative allocation for %s", ErrInvalidDecision, target)
		}
		if pct == 0 {
			continue
		}
		if kind, isAsset := target.asset(); isAsset {
			if !e.rules.assetUnlocked(kind, month) {
				return fmt.Errorf("%w: %s opens in month %d", ErrAssetLocked, kind, e.rules.Assets[kind].StartMonth)
			}
			continue
		}
		switch target {
		case TargetDemand:
			if _, err := resolveBank(d.DemandBank, offers); err != nil {
				return err
			}
		case TargetTerm:
			if _, err := resolveBank(d.TermBank, offers); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unknown allocation target %q", ErrInvalidDecision, target)
		}
	}
	if d.BorrowMicros < 0 {
		return fmt.Errorf("%w: negative borrow amount", ErrInvalidDecision)
	}
	if d.BorrowMicros > 0 {
		if !e.rules.loansActive(month) {
			return fmt.Errorf("%w: borrowing opens in month %d", ErrLoansNotActive, e.rules.LoanStartMonth)
		}
		if d.LoanBank != "" {
			if _, err := resolveBank(d.LoanBank, offers); err != nil {
				return err
			}
		}
	}
	return nil
}

func resolveBank(id BankID, offers []BankOffer) (BankOffer, error) {
	if id == "" {
		return BankOffer{}, fmt.Errorf("%w: no bank selected", ErrUnknownBank)
	}
	for _, o := range offers {
		if o.ID == id {
			return o, nil
		}
	}
	return BankOffer{}, fmt.Errorf("%w: %s", ErrUnknownBank, id)
}

// shortfallBank resolves the lender for auto-loans and voluntary borrowing:
// the selected loan bank if named, otherwise the cheapest one on offer.
func (e *Engine) shortfallBank(month int, d Decisions, offers []BankOffer) (BankOffer, bool) {
	if !e.rules.loansActive(month) {
		return BankOffer{}, false
	}
	if d.LoanBank != "" {
		if offer, err := resolveBank(d.LoanBank, offers); err == nil {
			return offer, true
		}
	}
	return cheapestLoan(offers)
}

func (e *Engine) liquidate(w *Portfolio, d Decisions, rec *LogRecord) {
	for _, kind := range assetOrder {
		requested := d.Sells[kind]
		amount := minMicros(requested, w.Holdings[kind])
		if amount <= 0 {
			continue
		}
		cost := mulMicros(amount, e.rules.TxFee+e.rules.Assets[kind].Spread/2)
		w.Holdings[kind] -= amount
		if w.Holdings[kind] == 0 {
			delete(w.Holdings, kind)
		}
		w.CashMicros += amount - cost
		rec.FeesMicros += cost
		rec.SellsMicros[kind] += amount
	}

	for _, bank := range sortedBankIDs(d.DemandWithdrawals) {
		amount := minMicros(d.DemandWithdrawals[bank], w.DemandMicros[bank])
		if amount <= 0 {
			continue
		}
		cost := mulMicros(amount, e.rules.TxFee)
		w.DemandMicros[bank] -= amount
		if w.DemandMicros[bank] == 0 {
			delete(w.DemandMicros, bank)
		}
		w.CashMicros += amount - cost
		rec.FeesMicros += cost
		rec.DemandWithdrawnMicros += amount
	}

	for _, bank := range sortedBankIDs(d.TermBreaks) {
		amount := minMicros(d.TermBreaks[bank], w.TermMicros[bank])
		if amount <= 0 {
			continue
		}
		cost := mulMicros(amount, e.rules.TxFee+e.rules.EarlyBreakPenalty)
		w.TermMicros[bank] -= amount
		if w.TermMicros[bank] == 0 {
			delete(w.TermMicros, bank)
		}
		w.CashMicros += amount - cost
		rec.FeesMicros += cost
		rec.TermBrokenMicros += amount
	}
}

// purchase spends the savings allocation. Percentages are of the cash level
// entering this step; a sum over 100 is scaled down to 100, a sum under 100
// leaves the remainder in cash. Each debit is clamped to the cash still on
// hand, so the loop can absorb rounding without ever overdrawing.
func (e *Engine) purchase(w *Portfolio, d Decisions, offers []BankOffer, rec *LogRecord) {
	alloc := normalizeAllocations(d.Allocations)
	if len(alloc) == 0 {
		return
	}
	savings := w.CashMicros

	for _, target := range allocOrder {
		pct := alloc[target]
		if pct <= 0 {
			continue
		}
		amount := minMicros(mulMicros(savings, pct/100), w.CashMicros)
		if amount <= 0 {
			continue
		}
		w.CashMicros -= amount
		rec.BuysMicros[target] += amount

		if kind, isAsset := target.asset(); isAsset {
			cost := mulMicros(amount, e.rules.TxFee+e.rules.Assets[kind].Spread/2)
			w.Holdings[kind] += amount - cost
			rec.FeesMicros += cost
			continue
		}
		cost := mulMicros(amount, e.rules.TxFee)
		rec.FeesMicros += cost
		switch target {
		case TargetDemand:
			offer, _ := resolveBank(d.DemandBank, offers)
			w.DemandMicros[offer.ID] += amount - cost
		case TargetTerm:
			offer, _ := resolveBank(d.TermBank, offers)
			w.TermMicros[offer.ID] += amount - cost
		}
	}
}

func (e *Engine) applyTheft(w *Portfolio, rng *mathrand.Rand, rec *LogRecord) {
	triggered := w.hasTheftMonth(rec.Month)
	if !triggered {
		triggered = rng.Float64() < e.rules.theftProb(rec.Month)
	}
	if !triggered || w.CashMicros <= 0 {
		return
	}
	severity := e.rules.TheftSevMin + rng.Float64()*(e.rules.TheftSevMax-e.rules.TheftSevMin)
	loss := mulMicros(w.CashMicros, severity)
	w.CashMicros -= loss
	rec.TheftLossMicros = loss
}

func (e *Engine) applyBankIncidents(w *Portfolio, rng *mathrand.Rand, rec *LogRecord) {
	if !e.rules.BankIncidentsEnabled {
		return
	}
	seen := map[BankID]bool{}
	var banks []BankID
	for bank := range w.DemandMicros {
		if !seen[bank] {
			seen[bank] = true
			banks = append(banks, bank)
		}
	}
	for bank := range w.TermMicros {
		if !seen[bank] {
			seen[bank] = true
			banks = append(banks, bank)
		}
	}
	sort.Slice(banks, func(i, j int) bool { return banks[i] < banks[j] })

	for _, bank := range banks {
		if w.DemandMicros[bank]+w.TermMicros[bank] <= 0 {
			continue
		}
		if rng.Float64() >= e.rules.BankIncidentProb {
			continue
		}
		guarantee := e.rules.MaxGuarantee
		if offer, ok := e.market.Offer(rec.Month, bank); ok {
			guarantee = offer.Guarantee
		}
		exposed := 1 - guarantee
		if loss := mulMicros(w.DemandMicros[bank], exposed); loss > 0 {
			w.DemandMicros[bank] -= loss
			rec.BankLossMicros += loss
		}
		if loss := mulMicros(w.TermMicros[bank], exposed); loss > 0 {
			w.TermMicros[bank] -= loss
			rec.BankLossMicros += loss
		}
	}
}

// accrueDepositInterest pays the month's term rate on term balances. Demand
// deposits earn nothing: liquidity costs return.
func (e *Engine) accrueDepositInterest(w *Portfolio, offers []BankOffer, rec *LogRecord) {
	for _, bank := range sortedBankIDs(w.TermMicros) {
		balance := w.TermMicros[bank]
		if balance <= 0 {
			continue
		}
		for _, offer := range offers {
			if offer.ID == bank {
				interest := mulMicros(balance, offer.TermRate)
				w.TermMicros[bank] += interest
				rec.InterestEarnedMicros += interest
				break
			}
		}
	}
}

func (e *Engine) applyAssetReturns(w *Portfolio, rng *mathrand.Rand, rec *LogRecord) {
	for _, kind := range assetOrder {
		holding := w.Holdings[kind]
		if holding <= 0 {
			continue
		}
		params := e.rules.Assets[kind]
		r := params.Mu + rng.NormFloat64()*params.Sigma
		if rec.Month == e.rules.CrisisMonth {
			r += params.CrisisShock
		}
		if r < -1 {
			r = -1
		}
		next := mulMicros(holding, 1+r)
		rec.ReturnsMicros += next - holding
		if next == 0 {
			delete(w.Holdings, kind)
		} else {
			w.Holdings[kind] = next
		}
	}
}

// serviceDebt settles loans due this month in full (principal plus one month
// of interest) and then applies any voluntary prepayment against what cash is
// left. Returns true when a due payment cannot be covered.
func (e *Engine) serviceDebt(w *Portfolio, d Decisions, rec *LogRecord) bool {
	var remaining []Loan
	for _, loan := range w.Loans {
		if loan.DueMonth != rec.Month {
			remaining = append(remaining, loan)
			continue
		}
		accrued := mulMicros(loan.PrincipalMicros, loan.Rate)
		rec.InterestAccruedMicros += accrued
		due := loan.PrincipalMicros + accrued
		if w.CashMicros < due {
			return true
		}
		w.CashMicros -= due
		rec.RepaidMicros += due
	}
	w.Loans = remaining

	if pct := clampFloat(d.RepayPercent, 0, 100); pct > 0 && len(w.Loans) > 0 && w.CashMicros > 0 {
		var outstanding int64
		for _, loan := range w.Loans {
			outstanding += loan.PrincipalMicros
		}
		budget := minMicros(mulMicros(outstanding, pct/100), w.CashMicros)
		var kept []Loan
		for _, loan := range w.Loans {
			cut := minMicros(loan.PrincipalMicros, budget)
			loan.PrincipalMicros -= cut
			w.CashMicros -= cut
			rec.RepaidMicros += cut
			budget -= cut
			if loan.PrincipalMicros > 0 {
				kept = append(kept, loan)
			}
		}
		w.Loans = kept
	}
	return false
}

// defaultTurn freezes the portfolio at the snapshot taken before the failing
// step and appends a final, flagged record. Default is irreversible.
func (e *Engine) defaultTurn(p, snap *Portfolio, rec LogRecord, reason string) TurnResult {
	w := snap
	rec.Defaulted = true
	rec.EndCashMicros = w.CashMicros
	rec.EndDepositsMicros = w.DepositsMicros()
	rec.EndInvestedMicros = w.InvestedMicros()
	rec.EndDebtMicros = w.DebtMicros()
	rec.EndNetWorthMicros = w.NetWorthMicros()
	w.Finished = true
	w.Defaulted = true
	w.Log = append(w.Log, rec)
	*p = *w
	e.log.Info("player defaulted", "player", p.Player, "month", rec.Month, "reason", reason)
	return TurnResult{Outcome: OutcomeDefaulted, Record: rec}
}

func normalizeAllocations(alloc map[AllocTarget]float64) map[AllocTarget]float64 {
	if len(alloc) == 0 {
		return nil
	}
	var sum float64
	for _, pct := range alloc {
		sum += pct
	}
	out := make(map[AllocTarget]float64, len(alloc))
	for target, pct := range alloc {
		if sum > 100 {
			pct = pct / sum * 100
		}
		out[target] = pct
	}
	return out
}

func sortedBankIDs[V any](m map[BankID]V) []BankID {
	out := make([]BankID, 0, len(m))
	for bank := range m {
		out = append(out, bank)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
