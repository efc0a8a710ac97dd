package game

import (
	"fmt"
	"sort"
	"sync"
)

// BankOffer is one bank's terms for a single month, shared read-only by all
// players. Higher term rate means lower guarantee means costlier loans.
type BankOffer struct {
	ID        BankID  `json:"id"`
	TermRate  float64 `json:"term_rate"`
	Guarantee float64 `json:"guarantee"`
	LoanRate  float64 `json:"loan_rate"`
}

// Market generates and caches the per-month bank offer set. A month's offers
// are computed at most once and never change afterwards, so every player sees
// identical numbers. Bank identity is stable across months: each new month
// perturbs the previous month's rates instead of redrawing them.
type Market struct {
	rules   Rules
	streams *Streams

	mu      sync.Mutex
	byMonth map[int][]BankOffer
}

func NewMarket(rules Rules, streams *Streams) *Market {
	return &Market{
		rules:   rules,
		streams: streams,
		byMonth: map[int][]BankOffer{},
	}
}

// OffersForMonth returns the offer set for a month, generating and caching it
// (and any missing earlier months, for continuity) on first access. The
// returned slice is a copy; the cache stays immutable.
func (m *Market) OffersForMonth(month int) []BankOffer {
	if month < m.rules.BankStartMonth {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for mo := m.rules.BankStartMonth; mo <= month; mo++ {
		if _, ok := m.byMonth[mo]; !ok {
			m.byMonth[mo] = m.generate(mo, m.byMonth[mo-1])
		}
	}
	cached := m.byMonth[month]
	out := make([]BankOffer, len(cached))
	copy(out, cached)
	return out
}

// Offer looks up a single bank in a month's snapshot.
func (m *Market) Offer(month int, id BankID) (BankOffer, bool) {
	for _, o := range m.OffersForMonth(month) {
		if o.ID == id {
			return o, true
		}
	}
	return BankOffer{}, false
}

func (m *Market) bankCount(month int) int {
	n := 2
	if month > m.rules.LoanStartMonth {
		n += month - m.rules.LoanStartMonth
	}
	if n > m.rules.MaxBanks {
		n = m.rules.MaxBanks
	}
	return n
}

func (m *Market) generate(month int, prev []BankOffer) []BankOffer {
	r := m.rules
	n := m.bankCount(month)
	rng := m.streams.Market(month)

	offers := make([]BankOffer, n)
	for i := 0; i < n; i++ {
		var rate float64
		var id BankID
		if i < len(prev) {
			id = prev[i].ID
			rate = clampFloat(prev[i].TermRate+rng.NormFloat64()*r.RateDrift, r.MinTermRate, r.MaxTermRate)
		} else {
			id = BankID(fmt.Sprintf("bank-%02d", i+1))
			rate = r.MinTermRate + rng.Float64()*(r.MaxTermRate-r.MinTermRate)
		}
		offers[i] = BankOffer{ID: id, TermRate: rate}
	}

	// Guarantees fall linearly with the bank's rate rank, plus bounded noise.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return offers[order[a]].TermRate < offers[order[b]].TermRate
	})
	span := r.MaxGuarantee - r.MinGuarantee
	for j, idx := range order {
		x := 0.0
		if n > 1 {
			x = float64(j) / float64(n-1)
		}
		g := r.MaxGuarantee - x*span + rng.NormFloat64()*r.GuaranteeNoise
		offers[idx].Guarantee = clampFloat(g, r.MinGuarantee, r.MaxGuarantee)
	}
	// Noise must not break the risk/return trade-off: walking up the rate
	// ranking, guarantees may never increase.
	for j := 1; j < n; j++ {
		hi, lo := order[j], order[j-1]
		if offers[hi].Guarantee > offers[lo].Guarantee {
			offers[hi].Guarantee = offers[lo].Guarantee
		}
	}

	for i := range offers {
		lr := r.LoanBaseRate + (1-offers[i].Guarantee)*r.LoanSpreadFactor + rng.NormFloat64()*r.RateDrift
		offers[i].LoanRate = clampFloat(lr, r.MinLoanRate, r.MaxLoanRate)
	}
	return offers
}

// cheapestLoan picks the offer with the lowest loan rate, used when a
// shortfall forces a loan and the player named no bank.
func cheapestLoan(offers []BankOffer) (BankOffer, bool) {
	if len(offers) == 0 {
		return BankOffer{}, false
	}
	best := offers[0]
	for _, o := range offers[1:] {
		if o.LoanRate < best.LoanRate {
			best = o
		}
	}
	return best, true
}
