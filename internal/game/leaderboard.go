package game

import "sort"

// Rank orders portfolios by net worth descending, then outstanding debt
// ascending. The sort is stable, so ties keep their insertion order.
func Rank(portfolios []*Portfolio) []Summary {
	rows := make([]Summary, 0, len(portfolios))
	for _, p := range portfolios {
		rows = append(rows, Summary{
			Player:          p.Player,
			Status:          p.Status(),
			MonthsCompleted: p.MonthsCompleted(),
			NetWorthMicros:  p.NetWorthMicros(),
			DebtMicros:      p.DebtMicros(),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].NetWorthMicros != rows[j].NetWorthMicros {
			return rows[i].NetWorthMicros > rows[j].NetWorthMicros
		}
		return rows[i].DebtMicros < rows[j].DebtMicros
	})
	return rows
}
