package service

import (
	"slices"
	"time"
)

// Read-side projections recomputed from the transaction log on demand.
// They never feed back into the mutation core.

// CardSpending is one row of the spending leaderboard.
type CardSpending struct {
	CardID     string `json:"cardId"`
	Username   string `json:"username"`
	TotalSpent int64  `json:"totalSpent"`
}

// HourSales aggregates one product's sales within one hour of day.
type HourSales struct {
	Quantity int64 `json:"quantity"`
	Revenue  int64 `json:"revenue"`
}

// Spending returns per-card spending totals with the owning username
// ("Unlinked" for ownerless cards), sorted by total descending.
func (l *Ledger) Spending() []CardSpending {
	l.mu.Lock()
	defer l.mu.Unlock()

	spent := make(map[string]int64)
	for _, t := range l.transactions {
		spent[t.CardID] += t.Total
	}

	owner := make(map[string]string)
	for _, u := range l.users {
		for _, cardID := range u.CardIDs {
			owner[cardID] = u.Username
		}
	}

	rows := make([]CardSpending, 0, len(l.cards))
	for _, c := range l.cards {
		name := owner[c.ID]
		if name == "" {
			name = "Unlinked"
		}
		rows = append(rows, CardSpending{CardID: c.ID, Username: name, TotalSpent: spent[c.ID]})
	}
	slices.SortFunc(rows, func(a, b CardSpending) int {
		switch {
		case a.TotalSpent > b.TotalSpent:
			return -1
		case a.TotalSpent < b.TotalSpent:
			return 1
		default:
			return 0
		}
	})
	return rows
}

// HourlyRevenue returns transaction totals bucketed by local hour of day.
func (l *Ledger) HourlyRevenue() map[int]int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	revenue := make(map[int]int64)
	for _, t := range l.transactions {
		hour := time.UnixMilli(t.Timestamp).Hour()
		revenue[hour] += t.Total
	}
	return revenue
}

// ProductSalesByHour returns per-product quantity and revenue bucketed
// by local hour of day.
func (l *Ledger) ProductSalesByHour() map[string]map[int]HourSales {
	l.mu.Lock()
	defer l.mu.Unlock()

	sales := make(map[string]map[int]HourSales)
	for _, t := range l.transactions {
		hour := time.UnixMilli(t.Timestamp).Hour()
		for _, item := range t.Items {
			byHour := sales[item.ProductID]
			if byHour == nil {
				byHour = make(map[int]HourSales)
				sales[item.ProductID] = byHour
			}
			agg := byHour[hour]
			agg.Quantity += item.Quantity
			agg.Revenue += item.Price * item.Quantity
			byHour[hour] = agg
		}
	}
	return sales
}
