package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festipay/festipay/internal/models"
)

func TestSpending(t *testing.T) {
	l, super, _ := newTestLedger(t)
	ctx := context.Background()

	// user-123 is linked to admin1; user-456 stays unlinked.
	require.True(t, l.LinkCard(ctx, super, "u-admin1", "user-123").OK)

	pay := func(cardID string, price, qty int64) {
		res := l.ProcessPayment(ctx, super, cardID, []models.CartItem{
			{Product: models.Product{ID: "prod-1", Name: "Beer", Price: price}, Quantity: qty},
		})
		require.True(t, res.OK, res.Message)
	}
	pay("user-123", 5, 2) // 10
	pay("user-456", 5, 3) // 15
	pay("user-123", 5, 1) // 5, bringing user-123 to 15 as well

	rows := l.Spending()
	require.Len(t, rows, 3)

	byCard := make(map[string]CardSpending)
	for _, row := range rows {
		byCard[row.CardID] = row
	}
	assert.Equal(t, int64(15), byCard["user-123"].TotalSpent)
	assert.Equal(t, "admin1", byCard["user-123"].Username)
	assert.Equal(t, int64(15), byCard["user-456"].TotalSpent)
	assert.Equal(t, "Unlinked", byCard["user-456"].Username)
	assert.Equal(t, int64(0), byCard[superAdminCardID].TotalSpent)

	// Sorted by total descending; the zero-spend card comes last.
	assert.Equal(t, superAdminCardID, rows[2].CardID)
}

func TestHourlyRevenue(t *testing.T) {
	l, super, _ := newTestLedger(t)
	ctx := context.Background()

	base := time.Date(2026, 7, 18, 21, 15, 0, 0, time.Local)
	clock := base
	l.now = func() time.Time { return clock }

	pay := func(total int64) {
		res := l.ProcessPayment(ctx, super, "user-123", []models.CartItem{
			{Product: models.Product{ID: "prod-1", Name: "Beer", Price: total}, Quantity: 1},
		})
		require.True(t, res.OK, res.Message)
	}

	pay(10)
	pay(5)
	clock = base.Add(time.Hour)
	pay(20)

	revenue := l.HourlyRevenue()
	assert.Equal(t, int64(15), revenue[21])
	assert.Equal(t, int64(20), revenue[22])
	assert.Len(t, revenue, 2)
}

func TestProductSalesByHour(t *testing.T) {
	l, super, _ := newTestLedger(t)
	ctx := context.Background()

	clock := time.Date(2026, 7, 18, 18, 0, 0, 0, time.Local)
	l.now = func() time.Time { return clock }

	res := l.ProcessPayment(ctx, super, "user-123", []models.CartItem{
		{Product: models.Product{ID: "prod-1", Name: "Beer", Price: 5}, Quantity: 3},
		{Product: models.Product{ID: "prod-5", Name: "Water", Price: 3}, Quantity: 2},
	})
	require.True(t, res.OK, res.Message)

	sales := l.ProductSalesByHour()
	require.Contains(t, sales, "prod-1")
	assert.Equal(t, HourSales{Quantity: 3, Revenue: 15}, sales["prod-1"][18])
	assert.Equal(t, HourSales{Quantity: 2, Revenue: 6}, sales["prod-5"][18])

	// Corrections flow into revenue buckets but carry no product sales.
	require.True(t, l.CorrectCardBalance(ctx, super, "user-123", -1, "shrinkage").OK)
	sales = l.ProductSalesByHour()
	assert.NotContains(t, sales, "prod-2")
}
