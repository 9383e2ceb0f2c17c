package http

import (
	"net/http"

	"github.com/festipay/festipay/internal/service"
)

// StatsService defines the read-side projections exposed over HTTP.
type StatsService interface {
	Spending() []service.CardSpending
	HourlyRevenue() map[int]int64
	ProductSalesByHour() map[string]map[int]service.HourSales
}

// StatsHandler serves the statistics projections.
type StatsHandler struct {
	// StatsService computes the projections over the transaction log.
	StatsService StatsService
}

// Spending handles GET /api/stats/spending.
func (h *StatsHandler) Spending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.StatsService.Spending())
}

// Hourly handles GET /api/stats/hourly.
func (h *StatsHandler) Hourly(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.StatsService.HourlyRevenue())
}

// Products handles GET /api/stats/products.
func (h *StatsHandler) Products(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.StatsService.ProductSalesByHour())
}
