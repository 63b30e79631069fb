package handlers

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/warehub-io/warehub/internal/models"
)

// DashboardStats is the aggregate view behind the landing page
type DashboardStats struct {
	Products       int64            `json:"products"`
	Warehouses     int64            `json:"warehouses"`
	Vendors        int64            `json:"vendors"`
	LowStockCount  int64            `json:"low_stock_count"`
	OrdersByStatus map[string]int64 `json:"orders_by_status"`
	PendingOrders  int64            `json:"pending_orders"`
	InventoryValue decimal.Decimal  `json:"inventory_value"`
}

// getDashboardStats aggregates counts across the system
func (rt *Router) getDashboardStats(w http.ResponseWriter, req *http.Request) {
	stats := DashboardStats{OrdersByStatus: map[string]int64{}}

	if err := rt.db.Model(&models.Product{}).Count(&stats.Products).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	rt.db.Model(&models.Warehouse{}).Count(&stats.Warehouses)
	rt.db.Model(&models.Vendor{}).Count(&stats.Vendors)
	rt.db.Model(&models.Product{}).
		Where("stock_available <= min_stock_level AND is_active = ?", true).
		Count(&stats.LowStockCount)

	type bucket struct {
		Status string
		Count  int64
	}
	var buckets []bucket
	rt.db.Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&buckets)
	for _, b := range buckets {
		stats.OrdersByStatus[b.Status] = b.Count
	}
	stats.PendingOrders = stats.OrdersByStatus[string(models.OrderStatusPending)]

	// Inventory value = Σ price × available, decimal-safe
	var products []models.Product
	if err := rt.db.Select("price", "stock_available").Find(&products).Error; err == nil {
		total := decimal.Zero
		for _, p := range products {
			total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(p.StockAvailable))))
		}
		stats.InventoryValue = total.Round(2)
	}

	respondJSON(w, http.StatusOK, stats)
}

// getRecentMovements returns the newest ledger entries
func (rt *Router) getRecentMovements(w http.ResponseWriter, req *http.Request) {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	movements, err := rt.svc.Stock.RecentMovements(req.Context(), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, movements)
}

// getLowStock returns products at or below their reorder threshold
func (rt *Router) getLowStock(w http.ResponseWriter, req *http.Request) {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	products, err := rt.svc.Stock.LowStock(req.Context(), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}
