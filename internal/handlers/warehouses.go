package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/warehub-io/warehub/internal/models"
)

// listWarehouses returns all warehouses
func (rt *Router) listWarehouses(w http.ResponseWriter, req *http.Request) {
	var warehouses []models.Warehouse
	if err := rt.db.Order("name ASC").Find(&warehouses).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch warehouses")
		return
	}
	respondJSON(w, http.StatusOK, warehouses)
}

// getWarehouse returns a warehouse with its stock rows
func (rt *Router) getWarehouse(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid warehouse ID")
		return
	}

	var warehouse models.Warehouse
	if err := rt.db.Preload("Stocks").Preload("Stocks.Product").First(&warehouse, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Warehouse not found")
		return
	}
	respondJSON(w, http.StatusOK, warehouse)
}

// createWarehouse creates a new warehouse
func (rt *Router) createWarehouse(w http.ResponseWriter, req *http.Request) {
	var warehouse models.Warehouse
	if err := json.NewDecoder(req.Body).Decode(&warehouse); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if warehouse.Name == "" {
		respondError(w, http.StatusBadRequest, "Warehouse name is required")
		return
	}

	if err := rt.db.Create(&warehouse).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create warehouse")
		return
	}
	respondJSON(w, http.StatusCreated, warehouse)
}

// deleteWarehouse removes a warehouse. Fails with a conflict while any
// inventory remains at the site.
func (rt *Router) deleteWarehouse(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid warehouse ID")
		return
	}

	var warehouse models.Warehouse
	if err := rt.db.First(&warehouse, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Warehouse not found")
		return
	}

	var stocked int64
	err = rt.db.Model(&models.WarehouseStock{}).
		Where("warehouse_id = ? AND quantity > 0", id).
		Count(&stocked).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to check warehouse inventory")
		return
	}
	if stocked > 0 {
		respondError(w, http.StatusConflict, "Cannot delete warehouse with existing inventory")
		return
	}

	// Empty rows are just bin assignments; drop them with the warehouse
	if err := rt.db.Where("warehouse_id = ?", id).Delete(&models.WarehouseStock{}).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete warehouse stock rows")
		return
	}
	if err := rt.db.Delete(&warehouse).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete warehouse")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Warehouse deleted successfully",
	})
}
