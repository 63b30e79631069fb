package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warehub-io/warehub/internal/models"
	"github.com/warehub-io/warehub/internal/services/orders"
	"github.com/warehub-io/warehub/internal/services/printer"
)

// listOrders returns orders with server-side filtering and sorting
func (rt *Router) listOrders(w http.ResponseWriter, req *http.Request) {
	query := req.URL.Query()
	filter := orders.ListFilter{
		Status:         query.Get("status"),
		ApprovalStatus: query.Get("approval_status"),
		Customer:       query.Get("customer"),
		SortBy:         query.Get("sort_by"),
		SortDir:        query.Get("sort_dir"),
	}

	if v := query.Get("created_from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.CreatedFrom = &t
		}
	}
	if v := query.Get("created_to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.CreatedTo = &t
		}
	}
	if v := query.Get("total_min"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			filter.TotalMin = &d
		}
	}
	if v := query.Get("total_max"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			filter.TotalMax = &d
		}
	}
	if v := query.Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := query.Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v)
	}

	list, err := rt.svc.Orders.List(req.Context(), filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// createOrder runs checkout: validate, total, persist, decrement stock
func (rt *Router) createOrder(w http.ResponseWriter, req *http.Request) {
	var in orders.CreateInput
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	order, err := rt.svc.Orders.Create(req.Context(), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

// getOrder returns one order with its items
func (rt *Router) getOrder(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	order, err := rt.svc.Orders.Get(req.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// updateOrder changes the fulfillment status and/or notes
func (rt *Router) updateOrder(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var payload struct {
		Status *string `json:"status"`
		Notes  *string `json:"notes"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	var order *models.Order
	if payload.Status != nil {
		order, err = rt.svc.Orders.UpdateStatus(req.Context(), id, models.OrderStatus(*payload.Status))
		if err != nil {
			respondServiceError(w, err)
			return
		}
	}
	if payload.Notes != nil {
		if err := rt.db.Model(&models.Order{}).Where("id = ?", id).Update("notes", *payload.Notes).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to update notes")
			return
		}
	}

	if order == nil {
		order, err = rt.svc.Orders.Get(req.Context(), id)
		if err != nil {
			respondServiceError(w, err)
			return
		}
	}
	respondJSON(w, http.StatusOK, order)
}

// requestOrderApproval flags an order as needing approval
func (rt *Router) requestOrderApproval(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var payload struct {
		RequestedBy string `json:"requested_by"`
		Notes       string `json:"notes"`
	}
	_ = json.NewDecoder(req.Body).Decode(&payload)

	order, err := rt.svc.Orders.RequestApproval(req.Context(), id, payload.RequestedBy, payload.Notes)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// approveOrder approves an order
func (rt *Router) approveOrder(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var payload struct {
		ApproverID string `json:"approver_id"`
	}
	_ = json.NewDecoder(req.Body).Decode(&payload)

	order, err := rt.svc.Orders.Approve(req.Context(), id, payload.ApproverID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// getOrderPO streams the purchase-order PDF. ?download=true forces an
// attachment disposition.
func (rt *Router) getOrderPO(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	order, err := rt.svc.Orders.Get(req.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	pdf, err := printer.GeneratePurchaseOrderPDF(order)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate purchase order")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	if req.URL.Query().Get("download") == "true" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", order.OrderNumber+".pdf"))
	}
	w.Write(pdf)
}
