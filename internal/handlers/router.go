package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/warehub-io/warehub/internal/config"
	"github.com/warehub-io/warehub/internal/database"
	"github.com/warehub-io/warehub/internal/middleware"
	"github.com/warehub-io/warehub/internal/services/orders"
	"github.com/warehub-io/warehub/internal/services/stock"
	"github.com/warehub-io/warehub/internal/services/vendors"
	"github.com/warehub-io/warehub/internal/services/whatsapp"
	"github.com/warehub-io/warehub/internal/websocket"
)

// Services bundles the domain services the router dispatches to
type Services struct {
	Stock    *stock.Service
	Orders   *orders.Service
	Vendors  *vendors.Service
	WhatsApp *whatsapp.Service
}

// Router wraps the mux router, database and services
type Router struct {
	*mux.Router
	db  *database.DB
	cfg *config.Config
	svc Services
	hub *websocket.Hub
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(db *database.DB, cfg *config.Config, svc Services, hub *websocket.Hub) *Router {
	rt := &Router{
		Router: mux.NewRouter(),
		db:     db,
		cfg:    cfg,
		svc:    svc,
		hub:    hub,
	}

	// Health check endpoint
	rt.HandleFunc("/health", rt.healthCheck).Methods("GET")

	// Live dashboard events
	rt.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		websocket.ServeWs(hub, w, req)
	})

	// Auth routes
	auth := rt.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", rt.login).Methods("POST")
	auth.HandleFunc("/register", rt.register).Methods("POST")
	auth.HandleFunc("/logout", rt.logout).Methods("POST")

	api := rt.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	// Warehouses
	api.HandleFunc("/warehouses", rt.listWarehouses).Methods("GET")
	api.HandleFunc("/warehouses", rt.createWarehouse).Methods("POST")
	api.HandleFunc("/warehouses/{id}", rt.getWarehouse).Methods("GET")
	api.HandleFunc("/warehouses/{id}", rt.deleteWarehouse).Methods("DELETE")

	// Products
	api.HandleFunc("/products", rt.listProducts).Methods("GET")
	api.HandleFunc("/products", rt.createProduct).Methods("POST")
	api.HandleFunc("/products/import-csv", rt.importProductsCSV).Methods("POST")
	api.HandleFunc("/products/{id}", rt.getProduct).Methods("GET")
	api.HandleFunc("/products/{id}", rt.updateProduct).Methods("PUT")
	api.HandleFunc("/products/{id}", rt.deleteProduct).Methods("DELETE")
	api.HandleFunc("/products/{id}/usage", rt.getProductUsage).Methods("GET")
	api.HandleFunc("/products/{id}/vendors", rt.getProductVendors).Methods("GET")

	// Stock movements (manual adjustments and transfers)
	api.HandleFunc("/stock/movements", rt.recordMovement).Methods("POST")

	// Orders
	api.HandleFunc("/orders", rt.listOrders).Methods("GET")
	api.HandleFunc("/orders", rt.createOrder).Methods("POST")
	api.HandleFunc("/orders/{id}", rt.getOrder).Methods("GET")
	api.HandleFunc("/orders/{id}", rt.updateOrder).Methods("PUT")
	api.HandleFunc("/orders/{id}/request-approval", rt.requestOrderApproval).Methods("POST")
	api.HandleFunc("/orders/{id}/approve", rt.approveOrder).Methods("POST")
	api.HandleFunc("/orders/{id}/po", rt.getOrderPO).Methods("GET")

	// Vendors
	api.HandleFunc("/vendors", rt.listVendors).Methods("GET")
	api.HandleFunc("/vendors", rt.createVendor).Methods("POST")
	api.HandleFunc("/vendors/stats", rt.getVendorStats).Methods("GET")
	api.HandleFunc("/vendors/import-excel-file", rt.importVendorsExcel).Methods("POST")
	api.HandleFunc("/vendors/{id}", rt.getVendor).Methods("GET")
	api.HandleFunc("/vendors/{id}", rt.updateVendor).Methods("PUT")
	api.HandleFunc("/vendors/{id}", rt.deleteVendor).Methods("DELETE")
	api.HandleFunc("/vendors/{id}/products", rt.listVendorProducts).Methods("GET")
	api.HandleFunc("/vendors/{id}/products", rt.addVendorProduct).Methods("POST")
	api.HandleFunc("/vendors/{id}/products/{productId}", rt.removeVendorProduct).Methods("DELETE")
	api.HandleFunc("/vendors/{id}/contacts", rt.listVendorContacts).Methods("GET")
	api.HandleFunc("/vendors/{id}/contacts", rt.addVendorContact).Methods("POST")
	api.HandleFunc("/vendor-contacts/{id}", rt.updateVendorContact).Methods("PUT")
	api.HandleFunc("/vendor-contacts/{id}", rt.deleteVendorContact).Methods("DELETE")

	// Dashboard
	api.HandleFunc("/dashboard/stats", rt.getDashboardStats).Methods("GET")
	api.HandleFunc("/dashboard/recent-movements", rt.getRecentMovements).Methods("GET")
	api.HandleFunc("/dashboard/low-stock", rt.getLowStock).Methods("GET")

	// WhatsApp
	api.HandleFunc("/whatsapp-logs", rt.listWhatsappLogs).Methods("GET")
	api.HandleFunc("/wa/health", rt.getWhatsappHealth).Methods("GET")
	api.HandleFunc("/wa/inbound", rt.whatsappInbound).Methods("POST")
	api.HandleFunc("/wa/conversations", rt.listConversations).Methods("GET")
	api.HandleFunc("/wa/conversations/{id}/messages", rt.getConversationMessages).Methods("GET")
	api.HandleFunc("/wa/conversations/{id}/assign", rt.assignConversation).Methods("POST")
	api.HandleFunc("/wa/conversations/{id}/reply", rt.replyConversation).Methods("POST")
	api.HandleFunc("/wa/conversations/{id}/status", rt.setConversationStatus).Methods("POST")

	return rt
}

// healthCheck returns the health status of the API
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondServiceError maps domain errors to HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, stock.ErrProductNotFound),
		errors.Is(err, stock.ErrWarehouseNotFound),
		errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, vendors.ErrVendorNotFound),
		errors.Is(err, vendors.ErrLinkNotFound),
		errors.Is(err, vendors.ErrContactNotFound),
		errors.Is(err, whatsapp.ErrConversationNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, stock.ErrInsufficientStock),
		errors.Is(err, vendors.ErrDuplicateVendorProduct),
		errors.Is(err, vendors.ErrVendorHasProducts),
		errors.Is(err, orders.ErrTerminalStatus):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, stock.ErrInvalidQuantity),
		errors.Is(err, stock.ErrMissingDestination),
		errors.Is(err, orders.ErrEmptyOrder),
		errors.Is(err, orders.ErrMissingCustomer),
		errors.Is(err, orders.ErrInvalidStatus),
		errors.Is(err, whatsapp.ErrInvalidStatus),
		errors.Is(err, whatsapp.ErrEmptyMessage):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// pathID parses the {id} path variable
func pathID(req *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(req)[name], 10, 32)
	return uint(id), err
}
