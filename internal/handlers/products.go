package handlers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warehub-io/warehub/internal/models"
	"github.com/warehub-io/warehub/internal/services/stock"
)

// listProducts returns products with optional server-side filters
func (rt *Router) listProducts(w http.ResponseWriter, req *http.Request) {
	q := rt.db.Model(&models.Product{})

	if search := req.URL.Query().Get("search"); search != "" {
		needle := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", needle, needle)
	}
	if category := req.URL.Query().Get("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if req.URL.Query().Get("low_stock") == "true" {
		q = q.Where("stock_available <= min_stock_level")
	}
	if req.URL.Query().Get("in_stock") == "true" {
		q = q.Where("stock_available > 0")
	}

	var products []models.Product
	if err := q.Order("name ASC").Find(&products).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// CreateProductRequest is the create-product payload. Initial stock is
// booked through the ledger, so a warehouse must be selected whenever
// stock is supplied.
type CreateProductRequest struct {
	models.Product
	InitialStock int   `json:"initial_stock"`
	WarehouseID  *uint `json:"warehouse_id"`
}

// createProduct creates a product and books its initial stock
func (rt *Router) createProduct(w http.ResponseWriter, req *http.Request) {
	var payload CreateProductRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.SKU == "" || payload.Name == "" {
		respondError(w, http.StatusBadRequest, "SKU and name are required")
		return
	}
	if payload.InitialStock > 0 && payload.WarehouseID == nil {
		respondError(w, http.StatusBadRequest, "A warehouse must be selected for initial stock")
		return
	}

	product := payload.Product
	product.StockTotal = 0
	product.StockUsed = 0
	product.StockAvailable = 0

	if err := rt.db.Create(&product).Error; err != nil {
		respondError(w, http.StatusConflict, "Failed to create product (SKU might exist)")
		return
	}

	if payload.InitialStock > 0 {
		_, err := rt.svc.Stock.RecordMovement(req.Context(), stock.MovementInput{
			ProductID:   product.ID,
			WarehouseID: *payload.WarehouseID,
			Action:      models.MovementAdd,
			Quantity:    payload.InitialStock,
			Reference:   "initial",
		})
		if err != nil {
			respondServiceError(w, err)
			return
		}
		// Re-read so the response carries the booked stock
		rt.db.First(&product, product.ID)
	}

	respondJSON(w, http.StatusCreated, product)
}

// getProduct returns a single product with its warehouse breakdown
func (rt *Router) getProduct(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var product models.Product
	if err := rt.db.Preload("WarehouseStocks").Preload("WarehouseStocks.Warehouse").First(&product, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// updateProduct edits product attributes. Stock fields are owned by the
// ledger and cannot be set here.
func (rt *Router) updateProduct(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var product models.Product
	if err := rt.db.First(&product, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}

	// Snapshot ledger-owned fields before applying the payload
	total, used, available := product.StockTotal, product.StockUsed, product.StockAvailable

	if err := json.NewDecoder(req.Body).Decode(&product); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	product.ID = id
	product.StockTotal = total
	product.StockUsed = used
	product.StockAvailable = available

	if err := rt.db.Save(&product).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// deleteProduct removes a product unless order items or vendor links
// still reference it
func (rt *Router) deleteProduct(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var product models.Product
	if err := rt.db.First(&product, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}

	var orderRefs int64
	if err := rt.db.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&orderRefs).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to check product references")
		return
	}
	if orderRefs > 0 {
		respondError(w, http.StatusConflict, "Cannot delete product referenced by orders")
		return
	}

	var vendorRefs int64
	if err := rt.db.Model(&models.VendorProduct{}).Where("product_id = ?", id).Count(&vendorRefs).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to check product references")
		return
	}
	if vendorRefs > 0 {
		respondError(w, http.StatusConflict, "Cannot delete product linked to vendors")
		return
	}

	if err := rt.db.Delete(&product).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Product deleted successfully",
	})
}

// getProductUsage returns the movement history of a product
func (rt *Router) getProductUsage(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	movements, err := rt.svc.Stock.ProductUsage(req.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, movements)
}

// getProductVendors returns the vendors supplying a product
func (rt *Router) getProductVendors(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	links, err := rt.svc.Vendors.ProductVendors(req.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, links)
}

// recordMovement applies a manual stock adjustment or transfer
func (rt *Router) recordMovement(w http.ResponseWriter, req *http.Request) {
	payload := struct {
		ProductID       uint   `json:"product_id"`
		WarehouseID     uint   `json:"warehouse_id"`
		DestWarehouseID *uint  `json:"dest_warehouse_id"`
		Action          string `json:"action"`
		Quantity        int    `json:"quantity"`
		Reference       string `json:"reference"`
	}{}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	in := stock.MovementInput{
		ProductID:       payload.ProductID,
		WarehouseID:     payload.WarehouseID,
		DestWarehouseID: payload.DestWarehouseID,
		Action:          models.MovementAction(payload.Action),
		Quantity:        payload.Quantity,
		Reference:       payload.Reference,
	}

	movement, err := rt.svc.Stock.RecordMovement(req.Context(), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, movement)
}

// importProductsCSV bulk-creates products from a CSV upload. Expected
// columns: sku, name, category, price, min_stock_level, quantity. The
// target warehouse comes from the warehouse_id form field.
func (rt *Router) importProductsCSV(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseMultipartForm(16 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	warehouseID, err := strconv.ParseUint(req.FormValue("warehouse_id"), 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "A warehouse must be selected for the import")
		return
	}

	file, _, err := req.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "CSV file is required")
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read CSV header")
		return
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := col["sku"]; !ok {
		respondError(w, http.StatusBadRequest, "CSV header is missing the sku column")
		return
	}

	cell := func(row []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	imported, skipped := 0, 0
	var rowErrors []string
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			skipped++
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}

		sku := cell(row, "sku")
		name := cell(row, "name")
		if sku == "" || name == "" {
			skipped++
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: sku and name are required", line))
			continue
		}

		price := decimal.Zero
		if s := cell(row, "price"); s != "" {
			if price, err = decimal.NewFromString(s); err != nil {
				skipped++
				rowErrors = append(rowErrors, fmt.Sprintf("row %d: bad price %q", line, s))
				continue
			}
		}
		minStock, _ := strconv.Atoi(cell(row, "min_stock_level"))
		quantity, _ := strconv.Atoi(cell(row, "quantity"))

		product := models.Product{
			SKU:           sku,
			Name:          name,
			Category:      cell(row, "category"),
			Price:         price,
			MinStockLevel: minStock,
		}
		if err := rt.db.Create(&product).Error; err != nil {
			skipped++
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}

		if quantity > 0 {
			_, err := rt.svc.Stock.RecordMovement(req.Context(), stock.MovementInput{
				ProductID:   product.ID,
				WarehouseID: uint(warehouseID),
				Action:      models.MovementAdd,
				Quantity:    quantity,
				Reference:   "import",
			})
			if err != nil {
				rowErrors = append(rowErrors, fmt.Sprintf("row %d: stock not booked: %v", line, err))
			}
		}
		imported++
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"imported": imported,
		"skipped":  skipped,
		"errors":   rowErrors,
	})
}
