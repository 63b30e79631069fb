package orders

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/warehub-io/warehub/internal/models"
	"github.com/warehub-io/warehub/internal/services/stock"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Product{},
		&models.Warehouse{},
		&models.WarehouseStock{},
		&models.StockMovement{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test schema: %v", err)
	}
	ledger := stock.NewService(db, nil)
	return NewService(db, ledger, nil), db
}

func seedStockedProduct(t *testing.T, db *gorm.DB, sku, price string, quantity int) (models.Product, models.Warehouse) {
	t.Helper()
	w := models.Warehouse{Name: "WH-" + sku}
	if err := db.Create(&w).Error; err != nil {
		t.Fatalf("Failed to seed warehouse: %v", err)
	}
	p := models.Product{
		SKU:      sku,
		Name:     "Test " + sku,
		Price:    decimal.RequireFromString(price),
		IsActive: true,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("Failed to seed product: %v", err)
	}
	ledger := stock.NewService(db, nil)
	if _, err := ledger.RecordMovement(context.Background(), stock.MovementInput{
		ProductID:   p.ID,
		WarehouseID: w.ID,
		Action:      models.MovementAdd,
		Quantity:    quantity,
	}); err != nil {
		t.Fatalf("Failed to seed stock: %v", err)
	}
	return p, w
}

func validInput(items ...ItemInput) CreateInput {
	return CreateInput{
		CustomerName:  "Al Bahar Heavy Equipment",
		CustomerEmail: "workshop@albahar.example",
		CustomerPhone: "+971505550200",
		Items:         items,
	}
}

func TestCreateOrderTotals(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	oil, _ := seedStockedProduct(t, db, "ENG-OIL-001", "25.00", 100)
	filter, _ := seedStockedProduct(t, db, "FLT-AIR-210", "12.50", 100)

	// 2 x 25.00 + 4 x 12.50 = 100.00 subtotal
	order, err := svc.Create(ctx, validInput(
		ItemInput{ProductID: oil.ID, Quantity: 2},
		ItemInput{ProductID: filter.ID, Quantity: 4},
	))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if order.Subtotal.StringFixed(2) != "100.00" {
		t.Errorf("Expected subtotal 100.00, got %s", order.Subtotal.StringFixed(2))
	}
	if order.Tax.StringFixed(2) != "10.00" {
		t.Errorf("Expected tax 10.00, got %s", order.Tax.StringFixed(2))
	}
	if order.Total.StringFixed(2) != "110.00" {
		t.Errorf("Expected total 110.00, got %s", order.Total.StringFixed(2))
	}

	if !strings.HasPrefix(order.OrderNumber, "ORD-") {
		t.Errorf("Expected generated order number, got %q", order.OrderNumber)
	}
	if order.Status != models.OrderStatusPending {
		t.Errorf("Expected pending status, got %s", order.Status)
	}
	if order.ApprovalStatus != models.ApprovalNone {
		t.Errorf("Expected approval n/a, got %s", order.ApprovalStatus)
	}

	// Stock was consumed under the order number
	var p models.Product
	db.First(&p, oil.ID)
	if p.StockAvailable != 98 {
		t.Errorf("Expected 98 available after consuming 2, got %d", p.StockAvailable)
	}
	var consumed int64
	db.Model(&models.StockMovement{}).
		Where("reference = ? AND action = ?", order.OrderNumber, models.MovementUse).
		Count(&consumed)
	if consumed != 2 {
		t.Errorf("Expected 2 use movements referencing the order, got %d", consumed)
	}
}

func TestCreateOrderPriceOverride(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	oil, _ := seedStockedProduct(t, db, "ENG-OIL-001", "25.00", 10)

	override := decimal.RequireFromString("20.00")
	order, err := svc.Create(ctx, validInput(
		ItemInput{ProductID: oil.ID, Quantity: 1, UnitPrice: &override},
	))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if order.Items[0].UnitPrice.StringFixed(2) != "20.00" {
		t.Errorf("Expected overridden price 20.00, got %s", order.Items[0].UnitPrice.StringFixed(2))
	}
	if order.Subtotal.StringFixed(2) != "20.00" {
		t.Errorf("Expected subtotal 20.00, got %s", order.Subtotal.StringFixed(2))
	}
}

func TestCreateOrderValidation(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	oil, _ := seedStockedProduct(t, db, "ENG-OIL-001", "25.00", 10)

	// Missing customer contact
	in := validInput(ItemInput{ProductID: oil.ID, Quantity: 1})
	in.CustomerEmail = ""
	if _, err := svc.Create(ctx, in); !errors.Is(err, ErrMissingCustomer) {
		t.Errorf("Expected ErrMissingCustomer, got %v", err)
	}

	// No items
	if _, err := svc.Create(ctx, validInput()); !errors.Is(err, ErrEmptyOrder) {
		t.Errorf("Expected ErrEmptyOrder, got %v", err)
	}

	// Unknown product
	if _, err := svc.Create(ctx, validInput(ItemInput{ProductID: 9999, Quantity: 1})); !errors.Is(err, stock.ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound, got %v", err)
	}
}

func TestCreateOrderRollsBackOnInsufficientStock(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	oil, _ := seedStockedProduct(t, db, "ENG-OIL-001", "25.00", 100)
	scarce, _ := seedStockedProduct(t, db, "BRK-PAD-044", "310.00", 2)

	_, err := svc.Create(ctx, validInput(
		ItemInput{ProductID: oil.ID, Quantity: 5},
		ItemInput{ProductID: scarce.ID, Quantity: 3},
	))
	if !errors.Is(err, stock.ErrInsufficientStock) {
		t.Fatalf("Expected ErrInsufficientStock, got %v", err)
	}

	// Nothing committed: no order, no items, no movements, stock untouched
	var orderCount, movementCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	db.Model(&models.StockMovement{}).Where("action = ?", models.MovementUse).Count(&movementCount)
	if orderCount != 0 || movementCount != 0 {
		t.Errorf("Expected full rollback, got %d orders and %d use movements", orderCount, movementCount)
	}
	var p models.Product
	db.First(&p, oil.ID)
	if p.StockAvailable != 100 {
		t.Errorf("Expected first item's stock untouched at 100, got %d", p.StockAvailable)
	}
}

func TestApprovalWorkflow(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	oil, _ := seedStockedProduct(t, db, "ENG-OIL-001", "25.00", 10)
	order, err := svc.Create(ctx, validInput(ItemInput{ProductID: oil.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Request approval
	order, err = svc.RequestApproval(ctx, order.ID, "user-1", "big order")
	if err != nil {
		t.Fatalf("RequestApproval failed: %v", err)
	}
	if order.ApprovalStatus != models.ApprovalRequired {
		t.Errorf("Expected needs_approval, got %s", order.ApprovalStatus)
	}
	if order.ApprovalRequestedBy != "user-1" {
		t.Errorf("Expected requester user-1, got %s", order.ApprovalRequestedBy)
	}

	// Requesting again is a no-op
	order, err = svc.RequestApproval(ctx, order.ID, "user-2", "")
	if err != nil {
		t.Fatalf("Second RequestApproval failed: %v", err)
	}
	if order.ApprovalRequestedBy != "user-1" {
		t.Errorf("Repeat request must not change requester, got %s", order.ApprovalRequestedBy)
	}

	// Approve
	order, err = svc.Approve(ctx, order.ID, "manager-1")
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if order.ApprovalStatus != models.ApprovalApproved {
		t.Errorf("Expected approved, got %s", order.ApprovalStatus)
	}
	if order.ApprovedBy != "manager-1" || order.ApprovedAt == nil {
		t.Error("Expected approver and timestamp to be recorded")
	}
	firstApprovedAt := *order.ApprovedAt

	// Approving twice is a no-op
	order, err = svc.Approve(ctx, order.ID, "manager-2")
	if err != nil {
		t.Fatalf("Second Approve failed: %v", err)
	}
	if order.ApprovedBy != "manager-1" || !order.ApprovedAt.Equal(firstApprovedAt) {
		t.Error("Repeat approve must not change approver or timestamp")
	}

	// Requesting approval on an approved order leaves it approved
	order, err = svc.RequestApproval(ctx, order.ID, "user-3", "")
	if err != nil {
		t.Fatalf("RequestApproval after approve failed: %v", err)
	}
	if order.ApprovalStatus != models.ApprovalApproved {
		t.Errorf("Approved order must stay approved, got %s", order.ApprovalStatus)
	}
}

func TestCancelRestocksOrder(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	oil, _ := seedStockedProduct(t, db, "ENG-OIL-001", "25.00", 50)
	order, err := svc.Create(ctx, validInput(ItemInput{ProductID: oil.ID, Quantity: 8}))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var p models.Product
	db.First(&p, oil.ID)
	if p.StockAvailable != 42 {
		t.Fatalf("Expected 42 available after order, got %d", p.StockAvailable)
	}

	order, err = svc.UpdateStatus(ctx, order.ID, models.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if order.Status != models.OrderStatusCancelled {
		t.Errorf("Expected cancelled, got %s", order.Status)
	}

	// Stock returned, with a compensating add movement in the ledger
	db.First(&p, oil.ID)
	if p.StockAvailable != 50 {
		t.Errorf("Expected stock restored to 50, got %d", p.StockAvailable)
	}
	var restocked int64
	db.Model(&models.StockMovement{}).
		Where("reference = ? AND action = ?", order.OrderNumber+"/cancel", models.MovementAdd).
		Count(&restocked)
	if restocked != 1 {
		t.Errorf("Expected 1 restock movement, got %d", restocked)
	}

	// Cancelled is terminal
	if _, err := svc.UpdateStatus(ctx, order.ID, models.OrderStatusShipped); !errors.Is(err, ErrTerminalStatus) {
		t.Errorf("Expected ErrTerminalStatus, got %v", err)
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	oil, _ := seedStockedProduct(t, db, "ENG-OIL-001", "25.00", 10)
	order, err := svc.Create(ctx, validInput(ItemInput{ProductID: oil.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, order.ID, "teleported"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Expected ErrInvalidStatus, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, 9999, models.OrderStatusShipped); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("Expected ErrOrderNotFound, got %v", err)
	}

	// Same-status update is a no-op, not an error
	if _, err := svc.UpdateStatus(ctx, order.ID, models.OrderStatusPending); err != nil {
		t.Errorf("Same-status update should succeed, got %v", err)
	}
}

func TestListFilteringAndSorting(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	oil, _ := seedStockedProduct(t, db, "ENG-OIL-001", "10.00", 100)

	customers := []struct {
		name string
		qty  int
	}{
		{"Alpha Cranes", 1},
		{"Beta Marine", 3},
		{"Gamma Logistics", 2},
	}
	for _, c := range customers {
		in := validInput(ItemInput{ProductID: oil.ID, Quantity: c.qty})
		in.CustomerName = c.name
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("Create for %s failed: %v", c.name, err)
		}
	}

	// Sort by total ascending
	list, err := svc.List(ctx, ListFilter{SortBy: "total", SortDir: "asc"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("Expected 3 orders, got %d", len(list))
	}
	if list[0].CustomerName != "Alpha Cranes" || list[2].CustomerName != "Beta Marine" {
		t.Errorf("Expected ascending totals Alpha..Beta, got %s..%s", list[0].CustomerName, list[2].CustomerName)
	}

	// Case-insensitive customer search
	list, err = svc.List(ctx, ListFilter{Customer: "beta"})
	if err != nil {
		t.Fatalf("List with customer filter failed: %v", err)
	}
	if len(list) != 1 || list[0].CustomerName != "Beta Marine" {
		t.Errorf("Expected only Beta Marine, got %d results", len(list))
	}

	// Total range
	min := decimal.RequireFromString("20.00")
	list, err = svc.List(ctx, ListFilter{TotalMin: &min})
	if err != nil {
		t.Fatalf("List with total filter failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("Expected 2 orders with total >= 20.00, got %d", len(list))
	}

	// Unknown sort key falls back to created_at instead of erroring
	if _, err := svc.List(ctx, ListFilter{SortBy: "; DROP TABLE orders"}); err != nil {
		t.Errorf("Unknown sort key should fall back silently, got %v", err)
	}
}
