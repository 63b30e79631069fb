package stock

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/warehub-io/warehub/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	)
	if err != nil {
		t.Fatalf("Failed to migrate test schema: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, sku string, minStock int) models.Product {
	t.Helper()
	p := models.Product{
		SKU:           sku,
		Name:          "Test " + sku,
		Price:         decimal.RequireFromString("10.00"),
		MinStockLevel: minStock,
		IsActive:      true,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("Failed to seed product: %v", err)
	}
	return p
}

func seedWarehouse(t *testing.T, db *gorm.DB, name string) models.Warehouse {
	t.Helper()
	w := models.Warehouse{Name: name}
	if err := db.Create(&w).Error; err != nil {
		t.Fatalf("Failed to seed warehouse: %v", err)
	}
	return w
}

func TestRecordMovementAddAndUse(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	product := seedProduct(t, db, "ENG-OIL-001", 10)
	warehouse := seedWarehouse(t, db, "Main")

	// Receive 250 units
	m, err := svc.RecordMovement(ctx, MovementInput{
		ProductID:   product.ID,
		WarehouseID: warehouse.ID,
		Action:      models.MovementAdd,
		Quantity:    250,
		Reference:   "GRN-001",
	})
	if err != nil {
		t.Fatalf("Add movement failed: %v", err)
	}
	if m.PreviousStock != 0 || m.NewStock != 250 {
		t.Errorf("Expected 0 -> 250, got %d -> %d", m.PreviousStock, m.NewStock)
	}

	// Consume 247 units
	m, err = svc.RecordMovement(ctx, MovementInput{
		ProductID:   product.ID,
		WarehouseID: warehouse.ID,
		Action:      models.MovementUse,
		Quantity:    247,
		Reference:   "JO-118",
	})
	if err != nil {
		t.Fatalf("Use movement failed: %v", err)
	}
	if m.NewStock != 3 {
		t.Errorf("Expected new stock 3, got %d", m.NewStock)
	}

	// Invariant: available = total - used
	var p models.Product
	if err := db.First(&p, product.ID).Error; err != nil {
		t.Fatalf("Failed to reload product: %v", err)
	}
	if p.StockTotal != 250 || p.StockUsed != 247 || p.StockAvailable != 3 {
		t.Errorf("Expected total=250 used=247 available=3, got total=%d used=%d available=%d",
			p.StockTotal, p.StockUsed, p.StockAvailable)
	}
	if p.StockAvailable != p.StockTotal-p.StockUsed {
		t.Error("Availability invariant violated")
	}
	if !p.IsLowStock() {
		t.Error("Product at 3/10 should be low stock")
	}

	// Warehouse bin matches
	var ws models.WarehouseStock
	if err := db.Where("product_id = ? AND warehouse_id = ?", product.ID, warehouse.ID).First(&ws).Error; err != nil {
		t.Fatalf("Failed to load warehouse stock: %v", err)
	}
	if ws.Quantity != 3 {
		t.Errorf("Expected warehouse quantity 3, got %d", ws.Quantity)
	}
}

func TestRecordMovementInsufficientStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	product := seedProduct(t, db, "FLT-AIR-210", 5)
	warehouse := seedWarehouse(t, db, "Main")

	if _, err := svc.RecordMovement(ctx, MovementInput{
		ProductID:   product.ID,
		WarehouseID: warehouse.ID,
		Action:      models.MovementAdd,
		Quantity:    10,
	}); err != nil {
		t.Fatalf("Add movement failed: %v", err)
	}

	_, err := svc.RecordMovement(ctx, MovementInput{
		ProductID:   product.ID,
		WarehouseID: warehouse.ID,
		Action:      models.MovementUse,
		Quantity:    11,
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("Expected ErrInsufficientStock, got %v", err)
	}

	// State must be unchanged after the failed use
	var p models.Product
	db.First(&p, product.ID)
	if p.StockAvailable != 10 || p.StockUsed != 0 {
		t.Errorf("Failed use must not change stock, got available=%d used=%d", p.StockAvailable, p.StockUsed)
	}
	var count int64
	db.Model(&models.StockMovement{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 movement in ledger, got %d", count)
	}
}

func TestRecordMovementValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	product := seedProduct(t, db, "BRK-PAD-044", 2)
	warehouse := seedWarehouse(t, db, "Main")

	cases := []struct {
		name string
		in   MovementInput
		want error
	}{
		{"zero quantity", MovementInput{ProductID: product.ID, WarehouseID: warehouse.ID, Action: models.MovementAdd, Quantity: 0}, ErrInvalidQuantity},
		{"negative quantity", MovementInput{ProductID: product.ID, WarehouseID: warehouse.ID, Action: models.MovementUse, Quantity: -5}, ErrInvalidQuantity},
		{"missing product", MovementInput{ProductID: 9999, WarehouseID: warehouse.ID, Action: models.MovementAdd, Quantity: 1}, ErrProductNotFound},
		{"missing warehouse", MovementInput{ProductID: product.ID, WarehouseID: 9999, Action: models.MovementAdd, Quantity: 1}, ErrWarehouseNotFound},
		{"transfer without destination", MovementInput{ProductID: product.ID, WarehouseID: warehouse.ID, Action: models.MovementTransfer, Quantity: 1}, ErrMissingDestination},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RecordMovement(ctx, tc.in)
			if !errors.Is(err, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestTransferBetweenWarehouses(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	product := seedProduct(t, db, "HYD-HOSE-38", 10)
	src := seedWarehouse(t, db, "Main")
	dst := seedWarehouse(t, db, "Yard")

	if _, err := svc.RecordMovement(ctx, MovementInput{
		ProductID:   product.ID,
		WarehouseID: src.ID,
		Action:      models.MovementAdd,
		Quantity:    100,
	}); err != nil {
		t.Fatalf("Add movement failed: %v", err)
	}

	if _, err := svc.RecordMovement(ctx, MovementInput{
		ProductID:       product.ID,
		WarehouseID:     src.ID,
		DestWarehouseID: &dst.ID,
		Action:          models.MovementTransfer,
		Quantity:        40,
	}); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	// Product-level totals are untouched by a transfer
	var p models.Product
	db.First(&p, product.ID)
	if p.StockTotal != 100 || p.StockAvailable != 100 {
		t.Errorf("Transfer must not change product totals, got total=%d available=%d", p.StockTotal, p.StockAvailable)
	}

	rows, err := svc.WarehouseBreakdown(ctx, product.ID)
	if err != nil {
		t.Fatalf("WarehouseBreakdown failed: %v", err)
	}
	quantities := map[uint]int{}
	for _, row := range rows {
		quantities[row.WarehouseID] = row.Quantity
	}
	if quantities[src.ID] != 60 || quantities[dst.ID] != 40 {
		t.Errorf("Expected 60/40 split, got %d/%d", quantities[src.ID], quantities[dst.ID])
	}

	// Transferring more than the source bin holds must fail
	_, err = svc.RecordMovement(ctx, MovementInput{
		ProductID:       product.ID,
		WarehouseID:     src.ID,
		DestWarehouseID: &dst.ID,
		Action:          models.MovementTransfer,
		Quantity:        61,
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("Expected ErrInsufficientStock, got %v", err)
	}
}

func TestTransferDestinationMustExist(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	product := seedProduct(t, db, "HYD-PUMP-12", 5)
	src := seedWarehouse(t, db, "Main")

	if _, err := svc.RecordMovement(ctx, MovementInput{
		ProductID:   product.ID,
		WarehouseID: src.ID,
		Action:      models.MovementAdd,
		Quantity:    20,
	}); err != nil {
		t.Fatalf("Add movement failed: %v", err)
	}

	bogus := uint(9999)
	_, err := svc.RecordMovement(ctx, MovementInput{
		ProductID:       product.ID,
		WarehouseID:     src.ID,
		DestWarehouseID: &bogus,
		Action:          models.MovementTransfer,
		Quantity:        4,
	})
	if !errors.Is(err, ErrWarehouseNotFound) {
		t.Fatalf("Expected ErrWarehouseNotFound, got %v", err)
	}

	// No phantom bin at the bogus site, source untouched
	var count int64
	db.Model(&models.WarehouseStock{}).Where("warehouse_id = ?", bogus).Count(&count)
	if count != 0 {
		t.Error("Failed transfer must not create a bin at an unknown warehouse")
	}
	var ws models.WarehouseStock
	db.Where("product_id = ? AND warehouse_id = ?", product.ID, src.ID).First(&ws)
	if ws.Quantity != 20 {
		t.Errorf("Failed transfer must leave source at 20, got %d", ws.Quantity)
	}
	db.Model(&models.StockMovement{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected only the initial movement in the ledger, got %d", count)
	}
}

func TestMovementAuditChain(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	product := seedProduct(t, db, "CHN-LNK-01", 5)
	main := seedWarehouse(t, db, "Main")
	yard := seedWarehouse(t, db, "Yard")

	for _, in := range []MovementInput{
		{ProductID: product.ID, WarehouseID: main.ID, Action: models.MovementAdd, Quantity: 100},
		{ProductID: product.ID, WarehouseID: main.ID, Action: models.MovementUse, Quantity: 30},
		{ProductID: product.ID, WarehouseID: main.ID, DestWarehouseID: &yard.ID, Action: models.MovementTransfer, Quantity: 25},
		{ProductID: product.ID, WarehouseID: yard.ID, Action: models.MovementUse, Quantity: 20},
		{ProductID: product.ID, WarehouseID: main.ID, Action: models.MovementAdd, Quantity: 5},
	} {
		if _, err := svc.RecordMovement(ctx, in); err != nil {
			t.Fatalf("Movement %s %d failed: %v", in.Action, in.Quantity, err)
		}
	}

	var movements []models.StockMovement
	if err := db.Order("id ASC").Find(&movements).Error; err != nil {
		t.Fatalf("Failed to load ledger: %v", err)
	}
	if len(movements) != 5 {
		t.Fatalf("Expected 5 movements, got %d", len(movements))
	}

	// Every entry's before/after pair must match its own action, and
	// each entry must pick up exactly where the previous one ended.
	for i, m := range movements {
		var want int
		switch m.Action {
		case models.MovementAdd:
			want = m.PreviousStock + m.Quantity
		case models.MovementUse:
			want = m.PreviousStock - m.Quantity
		case models.MovementTransfer:
			want = m.PreviousStock
		}
		if m.NewStock != want {
			t.Errorf("Movement %d (%s %d): expected %d -> %d, got -> %d",
				i, m.Action, m.Quantity, m.PreviousStock, want, m.NewStock)
		}
		if i > 0 && m.PreviousStock != movements[i-1].NewStock {
			t.Errorf("Movement %d starts at %d but previous entry ended at %d",
				i, m.PreviousStock, movements[i-1].NewStock)
		}
	}
	if movements[4].NewStock != 55 {
		t.Errorf("Expected final availability 55, got %d", movements[4].NewStock)
	}
}

func TestConsumeForOrderSplitsAcrossWarehouses(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	product := seedProduct(t, db, "ELE-FUSE-30A", 2)
	big := seedWarehouse(t, db, "Main")
	small := seedWarehouse(t, db, "Van")

	for _, in := range []MovementInput{
		{ProductID: product.ID, WarehouseID: big.ID, Action: models.MovementAdd, Quantity: 30},
		{ProductID: product.ID, WarehouseID: small.ID, Action: models.MovementAdd, Quantity: 10},
	} {
		if _, err := svc.RecordMovement(ctx, in); err != nil {
			t.Fatalf("Seed movement failed: %v", err)
		}
	}

	// 35 cannot come from a single warehouse: 30 from Main, 5 from Van
	var movements []models.StockMovement
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		movements, err = svc.ConsumeForOrder(tx, product.ID, 35, "ORD-TEST")
		return err
	})
	if err != nil {
		t.Fatalf("ConsumeForOrder failed: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("Expected 2 movements, got %d", len(movements))
	}
	if movements[0].WarehouseID != big.ID || movements[0].Quantity != 30 {
		t.Errorf("Expected first allocation 30 from Main, got %d from warehouse %d", movements[0].Quantity, movements[0].WarehouseID)
	}
	if movements[1].WarehouseID != small.ID || movements[1].Quantity != 5 {
		t.Errorf("Expected second allocation 5 from Van, got %d from warehouse %d", movements[1].Quantity, movements[1].WarehouseID)
	}

	// Asking for more than the global total fails and rolls back
	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.ConsumeForOrder(tx, product.ID, 6, "ORD-OVER")
		return err
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("Expected ErrInsufficientStock, got %v", err)
	}
	var p models.Product
	db.First(&p, product.ID)
	if p.StockAvailable != 5 {
		t.Errorf("Rolled-back consume must leave availability at 5, got %d", p.StockAvailable)
	}
}

func TestLowStockOrdering(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	warehouse := seedWarehouse(t, db, "Main")

	// deficit -7
	deep := seedProduct(t, db, "AAA-001", 10)
	// deficit -2, SKU tie-break pair
	tieA := seedProduct(t, db, "BBB-001", 5)
	tieB := seedProduct(t, db, "BBB-002", 5)
	// healthy, must not appear
	healthy := seedProduct(t, db, "CCC-001", 5)

	stocks := map[uint]int{deep.ID: 3, tieA.ID: 3, tieB.ID: 3, healthy.ID: 50}
	for id, qty := range stocks {
		if _, err := svc.RecordMovement(ctx, MovementInput{
			ProductID:   id,
			WarehouseID: warehouse.ID,
			Action:      models.MovementAdd,
			Quantity:    qty,
		}); err != nil {
			t.Fatalf("Seed movement failed: %v", err)
		}
	}

	products, err := svc.LowStock(ctx, 10)
	if err != nil {
		t.Fatalf("LowStock failed: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("Expected 3 low-stock products, got %d", len(products))
	}
	if products[0].SKU != "AAA-001" {
		t.Errorf("Most depleted product must come first, got %s", products[0].SKU)
	}
	if products[1].SKU != "BBB-001" || products[2].SKU != "BBB-002" {
		t.Errorf("Equal deficits must order by SKU, got %s then %s", products[1].SKU, products[2].SKU)
	}
}
