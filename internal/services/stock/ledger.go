package stock

import (
	"context"
	"fmt"

	"github.com/warehub-io/warehub/internal/models"
	"gorm.io/gorm"
)

// EventSink receives domain events for live dashboards
type EventSink interface {
	Publish(event string, payload interface{})
}

// Service owns product stock and the append-only movement ledger.
// Every mutation goes through RecordMovement so the audit trail is complete.
type Service struct {
	db     *gorm.DB
	events EventSink
}

// NewService creates a new stock ledger service
func NewService(db *gorm.DB, events EventSink) *Service {
	return &Service{db: db, events: events}
}

// MovementInput describes a single stock mutation
type MovementInput struct {
	ProductID       uint
	WarehouseID     uint
	DestWarehouseID *uint // required for transfers
	Action          models.MovementAction
	Quantity        int
	Reference       string
}

// RecordMovement appends a movement and updates product and warehouse
// quantities atomically. A use that would drive availability negative
// fails with ErrInsufficientStock and leaves state unchanged.
func (s *Service) RecordMovement(ctx context.Context, in MovementInput) (*models.StockMovement, error) {
	var movement *models.StockMovement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.RecordMovementTx(tx, in)
		if err != nil {
			return err
		}
		movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish("movement.recorded", movement)
	}
	return movement, nil
}

// RecordMovementTx applies a movement inside an existing transaction.
// Used by the order service so order creation and stock decrement commit
// together.
func (s *Service) RecordMovementTx(tx *gorm.DB, in MovementInput) (*models.StockMovement, error) {
	if in.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var product models.Product
	if err := tx.First(&product, in.ProductID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	var count int64
	if err := tx.Model(&models.Warehouse{}).Where("id = ?", in.WarehouseID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrWarehouseNotFound
	}

	switch in.Action {
	case models.MovementAdd:
		res := tx.Model(&models.Product{}).Where("id = ?", in.ProductID).Updates(map[string]interface{}{
			"stock_total":     gorm.Expr("stock_total + ?", in.Quantity),
			"stock_available": gorm.Expr("stock_available + ?", in.Quantity),
		})
		if res.Error != nil {
			return nil, res.Error
		}
		if err := adjustWarehouseQuantity(tx, in.ProductID, in.WarehouseID, in.Quantity); err != nil {
			return nil, err
		}

	case models.MovementUse:
		// Conditional update is the oversell guard: concurrent orders
		// against the same product serialize on this row and the loser
		// sees zero rows affected.
		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock_available >= ?", in.ProductID, in.Quantity).
			Updates(map[string]interface{}{
				"stock_used":      gorm.Expr("stock_used + ?", in.Quantity),
				"stock_available": gorm.Expr("stock_available - ?", in.Quantity),
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrInsufficientStock
		}
		if err := adjustWarehouseQuantity(tx, in.ProductID, in.WarehouseID, -in.Quantity); err != nil {
			return nil, err
		}

	case models.MovementTransfer:
		if in.DestWarehouseID == nil {
			return nil, ErrMissingDestination
		}
		if err := tx.Model(&models.Warehouse{}).Where("id = ?", *in.DestWarehouseID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrWarehouseNotFound
		}
		if err := adjustWarehouseQuantity(tx, in.ProductID, in.WarehouseID, -in.Quantity); err != nil {
			return nil, err
		}
		if err := adjustWarehouseQuantity(tx, in.ProductID, *in.DestWarehouseID, in.Quantity); err != nil {
			return nil, err
		}
		// Product-level totals are unchanged by a transfer

	default:
		return nil, fmt.Errorf("unknown movement action: %q", in.Action)
	}

	// Snapshot after the guarded updates so concurrent movements on the
	// same product each record their own before/after pair.
	var snapshot models.Product
	if err := tx.First(&snapshot, in.ProductID).Error; err != nil {
		return nil, err
	}
	newStock := snapshot.StockAvailable
	previous := newStock
	switch in.Action {
	case models.MovementAdd:
		previous = newStock - in.Quantity
	case models.MovementUse:
		previous = newStock + in.Quantity
	}

	movement := models.StockMovement{
		ProductID:       in.ProductID,
		WarehouseID:     in.WarehouseID,
		DestWarehouseID: in.DestWarehouseID,
		Action:          in.Action,
		Quantity:        in.Quantity,
		PreviousStock:   previous,
		NewStock:        newStock,
		Reference:       in.Reference,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

// adjustWarehouseQuantity changes the per-warehouse quantity of a product.
// Negative deltas are guarded so a bin never goes below zero.
func adjustWarehouseQuantity(tx *gorm.DB, productID, warehouseID uint, delta int) error {
	if delta < 0 {
		res := tx.Model(&models.WarehouseStock{}).
			Where("product_id = ? AND warehouse_id = ? AND quantity >= ?", productID, warehouseID, -delta).
			Update("quantity", gorm.Expr("quantity + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStock
		}
		return nil
	}

	res := tx.Model(&models.WarehouseStock{}).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		row := models.WarehouseStock{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Quantity:    delta,
		}
		return tx.Create(&row).Error
	}
	return nil
}

// ConsumeForOrder consumes quantity for one order item inside tx,
// allocating from the best-stocked warehouses first. Usually this is a
// single movement; it splits across warehouses only when no single one
// can cover the quantity.
func (s *Service) ConsumeForOrder(tx *gorm.DB, productID uint, quantity int, reference string) ([]models.StockMovement, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var rows []models.WarehouseStock
	if err := tx.Where("product_id = ? AND quantity > 0", productID).
		Order("quantity DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	var movements []models.StockMovement
	remaining := quantity
	for _, row := range rows {
		if remaining == 0 {
			break
		}
		take := remaining
		if row.Quantity < take {
			take = row.Quantity
		}
		m, err := s.RecordMovementTx(tx, MovementInput{
			ProductID:   productID,
			WarehouseID: row.WarehouseID,
			Action:      models.MovementUse,
			Quantity:    take,
			Reference:   reference,
		})
		if err != nil {
			return nil, err
		}
		movements = append(movements, *m)
		remaining -= take
	}

	if remaining > 0 {
		return nil, ErrInsufficientStock
	}
	return movements, nil
}

// LowStock returns products at or below their reorder threshold,
// most depleted first. SKU is the tie-break so the ordering is stable.
func (s *Service) LowStock(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	q := s.db.WithContext(ctx).
		Where("stock_available <= min_stock_level AND is_active = ?", true).
		Order("(stock_available - min_stock_level) ASC").
		Order("sku ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// RecentMovements returns the newest ledger entries with relations preloaded
func (s *Service) RecentMovements(ctx context.Context, limit int) ([]models.StockMovement, error) {
	if limit <= 0 {
		limit = 20
	}
	var movements []models.StockMovement
	err := s.db.WithContext(ctx).
		Preload("Product").
		Preload("Warehouse").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// ProductUsage returns the full movement history for one product
func (s *Service) ProductUsage(ctx context.Context, productID uint) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := s.db.WithContext(ctx).
		Preload("Warehouse").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// WarehouseBreakdown returns per-warehouse quantities for a product
func (s *Service) WarehouseBreakdown(ctx context.Context, productID uint) ([]models.WarehouseStock, error) {
	var rows []models.WarehouseStock
	err := s.db.WithContext(ctx).
		Preload("Warehouse").
		Where("product_id = ?", productID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
