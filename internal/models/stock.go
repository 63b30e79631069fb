package models

import (
	"time"
)

// MovementAction defines the kind of stock movement
type MovementAction string

const (
	MovementAdd      MovementAction = "add"      // goods received / adjustment up
	MovementUse      MovementAction = "use"      // goods consumed / picked for an order
	MovementTransfer MovementAction = "transfer" // moved between warehouses
)

// StockMovement is an append-only audit record of a quantity change.
// Rows are never updated or deleted once written.
type StockMovement struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	ProductID       uint           `gorm:"not null;index" json:"product_id"`
	WarehouseID     uint           `gorm:"not null;index" json:"warehouse_id"`
	DestWarehouseID *uint          `gorm:"index" json:"dest_warehouse_id,omitempty"` // transfer target
	Action          MovementAction `gorm:"type:varchar(20);not null;index" json:"action"`
	Quantity        int            `gorm:"not null" json:"quantity"`
	PreviousStock   int            `json:"previous_stock"`
	NewStock        int            `json:"new_stock"`
	Reference       string         `gorm:"index" json:"reference"` // order number, import batch, ...
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`

	// Relations
	Product   Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Warehouse Warehouse `gorm:"foreignKey:WarehouseID" json:"warehouse,omitempty"`
}

// TableName specifies the table name for StockMovement model
func (StockMovement) TableName() string {
	return "stock_movements"
}
