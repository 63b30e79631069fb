package models

import (
	"time"

	"gorm.io/gorm"
)

// Warehouse represents a physical storage site
type Warehouse struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;unique" json:"name"`
	Location  string         `json:"location"`
	Address   string         `json:"address"`
	Latitude  *float64       `json:"latitude,omitempty"`
	Longitude *float64       `json:"longitude,omitempty"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Stocks []WarehouseStock `gorm:"foreignKey:WarehouseID" json:"stocks,omitempty"`
}

// TableName specifies the table name for Warehouse model
func (Warehouse) TableName() string {
	return "warehouses"
}

// WarehouseStock holds the per-warehouse quantity of a product plus its bin location
type WarehouseStock struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	ProductID   uint `gorm:"not null;index;uniqueIndex:idx_warehouse_stock_product" json:"product_id"`
	WarehouseID uint `gorm:"not null;index;uniqueIndex:idx_warehouse_stock_product" json:"warehouse_id"`
	Quantity    int  `gorm:"default:0" json:"quantity"`

	// Bin location within the warehouse
	Aisle string `json:"aisle"`
	Rack  string `json:"rack"`
	Box   string `json:"box"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Product   Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Warehouse Warehouse `gorm:"foreignKey:WarehouseID" json:"warehouse,omitempty"`
}

// TableName specifies the table name for WarehouseStock model
func (WarehouseStock) TableName() string {
	return "warehouse_stocks"
}
