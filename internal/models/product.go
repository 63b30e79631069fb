package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a catalog product tracked by the stock ledger.
// Invariant: StockAvailable = StockTotal - StockUsed, never negative.
type Product struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	SKU            string          `gorm:"uniqueIndex;not null" json:"sku"`
	Name           string          `gorm:"not null;index" json:"name"`
	Category       string          `gorm:"index" json:"category"`
	Price          decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"price"`
	StockTotal     int             `gorm:"default:0" json:"stock_total"`
	StockUsed      int             `gorm:"default:0" json:"stock_used"`
	StockAvailable int             `gorm:"default:0" json:"stock_available"`
	MinStockLevel  int             `gorm:"default:0" json:"min_stock_level"`

	// Extended attributes (optional)
	GroupCode    string `json:"group_code"`
	PartCode     string `gorm:"index" json:"part_code"`
	AltPartCode  string `json:"alt_part_code"`
	LeadTimeDays int    `json:"lead_time_days"`
	Importance   string `json:"importance"` // low | normal | high | critical
	Unit         string `json:"unit"`

	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	WarehouseStocks []WarehouseStock `gorm:"foreignKey:ProductID" json:"warehouse_stocks,omitempty"`
}

// TableName specifies the table name for Product model
func (Product) TableName() string {
	return "products"
}

// IsLowStock reports whether availability has fallen to the reorder threshold
func (p *Product) IsLowStock() bool {
	return p.StockAvailable <= p.MinStockLevel
}
