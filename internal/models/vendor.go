package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VendorStatus defines possible vendor lifecycle states
type VendorStatus string

const (
	VendorStatusActive    VendorStatus = "active"
	VendorStatusInactive  VendorStatus = "inactive"
	VendorStatusPending   VendorStatus = "pending"
	VendorStatusSuspended VendorStatus = "suspended"
)

// Vendor represents a supplier organization
type Vendor struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"not null;index" json:"name"`
	MainCategory string       `gorm:"index" json:"main_category"` // admin | operation_services
	Subcategory  string       `json:"subcategory"`
	ProductType  string       `json:"product_type"`
	ProductCode  string       `json:"product_code"`
	ContactName  string       `json:"contact_name"`
	Phone        string       `json:"phone"`
	Email        string       `json:"email"`
	Location     string       `json:"location"`
	City         string       `json:"city"`
	State        string       `json:"state"`
	Zone         string       `json:"zone"`
	Status       VendorStatus `gorm:"type:varchar(20);default:'active';index" json:"status"`
	IsActive     bool         `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Products []VendorProduct `gorm:"foreignKey:VendorID" json:"products,omitempty"`
	Contacts []VendorContact `gorm:"foreignKey:VendorID" json:"contacts,omitempty"`
}

// TableName specifies the table name for Vendor model
func (Vendor) TableName() string {
	return "vendors"
}

// VendorProduct is a supply association between a vendor and a product
// with per-relationship commercial terms. (vendor_id, product_id) is unique.
type VendorProduct struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	VendorID             uint            `gorm:"not null;index;uniqueIndex:idx_vendor_product" json:"vendor_id"`
	ProductID            uint            `gorm:"not null;index;uniqueIndex:idx_vendor_product" json:"product_id"`
	SupplierCode         string          `json:"supplier_code"`
	Price                decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"price"`
	LeadTimeDays         int             `json:"lead_time_days"`
	MinimumOrderQuantity int             `json:"minimum_order_quantity"`
	IsPreferred          bool            `gorm:"default:false" json:"is_preferred"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`

	// Relations
	Vendor  Vendor  `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName specifies the table name for VendorProduct model
func (VendorProduct) TableName() string {
	return "vendor_products"
}

// VendorContact is a named contact person at a vendor.
// IsPrimary is advisory; no single-primary constraint is enforced.
type VendorContact struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	VendorID    uint      `gorm:"not null;index" json:"vendor_id"`
	Name        string    `gorm:"not null" json:"name"`
	Designation string    `json:"designation"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	IsPrimary   bool      `gorm:"default:false" json:"is_primary"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for VendorContact model
func (VendorContact) TableName() string {
	return "vendor_contacts"
}
