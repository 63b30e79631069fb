package models

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus defines the fulfillment state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ApprovalStatus is the workflow gate on an order, independent of fulfillment
type ApprovalStatus string

const (
	ApprovalNone     ApprovalStatus = "n/a"
	ApprovalRequired ApprovalStatus = "needs_approval"
	ApprovalApproved ApprovalStatus = "approved"
)

// Order represents a customer order header with computed totals
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"uniqueIndex;not null" json:"order_number"`

	// Customer information
	CustomerName    string `gorm:"not null;index" json:"customer_name"`
	CustomerEmail   string `gorm:"not null" json:"customer_email"`
	CustomerPhone   string `gorm:"not null" json:"customer_phone"`
	CustomerAddress string `json:"customer_address"`

	// Logistics (optional)
	JobOrder        string `json:"job_order"`
	ContainerNumber string `json:"container_number"`
	Location        string `json:"location"`

	// Monetary totals, fixed at creation time
	Subtotal decimal.Decimal `gorm:"type:numeric(12,2)" json:"subtotal"`
	Tax      decimal.Decimal `gorm:"type:numeric(12,2)" json:"tax"`
	Total    decimal.Decimal `gorm:"type:numeric(12,2)" json:"total"`

	Status         OrderStatus    `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	ApprovalStatus ApprovalStatus `gorm:"type:varchar(20);default:'n/a';index" json:"approval_status"`

	// Approval workflow audit
	ApprovalRequestedBy string     `json:"approval_requested_by,omitempty"`
	ApprovedBy          string     `json:"approved_by,omitempty"`
	ApprovedAt          *time.Time `json:"approved_at,omitempty"`

	Notes     string         `gorm:"type:text" json:"notes"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// TableName specifies the table name for Order model
func (Order) TableName() string {
	return "orders"
}

// BeforeCreate generates the order number before creating
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.OrderNumber == "" {
		o.OrderNumber = generateOrderNumber("ORD")
	}
	return nil
}

// IsTerminal reports whether the order cannot change status anymore
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCancelled
}

// generateOrderNumber creates a display-unique order number. The
// 8-char suffix keeps the collision odds negligible against the unique
// index even at thousands of orders per day.
func generateOrderNumber(prefix string) string {
	return prefix + "-" + time.Now().Format("20060102") + "-" + randomString(8)
}

// randomString generates a random uppercase alphanumeric string of given length
func randomString(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}

// OrderItem is a line item on an order. Immutable after creation;
// UnitPrice is a snapshot of the product price at order time.
type OrderItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    uint            `gorm:"not null;index" json:"order_id"`
	ProductID  uint            `gorm:"not null;index" json:"product_id"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(12,2)" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2)" json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`

	// Relations
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName specifies the table name for OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
