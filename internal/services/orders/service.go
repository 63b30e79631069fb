package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warehub-io/warehub/internal/models"
	"github.com/warehub-io/warehub/internal/services/stock"
	"gorm.io/gorm"
)

// TaxRate is the flat tax applied to every order subtotal
var TaxRate = decimal.New(10, -2) // 0.10

// EventSink receives domain events for live dashboards
type EventSink interface {
	Publish(event string, payload interface{})
}

// Service owns the order aggregate and its approval workflow.
// Order creation and stock decrement commit in one transaction.
type Service struct {
	db     *gorm.DB
	ledger *stock.Service
	events EventSink
}

// NewService creates a new order service
func NewService(db *gorm.DB, ledger *stock.Service, events EventSink) *Service {
	return &Service{db: db, ledger: ledger, events: events}
}

// ItemInput is one requested line item. UnitPrice nil means snapshot
// the current product price.
type ItemInput struct {
	ProductID uint             `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// CreateInput is the checkout payload
type CreateInput struct {
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerPhone   string      `json:"customer_phone"`
	CustomerAddress string      `json:"customer_address"`
	JobOrder        string      `json:"job_order"`
	ContainerNumber string      `json:"container_number"`
	Location        string      `json:"location"`
	Notes           string      `json:"notes"`
	Items           []ItemInput `json:"items"`
}

// Create validates the payload, computes totals, persists the order with
// its items and consumes stock for every item. Any failure rolls the
// whole thing back: no partial order, no partial decrement.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Order, error) {
	if strings.TrimSpace(in.CustomerName) == "" ||
		strings.TrimSpace(in.CustomerEmail) == "" ||
		strings.TrimSpace(in.CustomerPhone) == "" {
		return nil, ErrMissingCustomer
	}
	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(in.Items))

		for _, item := range in.Items {
			if item.Quantity <= 0 {
				return stock.ErrInvalidQuantity
			}
			var product models.Product
			if err := tx.First(&product, item.ProductID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return stock.ErrProductNotFound
				}
				return err
			}

			unitPrice := product.Price
			if item.UnitPrice != nil {
				unitPrice = *item.UnitPrice
			}
			lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
			subtotal = subtotal.Add(lineTotal)

			items = append(items, models.OrderItem{
				ProductID:  item.ProductID,
				Quantity:   item.Quantity,
				UnitPrice:  unitPrice,
				TotalPrice: lineTotal,
			})
		}

		subtotal = subtotal.Round(2)
		tax := subtotal.Mul(TaxRate).Round(2)

		order = models.Order{
			CustomerName:    in.CustomerName,
			CustomerEmail:   in.CustomerEmail,
			CustomerPhone:   in.CustomerPhone,
			CustomerAddress: in.CustomerAddress,
			JobOrder:        in.JobOrder,
			ContainerNumber: in.ContainerNumber,
			Location:        in.Location,
			Notes:           in.Notes,
			Subtotal:        subtotal,
			Tax:             tax,
			Total:           subtotal.Add(tax),
			Status:          models.OrderStatusPending,
			ApprovalStatus:  models.ApprovalNone,
			Items:           items,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, item := range order.Items {
			if _, err := s.ledger.ConsumeForOrder(tx, item.ProductID, item.Quantity, order.OrderNumber); err != nil {
				return fmt.Errorf("product %d: %w", item.ProductID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish("order.created", order)
	}
	return &order, nil
}

// Get returns one order with its items and their products
func (s *Service) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		First(&order, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// RequestApproval marks an order as needing approval. Idempotent when
// already requested; an already-approved order is left approved.
func (s *Service) RequestApproval(ctx context.Context, id uint, requestedBy, notes string) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch order.ApprovalStatus {
	case models.ApprovalRequired, models.ApprovalApproved:
		return order, nil
	}

	updates := map[string]interface{}{
		"approval_status":       models.ApprovalRequired,
		"approval_requested_by": requestedBy,
	}
	if notes != "" {
		updates["notes"] = notes
	}
	if err := s.db.WithContext(ctx).Model(order).Updates(updates).Error; err != nil {
		return nil, err
	}
	order.ApprovalStatus = models.ApprovalRequired
	order.ApprovalRequestedBy = requestedBy
	return order, nil
}

// Approve transitions the approval status to approved. Allowed from any
// non-approved state; approving twice is a no-op.
func (s *Service) Approve(ctx context.Context, id uint, approverID string) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.ApprovalStatus == models.ApprovalApproved {
		return order, nil
	}

	now := time.Now()
	updates := map[string]interface{}{
		"approval_status": models.ApprovalApproved,
		"approved_by":     approverID,
		"approved_at":     &now,
	}
	if err := s.db.WithContext(ctx).Model(order).Updates(updates).Error; err != nil {
		return nil, err
	}
	order.ApprovalStatus = models.ApprovalApproved
	order.ApprovedBy = approverID
	order.ApprovedAt = &now
	return order, nil
}

// UpdateStatus changes the fulfillment status. Cancelled is terminal.
// Cancelling restocks every consumed item by replaying the order's use
// movements in reverse.
func (s *Service) UpdateStatus(ctx context.Context, id uint, newStatus models.OrderStatus) (*models.Order, error) {
	switch newStatus {
	case models.OrderStatusPending, models.OrderStatusShipped,
		models.OrderStatusDelivered, models.OrderStatusCancelled:
	default:
		return nil, ErrInvalidStatus
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrOrderNotFound
			}
			return err
		}
		if order.Status == newStatus {
			return nil
		}
		if order.IsTerminal() {
			return ErrTerminalStatus
		}

		if newStatus == models.OrderStatusCancelled {
			if err := s.restock(tx, &order); err != nil {
				return err
			}
		}

		order.Status = newStatus
		return tx.Model(&order).Update("status", newStatus).Error
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish("order.updated", order)
	}
	return &order, nil
}

// restock returns the cancelled order's quantities to the warehouses
// they were consumed from
func (s *Service) restock(tx *gorm.DB, order *models.Order) error {
	var consumed []models.StockMovement
	err := tx.Where("reference = ? AND action = ?", order.OrderNumber, models.MovementUse).
		Find(&consumed).Error
	if err != nil {
		return err
	}

	for _, m := range consumed {
		_, err := s.ledger.RecordMovementTx(tx, stock.MovementInput{
			ProductID:   m.ProductID,
			WarehouseID: m.WarehouseID,
			Action:      models.MovementAdd,
			Quantity:    m.Quantity,
			Reference:   order.OrderNumber + "/cancel",
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// ListFilter carries the query parameters of GET /api/orders
type ListFilter struct {
	Status         string
	ApprovalStatus string
	Customer       string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	TotalMin       *decimal.Decimal
	TotalMax       *decimal.Decimal
	SortBy         string
	SortDir        string
	Limit          int
	Offset         int
}

// sortColumns whitelists the sortable keys exposed by the API
var sortColumns = map[string]string{
	"created_at":      "created_at",
	"total":           "total",
	"status":          "status",
	"approval_status": "approval_status",
	"customer":        "customer_name",
}

// List is a pure read over orders with server-side filtering and sorting
func (s *Service) List(ctx context.Context, f ListFilter) ([]models.Order, error) {
	q := s.db.WithContext(ctx).Model(&models.Order{}).Preload("Items")

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ApprovalStatus != "" {
		q = q.Where("approval_status = ?", f.ApprovalStatus)
	}
	if f.Customer != "" {
		needle := "%" + strings.ToLower(f.Customer) + "%"
		q = q.Where("LOWER(customer_name) LIKE ? OR LOWER(customer_email) LIKE ?", needle, needle)
	}
	if f.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		q = q.Where("created_at <= ?", *f.CreatedTo)
	}
	if f.TotalMin != nil {
		q = q.Where("total >= ?", *f.TotalMin)
	}
	if f.TotalMax != nil {
		q = q.Where("total <= ?", *f.TotalMax)
	}

	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.SortDir, "asc") {
		dir = "ASC"
	}
	q = q.Order(column + " " + dir)

	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var list []models.Order
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
