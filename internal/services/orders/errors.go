package orders

import "errors"

var (
	// ErrOrderNotFound is returned when the order ID does not exist
	ErrOrderNotFound = errors.New("order not found")

	// ErrEmptyOrder is returned when an order has no line items
	ErrEmptyOrder = errors.New("order must contain at least one item")

	// ErrMissingCustomer is returned when name, email or phone is absent
	ErrMissingCustomer = errors.New("customer name, email and phone are required")

	// ErrInvalidStatus is returned for an unknown fulfillment status value
	ErrInvalidStatus = errors.New("invalid order status")

	// ErrTerminalStatus is returned when changing the status of a cancelled order
	ErrTerminalStatus = errors.New("cancelled orders cannot change status")
)
