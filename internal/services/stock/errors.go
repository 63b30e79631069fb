package stock

import "errors"

var (
	// ErrInsufficientStock is returned when a use or transfer would drive
	// availability below zero. State is left unchanged.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidQuantity is returned for zero or negative quantities
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrProductNotFound is returned when the referenced product does not exist
	ErrProductNotFound = errors.New("product not found")

	// ErrWarehouseNotFound is returned when the referenced warehouse does not exist
	ErrWarehouseNotFound = errors.New("warehouse not found")

	// ErrMissingDestination is returned for transfers without a target warehouse
	ErrMissingDestination = errors.New("transfer requires a destination warehouse")
)
