package checkout

import (
	"errors"
	"fmt"
)

// ErrValidation marks malformed checkout input (empty item list, non-positive
// quantity). Wrapped with a reason; match with errors.Is.
var ErrValidation = errors.New("invalid checkout request")

// ProductNotFoundError is returned when a requested product does not exist.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InsufficientStockError is returned when a reservation exceeds the available
// stock. It carries requested vs available so the client can adjust.
type InsufficientStockError struct {
	ProductID int64 `json:"product_id,string"`
	Requested int   `json:"requested"`
	Available int   `json:"available"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}
