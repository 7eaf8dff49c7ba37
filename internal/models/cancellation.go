package models

import (
	"time"

	"github.com/google/uuid"
)

// CancellationRequest is a customer-initiated request to cancel an order.
// It is created PENDING by the storefront and processed exactly once by an
// admin; a processed request is immutable.
type CancellationRequest struct {
	ID          uuid.UUID          `json:"id"`
	OrderID     uuid.UUID          `json:"order_id"`
	Reason      string             `json:"reason"`
	Status      CancellationStatus `json:"status"`
	AdminNote   string             `json:"admin_note,omitempty"`
	ProcessedAt *time.Time         `json:"processed_at,omitempty"`
	ProcessedBy string             `json:"processed_by,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}
