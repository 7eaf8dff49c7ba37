package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusPending      OrderStatus = "PENDING"
	StatusConfirmed    OrderStatus = "CONFIRMED"
	StatusProcessing   OrderStatus = "PROCESSING"
	StatusShipped      OrderStatus = "SHIPPED"
	StatusDelivered    OrderStatus = "DELIVERED"
	StatusCancelled    OrderStatus = "CANCELLED"
	StatusReturned     OrderStatus = "RETURNED"
	StatusRTOInitiated OrderStatus = "RTO_INITIATED"
)

// AdminSettableStatuses are the values the admin status endpoint accepts.
// PROCESSING and RTO_INITIATED are reachable only through the cancellation
// flow, never set directly.
var AdminSettableStatuses = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
	StatusReturned,
}

// IsTerminal reports whether carrier events stop applying to the order.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case StatusCancelled, StatusDelivered, StatusReturned:
		return true
	default:
		return false
	}
}

// IsPreShipment reports whether the parcel has not left the warehouse.
// Cancellation approval only releases the carrier shipment for these.
func (s OrderStatus) IsPreShipment() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing:
		return true
	default:
		return false
	}
}

func IsAdminSettable(s OrderStatus) bool {
	for _, v := range AdminSettableStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type CancellationStatus string

const (
	CancellationNone     CancellationStatus = ""
	CancellationPending  CancellationStatus = "PENDING"
	CancellationApproved CancellationStatus = "APPROVED"
	CancellationRejected CancellationStatus = "REJECTED"
)

// Shipping is the carrier sub-record embedded in an order, populated
// incrementally as Shiprocket events arrive.
type Shipping struct {
	ShippingOrderID string     `json:"shipping_order_id,omitempty"`
	ShipmentID      string     `json:"shipment_id,omitempty"`
	AWB             string     `json:"awb,omitempty"`
	CourierName     string     `json:"courier_name,omitempty"`
	TrackingURL     string     `json:"tracking_url,omitempty"`
	ShippedAt       *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time `json:"delivered_at,omitempty"`
}

// Payment is the snapshot captured at checkout. The lifecycle manager never
// recomputes it.
type Payment struct {
	Mode      string `json:"mode"`
	PaymentID string `json:"payment_id,omitempty"`
	Status    string `json:"status,omitempty"`
}

// Address is the shipping address, inline for guest orders.
type Address struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type Order struct {
	ID                 uuid.UUID          `json:"id"`
	OrderNumber        string             `json:"order_number"`
	UserID             *uuid.UUID         `json:"user_id,omitempty"`
	CustomerEmail      string             `json:"customer_email,omitempty"`
	ShippingAddress    Address            `json:"shipping_address"`
	Items              []OrderItem        `json:"items,omitempty"`
	Payment            Payment            `json:"payment"`
	SubtotalCents      int                `json:"subtotal_cents"`
	ShippingCents      int                `json:"shipping_cents"`
	DiscountCents      int                `json:"discount_cents"`
	TotalCents         int                `json:"total_cents"`
	Status             OrderStatus        `json:"order_status"`
	Shipping           Shipping           `json:"shipping"`
	CancellationStatus CancellationStatus `json:"cancellation_status,omitempty"`
	CancellationReason string             `json:"cancellation_reason,omitempty"`
	ReturnReason       string             `json:"return_reason,omitempty"`
	AdminNote          string             `json:"admin_note,omitempty"`
	CancellationDate   *time.Time         `json:"cancellation_date,omitempty"`
	ConfirmedAt        *time.Time         `json:"confirmed_at,omitempty"`
	CancelledAt        *time.Time         `json:"cancelled_at,omitempty"`
	ReturnedAt         *time.Time         `json:"returned_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// NotificationEmail resolves the customer address for status emails: the
// account email when the order is linked to a user, else the address email.
func (o *Order) NotificationEmail() string {
	if o.CustomerEmail != "" {
		return o.CustomerEmail
	}
	return o.ShippingAddress.Email
}

type OrderItem struct {
	ID             uuid.UUID   `json:"id"`
	OrderID        uuid.UUID   `json:"order_id"`
	ProductID      uuid.UUID   `json:"product_id"`
	ProductName    string      `json:"product_name"`
	Quantity       int         `json:"quantity"`
	UnitPriceCents int         `json:"unit_price_cents"`
	Status         OrderStatus `json:"status"`
}

// HistoryEntry is one append-only record of a status change.
type HistoryEntry struct {
	ID        int64       `json:"id"`
	OrderID   uuid.UUID   `json:"order_id"`
	Status    OrderStatus `json:"status"`
	Comment   string      `json:"comment"`
	Actor     string      `json:"actor"`
	CreatedAt time.Time   `json:"created_at"`
}

const (
	ActorAdmin   = "admin"
	ActorCarrier = "carrier"
)
