package shiprocket

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrInvalidSignature marks deliveries whose HMAC could not be verified.
// Callers reject these; every other read failure is still acknowledged.
var ErrInvalidSignature = errors.New("shiprocket: invalid webhook signature")

// Webhook event tags Shiprocket delivers. New tags appear as the carrier
// evolves; unknown ones must be acknowledged, not rejected.
const (
	EventAWBAssigned             = "awb_assigned"
	EventShipmentPickupScheduled = "shipment_pickup_scheduled"
	EventShipmentPickupGenerated = "shipment_pickup_generated"
	EventShipmentPickupCompleted = "shipment_pickup_completed"
	EventShipmentDispatched      = "shipment_dispatched"
	EventShipmentInTransit       = "shipment_in_transit"
	EventShipmentDelivered       = "shipment_delivered"
	EventShipmentCancelled       = "shipment_cancelled"
	EventShipmentReturned        = "shipment_returned"
)

const (
	SignatureHeader  = "x-shiprocket-signature"
	DeliveryIDHeader = "x-shiprocket-delivery-id"
)

type Event struct {
	Event      string    `json:"event"`
	DeliveryID string    `json:"-"`
	Data       EventData `json:"data"`
}

type EventData struct {
	OrderID     string `json:"order_id"`
	ShipmentID  string `json:"shipment_id,omitempty"`
	AWBCode     string `json:"awb_code,omitempty"`
	CourierName string `json:"courier_name,omitempty"`
	TrackingURL string `json:"tracking_url,omitempty"`
}

// ReadWebhookEvent verifies the delivery signature and decodes the payload.
// A signature mismatch is the only failure the webhook endpoint surfaces as
// an error status; everything past this point is acknowledged.
func ReadWebhookEvent(r *http.Request, secret string) (*Event, error) {
	signature := r.Header.Get(SignatureHeader)
	if signature == "" {
		return nil, fmt.Errorf("missing signature header: %w", ErrInvalidSignature)
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	if !VerifySignature(signature, payload, secret) {
		return nil, ErrInvalidSignature
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to decode webhook payload: %w", err)
	}
	if event.Event == "" {
		return nil, fmt.Errorf("webhook payload has no event tag")
	}
	event.DeliveryID = r.Header.Get(DeliveryIDHeader)

	return &event, nil
}

// VerifySignature checks the hex-encoded HMAC-SHA256 of the raw payload.
func VerifySignature(signature string, payload []byte, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the signature for a payload.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
