package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jeniistore/jenii-admin/internal/cache"
	"github.com/jeniistore/jenii-admin/internal/config"
	"github.com/jeniistore/jenii-admin/internal/models"
	"github.com/jeniistore/jenii-admin/internal/services"
	"github.com/jeniistore/jenii-admin/internal/shiprocket"
)

const testWebhookSecret = "shiprocket-webhook-secret"

// carrierStoreStub satisfies the lifecycle service's order store for
// webhook tests. Only the carrier-event paths are exercised here.
type carrierStoreStub struct {
	order     *models.Order
	delivered int
}

func (f *carrierStoreStub) GetByID(_ context.Context, orderID uuid.UUID) (*models.Order, error) {
	if f.order == nil || f.order.ID != orderID {
		return nil, pgx.ErrNoRows
	}
	copied := *f.order
	return &copied, nil
}

func (f *carrierStoreStub) GetByShippingOrderID(_ context.Context, shippingOrderID string) (*models.Order, error) {
	if f.order == nil || f.order.Shipping.ShippingOrderID != shippingOrderID {
		return nil, pgx.ErrNoRows
	}
	copied := *f.order
	return &copied, nil
}

func (f *carrierStoreStub) List(context.Context, models.OrderStatus, int, int) ([]*models.Order, error) {
	return nil, nil
}

func (f *carrierStoreStub) History(context.Context, uuid.UUID) ([]models.HistoryEntry, error) {
	return nil, nil
}

func (f *carrierStoreStub) SetStatusAdmin(context.Context, uuid.UUID, models.OrderStatus, string) error {
	return nil
}

func (f *carrierStoreStub) SetTrackingInfo(context.Context, uuid.UUID, string, string, string) error {
	return nil
}

func (f *carrierStoreStub) MarkShippedFromPickup(context.Context, uuid.UUID) (bool, error) {
	return false, nil
}

func (f *carrierStoreStub) MarkShippedInTransit(context.Context, uuid.UUID, bool) (bool, error) {
	return false, nil
}

func (f *carrierStoreStub) MarkDelivered(_ context.Context, _ uuid.UUID, _ bool) (bool, error) {
	f.delivered++
	f.order.Status = models.StatusDelivered
	return true, nil
}

func (f *carrierStoreStub) MarkCancelledByCarrier(context.Context, uuid.UUID, bool) (bool, error) {
	return false, nil
}

func (f *carrierStoreStub) MarkReturnedByCarrier(context.Context, uuid.UUID, bool) (bool, error) {
	return false, nil
}

func webhookTestHandlers(t *testing.T, store *carrierStoreStub) *Handlers {
	t.Helper()

	provider, err := cache.NewProvider(cache.Config{Provider: "memory"})
	if err != nil {
		t.Fatalf("failed to create cache provider: %v", err)
	}
	t.Cleanup(func() { provider.Close() }) //nolint:errcheck

	return &Handlers{
		config:        &config.Config{ShiprocketWebhookSecret: testWebhookSecret},
		cacheProvider: provider,
		lifecycle:     services.NewLifecycleService(store, nil, config.LifecyclePolicy{}, nil),
	}
}

func postWebhook(h *Handlers, body, signature, deliveryID string) *httptest.ResponseRecorder {
	r := httptest.NewRequest("POST", "/webhooks/shiprocket", strings.NewReader(body))
	if signature != "" {
		r.Header.Set(shiprocket.SignatureHeader, signature)
	}
	if deliveryID != "" {
		r.Header.Set(shiprocket.DeliveryIDHeader, deliveryID)
	}
	w := httptest.NewRecorder()
	h.CarrierWebhook(w, r)
	return w
}

func TestCarrierWebhookRejectsBadSignature(t *testing.T) {
	t.Parallel()

	store := &carrierStoreStub{order: &models.Order{
		ID:       uuid.New(),
		Status:   models.StatusShipped,
		Shipping: models.Shipping{ShippingOrderID: "SR-555"},
	}}
	h := webhookTestHandlers(t, store)

	body := `{"event":"shipment_delivered","data":{"order_id":"SR-555"}}`

	if w := postWebhook(h, body, "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing signature: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if w := postWebhook(h, body, shiprocket.Sign([]byte(body), "wrong-secret"), ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad signature: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if store.delivered != 0 {
		t.Fatalf("delivered transitions = %d, want 0", store.delivered)
	}
}

func TestCarrierWebhookProcessesEvent(t *testing.T) {
	t.Parallel()

	store := &carrierStoreStub{order: &models.Order{
		ID:       uuid.New(),
		Status:   models.StatusShipped,
		Shipping: models.Shipping{ShippingOrderID: "SR-555"},
	}}
	h := webhookTestHandlers(t, store)

	body := `{"event":"shipment_delivered","data":{"order_id":"SR-555"}}`

	w := postWebhook(h, body, shiprocket.Sign([]byte(body), testWebhookSecret), "dlv-1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if store.delivered != 1 {
		t.Fatalf("delivered transitions = %d, want 1", store.delivered)
	}
}

func TestCarrierWebhookAcknowledgesUndecodablePayload(t *testing.T) {
	t.Parallel()

	store := &carrierStoreStub{order: &models.Order{
		ID:       uuid.New(),
		Status:   models.StatusShipped,
		Shipping: models.Shipping{ShippingOrderID: "SR-555"},
	}}
	h := webhookTestHandlers(t, store)

	// Correctly signed but unusable deliveries get a 200 so the carrier
	// stops retrying them. Only the signature gate answers 401.
	bodies := map[string]string{
		"malformed json": `{not json`,
		"missing event":  `{"data":{"order_id":"SR-555"}}`,
	}
	for name, body := range bodies {
		w := postWebhook(h, body, shiprocket.Sign([]byte(body), testWebhookSecret), "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want %d", name, w.Code, http.StatusOK)
		}
	}
	if store.delivered != 0 {
		t.Fatalf("delivered transitions = %d, want 0", store.delivered)
	}
}

func TestCarrierWebhookAcknowledgesUnknownOrder(t *testing.T) {
	t.Parallel()

	store := &carrierStoreStub{}
	h := webhookTestHandlers(t, store)

	body := `{"event":"shipment_delivered","data":{"order_id":"SR-404"}}`

	w := postWebhook(h, body, shiprocket.Sign([]byte(body), testWebhookSecret), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestCarrierWebhookDeduplicatesDeliveries(t *testing.T) {
	t.Parallel()

	store := &carrierStoreStub{order: &models.Order{
		ID:       uuid.New(),
		Status:   models.StatusShipped,
		Shipping: models.Shipping{ShippingOrderID: "SR-555"},
	}}
	h := webhookTestHandlers(t, store)

	body := `{"event":"shipment_delivered","data":{"order_id":"SR-555"}}`
	signature := shiprocket.Sign([]byte(body), testWebhookSecret)

	for i := 0; i < 3; i++ {
		if w := postWebhook(h, body, signature, "dlv-7"); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}
	if store.delivered != 1 {
		t.Fatalf("delivered transitions = %d, want 1", store.delivered)
	}
}
