package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jeniistore/jenii-admin/internal/config"
	"github.com/jeniistore/jenii-admin/internal/models"
	"github.com/jeniistore/jenii-admin/internal/shiprocket"
)

type fakeLifecycleStore struct {
	order       *models.Order
	applyResult bool

	setStatusStatus  models.OrderStatus
	setStatusComment string
	trackingAWB      string
	trackingCourier  string
	trackingURL      string
	transitions      []string
	overrides        []bool
}

func (f *fakeLifecycleStore) GetByID(_ context.Context, orderID uuid.UUID) (*models.Order, error) {
	if f.order == nil || f.order.ID != orderID {
		return nil, pgx.ErrNoRows
	}
	copied := *f.order
	return &copied, nil
}

func (f *fakeLifecycleStore) GetByShippingOrderID(_ context.Context, shippingOrderID string) (*models.Order, error) {
	if f.order == nil || f.order.Shipping.ShippingOrderID != shippingOrderID {
		return nil, pgx.ErrNoRows
	}
	copied := *f.order
	return &copied, nil
}

func (f *fakeLifecycleStore) List(context.Context, models.OrderStatus, int, int) ([]*models.Order, error) {
	if f.order == nil {
		return nil, nil
	}
	return []*models.Order{f.order}, nil
}

func (f *fakeLifecycleStore) History(context.Context, uuid.UUID) ([]models.HistoryEntry, error) {
	return nil, nil
}

func (f *fakeLifecycleStore) SetStatusAdmin(_ context.Context, _ uuid.UUID, status models.OrderStatus, comment string) error {
	f.setStatusStatus = status
	f.setStatusComment = comment
	f.order.Status = status
	return nil
}

func (f *fakeLifecycleStore) SetTrackingInfo(_ context.Context, _ uuid.UUID, awb, courierName, trackingURL string) error {
	f.trackingAWB = awb
	f.trackingCourier = courierName
	f.trackingURL = trackingURL
	f.order.Shipping.AWB = awb
	f.order.Shipping.CourierName = courierName
	f.order.Shipping.TrackingURL = trackingURL
	return nil
}

func (f *fakeLifecycleStore) transition(name string, status models.OrderStatus) (bool, error) {
	f.transitions = append(f.transitions, name)
	if f.applyResult {
		f.order.Status = status
	}
	return f.applyResult, nil
}

func (f *fakeLifecycleStore) MarkShippedFromPickup(context.Context, uuid.UUID) (bool, error) {
	return f.transition("pickup", models.StatusShipped)
}

func (f *fakeLifecycleStore) MarkShippedInTransit(_ context.Context, _ uuid.UUID, override bool) (bool, error) {
	f.overrides = append(f.overrides, override)
	return f.transition("in_transit", models.StatusShipped)
}

func (f *fakeLifecycleStore) MarkDelivered(_ context.Context, _ uuid.UUID, override bool) (bool, error) {
	f.overrides = append(f.overrides, override)
	return f.transition("delivered", models.StatusDelivered)
}

func (f *fakeLifecycleStore) MarkCancelledByCarrier(_ context.Context, _ uuid.UUID, override bool) (bool, error) {
	f.overrides = append(f.overrides, override)
	return f.transition("cancelled", models.StatusCancelled)
}

func (f *fakeLifecycleStore) MarkReturnedByCarrier(_ context.Context, _ uuid.UUID, override bool) (bool, error) {
	f.overrides = append(f.overrides, override)
	return f.transition("returned", models.StatusReturned)
}

type fakeEmailSender struct {
	trackingSent int
	statuses     []models.OrderStatus
	approved     int
	rejected     int
}

func (f *fakeEmailSender) SendTrackingAssigned(context.Context, *models.Order) error {
	f.trackingSent++
	return nil
}

func (f *fakeEmailSender) SendStatusChanged(_ context.Context, _ *models.Order, status models.OrderStatus) error {
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeEmailSender) SendCancellationApproved(context.Context, *models.Order, string, string) error {
	f.approved++
	return nil
}

func (f *fakeEmailSender) SendCancellationRejected(context.Context, *models.Order, string) error {
	f.rejected++
	return nil
}

func testOrder(status models.OrderStatus) *models.Order {
	return &models.Order{
		ID:          uuid.New(),
		OrderNumber: "JN-1001",
		Status:      status,
		Shipping: models.Shipping{
			ShippingOrderID: "SR-555",
		},
		ShippingAddress: models.Address{
			Name:  "Asha",
			Email: "asha@example.com",
		},
	}
}

func newTestLifecycle(store *fakeLifecycleStore, sender *fakeEmailSender, override bool) *LifecycleService {
	return NewLifecycleService(store, sender, config.LifecyclePolicy{AllowTerminalOverride: override}, nil)
}

func TestSetStatusRejectsNonAdminValues(t *testing.T) {
	t.Parallel()

	store := &fakeLifecycleStore{order: testOrder(models.StatusPending)}
	svc := newTestLifecycle(store, &fakeEmailSender{}, false)

	for _, status := range []models.OrderStatus{models.StatusProcessing, models.StatusRTOInitiated, "INVALID"} {
		_, err := svc.SetStatus(context.Background(), SetStatusInput{OrderID: store.order.ID, Status: status})
		if !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("SetStatus(%s) error = %v, want ErrInvalidStatus", status, err)
		}
	}
}

func TestSetStatusOrderNotFound(t *testing.T) {
	t.Parallel()

	store := &fakeLifecycleStore{order: testOrder(models.StatusPending)}
	svc := newTestLifecycle(store, &fakeEmailSender{}, false)

	_, err := svc.SetStatus(context.Background(), SetStatusInput{OrderID: uuid.New(), Status: models.StatusConfirmed})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("SetStatus() error = %v, want ErrNotFound", err)
	}
}

func TestSetStatusGeneratesComment(t *testing.T) {
	t.Parallel()

	store := &fakeLifecycleStore{order: testOrder(models.StatusPending)}
	sender := &fakeEmailSender{}
	svc := newTestLifecycle(store, sender, false)

	result, err := svc.SetStatus(context.Background(), SetStatusInput{OrderID: store.order.ID, Status: models.StatusConfirmed})
	if err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}

	if result.PreviousStatus != models.StatusPending {
		t.Fatalf("previous status = %s, want PENDING", result.PreviousStatus)
	}
	if result.Order.Status != models.StatusConfirmed {
		t.Fatalf("order status = %s, want CONFIRMED", result.Order.Status)
	}
	if want := "Status updated from PENDING to CONFIRMED"; store.setStatusComment != want {
		t.Fatalf("comment = %q, want %q", store.setStatusComment, want)
	}
}

func TestSetStatusKeepsExplicitComment(t *testing.T) {
	t.Parallel()

	store := &fakeLifecycleStore{order: testOrder(models.StatusShipped)}
	svc := newTestLifecycle(store, &fakeEmailSender{}, false)

	_, err := svc.SetStatus(context.Background(), SetStatusInput{
		OrderID: store.order.ID,
		Status:  models.StatusCancelled,
		Comment: "customer unreachable",
	})
	if err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if store.setStatusComment != "customer unreachable" {
		t.Fatalf("comment = %q, want explicit comment preserved", store.setStatusComment)
	}
}

func TestSetStatusSendsNoEmail(t *testing.T) {
	t.Parallel()

	// Manual status writes never notify the customer, whether or not the
	// status actually changed. Notifications belong to the carrier-event flow.
	targets := []models.OrderStatus{models.StatusShipped, models.StatusDelivered}
	for _, target := range targets {
		target := target
		t.Run(string(target), func(t *testing.T) {
			t.Parallel()

			store := &fakeLifecycleStore{order: testOrder(models.StatusShipped)}
			sender := &fakeEmailSender{}
			svc := newTestLifecycle(store, sender, false)

			_, err := svc.SetStatus(context.Background(), SetStatusInput{OrderID: store.order.ID, Status: target})
			if err != nil {
				t.Fatalf("SetStatus() error = %v", err)
			}
			if len(sender.statuses) != 0 {
				t.Fatalf("expected no status notifications, got %v", sender.statuses)
			}
			if sender.trackingSent != 0 {
				t.Fatalf("expected no tracking email, got %d", sender.trackingSent)
			}
		})
	}
}

func TestHandleCarrierEventUnknownOrderIsDropped(t *testing.T) {
	t.Parallel()

	store := &fakeLifecycleStore{order: testOrder(models.StatusConfirmed)}
	svc := newTestLifecycle(store, &fakeEmailSender{}, false)

	err := svc.HandleCarrierEvent(context.Background(), &shiprocket.Event{
		Event: shiprocket.EventShipmentDelivered,
		Data:  shiprocket.EventData{OrderID: "SR-999"},
	})
	if err != nil {
		t.Fatalf("HandleCarrierEvent() error = %v", err)
	}
	if len(store.transitions) != 0 {
		t.Fatalf("expected no transitions, got %v", store.transitions)
	}
}

func TestHandleCarrierEventAWBAssigned(t *testing.T) {
	t.Parallel()

	store := &fakeLifecycleStore{order: testOrder(models.StatusConfirmed)}
	sender := &fakeEmailSender{}
	svc := newTestLifecycle(store, sender, false)

	err := svc.HandleCarrierEvent(context.Background(), &shiprocket.Event{
		Event: shiprocket.EventAWBAssigned,
		Data: shiprocket.EventData{
			OrderID:     "SR-555",
			AWBCode:     "AWB123",
			CourierName: "Delhivery",
			TrackingURL: "https://track.example/AWB123",
		},
	})
	if err != nil {
		t.Fatalf("HandleCarrierEvent() error = %v", err)
	}
	if store.trackingAWB != "AWB123" || store.trackingCourier != "Delhivery" {
		t.Fatalf("tracking = (%q, %q), want (AWB123, Delhivery)", store.trackingAWB, store.trackingCourier)
	}
	if sender.trackingSent != 1 {
		t.Fatalf("tracking emails = %d, want 1", sender.trackingSent)
	}
	// The order status must not change on awb_assigned.
	if len(store.transitions) != 0 {
		t.Fatalf("expected no transitions, got %v", store.transitions)
	}
}

func TestHandleCarrierEventPickupMarksShipped(t *testing.T) {
	t.Parallel()

	for _, event := range []string{
		shiprocket.EventShipmentPickupScheduled,
		shiprocket.EventShipmentPickupGenerated,
		shiprocket.EventShipmentPickupCompleted,
	} {
		store := &fakeLifecycleStore{order: testOrder(models.StatusConfirmed), applyResult: true}
		sender := &fakeEmailSender{}
		svc := newTestLifecycle(store, sender, false)

		err := svc.HandleCarrierEvent(context.Background(), &shiprocket.Event{
			Event: event,
			Data:  shiprocket.EventData{OrderID: "SR-555"},
		})
		if err != nil {
			t.Fatalf("HandleCarrierEvent(%s) error = %v", event, err)
		}
		if len(store.transitions) != 1 || store.transitions[0] != "pickup" {
			t.Fatalf("transitions = %v, want [pickup]", store.transitions)
		}
		if len(sender.statuses) != 1 || sender.statuses[0] != models.StatusShipped {
			t.Fatalf("notifications = %v, want [SHIPPED]", sender.statuses)
		}
	}
}

func TestHandleCarrierEventPickupNoOpSendsNoEmail(t *testing.T) {
	t.Parallel()

	store := &fakeLifecycleStore{order: testOrder(models.StatusShipped), applyResult: false}
	sender := &fakeEmailSender{}
	svc := newTestLifecycle(store, sender, false)

	err := svc.HandleCarrierEvent(context.Background(), &shiprocket.Event{
		Event: shiprocket.EventShipmentPickupCompleted,
		Data:  shiprocket.EventData{OrderID: "SR-555"},
	})
	if err != nil {
		t.Fatalf("HandleCarrierEvent() error = %v", err)
	}
	if len(sender.statuses) != 0 {
		t.Fatalf("expected no notifications, got %v", sender.statuses)
	}
}

func TestHandleCarrierEventTransitSendsNoEmail(t *testing.T) {
	t.Parallel()

	store := &fakeLifecycleStore{order: testOrder(models.StatusConfirmed), applyResult: true}
	sender := &fakeEmailSender{}
	svc := newTestLifecycle(store, sender, false)

	err := svc.HandleCarrierEvent(context.Background(), &shiprocket.Event{
		Event: shiprocket.EventShipmentInTransit,
		Data:  shiprocket.EventData{OrderID: "SR-555"},
	})
	if err != nil {
		t.Fatalf("HandleCarrierEvent() error = %v", err)
	}
	if len(store.transitions) != 1 || store.transitions[0] != "in_transit" {
		t.Fatalf("transitions = %v, want [in_transit]", store.transitions)
	}
	if len(sender.statuses) != 0 {
		t.Fatalf("expected no notifications for transit events, got %v", sender.statuses)
	}
}

func TestHandleCarrierEventDelivered(t *testing.T) {
	t.Parallel()

	store := &fakeLifecycleStore{order: testOrder(models.StatusShipped), applyResult: true}
	sender := &fakeEmailSender{}
	svc := newTestLifecycle(store, sender, false)

	err := svc.HandleCarrierEvent(context.Background(), &shiprocket.Event{
		Event: shiprocket.EventShipmentDelivered,
		Data:  shiprocket.EventData{OrderID: "SR-555"},
	})
	if err != nil {
		t.Fatalf("HandleCarrierEvent() error = %v", err)
	}
	if len(sender.statuses) != 1 || sender.statuses[0] != models.StatusDelivered {
		t.Fatalf("notifications = %v, want [DELIVERED]", sender.statuses)
	}
}

func TestHandleCarrierEventPassesTerminalOverride(t *testing.T) {
	t.Parallel()

	store := &fakeLifecycleStore{order: testOrder(models.StatusCancelled), applyResult: true}
	svc := newTestLifecycle(store, &fakeEmailSender{}, true)

	err := svc.HandleCarrierEvent(context.Background(), &shiprocket.Event{
		Event: shiprocket.EventShipmentDelivered,
		Data:  shiprocket.EventData{OrderID: "SR-555"},
	})
	if err != nil {
		t.Fatalf("HandleCarrierEvent() error = %v", err)
	}
	if len(store.overrides) != 1 || !store.overrides[0] {
		t.Fatalf("overrides = %v, want [true]", store.overrides)
	}
}

func TestHandleCarrierEventUnknownEventIsAcknowledged(t *testing.T) {
	t.Parallel()

	store := &fakeLifecycleStore{order: testOrder(models.StatusConfirmed)}
	svc := newTestLifecycle(store, &fakeEmailSender{}, false)

	err := svc.HandleCarrierEvent(context.Background(), &shiprocket.Event{
		Event: "shipment_weight_disputed",
		Data:  shiprocket.EventData{OrderID: "SR-555"},
	})
	if err != nil {
		t.Fatalf("HandleCarrierEvent() error = %v", err)
	}
	if len(store.transitions) != 0 {
		t.Fatalf("expected no transitions, got %v", store.transitions)
	}
}
