package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jeniistore/jenii-admin/internal/models"
)

type fakeCancellationStore struct {
	request     *models.CancellationRequest
	applyResult bool

	approvedStatus models.OrderStatus
	approvedNote   string
	approvedBy     string
	rejected       bool
}

func (f *fakeCancellationStore) GetByID(_ context.Context, requestID uuid.UUID) (*models.CancellationRequest, error) {
	if f.request == nil || f.request.ID != requestID {
		return nil, pgx.ErrNoRows
	}
	copied := *f.request
	return &copied, nil
}

func (f *fakeCancellationStore) List(context.Context, models.CancellationStatus, int, int) ([]*models.CancellationRequest, error) {
	return nil, nil
}

func (f *fakeCancellationStore) Approve(_ context.Context, _, _ uuid.UUID, orderStatus models.OrderStatus, _, adminNote, processedBy string) (bool, error) {
	if !f.applyResult {
		f.request.Status = models.CancellationApproved
		return false, nil
	}
	f.approvedStatus = orderStatus
	f.approvedNote = adminNote
	f.approvedBy = processedBy
	f.request.Status = models.CancellationApproved
	return true, nil
}

func (f *fakeCancellationStore) Reject(_ context.Context, _, _ uuid.UUID, _, _ string) (bool, error) {
	if !f.applyResult {
		f.request.Status = models.CancellationRejected
		return false, nil
	}
	f.rejected = true
	f.request.Status = models.CancellationRejected
	return true, nil
}

type fakeOrderGetter struct {
	order *models.Order
}

func (f *fakeOrderGetter) GetByID(_ context.Context, orderID uuid.UUID) (*models.Order, error) {
	if f.order == nil || f.order.ID != orderID {
		return nil, pgx.ErrNoRows
	}
	copied := *f.order
	return &copied, nil
}

type fakeCarrier struct {
	cancelled []string
	rtos      []string
	err       error
}

func (f *fakeCarrier) CancelShipment(_ context.Context, shippingOrderID string) error {
	f.cancelled = append(f.cancelled, shippingOrderID)
	return f.err
}

func (f *fakeCarrier) RequestRTO(_ context.Context, awb string) error {
	f.rtos = append(f.rtos, awb)
	return f.err
}

func pendingRequest(orderID uuid.UUID) *models.CancellationRequest {
	return &models.CancellationRequest{
		ID:        uuid.New(),
		OrderID:   orderID,
		Reason:    "changed my mind",
		Status:    models.CancellationPending,
		CreatedAt: time.Now(),
	}
}

func TestApproveRequestNotFound(t *testing.T) {
	t.Parallel()

	svc := NewCancellationService(&fakeCancellationStore{}, &fakeOrderGetter{}, &fakeCarrier{}, &fakeEmailSender{}, nil)

	_, err := svc.Approve(context.Background(), DecisionInput{RequestID: uuid.New()})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Approve() error = %v, want ErrNotFound", err)
	}
}

func TestApproveAlreadyProcessed(t *testing.T) {
	t.Parallel()

	order := testOrder(models.StatusConfirmed)
	request := pendingRequest(order.ID)
	request.Status = models.CancellationApproved

	svc := NewCancellationService(
		&fakeCancellationStore{request: request, applyResult: true},
		&fakeOrderGetter{order: order},
		&fakeCarrier{},
		&fakeEmailSender{},
		nil,
	)

	_, err := svc.Approve(context.Background(), DecisionInput{RequestID: request.ID})
	var alreadyProcessed *AlreadyProcessedError
	if !errors.As(err, &alreadyProcessed) {
		t.Fatalf("Approve() error = %v, want AlreadyProcessedError", err)
	}
	if alreadyProcessed.Status != models.CancellationApproved {
		t.Fatalf("status in error = %s, want APPROVED", alreadyProcessed.Status)
	}
}

func TestApproveUnshippedCancelsShipment(t *testing.T) {
	t.Parallel()

	order := testOrder(models.StatusConfirmed)
	order.Shipping.ShipmentID = "SHIP-1"
	request := pendingRequest(order.ID)

	requests := &fakeCancellationStore{request: request, applyResult: true}
	carrier := &fakeCarrier{}
	sender := &fakeEmailSender{}
	svc := NewCancellationService(requests, &fakeOrderGetter{order: order}, carrier, sender, nil)

	result, err := svc.Approve(context.Background(), DecisionInput{
		RequestID:   request.ID,
		AdminNote:   "ok",
		ProcessedBy: "ops@jenii.in",
	})
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	if result.FinalStatus != models.StatusCancelled {
		t.Fatalf("final status = %s, want CANCELLED", result.FinalStatus)
	}
	if len(carrier.cancelled) != 1 || carrier.cancelled[0] != "SR-555" {
		t.Fatalf("cancelled shipments = %v, want [SR-555]", carrier.cancelled)
	}
	if len(carrier.rtos) != 0 {
		t.Fatalf("expected no RTO, got %v", carrier.rtos)
	}
	if requests.approvedStatus != models.StatusCancelled {
		t.Fatalf("store approve status = %s, want CANCELLED", requests.approvedStatus)
	}
	if requests.approvedBy != "ops@jenii.in" {
		t.Fatalf("processed by = %q, want ops@jenii.in", requests.approvedBy)
	}
	if sender.approved != 1 {
		t.Fatalf("approved emails = %d, want 1", sender.approved)
	}
}

func TestApproveShippedWithAWBInitiatesRTO(t *testing.T) {
	t.Parallel()

	order := testOrder(models.StatusShipped)
	order.Shipping.ShipmentID = "SHIP-1"
	order.Shipping.AWB = "AWB777"
	request := pendingRequest(order.ID)

	requests := &fakeCancellationStore{request: request, applyResult: true}
	carrier := &fakeCarrier{}
	svc := NewCancellationService(requests, &fakeOrderGetter{order: order}, carrier, &fakeEmailSender{}, nil)

	result, err := svc.Approve(context.Background(), DecisionInput{RequestID: request.ID})
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	if result.FinalStatus != models.StatusRTOInitiated {
		t.Fatalf("final status = %s, want RTO_INITIATED", result.FinalStatus)
	}
	if len(carrier.rtos) != 1 || carrier.rtos[0] != "AWB777" {
		t.Fatalf("rtos = %v, want [AWB777]", carrier.rtos)
	}
	if len(carrier.cancelled) != 0 {
		t.Fatalf("expected no shipment cancellation, got %v", carrier.cancelled)
	}
}

func TestApproveShippedWithoutAWBCancels(t *testing.T) {
	t.Parallel()

	order := testOrder(models.StatusShipped)
	order.Shipping.ShipmentID = "SHIP-1"
	request := pendingRequest(order.ID)

	requests := &fakeCancellationStore{request: request, applyResult: true}
	carrier := &fakeCarrier{}
	svc := NewCancellationService(requests, &fakeOrderGetter{order: order}, carrier, &fakeEmailSender{}, nil)

	result, err := svc.Approve(context.Background(), DecisionInput{RequestID: request.ID})
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if result.FinalStatus != models.StatusCancelled {
		t.Fatalf("final status = %s, want CANCELLED", result.FinalStatus)
	}
	if len(carrier.cancelled)+len(carrier.rtos) != 0 {
		t.Fatalf("expected no carrier call for a shipped order without an AWB, got cancel=%v rto=%v",
			carrier.cancelled, carrier.rtos)
	}
}

func TestApprovePostShipmentNeverCallsCarrier(t *testing.T) {
	t.Parallel()

	statuses := []models.OrderStatus{
		models.StatusDelivered,
		models.StatusCancelled,
		models.StatusReturned,
		models.StatusRTOInitiated,
	}

	for _, status := range statuses {
		status := status
		t.Run(string(status), func(t *testing.T) {
			t.Parallel()

			order := testOrder(status)
			order.Shipping.ShipmentID = "SHIP-1"
			request := pendingRequest(order.ID)

			requests := &fakeCancellationStore{request: request, applyResult: true}
			carrier := &fakeCarrier{}
			svc := NewCancellationService(requests, &fakeOrderGetter{order: order}, carrier, &fakeEmailSender{}, nil)

			result, err := svc.Approve(context.Background(), DecisionInput{RequestID: request.ID})
			if err != nil {
				t.Fatalf("Approve() error = %v", err)
			}
			if result.FinalStatus != models.StatusCancelled {
				t.Fatalf("final status = %s, want CANCELLED", result.FinalStatus)
			}
			if len(carrier.cancelled)+len(carrier.rtos) != 0 {
				t.Fatalf("expected no carrier call for a %s order, got cancel=%v rto=%v",
					status, carrier.cancelled, carrier.rtos)
			}
		})
	}
}

func TestApproveSurvivesCarrierFailure(t *testing.T) {
	t.Parallel()

	order := testOrder(models.StatusConfirmed)
	order.Shipping.ShipmentID = "SHIP-1"
	request := pendingRequest(order.ID)

	requests := &fakeCancellationStore{request: request, applyResult: true}
	carrier := &fakeCarrier{err: errors.New("shiprocket 502")}
	svc := NewCancellationService(requests, &fakeOrderGetter{order: order}, carrier, &fakeEmailSender{}, nil)

	result, err := svc.Approve(context.Background(), DecisionInput{RequestID: request.ID})
	if err != nil {
		t.Fatalf("Approve() error = %v, carrier failures must not block approval", err)
	}
	if result.FinalStatus != models.StatusCancelled {
		t.Fatalf("final status = %s, want CANCELLED", result.FinalStatus)
	}
}

func TestApproveLosesRace(t *testing.T) {
	t.Parallel()

	order := testOrder(models.StatusConfirmed)
	request := pendingRequest(order.ID)

	requests := &fakeCancellationStore{request: request, applyResult: false}
	sender := &fakeEmailSender{}
	svc := NewCancellationService(requests, &fakeOrderGetter{order: order}, &fakeCarrier{}, sender, nil)

	_, err := svc.Approve(context.Background(), DecisionInput{RequestID: request.ID})
	var alreadyProcessed *AlreadyProcessedError
	if !errors.As(err, &alreadyProcessed) {
		t.Fatalf("Approve() error = %v, want AlreadyProcessedError", err)
	}
	if sender.approved != 0 {
		t.Fatalf("expected no email after losing the race, got %d", sender.approved)
	}
}

func TestRejectLeavesOrderAlone(t *testing.T) {
	t.Parallel()

	order := testOrder(models.StatusConfirmed)
	request := pendingRequest(order.ID)

	requests := &fakeCancellationStore{request: request, applyResult: true}
	carrier := &fakeCarrier{}
	sender := &fakeEmailSender{}
	svc := NewCancellationService(requests, &fakeOrderGetter{order: order}, carrier, sender, nil)

	_, err := svc.Reject(context.Background(), DecisionInput{RequestID: request.ID, AdminNote: "cannot cancel"})
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}

	if !requests.rejected {
		t.Fatal("expected store Reject to be called")
	}
	if len(carrier.cancelled)+len(carrier.rtos) != 0 {
		t.Fatal("reject must not touch the carrier")
	}
	if sender.rejected != 1 {
		t.Fatalf("rejected emails = %d, want 1", sender.rejected)
	}
}

func TestRejectAlreadyProcessed(t *testing.T) {
	t.Parallel()

	order := testOrder(models.StatusConfirmed)
	request := pendingRequest(order.ID)
	request.Status = models.CancellationRejected

	svc := NewCancellationService(
		&fakeCancellationStore{request: request, applyResult: true},
		&fakeOrderGetter{order: order},
		&fakeCarrier{},
		&fakeEmailSender{},
		nil,
	)

	_, err := svc.Reject(context.Background(), DecisionInput{RequestID: request.ID})
	var alreadyProcessed *AlreadyProcessedError
	if !errors.As(err, &alreadyProcessed) {
		t.Fatalf("Reject() error = %v, want AlreadyProcessedError", err)
	}
}
