package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jeniistore/jenii-admin/internal/logging"
	"github.com/jeniistore/jenii-admin/internal/models"
)

type cancellationStore interface {
	GetByID(ctx context.Context, requestID uuid.UUID) (*models.CancellationRequest, error)
	List(ctx context.Context, status models.CancellationStatus, limit, offset int) ([]*models.CancellationRequest, error)
	Approve(ctx context.Context, requestID, orderID uuid.UUID, orderStatus models.OrderStatus, reason, adminNote, processedBy string) (bool, error)
	Reject(ctx context.Context, requestID, orderID uuid.UUID, adminNote, processedBy string) (bool, error)
}

type cancellationOrderStore interface {
	GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

type carrierClient interface {
	CancelShipment(ctx context.Context, shippingOrderID string) error
	RequestRTO(ctx context.Context, awb string) error
}

// CancellationService processes customer cancellation requests: the admin
// approves or rejects, and approval decides between a straight cancel and an
// RTO depending on how far the shipment got.
type CancellationService struct {
	requests    cancellationStore
	orders      cancellationOrderStore
	carrier     carrierClient
	emailSender OrderEmailSender
	logger      *slog.Logger
}

func NewCancellationService(requests cancellationStore, orders cancellationOrderStore, carrier carrierClient, emailSender OrderEmailSender, logger *slog.Logger) *CancellationService {
	if emailSender == nil {
		emailSender = noopOrderEmailSender{}
	}

	return &CancellationService{
		requests:    requests,
		orders:      orders,
		carrier:     carrier,
		emailSender: emailSender,
		logger:      logger,
	}
}

func (s *CancellationService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// ListRequests returns cancellation requests newest-first, optionally
// filtered by status.
func (s *CancellationService) ListRequests(ctx context.Context, status models.CancellationStatus, limit, offset int) ([]*models.CancellationRequest, error) {
	requests, err := s.requests.List(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list cancellation requests: %w", err)
	}
	return requests, nil
}

type DecisionInput struct {
	RequestID   uuid.UUID
	AdminNote   string
	ProcessedBy string
}

type ApproveResult struct {
	Request     *models.CancellationRequest
	Order       *models.Order
	FinalStatus models.OrderStatus
}

// Approve accepts a pending cancellation request. Orders that have not
// shipped are cancelled outright (releasing the carrier shipment when one
// exists); shipped orders with an AWB go to RTO_INITIATED instead, and stock
// is restored only on a straight cancel. The whole order-side write runs
// in one transaction keyed on the request still being PENDING, so a
// concurrent double-approve restores stock exactly once.
func (s *CancellationService) Approve(ctx context.Context, input DecisionInput) (*ApproveResult, error) {
	logger := s.loggerFromContext(ctx)

	request, order, err := s.load(ctx, input.RequestID)
	if err != nil {
		return nil, err
	}

	finalStatus := models.StatusCancelled
	switch {
	case order.Status == models.StatusShipped && order.Shipping.AWB != "":
		finalStatus = models.StatusRTOInitiated
		if err := s.requestRTO(ctx, order.Shipping.AWB); err != nil {
			logger.Warn("failed to request RTO from carrier, proceeding anyway",
				"error", err,
				"order_id", order.ID,
				"awb", order.Shipping.AWB)
		}

	case order.Status.IsPreShipment() && order.Shipping.ShipmentID != "":
		if err := s.cancelShipment(ctx, order.Shipping.ShippingOrderID); err != nil {
			logger.Warn("failed to cancel carrier shipment, proceeding anyway",
				"error", err,
				"order_id", order.ID,
				"shipping_order_id", order.Shipping.ShippingOrderID)
		}
	}

	applied, err := s.requests.Approve(ctx, request.ID, order.ID, finalStatus, request.Reason, input.AdminNote, input.ProcessedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to approve cancellation request: %w", err)
	}
	if !applied {
		// Lost the race to a concurrent decision.
		current, err := s.requests.GetByID(ctx, request.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload cancellation request: %w", err)
		}
		return nil, &AlreadyProcessedError{Status: current.Status}
	}

	logger.Info("cancellation request approved",
		"request_id", request.ID,
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"final_status", finalStatus,
		"processed_by", input.ProcessedBy)

	updated, err := s.orders.GetByID(ctx, order.ID)
	if err != nil {
		logger.Warn("failed to reload order after approval", "error", err, "order_id", order.ID)
		updated = order
	}

	if err := s.emailSender.SendCancellationApproved(ctx, updated, request.Reason, input.AdminNote); err != nil {
		logger.Warn("failed to send cancellation approved email", "error", err, "order_id", order.ID)
	}

	return &ApproveResult{Request: request, Order: updated, FinalStatus: finalStatus}, nil
}

// Reject declines a pending cancellation request. The order keeps its
// current status; only the request and the order's cancellation fields are
// touched.
func (s *CancellationService) Reject(ctx context.Context, input DecisionInput) (*models.CancellationRequest, error) {
	logger := s.loggerFromContext(ctx)

	request, order, err := s.load(ctx, input.RequestID)
	if err != nil {
		return nil, err
	}

	applied, err := s.requests.Reject(ctx, request.ID, order.ID, input.AdminNote, input.ProcessedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to reject cancellation request: %w", err)
	}
	if !applied {
		current, err := s.requests.GetByID(ctx, request.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload cancellation request: %w", err)
		}
		return nil, &AlreadyProcessedError{Status: current.Status}
	}

	logger.Info("cancellation request rejected",
		"request_id", request.ID,
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"processed_by", input.ProcessedBy)

	if err := s.emailSender.SendCancellationRejected(ctx, order, input.AdminNote); err != nil {
		logger.Warn("failed to send cancellation rejected email", "error", err, "order_id", order.ID)
	}

	return request, nil
}

func (s *CancellationService) cancelShipment(ctx context.Context, shippingOrderID string) error {
	if s.carrier == nil {
		return nil
	}
	return s.carrier.CancelShipment(ctx, shippingOrderID)
}

func (s *CancellationService) requestRTO(ctx context.Context, awb string) error {
	if s.carrier == nil {
		return nil
	}
	return s.carrier.RequestRTO(ctx, awb)
}

func (s *CancellationService) load(ctx context.Context, requestID uuid.UUID) (*models.CancellationRequest, *models.Order, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get cancellation request: %w", err)
	}
	if request.Status != models.CancellationPending {
		return nil, nil, &AlreadyProcessedError{Status: request.Status}
	}

	order, err := s.orders.GetByID(ctx, request.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, fmt.Errorf("cancellation request %s references missing order %s", request.ID, request.OrderID)
		}
		return nil, nil, fmt.Errorf("failed to get order: %w", err)
	}

	return request, order, nil
}
