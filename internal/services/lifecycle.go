package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jeniistore/jenii-admin/internal/config"
	"github.com/jeniistore/jenii-admin/internal/logging"
	"github.com/jeniistore/jenii-admin/internal/models"
	"github.com/jeniistore/jenii-admin/internal/shiprocket"
)

type lifecycleOrderStore interface {
	GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	GetByShippingOrderID(ctx context.Context, shippingOrderID string) (*models.Order, error)
	List(ctx context.Context, status models.OrderStatus, limit, offset int) ([]*models.Order, error)
	History(ctx context.Context, orderID uuid.UUID) ([]models.HistoryEntry, error)
	SetStatusAdmin(ctx context.Context, orderID uuid.UUID, status models.OrderStatus, comment string) error
	SetTrackingInfo(ctx context.Context, orderID uuid.UUID, awb, courierName, trackingURL string) error
	MarkShippedFromPickup(ctx context.Context, orderID uuid.UUID) (bool, error)
	MarkShippedInTransit(ctx context.Context, orderID uuid.UUID, allowTerminalOverride bool) (bool, error)
	MarkDelivered(ctx context.Context, orderID uuid.UUID, allowTerminalOverride bool) (bool, error)
	MarkCancelledByCarrier(ctx context.Context, orderID uuid.UUID, allowTerminalOverride bool) (bool, error)
	MarkReturnedByCarrier(ctx context.Context, orderID uuid.UUID, allowTerminalOverride bool) (bool, error)
}

// LifecycleService owns order status: admin-driven updates and carrier
// webhook events both land here.
type LifecycleService struct {
	orderStore  lifecycleOrderStore
	emailSender OrderEmailSender
	policy      config.LifecyclePolicy
	logger      *slog.Logger
}

func NewLifecycleService(orderStore lifecycleOrderStore, emailSender OrderEmailSender, policy config.LifecyclePolicy, logger *slog.Logger) *LifecycleService {
	if emailSender == nil {
		emailSender = noopOrderEmailSender{}
	}

	return &LifecycleService{
		orderStore:  orderStore,
		emailSender: emailSender,
		policy:      policy,
		logger:      logger,
	}
}

func (s *LifecycleService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// GetOrder returns the order with its items and status history.
func (s *LifecycleService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, []models.HistoryEntry, error) {
	order, err := s.orderStore.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get order: %w", err)
	}

	history, err := s.orderStore.History(ctx, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get order history: %w", err)
	}
	return order, history, nil
}

// ListOrders returns orders newest-first, optionally filtered by status.
func (s *LifecycleService) ListOrders(ctx context.Context, status models.OrderStatus, limit, offset int) ([]*models.Order, error) {
	if status != "" && !models.IsAdminSettable(status) && status != models.StatusProcessing && status != models.StatusRTOInitiated {
		return nil, ErrInvalidStatus
	}
	orders, err := s.orderStore.List(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

type SetStatusInput struct {
	OrderID uuid.UUID
	Status  models.OrderStatus
	Comment string
}

type SetStatusResult struct {
	Order          *models.Order
	PreviousStatus models.OrderStatus
}

// SetStatus applies an admin status change. It accepts only the six
// admin-settable values and does not guard against terminal states: the
// endpoint is the manual escape hatch when the carrier feed and reality
// disagree. No customer email goes out on this path; notifications belong
// to the carrier-event flow.
func (s *LifecycleService) SetStatus(ctx context.Context, input SetStatusInput) (*SetStatusResult, error) {
	logger := s.loggerFromContext(ctx)

	if !models.IsAdminSettable(input.Status) {
		return nil, ErrInvalidStatus
	}

	order, err := s.orderStore.GetByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	previous := order.Status
	comment := input.Comment
	if comment == "" {
		comment = fmt.Sprintf("Status updated from %s to %s", previous, input.Status)
	}

	if err := s.orderStore.SetStatusAdmin(ctx, input.OrderID, input.Status, comment); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	updated, err := s.orderStore.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}

	logger.Info("admin updated order status",
		"order_id", input.OrderID,
		"order_number", updated.OrderNumber,
		"previous_status", previous,
		"new_status", input.Status)

	return &SetStatusResult{Order: updated, PreviousStatus: previous}, nil
}

// HandleCarrierEvent applies one Shiprocket webhook event. Orders the event
// cannot be matched to and event tags we do not recognize are logged and
// dropped; the webhook endpoint acknowledges them either way.
func (s *LifecycleService) HandleCarrierEvent(ctx context.Context, event *shiprocket.Event) error {
	logger := s.loggerFromContext(ctx)

	if event == nil || event.Data.OrderID == "" {
		logger.Warn("carrier event without order id, dropping")
		return nil
	}

	order, err := s.orderStore.GetByShippingOrderID(ctx, event.Data.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Warn("carrier event for unknown order, dropping",
				"event", event.Event,
				"shipping_order_id", event.Data.OrderID)
			return nil
		}
		return fmt.Errorf("failed to look up order for carrier event: %w", err)
	}

	logger = logger.With("event", event.Event, "order_id", order.ID, "order_number", order.OrderNumber)

	switch event.Event {
	case shiprocket.EventAWBAssigned:
		return s.handleAWBAssigned(ctx, logger, order, event)

	case shiprocket.EventShipmentPickupScheduled,
		shiprocket.EventShipmentPickupGenerated,
		shiprocket.EventShipmentPickupCompleted:
		applied, err := s.orderStore.MarkShippedFromPickup(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("failed to mark order shipped: %w", err)
		}
		if !applied {
			logger.Info("pickup event ignored, order not in CONFIRMED", "status", order.Status)
			return nil
		}
		logger.Info("order shipped on pickup event")
		s.notifyFresh(ctx, order.ID, models.StatusShipped)
		return nil

	case shiprocket.EventShipmentDispatched, shiprocket.EventShipmentInTransit:
		applied, err := s.orderStore.MarkShippedInTransit(ctx, order.ID, s.policy.AllowTerminalOverride)
		if err != nil {
			return fmt.Errorf("failed to mark order in transit: %w", err)
		}
		if applied {
			logger.Info("order shipped on transit event")
		}
		return nil

	case shiprocket.EventShipmentDelivered:
		applied, err := s.orderStore.MarkDelivered(ctx, order.ID, s.policy.AllowTerminalOverride)
		if err != nil {
			return fmt.Errorf("failed to mark order delivered: %w", err)
		}
		if !applied {
			logger.Info("delivered event ignored", "status", order.Status)
			return nil
		}
		logger.Info("order delivered")
		s.notifyFresh(ctx, order.ID, models.StatusDelivered)
		return nil

	case shiprocket.EventShipmentCancelled:
		applied, err := s.orderStore.MarkCancelledByCarrier(ctx, order.ID, s.policy.AllowTerminalOverride)
		if err != nil {
			return fmt.Errorf("failed to mark order cancelled: %w", err)
		}
		if !applied {
			logger.Info("cancelled event ignored", "status", order.Status)
			return nil
		}
		logger.Info("order cancelled by carrier")
		s.notifyFresh(ctx, order.ID, models.StatusCancelled)
		return nil

	case shiprocket.EventShipmentReturned:
		applied, err := s.orderStore.MarkReturnedByCarrier(ctx, order.ID, s.policy.AllowTerminalOverride)
		if err != nil {
			return fmt.Errorf("failed to mark order returned: %w", err)
		}
		if !applied {
			logger.Info("returned event ignored", "status", order.Status)
			return nil
		}
		logger.Info("order returned by carrier")
		s.notifyFresh(ctx, order.ID, models.StatusReturned)
		return nil

	default:
		logger.Info("unrecognized carrier event, dropping")
		return nil
	}
}

func (s *LifecycleService) handleAWBAssigned(ctx context.Context, logger *slog.Logger, order *models.Order, event *shiprocket.Event) error {
	if event.Data.AWBCode == "" {
		logger.Warn("awb_assigned event without awb code, dropping")
		return nil
	}

	err := s.orderStore.SetTrackingInfo(ctx, order.ID, event.Data.AWBCode, event.Data.CourierName, event.Data.TrackingURL)
	if err != nil {
		return fmt.Errorf("failed to set tracking info: %w", err)
	}
	logger.Info("tracking assigned", "awb", event.Data.AWBCode, "courier", event.Data.CourierName)

	order.Shipping.AWB = event.Data.AWBCode
	order.Shipping.CourierName = event.Data.CourierName
	order.Shipping.TrackingURL = event.Data.TrackingURL
	if err := s.emailSender.SendTrackingAssigned(ctx, order); err != nil {
		logger.Warn("failed to send tracking email", "error", err)
	}
	return nil
}

// notifyFresh reloads the order and sends the status email with current
// tracking fields. Email is best-effort; the transition already committed.
func (s *LifecycleService) notifyFresh(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) {
	logger := s.loggerFromContext(ctx)

	order, err := s.orderStore.GetByID(ctx, orderID)
	if err != nil {
		logger.Warn("failed to reload order for status email", "error", err, "order_id", orderID)
		return
	}
	s.notifyStatus(ctx, order, status)
}

func (s *LifecycleService) notifyStatus(ctx context.Context, order *models.Order, status models.OrderStatus) {
	if err := s.emailSender.SendStatusChanged(ctx, order, status); err != nil {
		s.loggerFromContext(ctx).Warn("failed to send status email",
			"error", err,
			"order_id", order.ID,
			"status", status)
	}
}
