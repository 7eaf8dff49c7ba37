package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jeniistore/jenii-admin/internal/email"
	"github.com/jeniistore/jenii-admin/internal/models"
)

// OrderEmailSender sends customer-facing lifecycle notifications. All calls
// are best-effort from the caller's point of view; failures are logged, never
// propagated into the order write path.
type OrderEmailSender interface {
	SendTrackingAssigned(ctx context.Context, order *models.Order) error
	SendStatusChanged(ctx context.Context, order *models.Order, status models.OrderStatus) error
	SendCancellationApproved(ctx context.Context, order *models.Order, reason, adminNote string) error
	SendCancellationRejected(ctx context.Context, order *models.Order, adminNote string) error
}

// statusTemplates maps an order status to its notification template. Statuses
// missing here (PENDING, CONFIRMED, PROCESSING, RTO_INITIATED) produce no
// customer email.
var statusTemplates = map[models.OrderStatus]string{
	models.StatusShipped:   email.TemplateOrderShipped,
	models.StatusDelivered: email.TemplateOrderDelivered,
	models.StatusCancelled: email.TemplateOrderCancelled,
	models.StatusReturned:  email.TemplateOrderReturned,
}

type TemplatedEmailSender struct {
	provider  email.Provider
	renderer  *email.Renderer
	storeName string
	storeURL  string
}

func NewTemplatedEmailSender(provider email.Provider, storeName, storeURL string) (*TemplatedEmailSender, error) {
	renderer, err := email.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create email renderer: %w", err)
	}
	return &TemplatedEmailSender{
		provider:  provider,
		renderer:  renderer,
		storeName: storeName,
		storeURL:  storeURL,
	}, nil
}

func (s *TemplatedEmailSender) SendTrackingAssigned(ctx context.Context, order *models.Order) error {
	return s.send(ctx, email.TemplateTrackingAssigned, order, nil)
}

func (s *TemplatedEmailSender) SendStatusChanged(ctx context.Context, order *models.Order, status models.OrderStatus) error {
	templateName, ok := statusTemplates[status]
	if !ok {
		return nil
	}
	return s.send(ctx, templateName, order, nil)
}

func (s *TemplatedEmailSender) SendCancellationApproved(ctx context.Context, order *models.Order, reason, adminNote string) error {
	return s.send(ctx, email.TemplateCancellationApproved, order, func(info *email.OrderInfo) {
		info.Reason = reason
		info.AdminNote = adminNote
	})
}

func (s *TemplatedEmailSender) SendCancellationRejected(ctx context.Context, order *models.Order, adminNote string) error {
	return s.send(ctx, email.TemplateCancellationRejected, order, func(info *email.OrderInfo) {
		info.AdminNote = adminNote
	})
}

func (s *TemplatedEmailSender) send(ctx context.Context, templateName string, order *models.Order, customize func(*email.OrderInfo)) error {
	if s == nil || s.provider == nil {
		return nil
	}
	if order == nil {
		return fmt.Errorf("order is required")
	}

	info := s.buildOrderInfo(order)
	if customize != nil {
		customize(info)
	}
	if info.CustomerEmail == "" {
		return fmt.Errorf("order %s has no customer email", order.ID)
	}

	message, err := s.renderer.Render(templateName, info)
	if err != nil {
		return fmt.Errorf("failed to render %s email: %w", templateName, err)
	}
	return s.provider.SendEmail(ctx, message)
}

func (s *TemplatedEmailSender) buildOrderInfo(order *models.Order) *email.OrderInfo {
	return &email.OrderInfo{
		OrderNumber:     order.OrderNumber,
		CustomerName:    order.ShippingAddress.Name,
		CustomerEmail:   order.NotificationEmail(),
		StoreName:       s.storeName,
		StoreURL:        s.storeURL,
		AWB:             order.Shipping.AWB,
		CourierName:     order.Shipping.CourierName,
		TrackingURL:     order.Shipping.TrackingURL,
		Reason:          order.CancellationReason,
		ShippingAddress: formatAddress(order.ShippingAddress),
		EventDate:       time.Now().Format("January 2, 2006"),
		Total:           formatRupees(order.TotalCents),
	}
}

func formatAddress(a models.Address) string {
	out := a.Name + "\n" + a.Line1
	if a.Line2 != "" {
		out += "\n" + a.Line2
	}
	return fmt.Sprintf("%s\n%s, %s %s", out, a.City, a.State, a.Pincode)
}

func formatRupees(cents int) string {
	return fmt.Sprintf("₹%d.%02d", cents/100, cents%100)
}

type noopOrderEmailSender struct{}

func (noopOrderEmailSender) SendTrackingAssigned(context.Context, *models.Order) error {
	return nil
}

func (noopOrderEmailSender) SendStatusChanged(context.Context, *models.Order, models.OrderStatus) error {
	return nil
}

func (noopOrderEmailSender) SendCancellationApproved(context.Context, *models.Order, string, string) error {
	return nil
}

func (noopOrderEmailSender) SendCancellationRejected(context.Context, *models.Order, string) error {
	return nil
}
