package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeniistore/jenii-admin/internal/models"
)

// ErrInvalidStatusTransition is returned when a guarded status update
// matches no row, i.e. the order left the expected predecessor state.
var ErrInvalidStatusTransition = errors.New("invalid order status transition")

type OrderStore struct {
	pool *pgxpool.Pool
}

func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

const orderColumns = `
	id, order_number, user_id, customer_email, shipping_address, payment,
	subtotal_cents, shipping_cents, discount_cents, total_cents, order_status,
	shipping_order_id, shipment_id, awb, courier_name, tracking_url,
	shipped_at, delivered_at,
	cancellation_status, cancellation_reason, return_reason, admin_note,
	cancellation_date, confirmed_at, cancelled_at, returned_at, created_at, updated_at`

func (s *OrderStore) GetByID(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+orderColumns+` FROM orders WHERE id = $1`, orderID)
	order, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	if err := s.populateItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetByShippingOrderID matches an order by the carrier-side order id that
// webhook payloads carry.
func (s *OrderStore) GetByShippingOrderID(ctx context.Context, shippingOrderID string) (*Order, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+orderColumns+` FROM orders WHERE shipping_order_id = $1`, shippingOrderID)
	order, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	if err := s.populateItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderStore) List(ctx context.Context, status OrderStatus, limit, offset int) ([]*Order, error) {
	query := `SELECT` + orderColumns + ` FROM orders`
	args := []any{}
	if status != "" {
		query += ` WHERE order_status = $1`
		args = append(args, string(status))
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, order := range orders {
		if err := s.populateItems(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *OrderStore) History(ctx context.Context, orderID uuid.UUID) ([]HistoryEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, order_id, status, comment, actor, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		var status string
		if err := rows.Scan(&entry.ID, &entry.OrderID, &status, &entry.Comment, &entry.Actor, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.Status = OrderStatus(status)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// SetStatusAdmin applies a direct admin status update: the status write, the
// status-specific date fields, and the history append happen in one
// transaction. The admin path is the escape hatch, so there is no
// predecessor guard here.
func (s *OrderStore) SetStatusAdmin(ctx context.Context, orderID uuid.UUID, status OrderStatus, comment string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := `UPDATE orders SET order_status = $1, updated_at = NOW()`
	switch status {
	case StatusConfirmed:
		query += `, confirmed_at = NOW()`
	case StatusShipped:
		query += `, shipped_at = NOW()`
	case StatusDelivered:
		query += `, delivered_at = NOW()`
	case StatusCancelled:
		query += `, cancelled_at = NOW()`
		if comment != "" {
			query += `, cancellation_reason = $3`
		}
	case StatusReturned:
		query += `, returned_at = NOW()`
		if comment != "" {
			query += `, return_reason = $3`
		}
	}
	query += ` WHERE id = $2`

	args := []any{string(status), orderID}
	if (status == StatusCancelled || status == StatusReturned) && comment != "" {
		args = append(args, comment)
	}

	cmdTag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if err := appendHistoryTx(ctx, tx, orderID, status, comment, models.ActorAdmin); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// SetTrackingInfo records the AWB assignment. It does not touch the status.
func (s *OrderStore) SetTrackingInfo(ctx context.Context, orderID uuid.UUID, awb, courierName, trackingURL string) error {
	cmdTag, err := s.pool.Exec(ctx, `
		UPDATE orders
		SET awb = $1, courier_name = $2, tracking_url = $3, updated_at = NOW()
		WHERE id = $4`, awb, courierName, trackingURL, orderID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// MarkShippedFromPickup transitions CONFIRMED -> SHIPPED. Any other current
// status is a no-op, which makes repeated pickup events idempotent.
func (s *OrderStore) MarkShippedFromPickup(ctx context.Context, orderID uuid.UUID) (bool, error) {
	return s.transition(ctx, orderID, StatusShipped, "Shipment picked up by courier", models.ActorCarrier,
		`UPDATE orders
		 SET order_status = $1, shipped_at = NOW(), updated_at = NOW()
		 WHERE id = $2 AND order_status = 'CONFIRMED'`)
}

// MarkShippedInTransit transitions any non-SHIPPED order to SHIPPED.
// Terminal states are excluded unless the override policy is on.
func (s *OrderStore) MarkShippedInTransit(ctx context.Context, orderID uuid.UUID, allowTerminalOverride bool) (bool, error) {
	query := `UPDATE orders
		 SET order_status = $1, shipped_at = NOW(), updated_at = NOW()
		 WHERE id = $2 AND order_status <> 'SHIPPED'`
	if !allowTerminalOverride {
		query += terminalGuard
	}
	return s.transition(ctx, orderID, StatusShipped, "Shipment in transit", models.ActorCarrier, query)
}

func (s *OrderStore) MarkDelivered(ctx context.Context, orderID uuid.UUID, allowTerminalOverride bool) (bool, error) {
	query := `UPDATE orders
		 SET order_status = $1, delivered_at = NOW(), updated_at = NOW()
		 WHERE id = $2 AND order_status <> 'DELIVERED'`
	if !allowTerminalOverride {
		query += terminalGuard
	}
	return s.transition(ctx, orderID, StatusDelivered, "Shipment delivered", models.ActorCarrier, query)
}

func (s *OrderStore) MarkCancelledByCarrier(ctx context.Context, orderID uuid.UUID, allowTerminalOverride bool) (bool, error) {
	query := `UPDATE orders
		 SET order_status = $1, cancelled_at = NOW(), updated_at = NOW()
		 WHERE id = $2 AND order_status <> 'CANCELLED'`
	if !allowTerminalOverride {
		query += terminalGuard
	}
	return s.transition(ctx, orderID, StatusCancelled, "Shipment cancelled by carrier", models.ActorCarrier, query)
}

func (s *OrderStore) MarkReturnedByCarrier(ctx context.Context, orderID uuid.UUID, allowTerminalOverride bool) (bool, error) {
	query := `UPDATE orders
		 SET order_status = $1, returned_at = NOW(), updated_at = NOW()
		 WHERE id = $2 AND order_status <> 'RETURNED'`
	if !allowTerminalOverride {
		query += terminalGuard
	}
	return s.transition(ctx, orderID, StatusReturned, "Shipment returned to origin", models.ActorCarrier, query)
}

// terminalGuard keeps carrier events from reviving terminal orders. The
// target status of the enclosing update is already excluded by its own
// predicate, so listing all three here is safe.
const terminalGuard = ` AND order_status NOT IN ('CANCELLED', 'DELIVERED', 'RETURNED')`

// transition runs a guarded status update and appends a history entry iff
// the guard matched. The bool reports whether the transition applied.
func (s *OrderStore) transition(ctx context.Context, orderID uuid.UUID, status OrderStatus, comment, actor, query string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmdTag, err := tx.Exec(ctx, query, string(status), orderID)
	if err != nil {
		return false, err
	}
	if cmdTag.RowsAffected() == 0 {
		return false, nil
	}

	if err := appendHistoryTx(ctx, tx, orderID, status, comment, actor); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateItemsStatus mirrors the order status onto every child item.
func (s *OrderStore) UpdateItemsStatus(ctx context.Context, orderID uuid.UUID, status OrderStatus) error {
	_, err := s.pool.Exec(ctx, `UPDATE order_items SET status = $1 WHERE order_id = $2`, string(status), orderID)
	return err
}

func (s *OrderStore) populateItems(ctx context.Context, order *Order) error {
	rows, err := s.pool.Query(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, unit_price_cents, status
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_name`, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		var status string
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPriceCents, &status); err != nil {
			return err
		}
		item.Status = OrderStatus(status)
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func appendHistoryTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status OrderStatus, comment, actor string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO order_status_history (order_id, status, comment, actor)
		VALUES ($1, $2, $3, $4)`, orderID, string(status), comment, actor)
	return err
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		order              Order
		userID             pgtype.UUID
		customerEmail      pgtype.Text
		shippingAddress    []byte
		payment            []byte
		status             string
		shippingOrderID    pgtype.Text
		shipmentID         pgtype.Text
		awb                pgtype.Text
		courierName        pgtype.Text
		trackingURL        pgtype.Text
		shippedAt          pgtype.Timestamptz
		deliveredAt        pgtype.Timestamptz
		cancellationStatus pgtype.Text
		cancellationReason pgtype.Text
		returnReason       pgtype.Text
		adminNote          pgtype.Text
		cancellationDate   pgtype.Timestamptz
		confirmedAt        pgtype.Timestamptz
		cancelledAt        pgtype.Timestamptz
		returnedAt         pgtype.Timestamptz
	)

	err := row.Scan(
		&order.ID, &order.OrderNumber, &userID, &customerEmail, &shippingAddress, &payment,
		&order.SubtotalCents, &order.ShippingCents, &order.DiscountCents, &order.TotalCents, &status,
		&shippingOrderID, &shipmentID, &awb, &courierName, &trackingURL,
		&shippedAt, &deliveredAt,
		&cancellationStatus, &cancellationReason, &returnReason, &adminNote,
		&cancellationDate, &confirmedAt, &cancelledAt, &returnedAt, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Status = OrderStatus(status)
	if userID.Valid {
		id := uuid.UUID(userID.Bytes)
		order.UserID = &id
	}
	if customerEmail.Valid {
		order.CustomerEmail = customerEmail.String
	}
	if shippingAddress != nil {
		if err := json.Unmarshal(shippingAddress, &order.ShippingAddress); err != nil {
			return nil, err
		}
	}
	if payment != nil {
		if err := json.Unmarshal(payment, &order.Payment); err != nil {
			return nil, err
		}
	}
	if shippingOrderID.Valid {
		order.Shipping.ShippingOrderID = shippingOrderID.String
	}
	if shipmentID.Valid {
		order.Shipping.ShipmentID = shipmentID.String
	}
	if awb.Valid {
		order.Shipping.AWB = awb.String
	}
	if courierName.Valid {
		order.Shipping.CourierName = courierName.String
	}
	if trackingURL.Valid {
		order.Shipping.TrackingURL = trackingURL.String
	}
	if shippedAt.Valid {
		order.Shipping.ShippedAt = timePtr(shippedAt.Time)
	}
	if deliveredAt.Valid {
		order.Shipping.DeliveredAt = timePtr(deliveredAt.Time)
	}
	if cancellationStatus.Valid {
		order.CancellationStatus = CancellationStatus(cancellationStatus.String)
	}
	if cancellationReason.Valid {
		order.CancellationReason = cancellationReason.String
	}
	if returnReason.Valid {
		order.ReturnReason = returnReason.String
	}
	if adminNote.Valid {
		order.AdminNote = adminNote.String
	}
	if cancellationDate.Valid {
		order.CancellationDate = timePtr(cancellationDate.Time)
	}
	if confirmedAt.Valid {
		order.ConfirmedAt = timePtr(confirmedAt.Time)
	}
	if cancelledAt.Valid {
		order.CancelledAt = timePtr(cancelledAt.Time)
	}
	if returnedAt.Valid {
		order.ReturnedAt = timePtr(returnedAt.Time)
	}

	return &order, nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
