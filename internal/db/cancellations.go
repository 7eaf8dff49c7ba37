package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeniistore/jenii-admin/internal/models"
)

type CancellationStore struct {
	pool *pgxpool.Pool
}

func NewCancellationStore(pool *pgxpool.Pool) *CancellationStore {
	return &CancellationStore{pool: pool}
}

const cancellationColumns = `
	id, order_id, reason, status, admin_note, processed_at, processed_by, created_at`

func (s *CancellationStore) GetByID(ctx context.Context, requestID uuid.UUID) (*CancellationRequest, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+cancellationColumns+` FROM cancellation_requests WHERE id = $1`, requestID)
	return scanCancellationRequest(row)
}

func (s *CancellationStore) List(ctx context.Context, status CancellationStatus, limit, offset int) ([]*CancellationRequest, error) {
	query := `SELECT` + cancellationColumns + ` FROM cancellation_requests`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*CancellationRequest
	for rows.Next() {
		request, err := scanCancellationRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

// Approve applies the whole approval in one transaction: the request flips
// PENDING -> APPROVED, the order takes the resulting status, items mirror
// it, and stock is restored for full cancellations. The PENDING guard on the
// request row is what makes a retried approval a no-op instead of a second
// stock restoration.
//
// The returned bool is false when the request was no longer PENDING.
func (s *CancellationStore) Approve(ctx context.Context, requestID, orderID uuid.UUID, orderStatus OrderStatus, reason, adminNote, processedBy string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmdTag, err := tx.Exec(ctx, `
		UPDATE cancellation_requests
		SET status = 'APPROVED', admin_note = $1, processed_at = NOW(), processed_by = $2
		WHERE id = $3 AND status = 'PENDING'`, adminNote, processedBy, requestID)
	if err != nil {
		return false, err
	}
	if cmdTag.RowsAffected() == 0 {
		return false, nil
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders
		SET order_status = $1, cancellation_reason = $2, cancellation_status = 'APPROVED',
		    cancellation_date = NOW(), admin_note = $3, updated_at = NOW()
		WHERE id = $4`, string(orderStatus), reason, adminNote, orderID)
	if err != nil {
		return false, err
	}

	if _, err := tx.Exec(ctx, `UPDATE order_items SET status = $1 WHERE order_id = $2`, string(orderStatus), orderID); err != nil {
		return false, err
	}

	if orderStatus == StatusCancelled {
		_, err = tx.Exec(ctx, `
			UPDATE products p
			SET stock = p.stock + oi.quantity, updated_at = NOW()
			FROM order_items oi
			WHERE oi.order_id = $1 AND p.id = oi.product_id`, orderID)
		if err != nil {
			return false, err
		}
	}

	comment := "Cancellation approved by admin"
	if adminNote != "" {
		comment = adminNote
	}
	if err := appendHistoryTx(ctx, tx, orderID, orderStatus, comment, models.ActorAdmin); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Reject marks the request REJECTED and records the rejection on the order
// without touching the order status.
func (s *CancellationStore) Reject(ctx context.Context, requestID, orderID uuid.UUID, adminNote, processedBy string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmdTag, err := tx.Exec(ctx, `
		UPDATE cancellation_requests
		SET status = 'REJECTED', admin_note = $1, processed_at = NOW(), processed_by = $2
		WHERE id = $3 AND status = 'PENDING'`, adminNote, processedBy, requestID)
	if err != nil {
		return false, err
	}
	if cmdTag.RowsAffected() == 0 {
		return false, nil
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders
		SET cancellation_status = 'REJECTED', admin_note = $1, updated_at = NOW()
		WHERE id = $2`, adminNote, orderID)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func scanCancellationRequest(row pgx.Row) (*CancellationRequest, error) {
	var (
		request     CancellationRequest
		status      string
		adminNote   pgtype.Text
		processedAt pgtype.Timestamptz
		processedBy pgtype.Text
	)
	err := row.Scan(&request.ID, &request.OrderID, &request.Reason, &status, &adminNote, &processedAt, &processedBy, &request.CreatedAt)
	if err != nil {
		return nil, err
	}
	request.Status = CancellationStatus(status)
	if adminNote.Valid {
		request.AdminNote = adminNote.String
	}
	if processedAt.Valid {
		request.ProcessedAt = timePtr(processedAt.Time)
	}
	if processedBy.Valid {
		request.ProcessedBy = processedBy.String
	}
	return &request, nil
}
