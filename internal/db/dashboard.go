package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeniistore/jenii-admin/internal/models"
)

// DashboardStore answers the reporting queries behind the dashboard and
// stats endpoints. Everything is computed in SQL.
type DashboardStore struct {
	pool *pgxpool.Pool
}

func NewDashboardStore(pool *pgxpool.Pool) *DashboardStore {
	return &DashboardStore{pool: pool}
}

type Totals struct {
	Products     int   `json:"products"`
	Orders       int   `json:"orders"`
	RevenueCents int64 `json:"revenue_cents"`
}

type MonthlySales struct {
	Month        int   `json:"month"`
	OrderCount   int   `json:"order_count"`
	RevenueCents int64 `json:"revenue_cents"`
}

type TopProduct struct {
	ProductID     uuid.UUID `json:"product_id"`
	Name          string    `json:"name"`
	ImageURL      string    `json:"image_url,omitempty"`
	TotalQuantity int       `json:"total_quantity"`
	RevenueCents  int64     `json:"revenue_cents"`
}

type StateStat struct {
	State        string `json:"state"`
	OrderCount   int    `json:"order_count"`
	RevenueCents int64  `json:"revenue_cents"`
}

func (s *DashboardStore) Totals(ctx context.Context) (*Totals, error) {
	var totals Totals
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM orders),
			(SELECT COALESCE(SUM(total_cents), 0) FROM orders)`,
	).Scan(&totals.Products, &totals.Orders, &totals.RevenueCents)
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (s *DashboardStore) PaymentModeDistribution(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT COALESCE(payment->>'mode', 'unknown'), COUNT(*)
		FROM orders
		GROUP BY 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	distribution := make(map[string]int)
	for rows.Next() {
		var mode string
		var count int
		if err := rows.Scan(&mode, &count); err != nil {
			return nil, err
		}
		distribution[mode] = count
	}
	return distribution, rows.Err()
}

func (s *DashboardStore) StatusDistribution(ctx context.Context) (map[models.OrderStatus]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT order_status, COUNT(*) FROM orders GROUP BY order_status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	distribution := make(map[models.OrderStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		distribution[models.OrderStatus(status)] = count
	}
	return distribution, rows.Err()
}

func (s *DashboardStore) MonthlySales(ctx context.Context, year int) ([]MonthlySales, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT EXTRACT(MONTH FROM created_at)::int AS month,
		       COUNT(*),
		       COALESCE(SUM(total_cents), 0)
		FROM orders
		WHERE EXTRACT(YEAR FROM created_at)::int = $1
		GROUP BY month
		ORDER BY month`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []MonthlySales
	for rows.Next() {
		var entry MonthlySales
		if err := rows.Scan(&entry.Month, &entry.OrderCount, &entry.RevenueCents); err != nil {
			return nil, err
		}
		sales = append(sales, entry)
	}
	return sales, rows.Err()
}

func (s *DashboardStore) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT oi.product_id,
		       COALESCE(p.name, oi.product_name),
		       COALESCE(p.image_urls[1], ''),
		       SUM(oi.quantity)::int,
		       SUM(oi.quantity * oi.unit_price_cents)
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		GROUP BY oi.product_id, 2, 3
		ORDER BY 4 DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var top []TopProduct
	for rows.Next() {
		var (
			entry    TopProduct
			imageURL pgtype.Text
		)
		if err := rows.Scan(&entry.ProductID, &entry.Name, &imageURL, &entry.TotalQuantity, &entry.RevenueCents); err != nil {
			return nil, err
		}
		if imageURL.Valid {
			entry.ImageURL = imageURL.String
		}
		top = append(top, entry)
	}
	return top, rows.Err()
}

func (s *DashboardStore) StateDemographics(ctx context.Context, limit int) ([]StateStat, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT COALESCE(shipping_address->>'state', 'unknown'),
		       COUNT(*),
		       COALESCE(SUM(total_cents), 0)
		FROM orders
		GROUP BY 1
		ORDER BY 2 DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []StateStat
	for rows.Next() {
		var entry StateStat
		if err := rows.Scan(&entry.State, &entry.OrderCount, &entry.RevenueCents); err != nil {
			return nil, err
		}
		stats = append(stats, entry)
	}
	return stats, rows.Err()
}
