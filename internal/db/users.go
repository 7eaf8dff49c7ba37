package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeniistore/jenii-admin/internal/models"
)

// UserStore is a read-only view over customer accounts. Account creation
// belongs to the storefront.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT u.id, u.name, u.email, u.phone, u.created_at,
		       (SELECT COUNT(*) FROM orders o WHERE o.user_id = u.id) AS order_count
		FROM users u
		ORDER BY u.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var (
			user  models.User
			phone pgtype.Text
		)
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &phone, &user.CreatedAt, &user.OrderCount); err != nil {
			return nil, err
		}
		if phone.Valid {
			user.Phone = phone.String
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

func (s *UserStore) MonthlyRegistrations(ctx context.Context, year int) (map[int]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT EXTRACT(MONTH FROM created_at)::int AS month, COUNT(*)
		FROM users
		WHERE EXTRACT(YEAR FROM created_at)::int = $1
		GROUP BY month
		ORDER BY month`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := make(map[int]int)
	for rows.Next() {
		var month, count int
		if err := rows.Scan(&month, &count); err != nil {
			return nil, err
		}
		registrations[month] = count
	}
	return registrations, rows.Err()
}
