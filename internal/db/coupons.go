package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeniistore/jenii-admin/internal/models"
)

// Redemption failures are distinguishable so the storefront can tell the
// customer why a code was refused.
var (
	ErrCouponExpired      = errors.New("coupon has expired")
	ErrCouponLimitReached = errors.New("coupon usage limit reached")
)

type CouponStore struct {
	pool *pgxpool.Pool
}

func NewCouponStore(pool *pgxpool.Pool) *CouponStore {
	return &CouponStore{pool: pool}
}

const couponColumns = `
	id, code, discount_type, discount_value, minimum_order_cents, usage_limit, used_count, valid_until, created_at`

func (s *CouponStore) Create(ctx context.Context, coupon *models.Coupon) error {
	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO coupons (id, code, discount_type, discount_value, minimum_order_cents, usage_limit, valid_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		coupon.ID, coupon.Code, coupon.DiscountType, coupon.DiscountValue,
		coupon.MinimumOrderCents, coupon.UsageLimit, coupon.ValidUntil)
	return row.Scan(&coupon.CreatedAt)
}

func (s *CouponStore) List(ctx context.Context) ([]*models.Coupon, error) {
	rows, err := s.pool.Query(ctx, `SELECT`+couponColumns+` FROM coupons ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []*models.Coupon
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, coupon)
	}
	return coupons, rows.Err()
}

func (s *CouponStore) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+couponColumns+` FROM coupons WHERE code = $1`, code)
	return scanCoupon(row)
}

func (s *CouponStore) Update(ctx context.Context, coupon *models.Coupon) error {
	cmdTag, err := s.pool.Exec(ctx, `
		UPDATE coupons
		SET code = $1, discount_type = $2, discount_value = $3, minimum_order_cents = $4,
		    usage_limit = $5, valid_until = $6
		WHERE id = $7`,
		coupon.Code, coupon.DiscountType, coupon.DiscountValue, coupon.MinimumOrderCents,
		coupon.UsageLimit, coupon.ValidUntil, coupon.ID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *CouponStore) Delete(ctx context.Context, couponID uuid.UUID) error {
	cmdTag, err := s.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, couponID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Redeem increments used_count iff the coupon is still valid and under its
// usage limit. The conditions live in the UPDATE so concurrent redemptions
// cannot overshoot the limit.
func (s *CouponStore) Redeem(ctx context.Context, code string) (*models.Coupon, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE coupons
		SET used_count = used_count + 1
		WHERE code = $1 AND valid_until >= NOW() AND used_count < usage_limit
		RETURNING`+couponColumns, code)
	coupon, err := scanCoupon(row)
	if err == nil {
		return coupon, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Figure out which condition failed.
	existing, lookupErr := s.GetByCode(ctx, code)
	if lookupErr != nil {
		return nil, lookupErr
	}
	if existing.UsedCount >= existing.UsageLimit {
		return nil, ErrCouponLimitReached
	}
	return nil, ErrCouponExpired
}

func scanCoupon(row pgx.Row) (*models.Coupon, error) {
	var coupon models.Coupon
	err := row.Scan(
		&coupon.ID, &coupon.Code, &coupon.DiscountType, &coupon.DiscountValue,
		&coupon.MinimumOrderCents, &coupon.UsageLimit, &coupon.UsedCount,
		&coupon.ValidUntil, &coupon.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}
