package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jeniistore/jenii-admin/internal/db"
	"github.com/jeniistore/jenii-admin/internal/logging"
	"github.com/jeniistore/jenii-admin/internal/models"
)

var (
	// ErrCouponExpired is returned when a redeemed coupon is past its
	// validity window.
	ErrCouponExpired = errors.New("coupon expired")

	// ErrCouponLimitReached is returned when a redeemed coupon has no uses
	// left.
	ErrCouponLimitReached = errors.New("coupon usage limit reached")
)

type couponStore interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	List(ctx context.Context) ([]*models.Coupon, error)
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	Update(ctx context.Context, coupon *models.Coupon) error
	Delete(ctx context.Context, couponID uuid.UUID) error
	Redeem(ctx context.Context, code string) (*models.Coupon, error)
}

// CouponService manages discount codes and their redemption counter.
type CouponService struct {
	coupons couponStore
	logger  *slog.Logger
}

func NewCouponService(coupons couponStore, logger *slog.Logger) *CouponService {
	return &CouponService{
		coupons: coupons,
		logger:  logger,
	}
}

func (s *CouponService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

type CouponInput struct {
	Code              string    `json:"code"`
	DiscountType      string    `json:"discount_type"`
	DiscountValue     int       `json:"discount_value"`
	MinimumOrderCents int       `json:"minimum_order_cents"`
	UsageLimit        int       `json:"usage_limit"`
	ValidUntil        time.Time `json:"valid_until"`
}

func (s *CouponService) Create(ctx context.Context, input CouponInput) (*models.Coupon, error) {
	if err := validateCouponInput(input); err != nil {
		return nil, err
	}

	coupon := &models.Coupon{
		ID:                uuid.New(),
		Code:              strings.ToUpper(strings.TrimSpace(input.Code)),
		DiscountType:      input.DiscountType,
		DiscountValue:     input.DiscountValue,
		MinimumOrderCents: input.MinimumOrderCents,
		UsageLimit:        input.UsageLimit,
		ValidUntil:        input.ValidUntil,
	}

	if err := s.coupons.Create(ctx, coupon); err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	s.loggerFromContext(ctx).Info("coupon created", "coupon_id", coupon.ID, "code", coupon.Code)
	return coupon, nil
}

func (s *CouponService) List(ctx context.Context) ([]*models.Coupon, error) {
	coupons, err := s.coupons.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, nil
}

func (s *CouponService) Update(ctx context.Context, couponID uuid.UUID, input CouponInput) (*models.Coupon, error) {
	if err := validateCouponInput(input); err != nil {
		return nil, err
	}

	coupon := &models.Coupon{
		ID:                couponID,
		Code:              strings.ToUpper(strings.TrimSpace(input.Code)),
		DiscountType:      input.DiscountType,
		DiscountValue:     input.DiscountValue,
		MinimumOrderCents: input.MinimumOrderCents,
		UsageLimit:        input.UsageLimit,
		ValidUntil:        input.ValidUntil,
	}

	if err := s.coupons.Update(ctx, coupon); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update coupon: %w", err)
	}
	return coupon, nil
}

func (s *CouponService) Delete(ctx context.Context, couponID uuid.UUID) error {
	if err := s.coupons.Delete(ctx, couponID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	return nil
}

// Redeem burns one use of a coupon. Not-found, expired and exhausted are
// distinct failures so the storefront can show the right message.
func (s *CouponService) Redeem(ctx context.Context, code string) (*models.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, validationError("code is required")
	}

	coupon, err := s.coupons.Redeem(ctx, code)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrNotFound
		case errors.Is(err, db.ErrCouponExpired):
			return nil, ErrCouponExpired
		case errors.Is(err, db.ErrCouponLimitReached):
			return nil, ErrCouponLimitReached
		}
		return nil, fmt.Errorf("failed to redeem coupon: %w", err)
	}

	s.loggerFromContext(ctx).Info("coupon redeemed", "code", code, "used_count", coupon.UsedCount)
	return coupon, nil
}

func validateCouponInput(input CouponInput) error {
	if strings.TrimSpace(input.Code) == "" {
		return validationError("code is required")
	}
	if input.DiscountType != models.DiscountTypePercent && input.DiscountType != models.DiscountTypeFlat {
		return validationError("discount_type must be %q or %q", models.DiscountTypePercent, models.DiscountTypeFlat)
	}
	if input.DiscountValue <= 0 {
		return validationError("discount_value must be positive")
	}
	if input.DiscountType == models.DiscountTypePercent && input.DiscountValue > 100 {
		return validationError("percent discount cannot exceed 100")
	}
	if input.UsageLimit <= 0 {
		return validationError("usage_limit must be positive")
	}
	if input.ValidUntil.IsZero() {
		return validationError("valid_until is required")
	}
	return nil
}
