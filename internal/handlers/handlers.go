package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeniistore/jenii-admin/internal/cache"
	"github.com/jeniistore/jenii-admin/internal/config"
	"github.com/jeniistore/jenii-admin/internal/logging"
	"github.com/jeniistore/jenii-admin/internal/services"
)

const maxWebhookBodyBytes = 1 << 20 // 1 MB

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Handlers provides HTTP request handlers for the Jenii admin back office.
type Handlers struct {
	config        *config.Config
	db            *pgxpool.Pool
	cacheProvider cache.Provider
	lifecycle     *services.LifecycleService
	cancellations *services.CancellationService
	catalog       *services.CatalogService
	coupons       *services.CouponService
	dashboard     *services.DashboardService
	logger        *slog.Logger
}

type Dependencies struct {
	Config              *config.Config
	DB                  *pgxpool.Pool
	CacheProvider       cache.Provider
	LifecycleService    *services.LifecycleService
	CancellationService *services.CancellationService
	CatalogService      *services.CatalogService
	CouponService       *services.CouponService
	DashboardService    *services.DashboardService
	Logger              *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("handlers dependencies: db is required")
	}
	if deps.CacheProvider == nil {
		return nil, fmt.Errorf("handlers dependencies: cacheProvider is required")
	}
	if deps.LifecycleService == nil {
		return nil, fmt.Errorf("handlers dependencies: lifecycleService is required")
	}
	if deps.CancellationService == nil {
		return nil, fmt.Errorf("handlers dependencies: cancellationService is required")
	}
	if deps.CatalogService == nil {
		return nil, fmt.Errorf("handlers dependencies: catalogService is required")
	}
	if deps.CouponService == nil {
		return nil, fmt.Errorf("handlers dependencies: couponService is required")
	}
	if deps.DashboardService == nil {
		return nil, fmt.Errorf("handlers dependencies: dashboardService is required")
	}

	return &Handlers{
		config:        deps.Config,
		db:            deps.DB,
		cacheProvider: deps.CacheProvider,
		lifecycle:     deps.LifecycleService,
		cancellations: deps.CancellationService,
		catalog:       deps.CatalogService,
		coupons:       deps.CouponService,
		dashboard:     deps.DashboardService,
		logger:        logger.With("component", "handlers"),
	}, nil
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	if err := h.db.Ping(ctx); err != nil {
		logger.Error("database health check failed", "error", err)
		http.Error(w, "Database unhealthy", http.StatusServiceUnavailable)
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

func (h *Handlers) respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, r, status, map[string]string{"error": message})
}

// respondServiceError maps service-layer failures onto HTTP statuses.
func (h *Handlers) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var alreadyProcessed *services.AlreadyProcessedError

	switch {
	case errors.Is(err, services.ErrNotFound):
		h.respondError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrInvalidStatus):
		h.respondError(w, r, http.StatusBadRequest, "invalid order status")
	case errors.Is(err, services.ErrValidation):
		h.respondError(w, r, http.StatusBadRequest, err.Error())
	case errors.As(err, &alreadyProcessed):
		h.respondError(w, r, http.StatusConflict, alreadyProcessed.Error())
	case errors.Is(err, services.ErrCouponExpired):
		h.respondError(w, r, http.StatusGone, "coupon expired")
	case errors.Is(err, services.ErrCouponLimitReached):
		h.respondError(w, r, http.StatusConflict, "coupon usage limit reached")
	default:
		h.loggerFromContext(r.Context()).Error("request failed", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close() //nolint:errcheck
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// pagination reads limit/offset query params with sane bounds.
func pagination(r *http.Request) (limit, offset int) {
	limit = defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
