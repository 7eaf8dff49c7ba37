package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jeniistore/jenii-admin/internal/db"
	"github.com/jeniistore/jenii-admin/internal/models"
)

type dashboardStore interface {
	Totals(ctx context.Context) (*db.Totals, error)
	PaymentModeDistribution(ctx context.Context) (map[string]int, error)
	StatusDistribution(ctx context.Context) (map[models.OrderStatus]int, error)
	MonthlySales(ctx context.Context, year int) ([]db.MonthlySales, error)
	TopProducts(ctx context.Context, limit int) ([]db.TopProduct, error)
	StateDemographics(ctx context.Context, limit int) ([]db.StateStat, error)
}

type userStore interface {
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	MonthlyRegistrations(ctx context.Context, year int) (map[int]int, error)
}

type recentOrderLister interface {
	List(ctx context.Context, status models.OrderStatus, limit, offset int) ([]*models.Order, error)
}

const (
	recentOrdersLimit      = 10
	dashboardTopProducts   = 5
	statsTopProducts       = 10
	statsStateDemographics = 10
)

// DashboardService aggregates the read-only overview numbers the back
// office landing pages show.
type DashboardService struct {
	dashboard dashboardStore
	users     userStore
	orders    recentOrderLister
	logger    *slog.Logger
}

func NewDashboardService(dashboard dashboardStore, users userStore, orders recentOrderLister, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		dashboard: dashboard,
		users:     users,
		orders:    orders,
		logger:    logger,
	}
}

type DashboardSummary struct {
	Totals       *db.Totals                 `json:"totals"`
	StatusCounts map[models.OrderStatus]int `json:"status_counts"`
	PaymentModes map[string]int             `json:"payment_modes"`
	RecentOrders []*models.Order            `json:"recent_orders"`
	MonthlySales []db.MonthlySales          `json:"monthly_sales"`
	TopProducts  []db.TopProduct            `json:"top_products"`
}

func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	totals, err := s.dashboard.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load totals: %w", err)
	}

	statusCounts, err := s.dashboard.StatusDistribution(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load status distribution: %w", err)
	}

	paymentModes, err := s.dashboard.PaymentModeDistribution(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment mode distribution: %w", err)
	}

	recent, err := s.orders.List(ctx, "", recentOrdersLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent orders: %w", err)
	}

	sales, err := s.dashboard.MonthlySales(ctx, time.Now().Year())
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly sales: %w", err)
	}

	topProducts, err := s.dashboard.TopProducts(ctx, dashboardTopProducts)
	if err != nil {
		return nil, fmt.Errorf("failed to load top products: %w", err)
	}

	return &DashboardSummary{
		Totals:       totals,
		StatusCounts: statusCounts,
		PaymentModes: paymentModes,
		RecentOrders: recent,
		MonthlySales: sales,
		TopProducts:  topProducts,
	}, nil
}

type StatsReport struct {
	Year                 int               `json:"year"`
	MonthlySales         []db.MonthlySales `json:"monthly_sales"`
	TopProducts          []db.TopProduct   `json:"top_products"`
	StateDemographics    []db.StateStat    `json:"state_demographics"`
	MonthlyRegistrations map[int]int       `json:"monthly_registrations"`
}

func (s *DashboardService) Stats(ctx context.Context, year int) (*StatsReport, error) {
	if year == 0 {
		year = time.Now().Year()
	}

	sales, err := s.dashboard.MonthlySales(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly sales: %w", err)
	}

	topProducts, err := s.dashboard.TopProducts(ctx, statsTopProducts)
	if err != nil {
		return nil, fmt.Errorf("failed to load top products: %w", err)
	}

	states, err := s.dashboard.StateDemographics(ctx, statsStateDemographics)
	if err != nil {
		return nil, fmt.Errorf("failed to load state demographics: %w", err)
	}

	registrations, err := s.users.MonthlyRegistrations(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly registrations: %w", err)
	}

	return &StatsReport{
		Year:                 year,
		MonthlySales:         sales,
		TopProducts:          topProducts,
		StateDemographics:    states,
		MonthlyRegistrations: registrations,
	}, nil
}

func (s *DashboardService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
