package services

import (
	"context"
	"testing"
	"time"

	"github.com/jeniistore/jenii-admin/internal/db"
	"github.com/jeniistore/jenii-admin/internal/models"
)

type fakeDashboardStore struct {
	salesYears       []int
	topProductLimits []int
	stateLimits      []int
}

func (f *fakeDashboardStore) Totals(context.Context) (*db.Totals, error) {
	return &db.Totals{Products: 12, Orders: 40, RevenueCents: 999900}, nil
}

func (f *fakeDashboardStore) PaymentModeDistribution(context.Context) (map[string]int, error) {
	return map[string]int{"prepaid": 30, "cod": 10}, nil
}

func (f *fakeDashboardStore) StatusDistribution(context.Context) (map[models.OrderStatus]int, error) {
	return map[models.OrderStatus]int{models.StatusDelivered: 25}, nil
}

func (f *fakeDashboardStore) MonthlySales(_ context.Context, year int) ([]db.MonthlySales, error) {
	f.salesYears = append(f.salesYears, year)
	return []db.MonthlySales{{Month: 1, OrderCount: 3, RevenueCents: 74900}}, nil
}

func (f *fakeDashboardStore) TopProducts(_ context.Context, limit int) ([]db.TopProduct, error) {
	f.topProductLimits = append(f.topProductLimits, limit)
	return nil, nil
}

func (f *fakeDashboardStore) StateDemographics(_ context.Context, limit int) ([]db.StateStat, error) {
	f.stateLimits = append(f.stateLimits, limit)
	return nil, nil
}

type fakeUserStore struct{}

func (fakeUserStore) List(context.Context, int, int) ([]*models.User, error) { return nil, nil }

func (fakeUserStore) MonthlyRegistrations(context.Context, int) (map[int]int, error) {
	return map[int]int{3: 7}, nil
}

type fakeRecentOrders struct {
	limits []int
}

func (f *fakeRecentOrders) List(_ context.Context, _ models.OrderStatus, limit, _ int) ([]*models.Order, error) {
	f.limits = append(f.limits, limit)
	return []*models.Order{{OrderNumber: "JN-1001"}}, nil
}

func TestDashboardSummary(t *testing.T) {
	t.Parallel()

	store := &fakeDashboardStore{}
	orders := &fakeRecentOrders{}
	svc := NewDashboardService(store, fakeUserStore{}, orders, nil)

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	if summary.Totals.Orders != 40 {
		t.Errorf("orders total = %d, want 40", summary.Totals.Orders)
	}
	if len(summary.RecentOrders) != 1 || summary.RecentOrders[0].OrderNumber != "JN-1001" {
		t.Errorf("unexpected recent orders: %+v", summary.RecentOrders)
	}
	if len(orders.limits) != 1 || orders.limits[0] != 10 {
		t.Errorf("recent orders limit = %v, want [10]", orders.limits)
	}
	if len(store.topProductLimits) != 1 || store.topProductLimits[0] != 5 {
		t.Errorf("top products limit = %v, want [5]", store.topProductLimits)
	}
	if len(store.salesYears) != 1 || store.salesYears[0] != time.Now().Year() {
		t.Errorf("sales years = %v, want current year", store.salesYears)
	}
}

func TestDashboardStatsDefaultsYear(t *testing.T) {
	t.Parallel()

	store := &fakeDashboardStore{}
	svc := NewDashboardService(store, fakeUserStore{}, &fakeRecentOrders{}, nil)

	report, err := svc.Stats(context.Background(), 0)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if report.Year != time.Now().Year() {
		t.Errorf("year = %d, want current year", report.Year)
	}
	if len(store.topProductLimits) != 1 || store.topProductLimits[0] != 10 {
		t.Errorf("top products limit = %v, want [10]", store.topProductLimits)
	}
	if report.MonthlyRegistrations[3] != 7 {
		t.Errorf("registrations = %v", report.MonthlyRegistrations)
	}
}
