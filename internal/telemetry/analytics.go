package telemetry

import (
	"context"
	"errors"

	"github.com/kkkkikiki/dealswipe/internal/model"
)

// AnalyticsStore serves the read-side aggregate views
type AnalyticsStore interface {
	DashboardOverview(ctx context.Context) (*model.DashboardOverview, error)
	DealPerformance(ctx context.Context, limit int) ([]model.DealPerformance, error)
	UserBehavior(ctx context.Context, limit int) ([]model.UserBehavior, error)
	CountryDistribution(ctx context.Context) ([]model.CountryDistribution, error)
	FirmPerformance(ctx context.Context) ([]model.FirmPerformance, error)
}

// Analytics passes aggregate queries through to the store, replacing a
// missing backend with the degraded sentinel
type Analytics struct {
	store AnalyticsStore
	diag  *Diagnostics
}

// NewAnalytics wraps store. A nil store always reports degraded.
func NewAnalytics(store AnalyticsStore, diag *Diagnostics) *Analytics {
	if diag == nil {
		diag = NewDiagnostics(nil)
	}
	return &Analytics{store: store, diag: diag}
}

func (a *Analytics) DashboardOverview(ctx context.Context) (*model.DashboardOverview, error) {
	return passThrough(a, "dashboard_overview", func() (*model.DashboardOverview, error) {
		return a.store.DashboardOverview(ctx)
	})
}

func (a *Analytics) DealPerformance(ctx context.Context, limit int) ([]model.DealPerformance, error) {
	return passThrough(a, "deal_performance", func() ([]model.DealPerformance, error) {
		return a.store.DealPerformance(ctx, limit)
	})
}

func (a *Analytics) UserBehavior(ctx context.Context, limit int) ([]model.UserBehavior, error) {
	return passThrough(a, "user_behavior", func() ([]model.UserBehavior, error) {
		return a.store.UserBehavior(ctx, limit)
	})
}

func (a *Analytics) CountryDistribution(ctx context.Context) ([]model.CountryDistribution, error) {
	return passThrough(a, "country_distribution", func() ([]model.CountryDistribution, error) {
		return a.store.CountryDistribution(ctx)
	})
}

func (a *Analytics) FirmPerformance(ctx context.Context) ([]model.FirmPerformance, error) {
	return passThrough(a, "firm_performance", func() ([]model.FirmPerformance, error) {
		return a.store.FirmPerformance(ctx)
	})
}

func passThrough[T any](a *Analytics, op string, query func() (T, error)) (T, error) {
	var zero T
	if a.store == nil {
		return zero, degraded(op, nil)
	}
	rows, err := query()
	if err != nil {
		if errors.Is(err, model.ErrStoreUnavailable) {
			a.diag.NotConfigured(op, err)
			return zero, degraded(op, err)
		}
		return zero, err
	}
	return rows, nil
}
