package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kkkkikiki/dealswipe/internal/model"
)

// AnalyticsRepository reads the analytics views verbatim
type AnalyticsRepository struct {
	db DBExecutor
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db DBExecutor) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// DashboardOverview reads the single overview row
func (r *AnalyticsRepository) DashboardOverview(ctx context.Context) (*model.DashboardOverview, error) {
	query := `
		SELECT total_sessions, unique_users, total_actions, swipe_right, swipe_left,
			affiliate_clicks, avg_session_seconds
		FROM analytics_dashboard_overview
	`

	var overview model.DashboardOverview
	if err := r.db.GetContext(ctx, &overview, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &overview, nil
		}
		return nil, fmt.Errorf("failed to read dashboard overview: %w", classify(err))
	}
	return &overview, nil
}

// DealPerformance reads per-deal aggregates, most viewed first
func (r *AnalyticsRepository) DealPerformance(ctx context.Context, limit int) ([]model.DealPerformance, error) {
	query := `
		SELECT deal_id, title, views, swipe_right, swipe_left, saves, affiliate_clicks, accept_rate
		FROM analytics_deal_performance
		ORDER BY views DESC, deal_id
		LIMIT $1
	`

	var rows []model.DealPerformance
	if err := r.db.SelectContext(ctx, &rows, query, limitOrDefault(limit)); err != nil {
		return nil, fmt.Errorf("failed to read deal performance: %w", classify(err))
	}
	return rows, nil
}

// UserBehavior reads per-user aggregates, most active first
func (r *AnalyticsRepository) UserBehavior(ctx context.Context, limit int) ([]model.UserBehavior, error) {
	query := `
		SELECT user_id, sessions, actions, swipe_right, swipe_left, last_activity
		FROM analytics_user_behavior
		ORDER BY actions DESC, user_id
		LIMIT $1
	`

	var rows []model.UserBehavior
	if err := r.db.SelectContext(ctx, &rows, query, limitOrDefault(limit)); err != nil {
		return nil, fmt.Errorf("failed to read user behavior: %w", classify(err))
	}
	return rows, nil
}

// CountryDistribution reads sessions per country
func (r *AnalyticsRepository) CountryDistribution(ctx context.Context) ([]model.CountryDistribution, error) {
	query := `
		SELECT country, country_code, sessions, users
		FROM analytics_country_distribution
		ORDER BY sessions DESC, country
	`

	var rows []model.CountryDistribution
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to read country distribution: %w", classify(err))
	}
	return rows, nil
}

// FirmPerformance reads per-firm aggregates
func (r *AnalyticsRepository) FirmPerformance(ctx context.Context) ([]model.FirmPerformance, error) {
	query := `
		SELECT firm_id, name, deals, views, affiliate_clicks
		FROM analytics_firm_performance
		ORDER BY views DESC, name
	`

	var rows []model.FirmPerformance
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to read firm performance: %w", classify(err))
	}
	return rows, nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 || limit > 500 {
		return 50
	}
	return limit
}
