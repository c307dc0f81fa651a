package model

// DashboardOverview is the single-row summary of the admin dashboard
type DashboardOverview struct {
	TotalSessions   int64   `db:"total_sessions" json:"total_sessions"`
	UniqueUsers     int64   `db:"unique_users" json:"unique_users"`
	TotalActions    int64   `db:"total_actions" json:"total_actions"`
	SwipeRight      int64   `db:"swipe_right" json:"swipe_right"`
	SwipeLeft       int64   `db:"swipe_left" json:"swipe_left"`
	AffiliateClicks int64   `db:"affiliate_clicks" json:"affiliate_clicks"`
	AvgSessionSecs  float64 `db:"avg_session_seconds" json:"avg_session_seconds"`
}

// DealPerformance aggregates interactions per deal
type DealPerformance struct {
	DealID          string  `db:"deal_id" json:"deal_id"`
	Title           string  `db:"title" json:"title"`
	Views           int64   `db:"views" json:"views"`
	SwipeRight      int64   `db:"swipe_right" json:"swipe_right"`
	SwipeLeft       int64   `db:"swipe_left" json:"swipe_left"`
	Saves           int64   `db:"saves" json:"saves"`
	AffiliateClicks int64   `db:"affiliate_clicks" json:"affiliate_clicks"`
	AcceptRate      float64 `db:"accept_rate" json:"accept_rate"`
}

// UserBehavior aggregates interactions per user
type UserBehavior struct {
	UserID       string `db:"user_id" json:"user_id"`
	Sessions     int64  `db:"sessions" json:"sessions"`
	Actions      int64  `db:"actions" json:"actions"`
	SwipeRight   int64  `db:"swipe_right" json:"swipe_right"`
	SwipeLeft    int64  `db:"swipe_left" json:"swipe_left"`
	LastActivity string `db:"last_activity" json:"last_activity"`
}

// CountryDistribution aggregates sessions per country
type CountryDistribution struct {
	Country     string `db:"country" json:"country"`
	CountryCode string `db:"country_code" json:"country_code"`
	Sessions    int64  `db:"sessions" json:"sessions"`
	Users       int64  `db:"users" json:"users"`
}

// FirmPerformance aggregates interactions per firm
type FirmPerformance struct {
	FirmID          string `db:"firm_id" json:"firm_id"`
	Name            string `db:"name" json:"name"`
	Deals           int64  `db:"deals" json:"deals"`
	Views           int64  `db:"views" json:"views"`
	AffiliateClicks int64  `db:"affiliate_clicks" json:"affiliate_clicks"`
}
