package model

import "time"

// Session represents one browsing session in the telemetry store.
// Counters are maintained by the database as actions are inserted.
type Session struct {
	ID              string     `db:"session_id" json:"session_id"`
	UserID          *string    `db:"user_id" json:"user_id,omitempty"`
	IPAddress       *string    `db:"ip_address" json:"ip_address,omitempty"`
	Country         string     `db:"country" json:"country"`
	CountryCode     string     `db:"country_code" json:"country_code"`
	DeviceType      string     `db:"device_type" json:"device_type"`
	Browser         string     `db:"browser" json:"browser"`
	OS              string     `db:"os" json:"os"`
	UserAgent       string     `db:"user_agent" json:"user_agent"`
	PageViews       int        `db:"page_views" json:"page_views"`
	DealsViewed     int        `db:"deals_viewed" json:"deals_viewed"`
	SwipeRight      int        `db:"swipe_right" json:"swipe_right"`
	SwipeLeft       int        `db:"swipe_left" json:"swipe_left"`
	DealsClicked    int        `db:"deals_clicked" json:"deals_clicked"`
	AffiliateClicks int        `db:"affiliate_clicks" json:"affiliate_clicks"`
	StartedAt       time.Time  `db:"started_at" json:"started_at"`
	EndedAt         *time.Time `db:"ended_at" json:"ended_at,omitempty"`
}
