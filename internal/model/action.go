package model

import "time"

// ActionType is the closed set of tracked interactions
type ActionType string

const (
	ActionPageView       ActionType = "page_view"
	ActionDealView       ActionType = "deal_view"
	ActionSwipeRight     ActionType = "deal_swipe_right"
	ActionSwipeLeft      ActionType = "deal_swipe_left"
	ActionDealSave       ActionType = "deal_save"
	ActionDealUnsave     ActionType = "deal_unsave"
	ActionDealClick      ActionType = "deal_click"
	ActionAffiliateClick ActionType = "affiliate_click"
	ActionDealShare      ActionType = "deal_share"
	ActionProfileView    ActionType = "profile_view"
	ActionCategoryFilter ActionType = "category_filter"
	ActionSearch         ActionType = "search"
	ActionLogin          ActionType = "login"
	ActionLogout         ActionType = "logout"
	ActionSignup         ActionType = "signup"
)

var actionTypes = map[ActionType]struct{}{
	ActionPageView: {}, ActionDealView: {}, ActionSwipeRight: {}, ActionSwipeLeft: {},
	ActionDealSave: {}, ActionDealUnsave: {}, ActionDealClick: {}, ActionAffiliateClick: {},
	ActionDealShare: {}, ActionProfileView: {}, ActionCategoryFilter: {}, ActionSearch: {},
	ActionLogin: {}, ActionLogout: {}, ActionSignup: {},
}

// Valid reports whether t belongs to the closed action set
func (t ActionType) Valid() bool {
	_, ok := actionTypes[t]
	return ok
}

// Action is an immutable interaction record
type Action struct {
	ActionType  ActionType     `json:"action_type"`
	UserID      *string        `json:"user_id,omitempty"`
	SessionID   *string        `json:"session_id,omitempty"`
	DealID      *string        `json:"deal_id,omitempty"`
	FirmID      *string        `json:"firm_id,omitempty"`
	ActionData  map[string]any `json:"action_data,omitempty"`
	IPAddress   *string        `json:"ip_address,omitempty"`
	Country     string         `json:"country"`
	CountryCode string         `json:"country_code"`
	DeviceType  string         `json:"device_type"`
	Browser     string         `json:"browser"`
	OS          string         `json:"os"`
	UserAgent   string         `json:"user_agent"`
	CreatedAt   time.Time      `json:"created_at"`
}

// StringPtr returns nil for the empty string
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
