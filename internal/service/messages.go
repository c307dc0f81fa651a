package service

import (
	"time"

	"github.com/kkkkikiki/dealswipe/internal/feed"
	"github.com/kkkkikiki/dealswipe/internal/model"
	"github.com/kkkkikiki/dealswipe/internal/normalize"
	"github.com/kkkkikiki/dealswipe/internal/telemetry"
)

// DealInput is the editable part of a deal as sent by admin and partner
// consoles
type DealInput struct {
	FirmID               string            `json:"firm_id,omitempty"`
	Title                string            `json:"title"`
	Description          string            `json:"description,omitempty"`
	Category             string            `json:"category"`
	MerchantName         string            `json:"merchant_name,omitempty"`
	DiscountType         string            `json:"discount_type"`
	DiscountPercentage   int               `json:"discount_percentage,omitempty"`
	DiscountAmount       string            `json:"discount_amount,omitempty"`
	DiscountLabel        string            `json:"discount_label,omitempty"`
	CouponCode           string            `json:"coupon_code,omitempty"`
	AffiliateLink        string            `json:"affiliate_link,omitempty"`
	ImageURL             string            `json:"image_url,omitempty"`
	Terms                string            `json:"terms,omitempty"`
	StartDate            *time.Time        `json:"start_date,omitempty"`
	EndDate              *time.Time        `json:"end_date,omitempty"`
	ButtonConfig         string            `json:"button_config,omitempty"`
	HasVerificationBadge bool              `json:"has_verification_badge"`
	Background           *model.Background `json:"background,omitempty"`
}

// DealView is a deal as rendered, with its effective button configuration
type DealView struct {
	model.Deal
	DiscountLabel            string             `json:"discount_label"`
	LegacyDiscountPercentage int                `json:"discount_percentage"`
	EffectiveButtonConfig    model.ButtonConfig `json:"effective_button_config"`
	ShowClaimButton          bool               `json:"show_claim_button"`
	ShowCodeButton           bool               `json:"show_code_button"`
}

// DealDiagnostics is the admin-only explanation of a deal
type DealDiagnostics struct {
	StoredButtonConfig model.ButtonConfig     `json:"stored_button_config"`
	ButtonDowngraded   bool                   `json:"button_downgraded"`
	Inheritance        *normalize.Inheritance `json:"inheritance,omitempty"`
	Live               bool                   `json:"live"`
	FeedEligible       bool                   `json:"feed_eligible"`
}

type CreateDealRequest struct {
	Deal DealInput `json:"deal"`
}

type SubmitPartnerDealRequest struct {
	Deal DealInput `json:"deal"`
}

type UpdateDealRequest struct {
	ID   string    `json:"id"`
	Deal DealInput `json:"deal"`
}

type DealResponse struct {
	Deal DealView `json:"deal"`
}

type GetDealRequest struct {
	ID string `json:"id"`
}

type GetDealResponse struct {
	Deal        DealView        `json:"deal"`
	Diagnostics DealDiagnostics `json:"diagnostics"`
}

type ListDealsRequest struct {
	SourceType model.SourceType `json:"source_type"`
	Status     model.Status     `json:"status,omitempty"`
}

type ListDealsResponse struct {
	Deals []DealView `json:"deals"`
}

type SetDealStatusRequest struct {
	ID     string       `json:"id"`
	Status model.Status `json:"status"`
}

type CreateFirmRequest struct {
	Firm model.Firm `json:"firm"`
}

type FirmResponse struct {
	Firm model.Firm `json:"firm"`
}

type ListFirmsRequest struct{}

type ListFirmsResponse struct {
	Firms []model.Firm `json:"firms"`
}

// FeedState is the cursor view of a feed after a command
type FeedState struct {
	Category     model.Category `json:"category"`
	Index        int            `json:"index"`
	Total        int            `json:"total"`
	Current      *DealView      `json:"current,omitempty"`
	Pending      *DealView      `json:"pending,omitempty"`
	Notices      []feed.Notice  `json:"notices,omitempty"`
	AuthRequired bool           `json:"auth_required"`
}

type LoadFeedRequest struct {
	UserID    string         `json:"user_id,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Category  model.Category `json:"category,omitempty"`
}

type LoadFeedResponse struct {
	FeedState
	Deals      []DealView `json:"deals"`
	FromSample bool       `json:"from_sample"`
}

type GestureRequest struct {
	UserID    string         `json:"user_id,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Command   string         `json:"command"`
	DealID    string         `json:"deal_id,omitempty"`
	Category  model.Category `json:"category,omitempty"`
}

type GestureResponse struct {
	FeedState
}

type ListSavedRequest struct {
	UserID string `json:"user_id"`
}

type ListSavedResponse struct {
	Saved []model.SavedDeal `json:"saved"`
}

type StartSessionRequest struct {
	UserID   string `json:"user_id,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	Language string `json:"language,omitempty"`
}

type StartSessionResponse struct {
	SessionID   string                   `json:"session_id"`
	Country     string                   `json:"country"`
	CountryCode string                   `json:"country_code"`
	DeviceType  string                   `json:"device_type"`
	Browser     string                   `json:"browser"`
	OS          string                   `json:"os"`
	Error       *telemetry.DegradedError `json:"error,omitempty"`
}

type TrackActionRequest struct {
	ActionType model.ActionType `json:"action_type"`
	UserID     string           `json:"user_id,omitempty"`
	SessionID  string           `json:"session_id,omitempty"`
	DealID     string           `json:"deal_id,omitempty"`
	FirmID     string           `json:"firm_id,omitempty"`
	ActionData map[string]any   `json:"action_data,omitempty"`
	Timezone   string           `json:"timezone,omitempty"`
	Language   string           `json:"language,omitempty"`
}

type TrackActionResponse struct {
	Error *telemetry.DegradedError `json:"error,omitempty"`
}

type EndSessionRequest struct {
	SessionID string `json:"session_id"`
	// UserID also drops the signed-in user's feed
	UserID string `json:"user_id,omitempty"`
}

type EndSessionResponse struct{}

type AnalyticsRequest struct {
	Limit int `json:"limit,omitempty"`
}

// AnalyticsResponse carries view rows, or the degraded sentinel when the
// telemetry backend is absent
type AnalyticsResponse[T any] struct {
	Data  T                        `json:"data"`
	Error *telemetry.DegradedError `json:"error,omitempty"`
}
