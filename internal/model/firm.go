package model

import "time"

// FirmStatus is the onboarding state of a firm
type FirmStatus string

const (
	FirmActive   FirmStatus = "active"
	FirmPending  FirmStatus = "pending"
	FirmRejected FirmStatus = "rejected"
)

// Firm represents the provider of a deal in the database
type Firm struct {
	ID                   string     `db:"id" json:"id" validate:"required"`
	Name                 string     `db:"name" json:"name" validate:"required"`
	LogoURL              string     `db:"logo_url" json:"logo_url" validate:"omitempty,url"`
	DefaultAffiliateLink string     `db:"default_affiliate_link" json:"default_affiliate_link" validate:"omitempty,url"`
	DefaultCouponCode    string     `db:"default_coupon_code" json:"default_coupon_code"`
	Status               FirmStatus `db:"status" json:"status" validate:"required,oneof=active pending rejected"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}
