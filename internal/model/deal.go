package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SourceType identifies which actor authored a deal
type SourceType string

const (
	SourceAdmin   SourceType = "admin"
	SourcePartner SourceType = "partner"
)

// Category is the enumerated deal category
type Category string

const (
	CategoryAll     Category = "All"
	CategoryCFD     Category = "CFD"
	CategoryFutures Category = "Futures"
	CategoryCrypto  Category = "Crypto"
	CategoryBrokers Category = "Brokers"
)

// Categories lists the concrete categories in display order
var Categories = []Category{CategoryCFD, CategoryFutures, CategoryCrypto, CategoryBrokers}

// Valid reports whether c is one of the concrete categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Status is the lifecycle state of a deal. Admin and partner deals use
// disjoint subsets.
type Status string

const (
	StatusDraft           Status = "draft"
	StatusPublished       Status = "published"
	StatusArchived        Status = "archived"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
)

// ButtonConfig is the stored call-to-action preference. The empty value
// means no explicit preference was stored.
type ButtonConfig string

const (
	ButtonsUnset     ButtonConfig = ""
	ButtonsBoth      ButtonConfig = "both"
	ButtonsClaimOnly ButtonConfig = "claim_only"
	ButtonsCodeOnly  ButtonConfig = "code_only"
)

// DiscountKind tags the Discount variant
type DiscountKind string

const (
	DiscountPercentage  DiscountKind = "percentage"
	DiscountFixedAmount DiscountKind = "fixed_amount"
	DiscountFree        DiscountKind = "free"
)

// FreeLabel is the rendered label of every free deal
const FreeLabel = "FREE"

// Discount is a tagged variant; only the fields of Kind are meaningful.
type Discount struct {
	Kind    DiscountKind    `json:"kind"`
	Percent int             `json:"percent,omitempty"`
	Amount  decimal.Decimal `json:"amount,omitempty"`
	Label   string          `json:"label,omitempty"`
}

// Percentage builds a percentage discount
func Percentage(p int) Discount { return Discount{Kind: DiscountPercentage, Percent: p} }

// FixedAmount builds a fixed amount discount
func FixedAmount(amount decimal.Decimal) Discount {
	return Discount{Kind: DiscountFixedAmount, Amount: amount}
}

// Free builds a free discount
func Free(label string) Discount { return Discount{Kind: DiscountFree, Label: label} }

// LegacyPercentage materializes the numeric percentage column kept for
// older readers. Free deals always report 100.
func (d Discount) LegacyPercentage() int {
	switch d.Kind {
	case DiscountPercentage:
		return d.Percent
	case DiscountFree:
		return 100
	default:
		return 0
	}
}

// Display renders the discount badge text.
func (d Discount) Display() string {
	switch d.Kind {
	case DiscountPercentage:
		return fmt.Sprintf("%d%% OFF", d.Percent)
	case DiscountFixedAmount:
		return "$" + d.Amount.StringFixedBank(amountPlaces(d.Amount)) + " OFF"
	case DiscountFree:
		return FreeLabel
	default:
		return ""
	}
}

func amountPlaces(a decimal.Decimal) int32 {
	if a.Equal(a.Truncate(0)) {
		return 0
	}
	return 2
}

// Window is the validity period of a deal
type Window struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// Background is the optional card background
type Background struct {
	ImageURL string `json:"image_url" validate:"omitempty,url"`
	Position string `json:"position,omitempty"`
	BlurPx   int    `json:"blur_px" validate:"gte=0,lte=50"`
}

// Deal is the canonical promotional offer
type Deal struct {
	ID                   string       `json:"id" validate:"required"`
	SourceType           SourceType   `json:"source_type" validate:"required,oneof=admin partner"`
	FirmID               string       `json:"firm_id,omitempty"`
	Title                string       `json:"title" validate:"required"`
	Description          string       `json:"description"`
	Category             Category     `json:"category" validate:"required,oneof=CFD Futures Crypto Brokers"`
	MerchantName         string       `json:"merchant_name"`
	Discount             Discount     `json:"discount"`
	CouponCode           string       `json:"coupon_code,omitempty"`
	AffiliateLink        string       `json:"affiliate_link,omitempty" validate:"omitempty,url"`
	ImageURL             string       `json:"image_url"`
	Terms                string       `json:"terms"`
	Window               Window       `json:"window"`
	Status               Status       `json:"status" validate:"required"`
	ButtonConfig         ButtonConfig `json:"button_config,omitempty"`
	HasVerificationBadge bool         `json:"has_verification_badge"`
	Background           *Background  `json:"background,omitempty"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

// HasCouponCode reports whether the deal carries a usable code
func (d *Deal) HasCouponCode() bool { return d.CouponCode != "" }

// NormalizeCouponCode trims and upper-cases a coupon code
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
