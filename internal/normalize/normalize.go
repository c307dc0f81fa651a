// Package normalize maps heterogeneous deal rows from admin and partner
// sources onto the canonical model.Deal. Aliasing never leaves this package.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kkkkikiki/dealswipe/internal/model"
)

const (
	// PlaceholderImageURL is used when a row carries no image
	PlaceholderImageURL = "https://placehold.co/600x400/0f172a/ffffff?text=Deal"
	// DefaultTerms is used when a row carries no terms
	DefaultTerms = "Terms and conditions apply. See the provider's website for full details."
	// DefaultValidity is the window length assumed when a row has no end date
	DefaultValidity = 30 * 24 * time.Hour
)

// Normalizer converts records into canonical deals
type Normalizer struct {
	defaultValidity time.Duration
	now             func() time.Time
}

// New creates a normalizer. A zero validity selects DefaultValidity.
func New(defaultValidity time.Duration) *Normalizer {
	if defaultValidity <= 0 {
		defaultValidity = DefaultValidity
	}
	return &Normalizer{defaultValidity: defaultValidity, now: time.Now}
}

// Deal normalizes one record. Missing optional fields take documented
// defaults; missing identity or an unusable discount is a validation error.
func (n *Normalizer) Deal(rec Record, source model.SourceType) (*model.Deal, error) {
	id := rec.String(FieldID)
	if id == "" {
		return nil, &model.ValidationError{Field: "id", Reason: "is required"}
	}
	title := rec.String(FieldTitle)
	if title == "" {
		return nil, &model.ValidationError{Field: "title", Reason: "is required"}
	}

	discount, err := ParseDiscount(rec)
	if err != nil {
		return nil, err
	}

	d := &model.Deal{
		ID:                   id,
		SourceType:           source,
		FirmID:               rec.String(FieldFirmID),
		Title:                title,
		Description:          rec.String(FieldDescription),
		Category:             ParseCategory(rec.String(FieldCategory)),
		MerchantName:         rec.String(FieldMerchant),
		Discount:             discount,
		CouponCode:           model.NormalizeCouponCode(rec.String(FieldCouponCode)),
		AffiliateLink:        rec.String(FieldAffiliateLink),
		ImageURL:             rec.String(FieldImageURL),
		Terms:                rec.String(FieldTerms),
		Status:               ParseStatus(rec.String(FieldStatus), source),
		ButtonConfig:         ParseButtonConfig(rec.String(FieldButtonConfig)),
		HasVerificationBadge: rec.Bool(FieldVerificationBadge),
	}
	if d.ImageURL == "" {
		d.ImageURL = PlaceholderImageURL
	}
	if d.Terms == "" {
		d.Terms = DefaultTerms
	}

	d.CreatedAt, _ = rec.Time(FieldCreatedAt)
	d.UpdatedAt, _ = rec.Time(FieldUpdatedAt)
	d.Window = n.window(rec, d.CreatedAt)

	if bg := rec.String(FieldBackgroundImage); bg != "" {
		blur, _ := rec.Int(FieldBackgroundBlur)
		d.Background = &model.Background{
			ImageURL: bg,
			Position: rec.String(FieldBackgroundPosition),
			BlurPx:   blur,
		}
	}
	return d, nil
}

func (n *Normalizer) window(rec Record, createdAt time.Time) model.Window {
	start, hasStart := rec.Time(FieldStartDate)
	end, hasEnd := rec.Time(FieldEndDate)
	if !hasStart {
		start = createdAt
		if start.IsZero() {
			start = n.now()
		}
	}
	if !hasEnd {
		end = start.Add(n.defaultValidity)
	}
	return model.Window{Start: start, End: end}
}

var (
	// the number before % must not continue a longer number or a decimal
	percentPattern = regexp.MustCompile(`(?:^|[^\d.,])(\d+)\s*%`)
	amountPattern  = regexp.MustCompile(`(\d+(?:[.,]\d{1,2})?)`)
)

// ParseDiscount builds the tagged discount. An explicit discount type wins;
// without one, a legacy percentage of exactly 100 means free.
func ParseDiscount(rec Record) (model.Discount, error) {
	kind := strings.ToLower(rec.String(FieldDiscountType))
	percent, hasPercent := rec.Int(FieldDiscountPercentage)
	text := rec.String(FieldDiscountText)

	switch kind {
	case "free":
		return model.Free(freeLabel(text)), nil
	case "percentage", "percent":
		if !hasPercent {
			percent, hasPercent = percentFromText(text)
		}
		if !hasPercent || percent < 1 || percent > 100 {
			return model.Discount{}, &model.ValidationError{Field: "discount_percentage", Reason: "must be between 1 and 100"}
		}
		return model.Percentage(percent), nil
	case "fixed", "fixed_amount", "amount":
		amount, ok := amountFromText(text)
		if !ok {
			return model.Discount{}, &model.ValidationError{Field: "discount_amount", Reason: "must be greater than zero"}
		}
		return model.FixedAmount(amount), nil
	case "":
	default:
		return model.Discount{}, &model.ValidationError{Field: "discount_type", Reason: "must be percentage, fixed_amount or free"}
	}

	if hasPercent {
		switch {
		case percent == 100:
			return model.Free(""), nil
		case percent >= 1 && percent < 100:
			return model.Percentage(percent), nil
		}
	}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "free") {
		return model.Free(freeLabel(text)), nil
	}
	if p, ok := percentFromText(text); ok {
		switch {
		case p == 100:
			return model.Free(""), nil
		case p >= 1 && p < 100:
			return model.Percentage(p), nil
		default:
			return model.Discount{}, &model.ValidationError{Field: "discount_percentage", Reason: "must be between 1 and 100"}
		}
	}
	if amount, ok := amountFromText(text); ok {
		return model.FixedAmount(amount), nil
	}
	return model.Discount{}, &model.ValidationError{Field: "discount", Reason: "is missing or unrecognized"}
}

func freeLabel(text string) string {
	if strings.Contains(strings.ToLower(text), "free") {
		return text
	}
	return ""
}

func percentFromText(text string) (int, bool) {
	m := percentPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	p, err := strconv.Atoi(m[1])
	if err != nil {
		// too large for int, and so out of range
		return 0, true
	}
	return p, true
}

func amountFromText(text string) (decimal.Decimal, bool) {
	m := amountPattern.FindString(text)
	if m == "" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(m, ",", "."))
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, false
	}
	return amount, true
}

// ParseCategory matches the enumerated categories case-insensitively.
// Unknown values fall into Brokers.
func ParseCategory(s string) model.Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cfd", "cfds", "prop", "prop firm", "prop_firm":
		return model.CategoryCFD
	case "futures", "future":
		return model.CategoryFutures
	case "crypto", "cryptocurrency", "crypto exchange":
		return model.CategoryCrypto
	default:
		return model.CategoryBrokers
	}
}

// ParseStatus maps a stored status onto the state set of source. Unknown
// values map to the initial state.
func ParseStatus(s string, source model.SourceType) model.Status {
	s = strings.ToLower(strings.TrimSpace(s))
	if source == model.SourcePartner {
		switch s {
		case "approved", "active":
			return model.StatusApproved
		case "rejected", "declined":
			return model.StatusRejected
		default:
			return model.StatusPendingApproval
		}
	}
	switch s {
	case "published", "active", "live":
		return model.StatusPublished
	case "archived", "inactive":
		return model.StatusArchived
	default:
		return model.StatusDraft
	}
}

// ParseButtonConfig reads a stored preference; unknown values are unset.
func ParseButtonConfig(s string) model.ButtonConfig {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "both":
		return model.ButtonsBoth
	case "claim_only", "claim", "claimonly":
		return model.ButtonsClaimOnly
	case "code_only", "code", "codeonly":
		return model.ButtonsCodeOnly
	default:
		return model.ButtonsUnset
	}
}
