package service

import (
	"strings"
	"time"

	"github.com/kkkkikiki/dealswipe/internal/buttons"
	"github.com/kkkkikiki/dealswipe/internal/lifecycle"
	"github.com/kkkkikiki/dealswipe/internal/model"
	"github.com/kkkkikiki/dealswipe/internal/normalize"
)

// check rejects input the normalizer would otherwise coerce. Operators must
// pick an enumerated category and a known button preference.
func (in *DealInput) check() error {
	category, ok := strictCategory(in.Category)
	if !ok {
		return &model.ValidationError{Field: "category", Reason: "must be CFD, Futures, Crypto or Brokers"}
	}
	in.Category = string(category)

	if in.ButtonConfig != "" && normalize.ParseButtonConfig(in.ButtonConfig) == model.ButtonsUnset {
		return &model.ValidationError{Field: "button_config", Reason: "must be both, claim_only or code_only"}
	}
	return nil
}

func strictCategory(s string) (model.Category, bool) {
	for _, c := range model.Categories {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, true
		}
	}
	return "", false
}

// record renders the input under canonical column names so it goes through
// the same normalization as stored rows.
func (in *DealInput) record(id string) normalize.Record {
	rec := normalize.Record{
		string(normalize.FieldID):                id,
		string(normalize.FieldFirmID):            in.FirmID,
		string(normalize.FieldTitle):             in.Title,
		string(normalize.FieldDescription):       in.Description,
		string(normalize.FieldCategory):          in.Category,
		string(normalize.FieldMerchant):          in.MerchantName,
		string(normalize.FieldDiscountType):      in.DiscountType,
		string(normalize.FieldCouponCode):        in.CouponCode,
		string(normalize.FieldAffiliateLink):     in.AffiliateLink,
		string(normalize.FieldImageURL):          in.ImageURL,
		string(normalize.FieldTerms):             in.Terms,
		string(normalize.FieldButtonConfig):      in.ButtonConfig,
		string(normalize.FieldVerificationBadge): in.HasVerificationBadge,
	}

	switch strings.ToLower(in.DiscountType) {
	case "fixed", "fixed_amount", "amount":
		rec[string(normalize.FieldDiscountText)] = in.DiscountAmount
	case "free":
		rec[string(normalize.FieldDiscountText)] = in.DiscountLabel
	default:
		if in.DiscountAmount != "" {
			rec[string(normalize.FieldDiscountText)] = in.DiscountAmount
		} else {
			rec[string(normalize.FieldDiscountText)] = in.DiscountLabel
		}
	}
	if in.DiscountPercentage > 0 {
		rec[string(normalize.FieldDiscountPercentage)] = in.DiscountPercentage
	}

	if in.StartDate != nil {
		rec[string(normalize.FieldStartDate)] = *in.StartDate
	}
	if in.EndDate != nil {
		rec[string(normalize.FieldEndDate)] = *in.EndDate
	}
	if bg := in.Background; bg != nil {
		rec[string(normalize.FieldBackgroundImage)] = bg.ImageURL
		rec[string(normalize.FieldBackgroundPosition)] = bg.Position
		rec[string(normalize.FieldBackgroundBlur)] = bg.BlurPx
	}
	return rec
}

func newDealView(d *model.Deal) DealView {
	effective := buttons.Effective(d)
	claim, code := buttons.Visible(effective)
	return DealView{
		Deal:                     *d,
		DiscountLabel:            d.Discount.Display(),
		LegacyDiscountPercentage: d.Discount.LegacyPercentage(),
		EffectiveButtonConfig:    effective,
		ShowClaimButton:          claim,
		ShowCodeButton:           code,
	}
}

func newDealViews(deals []model.Deal) []DealView {
	views := make([]DealView, 0, len(deals))
	for i := range deals {
		views = append(views, newDealView(&deals[i]))
	}
	return views
}

func newDiagnostics(d *model.Deal, firm *model.Firm, now time.Time) DealDiagnostics {
	_, downgraded := buttons.Resolve(d.ButtonConfig, buttons.CompletenessOf(d))
	diag := DealDiagnostics{
		StoredButtonConfig: d.ButtonConfig,
		ButtonDowngraded:   downgraded,
		Live:               lifecycle.Live(d.Status),
		FeedEligible:       lifecycle.FeedEligible(d, now),
	}
	if firm != nil {
		inh := normalize.Inherited(d, firm)
		diag.Inheritance = &inh
	}
	return diag
}
