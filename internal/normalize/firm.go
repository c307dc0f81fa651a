package normalize

import "github.com/kkkkikiki/dealswipe/internal/model"

// Inheritance reports which marketing fields of a deal currently equal the
// defaults of its firm. It is diagnostic only and never enforced on write.
type Inheritance struct {
	FirmName      string `json:"firm_name"`
	AffiliateLink bool   `json:"affiliate_link"`
	CouponCode    bool   `json:"coupon_code"`
	MerchantName  bool   `json:"merchant_name"`
}

// Inherited compares d against the defaults of f
func Inherited(d *model.Deal, f *model.Firm) Inheritance {
	if d == nil || f == nil {
		return Inheritance{}
	}
	return Inheritance{
		FirmName:      f.Name,
		AffiliateLink: f.DefaultAffiliateLink != "" && d.AffiliateLink == f.DefaultAffiliateLink,
		CouponCode:    f.DefaultCouponCode != "" && d.CouponCode == model.NormalizeCouponCode(f.DefaultCouponCode),
		MerchantName:  d.MerchantName == f.Name,
	}
}

// ApplyFirmDefaults fills empty marketing fields of d from f
func ApplyFirmDefaults(d *model.Deal, f *model.Firm) {
	if d == nil || f == nil {
		return
	}
	if d.FirmID == "" {
		d.FirmID = f.ID
	}
	if d.MerchantName == "" {
		d.MerchantName = f.Name
	}
	if d.AffiliateLink == "" {
		d.AffiliateLink = f.DefaultAffiliateLink
	}
	if d.CouponCode == "" {
		d.CouponCode = model.NormalizeCouponCode(f.DefaultCouponCode)
	}
	if d.ImageURL == "" || d.ImageURL == PlaceholderImageURL {
		if f.LogoURL != "" {
			d.ImageURL = f.LogoURL
		}
	}
}
