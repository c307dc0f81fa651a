package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Field is a canonical deal attribute
type Field string

const (
	FieldID                 Field = "id"
	FieldFirmID             Field = "firm_id"
	FieldTitle              Field = "title"
	FieldDescription        Field = "description"
	FieldCategory           Field = "category"
	FieldMerchant           Field = "merchant_name"
	FieldDiscountType       Field = "discount_type"
	FieldDiscountPercentage Field = "discount_percentage"
	FieldDiscountText       Field = "discount_text"
	FieldCouponCode         Field = "coupon_code"
	FieldAffiliateLink      Field = "affiliate_link"
	FieldImageURL           Field = "image_url"
	FieldTerms              Field = "terms"
	FieldStartDate          Field = "start_date"
	FieldEndDate            Field = "end_date"
	FieldStatus             Field = "status"
	FieldButtonConfig       Field = "button_config"
	FieldVerificationBadge  Field = "has_verification_badge"
	FieldBackgroundImage    Field = "background_image_url"
	FieldBackgroundPosition Field = "background_position"
	FieldBackgroundBlur     Field = "background_blur"
	FieldCreatedAt          Field = "created_at"
	FieldUpdatedAt          Field = "updated_at"
)

// Aliases lists, per canonical field, the source column names accepted in
// priority order. The first present, non-empty alias wins.
var Aliases = map[Field][]string{
	FieldID:                 {"id", "deal_id", "uuid"},
	FieldFirmID:             {"firm_id", "company_id", "partner_firm_id"},
	FieldTitle:              {"title", "name", "deal_title"},
	FieldDescription:        {"description", "deal_description", "details", "summary"},
	FieldCategory:           {"category", "deal_category", "firm_type"},
	FieldMerchant:           {"merchant_name", "company_name", "merchant", "brand"},
	FieldDiscountType:       {"discount_type", "type_of_discount"},
	FieldDiscountPercentage: {"discount_percentage", "percentage", "percent_off"},
	FieldDiscountText:       {"discount_text", "discount_amount", "discount", "value"},
	FieldCouponCode:         {"coupon_code", "code", "promo_code", "discount_code"},
	FieldAffiliateLink:      {"affiliate_link", "affiliate_url", "link", "deal_url"},
	FieldImageURL:           {"image_url", "image", "logo_url", "thumbnail"},
	FieldTerms:              {"terms", "terms_conditions", "conditions"},
	FieldStartDate:          {"start_date", "starts_at", "valid_from"},
	FieldEndDate:            {"end_date", "expiry_date", "expires_at", "valid_until"},
	FieldStatus:             {"status", "approval_status"},
	FieldButtonConfig:       {"button_config", "buttons"},
	FieldVerificationBadge:  {"has_verification_badge", "verified", "is_verified"},
	FieldBackgroundImage:    {"background_image_url", "bg_image"},
	FieldBackgroundPosition: {"background_position", "bg_position"},
	FieldBackgroundBlur:     {"background_blur", "bg_blur"},
	FieldCreatedAt:          {"created_at", "submitted_at"},
	FieldUpdatedAt:          {"updated_at"},
}

// Record is one raw row as returned by the store, keyed by column name
type Record map[string]any

// Value returns the first present, non-empty alias of f
func (r Record) Value(f Field) (any, bool) {
	for _, name := range Aliases[f] {
		v, ok := r[name]
		if !ok || v == nil {
			continue
		}
		if s, isText := textOf(v); isText && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// String returns f as trimmed text
func (r Record) String(f Field) string {
	v, ok := r.Value(f)
	if !ok {
		return ""
	}
	return strings.TrimSpace(toString(v))
}

// Int returns f as an integer
func (r Record) Int(f Field) (int, bool) {
	v, ok := r.Value(f)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	s := strings.TrimSuffix(strings.TrimSpace(toString(v)), "%")
	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil {
		return int(fl), true
	}
	return 0, false
}

// Bool returns f as a boolean; absent is false
func (r Record) Bool(f Field) bool {
	v, ok := r.Value(f)
	if !ok {
		return false
	}
	if b, isBool := v.(bool); isBool {
		return b
	}
	b, _ := strconv.ParseBool(strings.TrimSpace(toString(v)))
	return b
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Time returns f as a timestamp
func (r Record) Time(f Field) (time.Time, bool) {
	v, ok := r.Value(f)
	if !ok {
		return time.Time{}, false
	}
	if t, isTime := v.(time.Time); isTime {
		return t, true
	}
	s := strings.TrimSpace(toString(v))
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func textOf(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case time.Time:
		return s.Format(time.RFC3339)
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}
