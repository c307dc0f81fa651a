package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kkkkikiki/dealswipe/internal/model"
)

// Validator is a wrapper around the validator library.
type Validator struct {
	validate *validator.Validate
}

// New creates a new Validator instance.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(dealStructLevel, model.Deal{})
	return &Validator{validate: v}
}

// ValidateStruct validates a struct based on its tags. Failures are
// reported as *model.ValidationError for the first offending field.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &model.ValidationError{Field: fieldName(fe), Reason: reason(fe)}
	}
	return fmt.Errorf("validation failed: %w", err)
}

// ValidateDeal checks a canonical deal before it is written.
func (v *Validator) ValidateDeal(d *model.Deal) error {
	if d == nil {
		return &model.ValidationError{Field: "deal", Reason: "is required"}
	}
	return v.ValidateStruct(d)
}

func dealStructLevel(sl validator.StructLevel) {
	d := sl.Current().Interface().(model.Deal)

	switch d.Discount.Kind {
	case model.DiscountPercentage:
		if d.Discount.Percent < 1 || d.Discount.Percent > 100 {
			sl.ReportError(d.Discount.Percent, "discount_percentage", "Percent", "percent_range", "")
		}
	case model.DiscountFixedAmount:
		if !d.Discount.Amount.IsPositive() {
			sl.ReportError(d.Discount.Amount, "discount_amount", "Amount", "positive_amount", "")
		}
	case model.DiscountFree:
	default:
		sl.ReportError(d.Discount.Kind, "discount_type", "Kind", "discount_kind", "")
	}

	if d.Window.Start.IsZero() || d.Window.End.IsZero() {
		sl.ReportError(d.Window, "window", "Window", "window_required", "")
	} else if !d.Window.Start.Before(d.Window.End) {
		sl.ReportError(d.Window.End, "end_date", "End", "end_after_start", "")
	}

	if d.CouponCode != model.NormalizeCouponCode(d.CouponCode) {
		sl.ReportError(d.CouponCode, "coupon_code", "CouponCode", "uppercase", "")
	}
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		name = fe.StructField()
	}
	return toSnake(name)
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "window_required":
		return "is required"
	case "percent_range":
		return "must be between 1 and 100"
	case "positive_amount":
		return "must be greater than zero"
	case "discount_kind":
		return "must be percentage, fixed_amount or free"
	case "end_after_start":
		return "must be after start_date"
	case "uppercase":
		return "must be trimmed and uppercase"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

func toSnake(s string) string {
	if strings.Contains(s, "_") || strings.ToLower(s) == s {
		return s
	}
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			prevLower = false
			continue
		}
		b.WriteRune(r)
		prevLower = true
	}
	return b.String()
}
