package validator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkkikiki/dealswipe/internal/model"
)

func validDeal() model.Deal {
	now := time.Now()
	return model.Deal{
		ID:         "deal-1",
		SourceType: model.SourceAdmin,
		Title:      "30% off evaluation",
		Category:   model.CategoryFutures,
		Discount:   model.Percentage(30),
		Window:     model.Window{Start: now.Add(-time.Hour), End: now.Add(24 * time.Hour)},
		Status:     model.StatusDraft,
	}
}

func TestValidator_ValidateDeal(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		mutate    func(d *model.Deal)
		wantField string
	}{
		{name: "Valid Deal", mutate: func(d *model.Deal) {}},
		{name: "Missing Title", mutate: func(d *model.Deal) { d.Title = "" }, wantField: "title"},
		{name: "Unknown Category", mutate: func(d *model.Deal) { d.Category = "Stocks" }, wantField: "category"},
		{name: "Percentage Zero", mutate: func(d *model.Deal) { d.Discount = model.Percentage(0) }, wantField: "discount_percentage"},
		{name: "Percentage Above 100", mutate: func(d *model.Deal) { d.Discount = model.Percentage(101) }, wantField: "discount_percentage"},
		{name: "Percentage 100", mutate: func(d *model.Deal) { d.Discount = model.Percentage(100) }},
		{name: "Fixed Amount Zero", mutate: func(d *model.Deal) { d.Discount = model.FixedAmount(decimal.Zero) }, wantField: "discount_amount"},
		{name: "Fixed Amount", mutate: func(d *model.Deal) { d.Discount = model.FixedAmount(decimal.NewFromInt(50)) }},
		{name: "Free", mutate: func(d *model.Deal) { d.Discount = model.Free("") }},
		{name: "End Before Start", mutate: func(d *model.Deal) { d.Window.End = d.Window.Start.Add(-time.Minute) }, wantField: "end_date"},
		{name: "Lowercase Coupon", mutate: func(d *model.Deal) { d.CouponCode = "save10" }, wantField: "coupon_code"},
		{name: "Invalid Affiliate Link", mutate: func(d *model.Deal) { d.AffiliateLink = "not a url" }, wantField: "affiliate_link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDeal()
			tt.mutate(&d)
			err := v.ValidateDeal(&d)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrValidation)
			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestValidator_NilDeal(t *testing.T) {
	err := New().ValidateDeal(nil)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "affiliate_link", toSnake("AffiliateLink"))
	assert.Equal(t, "image_url", toSnake("ImageURL"))
	assert.Equal(t, "end_date", toSnake("end_date"))
}
