package sample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkkikiki/dealswipe/internal/buttons"
	"github.com/kkkkikiki/dealswipe/internal/lifecycle"
	"github.com/kkkkikiki/dealswipe/internal/model"
	"github.com/kkkkikiki/dealswipe/internal/normalize"
)

func TestDeals_AllFeedEligible(t *testing.T) {
	deals, err := Deals(normalize.New(0))
	require.NoError(t, err)
	require.Len(t, deals, 6)

	now := time.Now()
	for _, d := range deals {
		assert.True(t, lifecycle.FeedEligible(&d, now), d.ID)
		assert.True(t, d.Window.Start.Before(d.Window.End), d.ID)
		assert.NotEmpty(t, d.ImageURL, d.ID)
		assert.NotEmpty(t, d.Terms, d.ID)
	}
}

func TestDeals_AliasesResolved(t *testing.T) {
	deals, err := Deals(normalize.New(0))
	require.NoError(t, err)
	byID := make(map[string]model.Deal, len(deals))
	for _, d := range deals {
		byID[d.ID] = d
	}

	ftmo := byID["sample-ftmo-challenge"]
	assert.Equal(t, "FTMO Challenge Discount", ftmo.Title)
	assert.Equal(t, model.CategoryCFD, ftmo.Category)
	assert.Equal(t, "FTMO10", ftmo.CouponCode)
	assert.Equal(t, "10% OFF", ftmo.Discount.Display())
	assert.True(t, ftmo.HasVerificationBadge)

	apex := byID["sample-apex-futures"]
	assert.Equal(t, "Apex Trader Funding", apex.MerchantName)
	assert.Equal(t, model.CategoryFutures, apex.Category)
	assert.Equal(t, 80, apex.Discount.Percent)

	topstep := byID["sample-topstep-reset"]
	assert.Equal(t, model.DiscountFree, topstep.Discount.Kind)
	assert.Equal(t, "FREE", topstep.Discount.Display())
	cfg, _ := buttons.Resolve(topstep.ButtonConfig, buttons.CompletenessOf(&topstep))
	assert.Equal(t, model.ButtonsClaimOnly, cfg)

	assert.Equal(t, "$50 OFF", byID["sample-bybit-bonus"].Discount.Display())
	assert.Equal(t, model.DiscountFree, byID["sample-the5ers"].Discount.Kind)
	assert.Equal(t, 100, byID["sample-the5ers"].Discount.LegacyPercentage())
}
