package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkkikiki/dealswipe/internal/model"
)

func window() (*time.Time, *time.Time) {
	start := testNow.Add(-time.Hour)
	end := testNow.Add(7 * 24 * time.Hour)
	return &start, &end
}

func percentInput(coupon, buttons string) DealInput {
	start, end := window()
	return DealInput{
		Title:              "Evaluation discount",
		Category:           "cfd",
		MerchantName:       "FTMO",
		DiscountType:       "percentage",
		DiscountPercentage: 20,
		CouponCode:         coupon,
		AffiliateLink:      "https://example.com/ftmo",
		StartDate:          start,
		EndDate:            end,
		ButtonConfig:       buttons,
	}
}

func TestCreateDeal_StartsAsDraft(t *testing.T) {
	env := newTestEnv(t)

	res, err := call[CreateDealRequest, DealResponse](t, env, DealServiceCreateDeal,
		&CreateDealRequest{Deal: percentInput("  save20 ", "")})
	require.NoError(t, err)

	d := res.Deal
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, model.SourceAdmin, d.SourceType)
	assert.Equal(t, model.StatusDraft, d.Status)
	assert.Equal(t, model.CategoryCFD, d.Category)
	assert.Equal(t, "SAVE20", d.CouponCode)
	assert.Equal(t, "20% OFF", d.DiscountLabel)
	assert.Equal(t, 20, d.LegacyDiscountPercentage)
	assert.Equal(t, model.ButtonsBoth, d.ButtonConfig)
	assert.Equal(t, model.ButtonsBoth, d.EffectiveButtonConfig)
	assert.True(t, d.ShowClaimButton)
	assert.True(t, d.ShowCodeButton)

	stored, err := env.store.GetDeal(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ButtonsBoth, stored.ButtonConfig)
}

func TestCreateDeal_CodeButtonWithoutCodeIsDowngraded(t *testing.T) {
	env := newTestEnv(t)

	res, err := call[CreateDealRequest, DealResponse](t, env, DealServiceCreateDeal,
		&CreateDealRequest{Deal: percentInput("", "code_only")})
	require.NoError(t, err)

	assert.Equal(t, model.ButtonsClaimOnly, res.Deal.ButtonConfig)
	assert.Equal(t, model.ButtonsClaimOnly, res.Deal.EffectiveButtonConfig)
	assert.True(t, res.Deal.ShowClaimButton)
	assert.False(t, res.Deal.ShowCodeButton)
	assert.Equal(t, 1, strings.Count(env.logs.String(), "downgrading"))
}

func TestCreateDeal_Discounts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DealInput)
		label  string
		legacy int
	}{
		{
			name: "fixed amount",
			mutate: func(in *DealInput) {
				in.DiscountType = "fixed_amount"
				in.DiscountPercentage = 0
				in.DiscountAmount = "50"
			},
			label: "$50 OFF",
		},
		{
			name: "free with label",
			mutate: func(in *DealInput) {
				in.DiscountType = "free"
				in.DiscountPercentage = 0
				in.DiscountLabel = "Free reset"
			},
			label:  model.FreeLabel,
			legacy: 100,
		},
		{
			name: "legacy hundred percent",
			mutate: func(in *DealInput) {
				in.DiscountType = ""
				in.DiscountPercentage = 100
			},
			label:  model.FreeLabel,
			legacy: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			in := percentInput("CODE", "")
			tt.mutate(&in)

			res, err := call[CreateDealRequest, DealResponse](t, env, DealServiceCreateDeal, &CreateDealRequest{Deal: in})
			require.NoError(t, err)
			assert.Equal(t, tt.label, res.Deal.DiscountLabel)
			assert.Equal(t, tt.legacy, res.Deal.LegacyDiscountPercentage)
		})
	}
}

func TestCreateDeal_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DealInput)
	}{
		{"unknown category", func(in *DealInput) { in.Category = "Stocks" }},
		{"missing title", func(in *DealInput) { in.Title = "" }},
		{"percentage out of range", func(in *DealInput) { in.DiscountPercentage = 150 }},
		{"unknown button config", func(in *DealInput) { in.ButtonConfig = "banner" }},
		{"end before start", func(in *DealInput) {
			early := testNow.Add(-48 * time.Hour)
			in.EndDate = &early
		}},
		{"unknown firm", func(in *DealInput) { in.FirmID = "missing" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			in := percentInput("CODE", "")
			tt.mutate(&in)

			_, err := call[CreateDealRequest, DealResponse](t, env, DealServiceCreateDeal, &CreateDealRequest{Deal: in})
			require.Error(t, err)
			assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
		})
	}
}

func TestCreateDeal_InheritsFirmDefaults(t *testing.T) {
	env := newTestEnv(t)

	firmRes, err := call[CreateFirmRequest, FirmResponse](t, env, DealServiceCreateFirm, &CreateFirmRequest{
		Firm: model.Firm{
			Name:                 "Apex",
			DefaultAffiliateLink: "https://example.com/apex",
			DefaultCouponCode:    "apex80",
		},
	})
	require.NoError(t, err)
	firm := firmRes.Firm
	assert.Equal(t, model.FirmActive, firm.Status)
	assert.Equal(t, "APEX80", firm.DefaultCouponCode)

	in := percentInput("", "")
	in.FirmID = firm.ID
	in.MerchantName = ""
	in.AffiliateLink = ""

	res, err := call[CreateDealRequest, DealResponse](t, env, DealServiceCreateDeal, &CreateDealRequest{Deal: in})
	require.NoError(t, err)
	assert.Equal(t, "Apex", res.Deal.MerchantName)
	assert.Equal(t, "https://example.com/apex", res.Deal.AffiliateLink)
	assert.Equal(t, "APEX80", res.Deal.CouponCode)
	assert.Equal(t, model.ButtonsBoth, res.Deal.ButtonConfig)

	got, err := call[GetDealRequest, GetDealResponse](t, env, DealServiceGetDeal, &GetDealRequest{ID: res.Deal.ID})
	require.NoError(t, err)
	require.NotNil(t, got.Diagnostics.Inheritance)
	assert.Equal(t, "Apex", got.Diagnostics.Inheritance.FirmName)
	assert.True(t, got.Diagnostics.Inheritance.AffiliateLink)
	assert.True(t, got.Diagnostics.Inheritance.CouponCode)
	assert.False(t, got.Diagnostics.Live)
	assert.False(t, got.Diagnostics.FeedEligible)
}

func TestGetDeal_ReportsStoredDowngrade(t *testing.T) {
	env := newTestEnv(t)
	d := liveDeal("legacy", model.CategoryCrypto)
	d.CouponCode = ""
	d.ButtonConfig = model.ButtonsBoth
	env.store.put(d)

	got, err := call[GetDealRequest, GetDealResponse](t, env, DealServiceGetDeal, &GetDealRequest{ID: "legacy"})
	require.NoError(t, err)
	assert.Equal(t, model.ButtonsBoth, got.Diagnostics.StoredButtonConfig)
	assert.True(t, got.Diagnostics.ButtonDowngraded)
	assert.True(t, got.Diagnostics.Live)
	assert.True(t, got.Diagnostics.FeedEligible)
	assert.Equal(t, model.ButtonsClaimOnly, got.Deal.EffectiveButtonConfig)
	assert.Nil(t, got.Diagnostics.Inheritance)

	_, err = call[GetDealRequest, GetDealResponse](t, env, DealServiceGetDeal, &GetDealRequest{ID: "nope"})
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestSetDealStatus_Admin(t *testing.T) {
	env := newTestEnv(t)
	created, err := call[CreateDealRequest, DealResponse](t, env, DealServiceCreateDeal,
		&CreateDealRequest{Deal: percentInput("CODE", "")})
	require.NoError(t, err)
	id := created.Deal.ID

	for _, to := range []model.Status{model.StatusPublished, model.StatusDraft, model.StatusArchived} {
		res, err := call[SetDealStatusRequest, DealResponse](t, env, DealServiceSetDealStatus,
			&SetDealStatusRequest{ID: id, Status: to})
		require.NoError(t, err, to)
		assert.Equal(t, to, res.Deal.Status)
	}

	_, err = call[SetDealStatusRequest, DealResponse](t, env, DealServiceSetDealStatus,
		&SetDealStatusRequest{ID: id, Status: model.StatusPublished})
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

	_, err = call[SetDealStatusRequest, DealResponse](t, env, DealServiceSetDealStatus,
		&SetDealStatusRequest{ID: id, Status: model.StatusApproved})
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
}

func TestPartnerDeal_ApprovalFlow(t *testing.T) {
	env := newTestEnv(t)
	submitted, err := call[SubmitPartnerDealRequest, DealResponse](t, env, DealServiceSubmitPartnerDeal,
		&SubmitPartnerDealRequest{Deal: percentInput("CODE", "")})
	require.NoError(t, err)
	assert.Equal(t, model.SourcePartner, submitted.Deal.SourceType)
	assert.Equal(t, model.StatusPendingApproval, submitted.Deal.Status)
	id := submitted.Deal.ID

	rejected, err := call[SetDealStatusRequest, DealResponse](t, env, DealServiceSetDealStatus,
		&SetDealStatusRequest{ID: id, Status: model.StatusRejected})
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, rejected.Deal.Status)

	edit := percentInput("CODE", "")
	edit.Title = "Evaluation discount, revised"
	updated, err := call[UpdateDealRequest, DealResponse](t, env, DealServiceUpdateDeal,
		&UpdateDealRequest{ID: id, Deal: edit})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingApproval, updated.Deal.Status)
	assert.Equal(t, "Evaluation discount, revised", updated.Deal.Title)

	approved, err := call[SetDealStatusRequest, DealResponse](t, env, DealServiceSetDealStatus,
		&SetDealStatusRequest{ID: id, Status: model.StatusApproved})
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, approved.Deal.Status)

	feedRes := load(t, env, &LoadFeedRequest{SessionID: "s1"})
	assert.Contains(t, ids(feedRes.Deals), id)

	_, err = call[SetDealStatusRequest, DealResponse](t, env, DealServiceSetDealStatus,
		&SetDealStatusRequest{ID: id, Status: model.StatusRejected})
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
}

func TestUpdateDeal_KeepsWindowWhenOmitted(t *testing.T) {
	env := newTestEnv(t)
	created, err := call[CreateDealRequest, DealResponse](t, env, DealServiceCreateDeal,
		&CreateDealRequest{Deal: percentInput("CODE", "")})
	require.NoError(t, err)

	edit := percentInput("CODE", "claim_only")
	edit.StartDate, edit.EndDate = nil, nil
	updated, err := call[UpdateDealRequest, DealResponse](t, env, DealServiceUpdateDeal,
		&UpdateDealRequest{ID: created.Deal.ID, Deal: edit})
	require.NoError(t, err)

	assert.True(t, created.Deal.Window.Start.Equal(updated.Deal.Window.Start))
	assert.True(t, created.Deal.Window.End.Equal(updated.Deal.Window.End))
	assert.Equal(t, model.StatusDraft, updated.Deal.Status)
	assert.Equal(t, model.ButtonsClaimOnly, updated.Deal.ButtonConfig)
}

func TestListDeals(t *testing.T) {
	env := newTestEnv(t)
	env.store.put(liveDeal("a", model.CategoryCFD))
	draft := liveDeal("b", model.CategoryCFD)
	draft.Status = model.StatusDraft
	env.store.put(draft)

	res, err := call[ListDealsRequest, ListDealsResponse](t, env, DealServiceListDeals,
		&ListDealsRequest{Status: model.StatusPublished})
	require.NoError(t, err)
	require.Len(t, res.Deals, 1)
	assert.Equal(t, "a", res.Deals[0].ID)

	_, err = call[ListDealsRequest, ListDealsResponse](t, env, DealServiceListDeals,
		&ListDealsRequest{SourceType: model.SourceAdmin, Status: model.StatusApproved})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestListFirms(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"Topstep", "Apex"} {
		_, err := call[CreateFirmRequest, FirmResponse](t, env, DealServiceCreateFirm,
			&CreateFirmRequest{Firm: model.Firm{Name: name}})
		require.NoError(t, err)
	}

	res, err := call[ListFirmsRequest, ListFirmsResponse](t, env, DealServiceListFirms, &ListFirmsRequest{})
	require.NoError(t, err)
	require.Len(t, res.Firms, 2)
	assert.Equal(t, "Apex", res.Firms[0].Name)

	_, err = call[CreateFirmRequest, FirmResponse](t, env, DealServiceCreateFirm,
		&CreateFirmRequest{Firm: model.Firm{Name: "Bad", LogoURL: "not a url"}})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}
