package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/kkkkikiki/dealswipe/internal/model"
	"github.com/kkkkikiki/dealswipe/internal/normalize"
)

// partner submissions use their own column names; the normalizer's alias
// table maps them onto the canonical deal
const partnerDealColumns = `id, company_id, deal_title, deal_description, deal_category, company_name,
	type_of_discount, percent_off, discount_amount, promo_code, deal_url, logo_url,
	terms_conditions, valid_from, valid_until, approval_status, buttons, verified,
	submitted_at, updated_at`

// PartnerDealRepository handles partner-submitted deals
type PartnerDealRepository struct{}

// NewPartnerDealRepository creates a new partner deal repository
func NewPartnerDealRepository() *PartnerDealRepository {
	return &PartnerDealRepository{}
}

// ListLive returns approved rows that have not ended at now, newest first
func (r *PartnerDealRepository) ListLive(ctx context.Context, db DBExecutor, now time.Time) ([]normalize.Record, error) {
	query := `
		SELECT ` + partnerDealColumns + `
		FROM partner_deals
		WHERE approval_status = 'approved' AND (valid_until IS NULL OR valid_until > $1)
		ORDER BY submitted_at DESC, id
	`
	records, err := queryRecords(ctx, db, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list live partner deals: %w", err)
	}
	return records, nil
}

// List returns partner rows, optionally restricted to one status
func (r *PartnerDealRepository) List(ctx context.Context, db DBExecutor, status model.Status) ([]normalize.Record, error) {
	query := `
		SELECT ` + partnerDealColumns + `
		FROM partner_deals
		WHERE ($1::text = '' OR approval_status = $1::text)
		ORDER BY submitted_at DESC, id
	`
	records, err := queryRecords(ctx, db, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list partner deals: %w", err)
	}
	return records, nil
}

// Get retrieves one raw row by ID
func (r *PartnerDealRepository) Get(ctx context.Context, db DBExecutor, id string) (normalize.Record, error) {
	query := `SELECT ` + partnerDealColumns + ` FROM partner_deals WHERE id = $1`

	records, err := queryRecords(ctx, db, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get partner deal: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("partner deal %s: %w", id, model.ErrNotFound)
	}
	return records[0], nil
}

// Create inserts a partner submission
func (r *PartnerDealRepository) Create(ctx context.Context, db DBExecutor, d *model.Deal) error {
	query := `
		INSERT INTO partner_deals (` + partnerDealColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now

	_, err := db.ExecContext(ctx, query,
		d.ID, nullIfEmpty(d.FirmID), d.Title, d.Description, string(d.Category), d.MerchantName,
		string(d.Discount.Kind), nullIfZero(d.Discount.LegacyPercentage()), discountText(d.Discount),
		d.CouponCode, d.AffiliateLink, nullIfEmpty(d.ImageURL), nullIfEmpty(d.Terms),
		nullTime(d.Window.Start), nullTime(d.Window.End), string(d.Status),
		nullIfEmpty(string(d.ButtonConfig)), d.HasVerificationBadge, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create partner deal: %w", classify(err))
	}
	return nil
}

// Update rewrites the editable columns of a partner deal, status included
func (r *PartnerDealRepository) Update(ctx context.Context, db DBExecutor, d *model.Deal) error {
	query := `
		UPDATE partner_deals SET
			company_id = $2, deal_title = $3, deal_description = $4, deal_category = $5,
			company_name = $6, type_of_discount = $7, percent_off = $8, discount_amount = $9,
			promo_code = $10, deal_url = $11, logo_url = $12, terms_conditions = $13,
			valid_from = $14, valid_until = $15, approval_status = $16, buttons = $17,
			verified = $18, updated_at = $19
		WHERE id = $1
	`

	d.UpdatedAt = time.Now()
	result, err := db.ExecContext(ctx, query,
		d.ID, nullIfEmpty(d.FirmID), d.Title, d.Description, string(d.Category), d.MerchantName,
		string(d.Discount.Kind), nullIfZero(d.Discount.LegacyPercentage()), discountText(d.Discount),
		d.CouponCode, d.AffiliateLink, nullIfEmpty(d.ImageURL), nullIfEmpty(d.Terms),
		nullTime(d.Window.Start), nullTime(d.Window.End), string(d.Status),
		nullIfEmpty(string(d.ButtonConfig)), d.HasVerificationBadge, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update partner deal: %w", classify(err))
	}
	return expectOneRow(result, "partner deal", d.ID)
}

// SetStatus updates approval_status only
func (r *PartnerDealRepository) SetStatus(ctx context.Context, db DBExecutor, id string, status model.Status) error {
	query := `
		UPDATE partner_deals
		SET approval_status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := db.ExecContext(ctx, query, string(status), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set partner deal status: %w", classify(err))
	}
	return expectOneRow(result, "partner deal", id)
}
