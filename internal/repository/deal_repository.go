package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/kkkkikiki/dealswipe/internal/model"
	"github.com/kkkkikiki/dealswipe/internal/normalize"
)

const dealColumns = `id, firm_id, title, description, category, merchant_name,
	discount_type, discount_percentage, discount_text, coupon_code, affiliate_link,
	image_url, terms, start_date, end_date, status, button_config, has_verification_badge,
	background_image_url, background_position, background_blur, created_at, updated_at`

// DealRepository handles admin-authored deals in the deals table
type DealRepository struct{}

// NewDealRepository creates a new deal repository
func NewDealRepository() *DealRepository {
	return &DealRepository{}
}

// ListLive returns published rows that have not ended at now, newest first.
// Rows without an end date are included; the normalizer assigns one.
func (r *DealRepository) ListLive(ctx context.Context, db DBExecutor, now time.Time) ([]normalize.Record, error) {
	query := `
		SELECT ` + dealColumns + `
		FROM deals
		WHERE status = 'published' AND (end_date IS NULL OR end_date > $1)
		ORDER BY created_at DESC, id
	`
	records, err := queryRecords(ctx, db, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list live deals: %w", err)
	}
	return records, nil
}

// List returns every admin row, optionally restricted to one status
func (r *DealRepository) List(ctx context.Context, db DBExecutor, status model.Status) ([]normalize.Record, error) {
	query := `
		SELECT ` + dealColumns + `
		FROM deals
		WHERE ($1::text = '' OR status = $1::text)
		ORDER BY created_at DESC, id
	`
	records, err := queryRecords(ctx, db, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	return records, nil
}

// Get retrieves one raw row by ID
func (r *DealRepository) Get(ctx context.Context, db DBExecutor, id string) (normalize.Record, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1`

	records, err := queryRecords(ctx, db, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("deal %s: %w", id, model.ErrNotFound)
	}
	return records[0], nil
}

// Create inserts a new admin deal
func (r *DealRepository) Create(ctx context.Context, db DBExecutor, d *model.Deal) error {
	query := `
		INSERT INTO deals (` + dealColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`

	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now

	bgImage, bgPosition, bgBlur := backgroundArgs(d.Background)
	_, err := db.ExecContext(ctx, query,
		d.ID, nullIfEmpty(d.FirmID), d.Title, d.Description, string(d.Category), d.MerchantName,
		string(d.Discount.Kind), nullIfZero(d.Discount.LegacyPercentage()), discountText(d.Discount),
		d.CouponCode, d.AffiliateLink, nullIfEmpty(d.ImageURL), nullIfEmpty(d.Terms),
		nullTime(d.Window.Start), nullTime(d.Window.End), string(d.Status), nullIfEmpty(string(d.ButtonConfig)),
		d.HasVerificationBadge, bgImage, bgPosition, bgBlur, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create deal: %w", classify(err))
	}
	return nil
}

// Update rewrites every mutable column of an admin deal
func (r *DealRepository) Update(ctx context.Context, db DBExecutor, d *model.Deal) error {
	query := `
		UPDATE deals SET
			firm_id = $2, title = $3, description = $4, category = $5, merchant_name = $6,
			discount_type = $7, discount_percentage = $8, discount_text = $9, coupon_code = $10,
			affiliate_link = $11, image_url = $12, terms = $13, start_date = $14, end_date = $15,
			status = $16, button_config = $17, has_verification_badge = $18,
			background_image_url = $19, background_position = $20, background_blur = $21,
			updated_at = $22
		WHERE id = $1
	`

	d.UpdatedAt = time.Now()
	bgImage, bgPosition, bgBlur := backgroundArgs(d.Background)
	result, err := db.ExecContext(ctx, query,
		d.ID, nullIfEmpty(d.FirmID), d.Title, d.Description, string(d.Category), d.MerchantName,
		string(d.Discount.Kind), nullIfZero(d.Discount.LegacyPercentage()), discountText(d.Discount),
		d.CouponCode, d.AffiliateLink, nullIfEmpty(d.ImageURL), nullIfEmpty(d.Terms),
		nullTime(d.Window.Start), nullTime(d.Window.End), string(d.Status), nullIfEmpty(string(d.ButtonConfig)),
		d.HasVerificationBadge, bgImage, bgPosition, bgBlur, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update deal: %w", classify(err))
	}
	return expectOneRow(result, "deal", d.ID)
}

// discountText is the human-readable discount column. Free deals keep
// their own label so it survives a round trip.
func discountText(d model.Discount) string {
	if d.Kind == model.DiscountFree && d.Label != "" {
		return d.Label
	}
	return d.Display()
}

func backgroundArgs(bg *model.Background) (image, position, blur interface{}) {
	if bg == nil {
		return nil, nil, nil
	}
	return nullIfEmpty(bg.ImageURL), nullIfEmpty(bg.Position), bg.BlurPx
}
