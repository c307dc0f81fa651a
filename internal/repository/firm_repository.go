package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kkkkikiki/dealswipe/internal/model"
)

// FirmRepository handles firm data operations
type FirmRepository struct{}

// NewFirmRepository creates a new firm repository
func NewFirmRepository() *FirmRepository {
	return &FirmRepository{}
}

// CreateFirm inserts a new firm
func (r *FirmRepository) CreateFirm(ctx context.Context, db DBExecutor, firm *model.Firm) error {
	query := `
		INSERT INTO firms (id, name, logo_url, default_affiliate_link, default_coupon_code, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	now := time.Now()
	firm.CreatedAt = now
	firm.UpdatedAt = now

	_, err := db.ExecContext(ctx, query,
		firm.ID, firm.Name, firm.LogoURL, firm.DefaultAffiliateLink, firm.DefaultCouponCode,
		string(firm.Status), firm.CreatedAt, firm.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create firm: %w", classify(err))
	}
	return nil
}

// GetFirm retrieves a firm by ID
func (r *FirmRepository) GetFirm(ctx context.Context, db DBExecutor, id string) (*model.Firm, error) {
	query := `
		SELECT id, name, logo_url, default_affiliate_link, default_coupon_code, status, created_at, updated_at
		FROM firms
		WHERE id = $1
	`

	var firm model.Firm
	err := db.GetContext(ctx, &firm, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("firm %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get firm: %w", classify(err))
	}
	return &firm, nil
}

// ListFirms returns every firm ordered by name
func (r *FirmRepository) ListFirms(ctx context.Context, db DBExecutor) ([]model.Firm, error) {
	query := `
		SELECT id, name, logo_url, default_affiliate_link, default_coupon_code, status, created_at, updated_at
		FROM firms
		ORDER BY name
	`

	var firms []model.Firm
	if err := db.SelectContext(ctx, &firms, query); err != nil {
		return nil, fmt.Errorf("failed to list firms: %w", classify(err))
	}
	return firms, nil
}
