package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/kkkkikiki/dealswipe/internal/model"
)

// SavedDealRepository handles the (user, deal) saved relation
type SavedDealRepository struct{}

// NewSavedDealRepository creates a new saved deal repository
func NewSavedDealRepository() *SavedDealRepository {
	return &SavedDealRepository{}
}

// Save upserts a saved deal. Re-saving never duplicates the row and never
// turns a claimed entry back into an unclaimed one.
func (r *SavedDealRepository) Save(ctx context.Context, db DBExecutor, s *model.SavedDeal) error {
	query := `
		INSERT INTO saved_deals (user_id, deal_id, is_claimed, saved_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, deal_id)
		DO UPDATE SET is_claimed = saved_deals.is_claimed OR EXCLUDED.is_claimed
		RETURNING is_claimed, saved_at
	`

	if s.SavedAt.IsZero() {
		s.SavedAt = time.Now()
	}

	var stored model.SavedDeal
	err := db.GetContext(ctx, &stored, query, s.UserID, s.DealID, s.IsClaimed, s.SavedAt)
	if err != nil {
		return fmt.Errorf("failed to save deal: %w", classify(err))
	}
	s.IsClaimed = stored.IsClaimed
	s.SavedAt = stored.SavedAt
	return nil
}

// List returns the saved deals of a user, oldest first
func (r *SavedDealRepository) List(ctx context.Context, db DBExecutor, userID string) ([]model.SavedDeal, error) {
	query := `
		SELECT user_id, deal_id, is_claimed, saved_at
		FROM saved_deals
		WHERE user_id = $1
		ORDER BY saved_at ASC
	`

	var saved []model.SavedDeal
	if err := db.SelectContext(ctx, &saved, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list saved deals: %w", classify(err))
	}
	return saved, nil
}

// Remove deletes a saved deal
func (r *SavedDealRepository) Remove(ctx context.Context, db DBExecutor, userID, dealID string) error {
	query := `DELETE FROM saved_deals WHERE user_id = $1 AND deal_id = $2`

	result, err := db.ExecContext(ctx, query, userID, dealID)
	if err != nil {
		return fmt.Errorf("failed to remove saved deal: %w", classify(err))
	}
	return expectOneRow(result, "saved deal", dealID)
}
