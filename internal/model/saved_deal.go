package model

import "time"

// SavedDeal represents a deal a user swiped right on or saved
type SavedDeal struct {
	UserID    string    `db:"user_id" json:"user_id"`
	DealID    string    `db:"deal_id" json:"deal_id"`
	IsClaimed bool      `db:"is_claimed" json:"is_claimed"`
	SavedAt   time.Time `db:"saved_at" json:"saved_at"`
}
