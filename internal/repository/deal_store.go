package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kkkkikiki/dealswipe/internal/lifecycle"
	"github.com/kkkkikiki/dealswipe/internal/model"
	"github.com/kkkkikiki/dealswipe/internal/normalize"
)

// DealStore is the deal store collaborator backed by PostgreSQL. Raw rows
// from both deal tables are normalized here, at the store boundary.
type DealStore struct {
	postgres    *sqlx.DB
	normalizer  *normalize.Normalizer
	logger      *slog.Logger
	dealRepo    *DealRepository
	partnerRepo *PartnerDealRepository
	firmRepo    *FirmRepository
	savedRepo   *SavedDealRepository
}

// NewDealStore creates a deal store
func NewDealStore(postgres *sqlx.DB, normalizer *normalize.Normalizer, logger *slog.Logger) *DealStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &DealStore{
		postgres:    postgres,
		normalizer:  normalizer,
		logger:      logger,
		dealRepo:    NewDealRepository(),
		partnerRepo: NewPartnerDealRepository(),
		firmRepo:    NewFirmRepository(),
		savedRepo:   NewSavedDealRepository(),
	}
}

// ListFeedEligibleDeals returns admin then partner deals that may be shown
// now, optionally restricted to one category. Rows that fail to normalize
// are logged and skipped.
func (s *DealStore) ListFeedEligibleDeals(ctx context.Context, category model.Category) ([]model.Deal, error) {
	now := time.Now()

	adminRows, err := s.dealRepo.ListLive(ctx, s.postgres, now)
	if err != nil {
		return nil, err
	}
	partnerRows, err := s.partnerRepo.ListLive(ctx, s.postgres, now)
	if err != nil {
		return nil, err
	}

	deals := make([]model.Deal, 0, len(adminRows)+len(partnerRows))
	deals = s.appendEligible(deals, adminRows, model.SourceAdmin, category, now)
	deals = s.appendEligible(deals, partnerRows, model.SourcePartner, category, now)
	return deals, nil
}

func (s *DealStore) appendEligible(deals []model.Deal, rows []normalize.Record, source model.SourceType, category model.Category, now time.Time) []model.Deal {
	for _, rec := range rows {
		d, err := s.normalizer.Deal(rec, source)
		if err != nil {
			s.logger.Warn("skipping malformed deal row", "source", source, "id", rec.String(normalize.FieldID), "error", err)
			continue
		}
		if !lifecycle.FeedEligible(d, now) {
			continue
		}
		if category != "" && category != model.CategoryAll && d.Category != category {
			continue
		}
		deals = append(deals, *d)
	}
	return deals
}

// ListDeals returns deals of one source, optionally filtered by status
func (s *DealStore) ListDeals(ctx context.Context, source model.SourceType, status model.Status) ([]model.Deal, error) {
	var (
		rows []normalize.Record
		err  error
	)
	switch source {
	case model.SourcePartner:
		rows, err = s.partnerRepo.List(ctx, s.postgres, status)
	default:
		rows, err = s.dealRepo.List(ctx, s.postgres, status)
		source = model.SourceAdmin
	}
	if err != nil {
		return nil, err
	}

	deals := make([]model.Deal, 0, len(rows))
	for _, rec := range rows {
		d, err := s.normalizer.Deal(rec, source)
		if err != nil {
			s.logger.Warn("skipping malformed deal row", "source", source, "id", rec.String(normalize.FieldID), "error", err)
			continue
		}
		deals = append(deals, *d)
	}
	return deals, nil
}

// GetDeal looks the id up among admin deals, then partner deals
func (s *DealStore) GetDeal(ctx context.Context, id string) (*model.Deal, error) {
	return s.getDeal(ctx, s.postgres, id)
}

func (s *DealStore) getDeal(ctx context.Context, db DBExecutor, id string) (*model.Deal, error) {
	rec, err := s.dealRepo.Get(ctx, db, id)
	if err == nil {
		return s.normalizer.Deal(rec, model.SourceAdmin)
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}
	rec, err = s.partnerRepo.Get(ctx, db, id)
	if err != nil {
		return nil, err
	}
	return s.normalizer.Deal(rec, model.SourcePartner)
}

// CreateDeal inserts an admin deal
func (s *DealStore) CreateDeal(ctx context.Context, d *model.Deal) (*model.Deal, error) {
	if err := s.dealRepo.Create(ctx, s.postgres, d); err != nil {
		return nil, err
	}
	return d, nil
}

// CreatePartnerDeal inserts a partner submission
func (s *DealStore) CreatePartnerDeal(ctx context.Context, d *model.Deal) (*model.Deal, error) {
	if err := s.partnerRepo.Create(ctx, s.postgres, d); err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateDeal writes d to the table of its source
func (s *DealStore) UpdateDeal(ctx context.Context, d *model.Deal) (*model.Deal, error) {
	var err error
	if d.SourceType == model.SourcePartner {
		err = s.partnerRepo.Update(ctx, s.postgres, d)
	} else {
		err = s.dealRepo.Update(ctx, s.postgres, d)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// SetPartnerDealStatus moves a partner deal through its state machine while
// holding the row lock.
func (s *DealStore) SetPartnerDealStatus(ctx context.Context, id string, status model.Status) (*model.Deal, error) {
	tx, err := s.postgres.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", classify(err))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT 1 FROM partner_deals WHERE id = $1 FOR UPDATE`, id); err != nil {
		return nil, fmt.Errorf("failed to lock partner deal: %w", classify(err))
	}
	rec, err := s.partnerRepo.Get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	d, err := s.normalizer.Deal(rec, model.SourcePartner)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Transition(d, status, time.Now()); err != nil {
		return nil, err
	}
	if err := s.partnerRepo.SetStatus(ctx, tx, id, status); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return d, nil
}

// GetFirm retrieves a firm
func (s *DealStore) GetFirm(ctx context.Context, id string) (*model.Firm, error) {
	return s.firmRepo.GetFirm(ctx, s.postgres, id)
}

// CreateFirm inserts a firm
func (s *DealStore) CreateFirm(ctx context.Context, firm *model.Firm) error {
	return s.firmRepo.CreateFirm(ctx, s.postgres, firm)
}

// ListFirms returns every firm
func (s *DealStore) ListFirms(ctx context.Context) ([]model.Firm, error) {
	return s.firmRepo.ListFirms(ctx, s.postgres)
}

// ListSaved returns the saved deals of a user
func (s *DealStore) ListSaved(ctx context.Context, userID string) ([]model.SavedDeal, error) {
	return s.savedRepo.List(ctx, s.postgres, userID)
}

// SaveDeal upserts a saved deal
func (s *DealStore) SaveDeal(ctx context.Context, saved *model.SavedDeal) error {
	return s.savedRepo.Save(ctx, s.postgres, saved)
}

// RemoveSaved deletes a saved deal
func (s *DealStore) RemoveSaved(ctx context.Context, userID, dealID string) error {
	return s.savedRepo.Remove(ctx, s.postgres, userID, dealID)
}
