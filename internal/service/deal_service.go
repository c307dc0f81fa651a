package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/kkkkikiki/dealswipe/internal/buttons"
	"github.com/kkkkikiki/dealswipe/internal/lifecycle"
	"github.com/kkkkikiki/dealswipe/internal/model"
	"github.com/kkkkikiki/dealswipe/internal/normalize"
	"github.com/kkkkikiki/dealswipe/internal/validator"
)

// DealStore is the persistence the deal service needs
type DealStore interface {
	ListDeals(ctx context.Context, source model.SourceType, status model.Status) ([]model.Deal, error)
	GetDeal(ctx context.Context, id string) (*model.Deal, error)
	CreateDeal(ctx context.Context, d *model.Deal) (*model.Deal, error)
	CreatePartnerDeal(ctx context.Context, d *model.Deal) (*model.Deal, error)
	UpdateDeal(ctx context.Context, d *model.Deal) (*model.Deal, error)
	SetPartnerDealStatus(ctx context.Context, id string, status model.Status) (*model.Deal, error)
	GetFirm(ctx context.Context, id string) (*model.Firm, error)
	CreateFirm(ctx context.Context, firm *model.Firm) error
	ListFirms(ctx context.Context) ([]model.Firm, error)
}

// DealServer implements the admin and partner deal console
type DealServer struct {
	store      DealStore
	normalizer *normalize.Normalizer
	validator  *validator.Validator
	logger     *slog.Logger
	now        func() time.Time
}

// NewDealServer creates a new DealServer instance
func NewDealServer(store DealStore, normalizer *normalize.Normalizer, logger *slog.Logger) *DealServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &DealServer{
		store:      store,
		normalizer: normalizer,
		validator:  validator.New(),
		logger:     logger,
		now:        time.Now,
	}
}

// CreateDeal creates an admin deal in draft
func (s *DealServer) CreateDeal(
	ctx context.Context,
	req *connect.Request[CreateDealRequest],
) (*connect.Response[DealResponse], error) {
	d, err := s.buildDeal(ctx, &req.Msg.Deal, uuid.NewString(), model.SourceAdmin)
	if err != nil {
		return nil, toConnectError(err)
	}
	d.Status = lifecycle.Initial(model.SourceAdmin)
	if err := s.validator.ValidateDeal(d); err != nil {
		return nil, toConnectError(err)
	}

	created, err := s.store.CreateDeal(ctx, d)
	if err != nil {
		return nil, toConnectError(fmt.Errorf("failed to create deal: %w", err))
	}
	s.logger.Info("deal created", "deal_id", created.ID, "category", created.Category)
	return connect.NewResponse(&DealResponse{Deal: newDealView(created)}), nil
}

// SubmitPartnerDeal queues a partner submission for approval
func (s *DealServer) SubmitPartnerDeal(
	ctx context.Context,
	req *connect.Request[SubmitPartnerDealRequest],
) (*connect.Response[DealResponse], error) {
	d, err := s.buildDeal(ctx, &req.Msg.Deal, uuid.NewString(), model.SourcePartner)
	if err != nil {
		return nil, toConnectError(err)
	}
	d.Status = lifecycle.Initial(model.SourcePartner)
	if err := s.validator.ValidateDeal(d); err != nil {
		return nil, toConnectError(err)
	}

	created, err := s.store.CreatePartnerDeal(ctx, d)
	if err != nil {
		return nil, toConnectError(fmt.Errorf("failed to submit partner deal: %w", err))
	}
	s.logger.Info("partner deal submitted", "deal_id", created.ID, "firm_id", created.FirmID)
	return connect.NewResponse(&DealResponse{Deal: newDealView(created)}), nil
}

// UpdateDeal replaces the editable fields of a deal. Editing a rejected
// partner deal sends it back for approval.
func (s *DealServer) UpdateDeal(
	ctx context.Context,
	req *connect.Request[UpdateDealRequest],
) (*connect.Response[DealResponse], error) {
	existing, err := s.store.GetDeal(ctx, req.Msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	in := req.Msg.Deal
	if in.StartDate == nil {
		in.StartDate = &existing.Window.Start
	}
	if in.EndDate == nil {
		in.EndDate = &existing.Window.End
	}
	d, err := s.buildDeal(ctx, &in, existing.ID, existing.SourceType)
	if err != nil {
		return nil, toConnectError(err)
	}
	d.Status = existing.Status
	d.CreatedAt = existing.CreatedAt
	lifecycle.Resubmit(d, s.now())
	if err := s.validator.ValidateDeal(d); err != nil {
		return nil, toConnectError(err)
	}

	updated, err := s.store.UpdateDeal(ctx, d)
	if err != nil {
		return nil, toConnectError(fmt.Errorf("failed to update deal: %w", err))
	}
	if existing.Status != updated.Status {
		s.logger.Info("deal resubmitted", "deal_id", updated.ID, "from", existing.Status, "to", updated.Status)
	}
	return connect.NewResponse(&DealResponse{Deal: newDealView(updated)}), nil
}

// GetDeal returns a deal with its admin diagnostics
func (s *DealServer) GetDeal(
	ctx context.Context,
	req *connect.Request[GetDealRequest],
) (*connect.Response[GetDealResponse], error) {
	d, err := s.store.GetDeal(ctx, req.Msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	var firm *model.Firm
	if d.FirmID != "" {
		firm, err = s.store.GetFirm(ctx, d.FirmID)
		if err != nil {
			if !errors.Is(err, model.ErrNotFound) {
				s.logger.Warn("failed to load firm for diagnostics", "deal_id", d.ID, "firm_id", d.FirmID, "error", err)
			}
			firm = nil
		}
	}

	return connect.NewResponse(&GetDealResponse{
		Deal:        newDealView(d),
		Diagnostics: newDiagnostics(d, firm, s.now()),
	}), nil
}

// ListDeals lists the deals of one source, optionally by status
func (s *DealServer) ListDeals(
	ctx context.Context,
	req *connect.Request[ListDealsRequest],
) (*connect.Response[ListDealsResponse], error) {
	source := req.Msg.SourceType
	if source == "" {
		source = model.SourceAdmin
	}
	if source != model.SourceAdmin && source != model.SourcePartner {
		return nil, toConnectError(&model.ValidationError{Field: "source_type", Reason: "must be admin or partner"})
	}
	if req.Msg.Status != "" && !lifecycle.Valid(source, req.Msg.Status) {
		return nil, toConnectError(&model.ValidationError{Field: "status", Reason: fmt.Sprintf("is not a %s status", source)})
	}

	deals, err := s.store.ListDeals(ctx, source, req.Msg.Status)
	if err != nil {
		return nil, toConnectError(fmt.Errorf("failed to list deals: %w", err))
	}
	return connect.NewResponse(&ListDealsResponse{Deals: newDealViews(deals)}), nil
}

// SetDealStatus moves a deal through the state machine of its source
func (s *DealServer) SetDealStatus(
	ctx context.Context,
	req *connect.Request[SetDealStatusRequest],
) (*connect.Response[DealResponse], error) {
	d, err := s.store.GetDeal(ctx, req.Msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	from := d.Status

	if d.SourceType == model.SourcePartner {
		d, err = s.store.SetPartnerDealStatus(ctx, d.ID, req.Msg.Status)
		if err != nil {
			return nil, toConnectError(err)
		}
	} else {
		if err := lifecycle.Transition(d, req.Msg.Status, s.now()); err != nil {
			return nil, toConnectError(err)
		}
		d, err = s.store.UpdateDeal(ctx, d)
		if err != nil {
			return nil, toConnectError(fmt.Errorf("failed to update deal status: %w", err))
		}
	}

	s.logger.Info("deal status changed", "deal_id", d.ID, "source", d.SourceType, "from", from, "to", d.Status)
	return connect.NewResponse(&DealResponse{Deal: newDealView(d)}), nil
}

// CreateFirm registers a firm
func (s *DealServer) CreateFirm(
	ctx context.Context,
	req *connect.Request[CreateFirmRequest],
) (*connect.Response[FirmResponse], error) {
	firm := req.Msg.Firm
	if firm.ID == "" {
		firm.ID = uuid.NewString()
	}
	if firm.Status == "" {
		firm.Status = model.FirmActive
	}
	firm.DefaultCouponCode = model.NormalizeCouponCode(firm.DefaultCouponCode)
	if err := s.validator.ValidateStruct(&firm); err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.CreateFirm(ctx, &firm); err != nil {
		return nil, toConnectError(fmt.Errorf("failed to create firm: %w", err))
	}
	return connect.NewResponse(&FirmResponse{Firm: firm}), nil
}

// ListFirms lists every firm
func (s *DealServer) ListFirms(
	ctx context.Context,
	req *connect.Request[ListFirmsRequest],
) (*connect.Response[ListFirmsResponse], error) {
	firms, err := s.store.ListFirms(ctx)
	if err != nil {
		return nil, toConnectError(fmt.Errorf("failed to list firms: %w", err))
	}
	return connect.NewResponse(&ListFirmsResponse{Firms: firms}), nil
}

// buildDeal normalizes input, applies firm defaults and stores the
// effective button configuration.
func (s *DealServer) buildDeal(ctx context.Context, in *DealInput, id string, source model.SourceType) (*model.Deal, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	d, err := s.normalizer.Deal(in.record(id), source)
	if err != nil {
		return nil, err
	}

	if d.FirmID != "" {
		firm, err := s.store.GetFirm(ctx, d.FirmID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil, &model.ValidationError{Field: "firm_id", Reason: "does not exist"}
			}
			return nil, fmt.Errorf("failed to load firm: %w", err)
		}
		normalize.ApplyFirmDefaults(d, firm)
	}

	d.ButtonConfig = buttons.Prefill(d, s.logger)
	return d, nil
}
