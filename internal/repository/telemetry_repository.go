package repository

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/kkkkikiki/dealswipe/internal/model"
)

// TelemetryRepository persists sessions and actions
type TelemetryRepository struct {
	db DBExecutor
}

// NewTelemetryRepository creates a new telemetry repository
func NewTelemetryRepository(db DBExecutor) *TelemetryRepository {
	return &TelemetryRepository{db: db}
}

// SessionExists reports whether the session table is provisioned
func (r *TelemetryRepository) SessionExists(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT to_regclass('public.user_sessions') IS NOT NULL`)
	if err != nil {
		return false, fmt.Errorf("failed to probe session table: %w", classify(err))
	}
	return exists, nil
}

// InsertSession creates a session row
func (r *TelemetryRepository) InsertSession(ctx context.Context, s *model.Session) error {
	query := `
		INSERT INTO user_sessions (session_id, user_id, ip_address, country, country_code,
			device_type, browser, os, user_agent, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.IPAddress, s.Country, s.CountryCode,
		s.DeviceType, s.Browser, s.OS, s.UserAgent, s.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", classify(err))
	}
	return nil
}

// UpdateSessionEnd stamps ended_at
func (r *TelemetryRepository) UpdateSessionEnd(ctx context.Context, sessionID string, endedAt time.Time) error {
	query := `UPDATE user_sessions SET ended_at = $1 WHERE session_id = $2`

	result, err := r.db.ExecContext(ctx, query, endedAt, sessionID)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", classify(err))
	}
	return expectOneRow(result, "session", sessionID)
}

// GetSession reads a session with its counters
func (r *TelemetryRepository) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	query := `
		SELECT session_id, user_id, host(ip_address) AS ip_address, country, country_code,
			device_type, browser, os, user_agent, page_views, deals_viewed, swipe_right,
			swipe_left, deals_clicked, affiliate_clicks, started_at, ended_at
		FROM user_sessions
		WHERE session_id = $1
	`

	var s model.Session
	if err := r.db.GetContext(ctx, &s, query, sessionID); err != nil {
		return nil, fmt.Errorf("failed to get session: %w", classify(err))
	}
	return &s, nil
}

// RecordActionEnhanced calls the tracking procedure. A missing procedure
// surfaces as model.ErrProcedureUnavailable.
func (r *TelemetryRepository) RecordActionEnhanced(ctx context.Context, a *model.Action) error {
	query := `
		SELECT track_user_action_enhanced(
			$1::text, $2::text, $3::text, $4::text, $5::text, $6::jsonb, $7::inet,
			$8::text, $9::text, $10::text, $11::text, $12::text, $13::text, $14::timestamptz)
	`

	data, err := encodeActionData(a.ActionData)
	if err != nil {
		return err
	}

	var id int64
	err = r.db.GetContext(ctx, &id, query,
		string(a.ActionType), a.UserID, a.SessionID, a.DealID, a.FirmID, data, a.IPAddress,
		a.Country, a.CountryCode, a.DeviceType, a.Browser, a.OS, a.UserAgent, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record action: %w", classify(err))
	}
	return nil
}

// InsertActionRaw writes the action row directly
func (r *TelemetryRepository) InsertActionRaw(ctx context.Context, a *model.Action) error {
	query := `
		INSERT INTO user_actions (action_type, user_id, session_id, deal_id, firm_id, action_data,
			ip_address, country, country_code, device_type, browser, os, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	data, err := encodeActionData(a.ActionData)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		string(a.ActionType), a.UserID, a.SessionID, a.DealID, a.FirmID, data, a.IPAddress,
		a.Country, a.CountryCode, a.DeviceType, a.Browser, a.OS, a.UserAgent, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert action: %w", classify(err))
	}
	return nil
}

// encodeActionData renders the payload for the JSONB column
func encodeActionData(data map[string]any) (interface{}, error) {
	if len(data) == 0 {
		return nil, nil
	}
	s, err := structpb.NewStruct(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode action data: %w", err)
	}
	b, err := protojson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal action data: %w", err)
	}
	return string(b), nil
}
