package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/kkkkikiki/dealswipe/internal/model"
	"github.com/kkkkikiki/dealswipe/internal/telemetry"
)

// TelemetryServer exposes session and action capture. A missing backend is
// reported in the response body, never as an RPC error.
type TelemetryServer struct {
	tracker *telemetry.Tracker
	feeds   *FeedServer
}

// TelemetryOption configures a TelemetryServer
type TelemetryOption func(*TelemetryServer)

// WithFeeds evicts the caller's feed when its session ends
func WithFeeds(feeds *FeedServer) TelemetryOption {
	return func(s *TelemetryServer) { s.feeds = feeds }
}

// NewTelemetryServer creates a new TelemetryServer instance
func NewTelemetryServer(tracker *telemetry.Tracker, opts ...TelemetryOption) *TelemetryServer {
	s := &TelemetryServer{tracker: tracker}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartSession issues a session id and classifies the caller
func (s *TelemetryServer) StartSession(
	ctx context.Context,
	req *connect.Request[StartSessionRequest],
) (*connect.Response[StartSessionResponse], error) {
	client := clientFrom(req.Header(), req.Peer(), req.Msg.Timezone, req.Msg.Language)
	id, err := s.tracker.StartSession(ctx, req.Msg.UserID, client)

	res := &StartSessionResponse{SessionID: id}
	if meta, ok := s.tracker.Session(id); ok {
		res.Country = meta.Location.Country
		res.CountryCode = meta.Location.CountryCode
		res.DeviceType = meta.Device.DeviceType
		res.Browser = meta.Device.Browser
		res.OS = meta.Device.OS
	}
	if d, ok := telemetry.AsDegraded(err); ok {
		res.Error = d
	}
	return connect.NewResponse(res), nil
}

// TrackAction records one action synchronously
func (s *TelemetryServer) TrackAction(
	ctx context.Context,
	req *connect.Request[TrackActionRequest],
) (*connect.Response[TrackActionResponse], error) {
	err := s.tracker.Track(ctx, telemetry.Event{
		Action:    req.Msg.ActionType,
		UserID:    req.Msg.UserID,
		SessionID: req.Msg.SessionID,
		DealID:    req.Msg.DealID,
		FirmID:    req.Msg.FirmID,
		Data:      req.Msg.ActionData,
		Client:    clientFrom(req.Header(), req.Peer(), req.Msg.Timezone, req.Msg.Language),
	})
	if d, ok := telemetry.AsDegraded(err); ok {
		return connect.NewResponse(&TrackActionResponse{Error: d}), nil
	}
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&TrackActionResponse{}), nil
}

// EndSession stamps the session end time and releases the in-memory state
// held for the session
func (s *TelemetryServer) EndSession(
	ctx context.Context,
	req *connect.Request[EndSessionRequest],
) (*connect.Response[EndSessionResponse], error) {
	if req.Msg.SessionID == "" {
		return nil, toConnectError(&model.ValidationError{Field: "session_id", Reason: "is required"})
	}
	s.tracker.EndSession(ctx, req.Msg.SessionID)
	if s.feeds != nil {
		s.feeds.Drop(req.Msg.UserID, req.Msg.SessionID)
	}
	return connect.NewResponse(&EndSessionResponse{}), nil
}

// AnalyticsServer exposes the aggregate telemetry views
type AnalyticsServer struct {
	analytics *telemetry.Analytics
}

// NewAnalyticsServer creates a new AnalyticsServer instance
func NewAnalyticsServer(analytics *telemetry.Analytics) *AnalyticsServer {
	return &AnalyticsServer{analytics: analytics}
}

func (s *AnalyticsServer) DashboardOverview(
	ctx context.Context,
	req *connect.Request[AnalyticsRequest],
) (*connect.Response[AnalyticsResponse[*model.DashboardOverview]], error) {
	rows, err := s.analytics.DashboardOverview(ctx)
	return analyticsResponse(rows, err)
}

func (s *AnalyticsServer) DealPerformance(
	ctx context.Context,
	req *connect.Request[AnalyticsRequest],
) (*connect.Response[AnalyticsResponse[[]model.DealPerformance]], error) {
	rows, err := s.analytics.DealPerformance(ctx, req.Msg.Limit)
	return analyticsResponse(rows, err)
}

func (s *AnalyticsServer) UserBehavior(
	ctx context.Context,
	req *connect.Request[AnalyticsRequest],
) (*connect.Response[AnalyticsResponse[[]model.UserBehavior]], error) {
	rows, err := s.analytics.UserBehavior(ctx, req.Msg.Limit)
	return analyticsResponse(rows, err)
}

func (s *AnalyticsServer) CountryDistribution(
	ctx context.Context,
	req *connect.Request[AnalyticsRequest],
) (*connect.Response[AnalyticsResponse[[]model.CountryDistribution]], error) {
	rows, err := s.analytics.CountryDistribution(ctx)
	return analyticsResponse(rows, err)
}

func (s *AnalyticsServer) FirmPerformance(
	ctx context.Context,
	req *connect.Request[AnalyticsRequest],
) (*connect.Response[AnalyticsResponse[[]model.FirmPerformance]], error) {
	rows, err := s.analytics.FirmPerformance(ctx)
	return analyticsResponse(rows, err)
}

func analyticsResponse[T any](data T, err error) (*connect.Response[AnalyticsResponse[T]], error) {
	if d, ok := telemetry.AsDegraded(err); ok {
		return connect.NewResponse(&AnalyticsResponse[T]{Data: data, Error: d}), nil
	}
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&AnalyticsResponse[T]{Data: data}), nil
}
