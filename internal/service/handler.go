package service

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"

	"github.com/kkkkikiki/dealswipe/internal/metrics"
)

// Servers groups every RPC implementation mounted by Register
type Servers struct {
	Deals     *DealServer
	Feeds     *FeedServer
	Telemetry *TelemetryServer
	Analytics *AnalyticsServer
}

// Register mounts every procedure on mux using the JSON codec
func Register(mux *http.ServeMux, s Servers, opts ...connect.HandlerOption) {
	opts = append([]connect.HandlerOption{
		connect.WithCodec(JSONCodec{}),
		connect.WithInterceptors(MetricsInterceptor()),
	}, opts...)

	if s.Deals != nil {
		handle(mux, DealServiceCreateDeal, s.Deals.CreateDeal, opts)
		handle(mux, DealServiceSubmitPartnerDeal, s.Deals.SubmitPartnerDeal, opts)
		handle(mux, DealServiceUpdateDeal, s.Deals.UpdateDeal, opts)
		handle(mux, DealServiceGetDeal, s.Deals.GetDeal, opts)
		handle(mux, DealServiceListDeals, s.Deals.ListDeals, opts)
		handle(mux, DealServiceSetDealStatus, s.Deals.SetDealStatus, opts)
		handle(mux, DealServiceCreateFirm, s.Deals.CreateFirm, opts)
		handle(mux, DealServiceListFirms, s.Deals.ListFirms, opts)
	}
	if s.Feeds != nil {
		handle(mux, FeedServiceLoadFeed, s.Feeds.LoadFeed, opts)
		handle(mux, FeedServiceGesture, s.Feeds.Gesture, opts)
		handle(mux, FeedServiceListSaved, s.Feeds.ListSaved, opts)
	}
	if s.Telemetry != nil {
		handle(mux, TelemetryServiceStartSession, s.Telemetry.StartSession, opts)
		handle(mux, TelemetryServiceTrackAction, s.Telemetry.TrackAction, opts)
		handle(mux, TelemetryServiceEndSession, s.Telemetry.EndSession, opts)
	}
	if s.Analytics != nil {
		handle(mux, AnalyticsServiceDashboardOverview, s.Analytics.DashboardOverview, opts)
		handle(mux, AnalyticsServiceDealPerformance, s.Analytics.DealPerformance, opts)
		handle(mux, AnalyticsServiceUserBehavior, s.Analytics.UserBehavior, opts)
		handle(mux, AnalyticsServiceCountryDistribution, s.Analytics.CountryDistribution, opts)
		handle(mux, AnalyticsServiceFirmPerformance, s.Analytics.FirmPerformance, opts)
	}
}

func handle[Req, Res any](
	mux *http.ServeMux,
	procedure string,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
	opts []connect.HandlerOption,
) {
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
}

// MetricsInterceptor records the duration and status of every unary call
func MetricsInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			res, err := next(ctx, req)

			status := "ok"
			if err != nil {
				status = connect.CodeOf(err).String()
			}
			metrics.RecordRequestDuration(req.Spec().Procedure, status, time.Since(start).Seconds())
			return res, err
		}
	}
}

// NewClient creates a JSON connect client for one procedure
func NewClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts ...connect.ClientOption) *connect.Client[Req, Res] {
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return connect.NewClient[Req, Res](httpClient, baseURL+procedure, opts...)
}
