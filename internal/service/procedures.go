package service

// Procedure paths served by the handlers and used by clients
const (
	DealServiceCreateDeal        = "/dealswipe.v1.DealService/CreateDeal"
	DealServiceSubmitPartnerDeal = "/dealswipe.v1.DealService/SubmitPartnerDeal"
	DealServiceUpdateDeal        = "/dealswipe.v1.DealService/UpdateDeal"
	DealServiceGetDeal           = "/dealswipe.v1.DealService/GetDeal"
	DealServiceListDeals         = "/dealswipe.v1.DealService/ListDeals"
	DealServiceSetDealStatus     = "/dealswipe.v1.DealService/SetDealStatus"
	DealServiceCreateFirm        = "/dealswipe.v1.DealService/CreateFirm"
	DealServiceListFirms         = "/dealswipe.v1.DealService/ListFirms"

	FeedServiceLoadFeed  = "/dealswipe.v1.FeedService/LoadFeed"
	FeedServiceGesture   = "/dealswipe.v1.FeedService/Gesture"
	FeedServiceListSaved = "/dealswipe.v1.FeedService/ListSaved"

	TelemetryServiceStartSession = "/dealswipe.v1.TelemetryService/StartSession"
	TelemetryServiceTrackAction  = "/dealswipe.v1.TelemetryService/TrackAction"
	TelemetryServiceEndSession   = "/dealswipe.v1.TelemetryService/EndSession"

	AnalyticsServiceDashboardOverview   = "/dealswipe.v1.AnalyticsService/DashboardOverview"
	AnalyticsServiceDealPerformance     = "/dealswipe.v1.AnalyticsService/DealPerformance"
	AnalyticsServiceUserBehavior        = "/dealswipe.v1.AnalyticsService/UserBehavior"
	AnalyticsServiceCountryDistribution = "/dealswipe.v1.AnalyticsService/CountryDistribution"
	AnalyticsServiceFirmPerformance     = "/dealswipe.v1.AnalyticsService/FirmPerformance"
)
