package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"connectrpc.com/connect"

	"github.com/kkkkikiki/dealswipe/internal/feed"
	"github.com/kkkkikiki/dealswipe/internal/metrics"
	"github.com/kkkkikiki/dealswipe/internal/model"
	"github.com/kkkkikiki/dealswipe/internal/normalize"
	"github.com/kkkkikiki/dealswipe/internal/sample"
	"github.com/kkkkikiki/dealswipe/internal/telemetry"
)

// FeedStore is the persistence the feed service needs
type FeedStore interface {
	ListFeedEligibleDeals(ctx context.Context, category model.Category) ([]model.Deal, error)
	ListSaved(ctx context.Context, userID string) ([]model.SavedDeal, error)
	SaveDeal(ctx context.Context, saved *model.SavedDeal) error
	RemoveSaved(ctx context.Context, userID, dealID string) error
}

type feedEntry struct {
	mu   sync.Mutex
	feed *feed.Feed

	// guarded by FeedServer.mu
	lastUsed time.Time
}

// DefaultFeedIdleTTL is how long an untouched feed stays in memory
const DefaultFeedIdleTTL = 30 * time.Minute

// FeedServer keeps one feed per user or anonymous session and applies
// gestures to it. Saved-deal writes and telemetry run in the background.
type FeedServer struct {
	store          FeedStore
	normalizer     *normalize.Normalizer
	tracker        *telemetry.Tracker
	logger         *slog.Logger
	sampleFallback bool
	idleTTL        time.Duration
	now            func() time.Time

	mu    sync.Mutex
	feeds map[string]*feedEntry

	wg sync.WaitGroup
}

// FeedOption configures a FeedServer
type FeedOption func(*FeedServer)

// WithSampleFallback serves the built-in sample deals when the store fails
func WithSampleFallback(enabled bool) FeedOption {
	return func(s *FeedServer) { s.sampleFallback = enabled }
}

// WithFeedLogger sets the logger
func WithFeedLogger(logger *slog.Logger) FeedOption {
	return func(s *FeedServer) { s.logger = logger }
}

// WithFeedClock overrides time.Now
func WithFeedClock(now func() time.Time) FeedOption {
	return func(s *FeedServer) { s.now = now }
}

// WithIdleTTL sets how long a feed may go without a load or gesture before
// Sweep evicts it
func WithIdleTTL(ttl time.Duration) FeedOption {
	return func(s *FeedServer) { s.idleTTL = ttl }
}

// NewFeedServer creates a new FeedServer instance
func NewFeedServer(store FeedStore, normalizer *normalize.Normalizer, tracker *telemetry.Tracker, opts ...FeedOption) *FeedServer {
	s := &FeedServer{
		store:      store,
		normalizer: normalizer,
		tracker:    tracker,
		idleTTL:    DefaultFeedIdleTTL,
		now:        time.Now,
		feeds:      make(map[string]*feedEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracker == nil {
		s.tracker = telemetry.NewTracker(nil, nil, telemetry.WithLogger(s.logger))
	}
	return s
}

func feedKey(userID, sessionID string) (string, error) {
	switch {
	case userID != "":
		return "user:" + userID, nil
	case sessionID != "":
		return "session:" + sessionID, nil
	default:
		return "", &model.ValidationError{Field: "session_id", Reason: "user_id or session_id is required"}
	}
}

// LoadFeed builds a fresh feed for the caller, replacing any previous one
func (s *FeedServer) LoadFeed(
	ctx context.Context,
	req *connect.Request[LoadFeedRequest],
) (*connect.Response[LoadFeedResponse], error) {
	key, err := feedKey(req.Msg.UserID, req.Msg.SessionID)
	if err != nil {
		return nil, toConnectError(err)
	}

	deals, fromSample, err := s.loadDeals(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	var saved []model.SavedDeal
	if req.Msg.UserID != "" && !fromSample {
		saved, err = s.store.ListSaved(ctx, req.Msg.UserID)
		if err != nil {
			s.logger.Warn("failed to load saved deals", "user_id", req.Msg.UserID, "error", err)
			saved = nil
		}
	}

	f := feed.New(req.Msg.UserID, deals, saved, feed.WithClock(s.now))
	if c := req.Msg.Category; c != "" && c != model.CategoryAll {
		if _, err := f.Apply(feed.SelectCategory{Category: c}); err != nil {
			return nil, toConnectError(err)
		}
	}

	// the response is built before the feed is shared with gestures
	res := &LoadFeedResponse{
		FeedState:  feedState(f, feed.Outcome{}),
		Deals:      newDealViews(f.Deals()),
		FromSample: fromSample,
	}
	category := f.Category()

	s.mu.Lock()
	s.feeds[key] = &feedEntry{feed: f, lastUsed: s.now()}
	s.mu.Unlock()

	s.tracker.TrackAsync(ctx, telemetry.Event{
		Action:    model.ActionPageView,
		UserID:    req.Msg.UserID,
		SessionID: req.Msg.SessionID,
		Data:      map[string]any{"page": "feed", "deals": len(res.Deals), "category": string(category)},
		Client:    clientFrom(req.Header(), req.Peer(), "", ""),
	})

	return connect.NewResponse(res), nil
}

func (s *FeedServer) loadDeals(ctx context.Context) ([]model.Deal, bool, error) {
	deals, err := s.store.ListFeedEligibleDeals(ctx, model.CategoryAll)
	if err == nil {
		return deals, false, nil
	}
	if !s.sampleFallback {
		return nil, false, err
	}

	s.logger.Warn("deal store unavailable, serving sample deals", "error", err)
	metrics.RecordFeedFallback()
	deals, sampleErr := sample.Deals(s.normalizer)
	if sampleErr != nil {
		return nil, false, errors.Join(err, sampleErr)
	}
	return deals, true, nil
}

// Gesture applies one swipe or navigation command to the caller's feed
func (s *FeedServer) Gesture(
	ctx context.Context,
	req *connect.Request[GestureRequest],
) (*connect.Response[GestureResponse], error) {
	key, err := feedKey(req.Msg.UserID, req.Msg.SessionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	cmd, err := parseCommand(req.Msg)
	if err != nil {
		return nil, toConnectError(err)
	}

	s.mu.Lock()
	entry, ok := s.feeds[key]
	if ok {
		entry.lastUsed = s.now()
	}
	s.mu.Unlock()
	if !ok {
		metrics.RecordGesture(cmd.Name(), "not_loaded")
		return nil, toConnectError(errFeedNotLoaded)
	}

	entry.mu.Lock()
	out, err := entry.feed.Apply(cmd)
	state := feedState(entry.feed, out)
	userID := entry.feed.UserID()
	entry.mu.Unlock()

	if err != nil {
		metrics.RecordGesture(cmd.Name(), "rejected")
		return nil, toConnectError(err)
	}
	if state.AuthRequired {
		metrics.RecordGesture(cmd.Name(), "auth_required")
	} else {
		metrics.RecordGesture(cmd.Name(), "ok")
	}

	s.dispatch(ctx, telemetry.Event{
		UserID:    userID,
		SessionID: req.Msg.SessionID,
		Client:    clientFrom(req.Header(), req.Peer(), "", ""),
	}, out.Effects)

	return connect.NewResponse(&GestureResponse{FeedState: state}), nil
}

// dispatch runs the side effects of a gesture without waiting for them.
// The feed has already been updated optimistically.
func (s *FeedServer) dispatch(ctx context.Context, base telemetry.Event, effects []feed.Effect) {
	ctx = context.WithoutCancel(ctx)
	for _, effect := range effects {
		switch e := effect.(type) {
		case feed.PersistSaved:
			saved := e.Saved
			s.background(func() {
				if err := s.store.SaveDeal(ctx, &saved); err != nil {
					s.logger.Warn("failed to persist saved deal", "user_id", saved.UserID, "deal_id", saved.DealID, "error", err)
				}
			})
		case feed.RemoveSaved:
			s.background(func() {
				if err := s.store.RemoveSaved(ctx, e.UserID, e.DealID); err != nil && !errors.Is(err, model.ErrNotFound) {
					s.logger.Warn("failed to remove saved deal", "user_id", e.UserID, "deal_id", e.DealID, "error", err)
				}
			})
		case feed.Track:
			ev := base
			ev.Action = e.Action
			ev.DealID = e.DealID
			ev.Data = e.Data
			s.tracker.TrackAsync(ctx, ev)
		}
	}
}

func (s *FeedServer) background(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

// Drop evicts the feeds of an ended session and, when userID is set, of
// that user. It returns the number of feeds removed.
func (s *FeedServer) Drop(userID, sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.feeds)
	if sessionID != "" {
		delete(s.feeds, "session:"+sessionID)
	}
	if userID != "" {
		delete(s.feeds, "user:"+userID)
	}
	return n - len(s.feeds)
}

// Sweep evicts feeds idle for longer than the idle TTL
func (s *FeedServer) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, entry := range s.feeds {
		if entry.lastUsed.Before(cutoff) {
			delete(s.feeds, key)
			n++
		}
	}
	return n
}

// Len returns the number of feeds held in memory
func (s *FeedServer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.feeds)
}

// Wait blocks until every background write has finished
func (s *FeedServer) Wait() {
	s.wg.Wait()
	s.tracker.Wait()
}

// ListSaved returns the persisted saved deals of a user
func (s *FeedServer) ListSaved(
	ctx context.Context,
	req *connect.Request[ListSavedRequest],
) (*connect.Response[ListSavedResponse], error) {
	if req.Msg.UserID == "" {
		return nil, toConnectError(&model.ValidationError{Field: "user_id", Reason: "is required"})
	}
	saved, err := s.store.ListSaved(ctx, req.Msg.UserID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListSavedResponse{Saved: saved}), nil
}

func parseCommand(msg *GestureRequest) (feed.Command, error) {
	switch msg.Command {
	case "accept", "swipe_right":
		return feed.AcceptDeal{DealID: msg.DealID}, nil
	case "reject", "swipe_left":
		return feed.RejectDeal{DealID: msg.DealID}, nil
	case "confirm_dismiss":
		return feed.ConfirmDismiss{}, nil
	case "save_instead":
		return feed.SaveInstead{}, nil
	case "cancel_reject":
		return feed.CancelReject{}, nil
	case "unsave":
		if msg.DealID == "" {
			return nil, &model.ValidationError{Field: "deal_id", Reason: "is required"}
		}
		return feed.UnsaveDeal{DealID: msg.DealID}, nil
	case "next":
		return feed.Next{}, nil
	case "select_category":
		return feed.SelectCategory{Category: msg.Category}, nil
	default:
		return nil, &model.ValidationError{Field: "command", Reason: "unknown gesture " + msg.Command}
	}
}

func feedState(f *feed.Feed, out feed.Outcome) FeedState {
	// Deals drops expired entries and may move the cursor, so it runs first
	total := len(f.Deals())
	st := FeedState{
		Category:     f.Category(),
		Index:        f.Index(),
		Total:        total,
		Notices:      out.Notices,
		AuthRequired: out.HasNotice(feed.NoticeAuthRequired),
	}
	if d, ok := f.Current(); ok {
		v := newDealView(&d)
		st.Current = &v
	}
	if d, ok := f.Pending(); ok {
		v := newDealView(&d)
		st.Pending = &v
	}
	return st
}
