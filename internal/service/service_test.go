package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/kkkkikiki/dealswipe/internal/lifecycle"
	"github.com/kkkkikiki/dealswipe/internal/model"
	"github.com/kkkkikiki/dealswipe/internal/normalize"
	"github.com/kkkkikiki/dealswipe/internal/telemetry"
)

// memStore is an in-memory DealStore and FeedStore
type memStore struct {
	mu      sync.Mutex
	deals   map[string]*model.Deal
	firms   map[string]*model.Firm
	saved   map[string]map[string]model.SavedDeal
	order   []string
	feedErr error
}

func newMemStore() *memStore {
	return &memStore{
		deals: make(map[string]*model.Deal),
		firms: make(map[string]*model.Firm),
		saved: make(map[string]map[string]model.SavedDeal),
	}
}

func (m *memStore) put(d *model.Deal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.deals[d.ID]; !ok {
		m.order = append(m.order, d.ID)
	}
	cp := *d
	m.deals[d.ID] = &cp
}

func (m *memStore) ListFeedEligibleDeals(ctx context.Context, category model.Category) ([]model.Deal, error) {
	if m.feedErr != nil {
		return nil, m.feedErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Deal
	for _, id := range m.order {
		out = append(out, *m.deals[id])
	}
	return out, nil
}

func (m *memStore) ListDeals(ctx context.Context, source model.SourceType, status model.Status) ([]model.Deal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Deal
	for _, id := range m.order {
		d := m.deals[id]
		if d.SourceType == source && (status == "" || d.Status == status) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memStore) GetDeal(ctx context.Context, id string) (*model.Deal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deals[id]
	if !ok {
		return nil, fmt.Errorf("deal %s: %w", id, model.ErrNotFound)
	}
	cp := *d
	return &cp, nil
}

func (m *memStore) CreateDeal(ctx context.Context, d *model.Deal) (*model.Deal, error) {
	m.put(d)
	return d, nil
}

func (m *memStore) CreatePartnerDeal(ctx context.Context, d *model.Deal) (*model.Deal, error) {
	m.put(d)
	return d, nil
}

func (m *memStore) UpdateDeal(ctx context.Context, d *model.Deal) (*model.Deal, error) {
	if _, err := m.GetDeal(ctx, d.ID); err != nil {
		return nil, err
	}
	m.put(d)
	return d, nil
}

func (m *memStore) SetPartnerDealStatus(ctx context.Context, id string, status model.Status) (*model.Deal, error) {
	d, err := m.GetDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Transition(d, status, testNow); err != nil {
		return nil, err
	}
	m.put(d)
	return d, nil
}

func (m *memStore) GetFirm(ctx context.Context, id string) (*model.Firm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.firms[id]
	if !ok {
		return nil, fmt.Errorf("firm %s: %w", id, model.ErrNotFound)
	}
	cp := *f
	return &cp, nil
}

func (m *memStore) CreateFirm(ctx context.Context, firm *model.Firm) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *firm
	m.firms[firm.ID] = &cp
	return nil
}

func (m *memStore) ListFirms(ctx context.Context) ([]model.Firm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Firm
	for _, f := range m.firms {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) ListSaved(ctx context.Context, userID string) ([]model.SavedDeal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.SavedDeal
	for _, s := range m.saved[userID] {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DealID < out[j].DealID })
	return out, nil
}

func (m *memStore) SaveDeal(ctx context.Context, saved *model.SavedDeal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved[saved.UserID] == nil {
		m.saved[saved.UserID] = make(map[string]model.SavedDeal)
	}
	m.saved[saved.UserID][saved.DealID] = *saved
	return nil
}

func (m *memStore) RemoveSaved(ctx context.Context, userID, dealID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.saved[userID][dealID]; !ok {
		return fmt.Errorf("saved deal %s: %w", dealID, model.ErrNotFound)
	}
	delete(m.saved[userID], dealID)
	return nil
}

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func liveDeal(id string, category model.Category) *model.Deal {
	return &model.Deal{
		ID:           id,
		SourceType:   model.SourceAdmin,
		Title:        "Deal " + id,
		Category:     category,
		MerchantName: "Merchant",
		Discount:     model.Percentage(20),
		CouponCode:   "SAVE20",
		Status:       model.StatusPublished,
		Window:       model.Window{Start: testNow.Add(-24 * time.Hour), End: testNow.Add(24 * time.Hour)},
	}
}

type testEnv struct {
	store  *memStore
	feeds  *FeedServer
	deals  *DealServer
	logs   *bytes.Buffer
	server *httptest.Server
}

func newTestEnv(t *testing.T, feedOpts ...FeedOption) *testEnv {
	t.Helper()
	store := newMemStore()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	normalizer := normalize.New(0)

	deals := NewDealServer(store, normalizer, logger)
	deals.now = func() time.Time { return testNow }

	opts := append([]FeedOption{WithFeedLogger(logger), WithFeedClock(func() time.Time { return testNow })}, feedOpts...)
	feeds := NewFeedServer(store, normalizer, telemetry.NewTracker(nil, nil), opts...)

	mux := http.NewServeMux()
	Register(mux, Servers{
		Deals:     deals,
		Feeds:     feeds,
		Telemetry: NewTelemetryServer(telemetry.NewTracker(nil, nil), WithFeeds(feeds)),
		Analytics: NewAnalyticsServer(telemetry.NewAnalytics(nil, nil)),
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{store: store, feeds: feeds, deals: deals, logs: &logs, server: server}
}

func call[Req, Res any](t *testing.T, env *testEnv, procedure string, msg *Req) (*Res, error) {
	t.Helper()
	client := NewClient[Req, Res](env.server.Client(), env.server.URL, procedure)
	res, err := client.CallUnary(context.Background(), connect.NewRequest(msg))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

// testClock is a settable clock shared with handler goroutines
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(now time.Time) *testClock { return &testClock{now: now} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
