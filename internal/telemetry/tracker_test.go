package telemetry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkkikiki/dealswipe/internal/geo"
	"github.com/kkkkikiki/dealswipe/internal/model"
)

type fakeStore struct {
	mu          sync.Mutex
	exists      bool
	probeErr    error
	enhancedErr error
	rawErr      error
	insertErr   error

	sessions []*model.Session
	enhanced []*model.Action
	raw      []*model.Action
	ended    map[string]time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{exists: true, ended: make(map[string]time.Time)}
}

func (f *fakeStore) SessionExists(ctx context.Context) (bool, error) {
	return f.exists, f.probeErr
}

func (f *fakeStore) InsertSession(ctx context.Context, s *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.sessions = append(f.sessions, s)
	return nil
}

func (f *fakeStore) UpdateSessionEnd(ctx context.Context, sessionID string, endedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ended[sessionID] = endedAt
	return nil
}

func (f *fakeStore) RecordActionEnhanced(ctx context.Context, a *model.Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enhancedErr != nil {
		return f.enhancedErr
	}
	f.enhanced = append(f.enhanced, a)
	return nil
}

func (f *fakeStore) InsertActionRaw(ctx context.Context, a *model.Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rawErr != nil {
		return f.rawErr
	}
	f.raw = append(f.raw, a)
	return nil
}

type fixedLocator struct {
	loc   geo.Location
	calls int
}

func (l *fixedLocator) Resolve(ctx context.Context, rt geo.Runtime) geo.Location {
	l.calls++
	return l.loc
}

var fixedNow = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

const chromeMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

func berlin() *fixedLocator {
	return &fixedLocator{loc: geo.Location{Country: "Germany", CountryCode: "DE", Source: geo.SourceTimezone}}
}

func quietLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func TestStartSession_Persists(t *testing.T) {
	store := newFakeStore()
	tr := NewTracker(store, berlin(), WithClock(func() time.Time { return fixedNow }))

	id, err := tr.StartSession(context.Background(), "user-1", Client{UserAgent: chromeMac})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "session_1777627800000_"), id)

	require.Len(t, store.sessions, 1)
	s := store.sessions[0]
	assert.Equal(t, id, s.ID)
	require.NotNil(t, s.UserID)
	assert.Equal(t, "user-1", *s.UserID)
	assert.Nil(t, s.IPAddress)
	assert.Equal(t, "Germany", s.Country)
	assert.Equal(t, "Chrome", s.Browser)
	assert.Equal(t, "macOS", s.OS)
	assert.Equal(t, "desktop", s.DeviceType)
}

func TestStartSession_ProbeFailureStillReturnsID(t *testing.T) {
	for name, store := range map[string]*fakeStore{
		"probe error":  {probeErr: errors.New("relation \"user_sessions\" does not exist")},
		"not provided": {exists: false},
	} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			tr := NewTracker(store, berlin(), WithLogger(quietLogger(&buf)))

			id, err := tr.StartSession(context.Background(), "", Client{})

			assert.NotEmpty(t, id)
			assert.ErrorIs(t, err, ErrAnalyticsNotConfigured)
			d, ok := AsDegraded(err)
			require.True(t, ok)
			assert.Equal(t, TypeAnalyticsNotConfigured, d.Type)
			assert.Equal(t, "start_session", d.Op)
			assert.Empty(t, store.sessions)
		})
	}
}

func TestStartSession_InsertFailureIsSwallowed(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("connection reset")
	var buf bytes.Buffer
	tr := NewTracker(store, berlin(), WithLogger(quietLogger(&buf)))

	id, err := tr.StartSession(context.Background(), "", Client{})
	assert.NotEmpty(t, id)
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "failed to persist session")
}

func TestStartSession_UniqueIDs(t *testing.T) {
	tr := NewTracker(nil, nil)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := tr.StartSession(context.Background(), "", Client{})
		require.NoError(t, err)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestTrack_UsesSessionMetadata(t *testing.T) {
	store := newFakeStore()
	ip := "203.0.113.9"
	loc := &fixedLocator{loc: geo.Location{IP: &ip, Country: "France", CountryCode: "FR", Source: geo.SourceIPAPI}}
	tr := NewTracker(store, loc)

	id, err := tr.StartSession(context.Background(), "user-1", Client{UserAgent: chromeMac})
	require.NoError(t, err)

	err = tr.Track(context.Background(), Event{
		Action:    model.ActionSwipeRight,
		UserID:    "user-1",
		SessionID: id,
		DealID:    "deal-1",
		Data:      map[string]any{"position": 3, "at": fixedNow},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, loc.calls)
	require.Len(t, store.enhanced, 1)
	a := store.enhanced[0]
	assert.Equal(t, model.ActionSwipeRight, a.ActionType)
	require.NotNil(t, a.IPAddress)
	assert.Equal(t, ip, *a.IPAddress)
	assert.Equal(t, "FR", a.CountryCode)
	assert.Equal(t, "Chrome", a.Browser)
	assert.Equal(t, chromeMac, a.UserAgent)
	assert.Equal(t, float64(3), a.ActionData["position"])
	assert.IsType(t, "", a.ActionData["at"])
	assert.Nil(t, a.FirmID)
}

func TestTrack_FallsBackToBasicOnce(t *testing.T) {
	store := newFakeStore()
	store.enhancedErr = model.ErrProcedureUnavailable
	var buf bytes.Buffer
	tr := NewTracker(store, berlin(), WithLogger(quietLogger(&buf)))

	for i := 0; i < 3; i++ {
		require.NoError(t, tr.Track(context.Background(), Event{Action: model.ActionDealView}))
	}

	assert.Len(t, store.raw, 3)
	assert.Equal(t, 1, strings.Count(buf.String(), "falling back to basic tracking"))
	assert.True(t, tr.Diagnostics().BasicTrackingWarned())

	tr.Diagnostics().Reset()
	require.NoError(t, tr.Track(context.Background(), Event{Action: model.ActionDealView}))
	assert.Equal(t, 2, strings.Count(buf.String(), "falling back to basic tracking"))
}

func TestTrack_StoreUnavailableIsDegraded(t *testing.T) {
	store := newFakeStore()
	store.enhancedErr = model.ErrProcedureUnavailable
	store.rawErr = model.ErrStoreUnavailable
	var buf bytes.Buffer
	tr := NewTracker(store, berlin(), WithLogger(quietLogger(&buf)))

	err := tr.Track(context.Background(), Event{Action: model.ActionPageView})
	assert.ErrorIs(t, err, ErrAnalyticsNotConfigured)
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
}

func TestTrack_OtherFailuresAreSwallowed(t *testing.T) {
	store := newFakeStore()
	store.enhancedErr = errors.New("deadlock detected")
	var buf bytes.Buffer
	tr := NewTracker(store, berlin(), WithLogger(quietLogger(&buf)))

	assert.NoError(t, tr.Track(context.Background(), Event{Action: model.ActionPageView}))
	assert.Empty(t, store.raw)
	assert.Contains(t, buf.String(), "failed to record action")
}

func TestTrack_RejectsUnknownAction(t *testing.T) {
	tr := NewTracker(newFakeStore(), berlin())
	err := tr.Track(context.Background(), Event{Action: "deal_teleport"})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestTrackAsync(t *testing.T) {
	store := newFakeStore()
	tr := NewTracker(store, berlin())

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 10; i++ {
		tr.TrackAsync(ctx, Event{Action: model.ActionDealView})
	}
	cancel()
	tr.Wait()

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.enhanced, 10)
}

func TestEndSession(t *testing.T) {
	store := newFakeStore()
	tr := NewTracker(store, berlin(), WithClock(func() time.Time { return fixedNow }))

	id, err := tr.StartSession(context.Background(), "", Client{})
	require.NoError(t, err)
	tr.EndSession(context.Background(), id)

	assert.Equal(t, fixedNow, store.ended[id])
	_, ok := tr.Session(id)
	assert.False(t, ok)
}

func TestDisabledTrackerWritesNothing(t *testing.T) {
	store := newFakeStore()
	tr := NewTracker(store, berlin(), Disabled())

	id, err := tr.StartSession(context.Background(), "u", Client{})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.NoError(t, tr.Track(context.Background(), Event{Action: model.ActionLogin, SessionID: id}))

	assert.Empty(t, store.sessions)
	assert.Empty(t, store.enhanced)
}

func TestSweep_EvictsIdleSessions(t *testing.T) {
	now := fixedNow
	tr := NewTracker(newFakeStore(), berlin(), WithClock(func() time.Time { return now }), WithSessionTTL(2*time.Hour))

	idle, err := tr.StartSession(context.Background(), "", Client{})
	require.NoError(t, err)
	active, err := tr.StartSession(context.Background(), "", Client{})
	require.NoError(t, err)
	require.Equal(t, 2, tr.SessionCount())

	now = now.Add(90 * time.Minute)
	require.NoError(t, tr.Track(context.Background(), Event{Action: model.ActionDealView, SessionID: active}))

	now = now.Add(time.Hour)
	assert.Equal(t, 1, tr.Sweep())
	assert.Equal(t, 1, tr.SessionCount())
	_, ok := tr.Session(idle)
	assert.False(t, ok)
	_, ok = tr.Session(active)
	assert.True(t, ok)
}

func TestSweep_ZeroTTLKeepsSessions(t *testing.T) {
	tr := NewTracker(nil, nil, WithSessionTTL(0))
	_, err := tr.StartSession(context.Background(), "", Client{})
	require.NoError(t, err)
	assert.Equal(t, 0, tr.Sweep())
	assert.Equal(t, 1, tr.SessionCount())
}
