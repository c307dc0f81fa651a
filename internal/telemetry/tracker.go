// Package telemetry captures session and action telemetry on a best-effort
// basis. No method blocks the primary user flow on a store failure; an
// absent backend is reported with a *DegradedError sentinel.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/kkkkikiki/dealswipe/internal/geo"
	"github.com/kkkkikiki/dealswipe/internal/metrics"
	"github.com/kkkkikiki/dealswipe/internal/model"
)

// Store is the telemetry backend
type Store interface {
	// SessionExists is a cheap probe that the session table is provisioned
	SessionExists(ctx context.Context) (bool, error)
	InsertSession(ctx context.Context, s *model.Session) error
	UpdateSessionEnd(ctx context.Context, sessionID string, endedAt time.Time) error
	// RecordActionEnhanced returns model.ErrProcedureUnavailable when the
	// server-side procedure is not deployed
	RecordActionEnhanced(ctx context.Context, a *model.Action) error
	InsertActionRaw(ctx context.Context, a *model.Action) error
}

// Locator resolves client locations
type Locator interface {
	Resolve(ctx context.Context, rt geo.Runtime) geo.Location
}

// Client describes the caller's runtime
type Client struct {
	UserAgent string
	Runtime   geo.Runtime
}

// Metadata is the geo and device classification attached to every record
type Metadata struct {
	Location  geo.Location
	Device    Device
	UserAgent string
}

// Event is one action to record
type Event struct {
	Action    model.ActionType
	UserID    string
	SessionID string
	DealID    string
	FirmID    string
	Data      map[string]any
	// Client is used when SessionID has no cached metadata
	Client Client
}

// DefaultSessionTTL is how long session metadata is cached after its last use
const DefaultSessionTTL = 2 * time.Hour

type cachedSession struct {
	meta     Metadata
	lastSeen time.Time
}

// Tracker records sessions and actions
type Tracker struct {
	store      Store
	geo        Locator
	diag       *Diagnostics
	logger     *slog.Logger
	enabled    bool
	sessionTTL time.Duration
	now        func() time.Time

	mu       sync.RWMutex
	sessions map[string]*cachedSession

	wg sync.WaitGroup
}

// Option configures a Tracker
type Option func(*Tracker)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

// WithDiagnostics shares a diagnostics object
func WithDiagnostics(d *Diagnostics) Option {
	return func(t *Tracker) { t.diag = d }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithSessionTTL sets how long unused session metadata is kept before Sweep
// evicts it
func WithSessionTTL(ttl time.Duration) Option {
	return func(t *Tracker) { t.sessionTTL = ttl }
}

// Disabled turns every write into a no-op while ids are still issued
func Disabled() Option {
	return func(t *Tracker) { t.enabled = false }
}

// NewTracker creates a tracker. A nil store behaves like Disabled.
func NewTracker(store Store, locator Locator, opts ...Option) *Tracker {
	t := &Tracker{
		store:    store,
		geo:      locator,
		enabled:    store != nil,
		sessionTTL: DefaultSessionTTL,
		now:        time.Now,
		sessions:   make(map[string]*cachedSession),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	if t.diag == nil {
		t.diag = NewDiagnostics(t.logger)
	}
	return t
}

// Diagnostics returns the tracker's warning state
func (t *Tracker) Diagnostics() *Diagnostics { return t.diag }

// NewSessionID returns a process-local id of the form
// session_<unix millis>_<random suffix>
func NewSessionID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), suffix)
}

// StartSession issues a session id and tries to persist the session. The id
// is always usable; err is only ever a *DegradedError.
func (t *Tracker) StartSession(ctx context.Context, userID string, client Client) (string, error) {
	now := t.now()
	id := NewSessionID(now)
	meta := t.resolve(ctx, client)

	t.mu.Lock()
	t.sessions[id] = &cachedSession{meta: meta, lastSeen: now}
	t.mu.Unlock()

	if !t.enabled {
		metrics.RecordTelemetryWrite("session", "skipped")
		return id, nil
	}

	ok, err := t.store.SessionExists(ctx)
	if err != nil || !ok {
		t.diag.NotConfigured("start_session", err)
		metrics.RecordTelemetryWrite("session", "skipped")
		return id, degraded("start_session", err)
	}

	s := &model.Session{
		ID:          id,
		UserID:      model.StringPtr(userID),
		IPAddress:   meta.Location.IP,
		Country:     meta.Location.Country,
		CountryCode: meta.Location.CountryCode,
		DeviceType:  meta.Device.DeviceType,
		Browser:     meta.Device.Browser,
		OS:          meta.Device.OS,
		UserAgent:   client.UserAgent,
		StartedAt:   now,
	}
	if err := t.store.InsertSession(ctx, s); err != nil {
		metrics.RecordTelemetryWrite("session", "failed")
		if errors.Is(err, model.ErrStoreUnavailable) {
			t.diag.NotConfigured("start_session", err)
			return id, degraded("start_session", err)
		}
		t.logger.Warn("failed to persist session", "session_id", id, "error", err)
		return id, nil
	}
	metrics.RecordTelemetryWrite("session", "inserted")
	return id, nil
}

// Session returns the cached metadata of a started session
func (t *Tracker) Session(sessionID string) (Metadata, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.sessions[sessionID]
	if !ok {
		return Metadata{}, false
	}
	return c.meta, true
}

// Sweep evicts cached session metadata unused for longer than the session
// TTL. Evicted sessions are classified again from the request if they send
// more actions.
func (t *Tracker) Sweep() int {
	if t.sessionTTL <= 0 {
		return 0
	}
	cutoff := t.now().Add(-t.sessionTTL)

	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for id, c := range t.sessions {
		if c.lastSeen.Before(cutoff) {
			delete(t.sessions, id)
			n++
		}
	}
	return n
}

// SessionCount returns the number of sessions with cached metadata
func (t *Tracker) SessionCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

func (t *Tracker) cached(sessionID string) (Metadata, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.sessions[sessionID]
	if !ok {
		return Metadata{}, false
	}
	c.lastSeen = t.now()
	return c.meta, true
}

// Track records one action, preferring the enhanced procedure and falling
// back to a raw insert. Only an unknown action type is a caller error;
// store failures are logged or reported as *DegradedError.
func (t *Tracker) Track(ctx context.Context, ev Event) error {
	if !ev.Action.Valid() {
		return &model.ValidationError{Field: "action_type", Reason: fmt.Sprintf("unknown action %q", ev.Action)}
	}
	a := t.action(ctx, ev)

	if !t.enabled {
		metrics.RecordTelemetryWrite("action", "skipped")
		return nil
	}

	err := t.store.RecordActionEnhanced(ctx, a)
	if err == nil {
		metrics.RecordTelemetryWrite("action", "enhanced")
		return nil
	}
	if errors.Is(err, model.ErrProcedureUnavailable) {
		t.diag.BasicTracking(err)
		err = t.store.InsertActionRaw(ctx, a)
		if err == nil {
			metrics.RecordTelemetryWrite("action", "basic")
			return nil
		}
	}

	metrics.RecordTelemetryWrite("action", "failed")
	if errors.Is(err, model.ErrStoreUnavailable) {
		t.diag.NotConfigured("track", err)
		return degraded("track", err)
	}
	t.logger.Warn("failed to record action", "action", ev.Action, "session_id", ev.SessionID, "error", err)
	return nil
}

// TrackAsync records ev in the background. Actions issued in order are not
// guaranteed to persist in order.
func (t *Tracker) TrackAsync(ctx context.Context, ev Event) {
	ctx = context.WithoutCancel(ctx)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if err := t.Track(ctx, ev); err != nil && !errors.Is(err, ErrAnalyticsNotConfigured) {
			t.logger.Warn("async track rejected", "action", ev.Action, "error", err)
		}
	}()
}

// Wait blocks until every TrackAsync call has finished
func (t *Tracker) Wait() { t.wg.Wait() }

// EndSession stamps the end time. Failures are logged and otherwise ignored.
func (t *Tracker) EndSession(ctx context.Context, sessionID string) {
	t.mu.Lock()
	delete(t.sessions, sessionID)
	t.mu.Unlock()

	if !t.enabled || sessionID == "" {
		return
	}
	if err := t.store.UpdateSessionEnd(ctx, sessionID, t.now()); err != nil {
		t.logger.Warn("failed to end session", "session_id", sessionID, "error", err)
	}
}

func (t *Tracker) resolve(ctx context.Context, client Client) Metadata {
	rt := client.Runtime
	if rt == nil {
		rt = geo.StaticRuntime{}
	}
	loc := geo.Unknown()
	if t.geo != nil {
		loc = t.geo.Resolve(ctx, rt)
	}
	return Metadata{Location: loc, Device: ParseUserAgent(client.UserAgent), UserAgent: client.UserAgent}
}

func (t *Tracker) action(ctx context.Context, ev Event) *model.Action {
	meta, ok := t.cached(ev.SessionID)
	if !ok {
		meta = t.resolve(ctx, ev.Client)
	}
	return &model.Action{
		ActionType:  ev.Action,
		UserID:      model.StringPtr(ev.UserID),
		SessionID:   model.StringPtr(ev.SessionID),
		DealID:      model.StringPtr(ev.DealID),
		FirmID:      model.StringPtr(ev.FirmID),
		ActionData:  SanitizeData(ev.Data),
		IPAddress:   meta.Location.IP,
		Country:     meta.Location.Country,
		CountryCode: meta.Location.CountryCode,
		DeviceType:  meta.Device.DeviceType,
		Browser:     meta.Device.Browser,
		OS:          meta.Device.OS,
		UserAgent:   meta.UserAgent,
		CreatedAt:   t.now(),
	}
}

// SanitizeData converts a free-form payload to JSON-compatible values.
// Values structpb cannot represent are stored as their string form.
func SanitizeData(data map[string]any) map[string]any {
	if len(data) == 0 {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		pv, err := structpb.NewValue(v)
		if err != nil {
			pv = structpb.NewStringValue(fmt.Sprint(v))
		}
		out[k] = pv.AsInterface()
	}
	return out
}
