// Package feed selects, orders and walks the deals shown to one user and
// interprets swipe gestures. A Feed is a reducer over Command values and is
// not safe for concurrent use.
package feed

import (
	"errors"
	"fmt"
	"time"

	"github.com/kkkkikiki/dealswipe/internal/lifecycle"
	"github.com/kkkkikiki/dealswipe/internal/model"
)

var (
	// ErrNoPendingRejection is returned when a confirmation command arrives
	// without a preceding RejectDeal.
	ErrNoPendingRejection = errors.New("no rejection awaiting confirmation")
	// ErrRejectionPending is returned for other gestures while a rejection
	// awaits confirmation.
	ErrRejectionPending = errors.New("a rejection is awaiting confirmation")
	// ErrDealNotInFeed is returned when a gesture names an unknown deal
	ErrDealNotInFeed = errors.New("deal is not in the feed")
	// ErrEmptyFeed is returned for gestures on an empty feed
	ErrEmptyFeed = errors.New("feed is empty")
	// ErrDealExpired is returned when a pending rejection is resolved by
	// saving a deal whose window closed in the meantime.
	ErrDealExpired = errors.New("deal has expired")
)

// Feed is the per-user feed session
type Feed struct {
	userID   string
	deals    []model.Deal
	saved    map[string]model.SavedDeal
	viewed   map[string]struct{}
	category model.Category
	ordered  []model.Deal
	index    int
	pending  *model.Deal
	now      func() time.Time
}

// Option configures a Feed
type Option func(*Feed)

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(f *Feed) { f.now = now }
}

// New builds a feed over deals in store order. An empty userID is an
// unauthenticated session.
func New(userID string, deals []model.Deal, saved []model.SavedDeal, opts ...Option) *Feed {
	f := &Feed{
		userID:   userID,
		category: model.CategoryAll,
		viewed:   make(map[string]struct{}),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.Refresh(deals, saved)
	return f
}

// Order filters deals to the eligible ones of category and puts unsaved
// deals first, each partition keeping store order.
func Order(deals []model.Deal, saved map[string]model.SavedDeal, category model.Category, now time.Time) []model.Deal {
	var unsaved, tail []model.Deal
	for _, d := range deals {
		if !lifecycle.FeedEligible(&d, now) {
			continue
		}
		if category != model.CategoryAll && category != "" && d.Category != category {
			continue
		}
		if _, ok := saved[d.ID]; ok {
			tail = append(tail, d)
			continue
		}
		unsaved = append(unsaved, d)
	}
	return append(unsaved, tail...)
}

// Refresh replaces the underlying data and rewinds the cursor
func (f *Feed) Refresh(deals []model.Deal, saved []model.SavedDeal) {
	f.deals = append([]model.Deal(nil), deals...)
	f.saved = make(map[string]model.SavedDeal, len(saved))
	for _, s := range saved {
		f.saved[s.DealID] = s
	}
	f.rebuild()
}

func (f *Feed) rebuild() {
	f.ordered = Order(f.deals, f.saved, f.category, f.now())
	f.index = 0
	f.pending = nil
}

// UserID returns the owner of the feed; empty when unauthenticated
func (f *Feed) UserID() string { return f.userID }

// Authenticated reports whether gestures are allowed
func (f *Feed) Authenticated() bool { return f.userID != "" }

// Category returns the active filter
func (f *Feed) Category() model.Category { return f.category }

// Index returns the cursor position
func (f *Feed) Index() int { return f.index }

// Deals returns the ordered deals of the active filter that are still live
func (f *Feed) Deals() []model.Deal {
	f.expire()
	return append([]model.Deal(nil), f.ordered...)
}

// Current returns the deal under the cursor
func (f *Feed) Current() (model.Deal, bool) {
	f.expire()
	if len(f.ordered) == 0 {
		return model.Deal{}, false
	}
	return f.ordered[f.index], true
}

// Pending returns the deal awaiting rejection confirmation
func (f *Feed) Pending() (model.Deal, bool) {
	if f.pending == nil {
		return model.Deal{}, false
	}
	return *f.pending, true
}

// Saved returns the saved entry for dealID
func (f *Feed) Saved(dealID string) (model.SavedDeal, bool) {
	s, ok := f.saved[dealID]
	return s, ok
}

// SavedDeals returns every saved entry
func (f *Feed) SavedDeals() []model.SavedDeal {
	out := make([]model.SavedDeal, 0, len(f.saved))
	for _, s := range f.saved {
		out = append(out, s)
	}
	return out
}

// Viewed reports whether dealID was dismissed in this session
func (f *Feed) Viewed(dealID string) bool {
	_, ok := f.viewed[dealID]
	return ok
}

// Apply runs one command. Unauthenticated gestures are suppressed and
// answered with an auth_required notice instead of an error.
func (f *Feed) Apply(cmd Command) (Outcome, error) {
	var out Outcome
	f.expire()
	if gated(cmd) && !f.Authenticated() {
		out.notice(NoticeAuthRequired, "Sign in to save and manage deals.")
		return out, nil
	}

	if f.pending != nil {
		switch cmd.(type) {
		case ConfirmDismiss, SaveInstead, CancelReject:
		default:
			return out, ErrRejectionPending
		}
	}

	switch c := cmd.(type) {
	case AcceptDeal:
		d, err := f.target(c.DealID)
		if err != nil {
			return out, err
		}
		f.accept(d, &out)
	case RejectDeal:
		d, err := f.target(c.DealID)
		if err != nil {
			return out, err
		}
		f.pending = &d
	case ConfirmDismiss:
		if f.pending == nil {
			return out, ErrNoPendingRejection
		}
		d := *f.pending
		f.pending = nil
		f.viewed[d.ID] = struct{}{}
		out.track(model.ActionSwipeLeft, d.ID, nil)
		out.notice(NoticeDismissed, "Deal dismissed.")
		if f.isCurrent(d.ID) {
			f.advance(&out)
		}
	case SaveInstead:
		if f.pending == nil {
			return out, ErrNoPendingRejection
		}
		d := *f.pending
		f.pending = nil
		if !lifecycle.FeedEligible(&d, f.now()) {
			return out, fmt.Errorf("%w: %s", ErrDealExpired, d.ID)
		}
		f.accept(d, &out)
	case CancelReject:
		if f.pending == nil {
			return out, ErrNoPendingRejection
		}
		f.pending = nil
	case UnsaveDeal:
		if _, ok := f.saved[c.DealID]; !ok {
			return out, fmt.Errorf("%w: %s is not saved", ErrDealNotInFeed, c.DealID)
		}
		delete(f.saved, c.DealID)
		out.Effects = append(out.Effects, RemoveSaved{UserID: f.userID, DealID: c.DealID})
		out.track(model.ActionDealUnsave, c.DealID, nil)
		out.notice(NoticeUnsaved, "Deal removed from your saved list.")
	case Next:
		f.advance(&out)
	case SelectCategory:
		if c.Category != model.CategoryAll && !c.Category.Valid() {
			return out, &model.ValidationError{Field: "category", Reason: "must be All, CFD, Futures, Crypto or Brokers"}
		}
		f.category = c.Category
		f.rebuild()
		out.track(model.ActionCategoryFilter, "", map[string]any{"category": string(c.Category)})
	default:
		return out, fmt.Errorf("unsupported command %T", cmd)
	}
	return out, nil
}

// accept saves d as claimed unless it already is, then advances past it
// when it is the current card.
func (f *Feed) accept(d model.Deal, out *Outcome) {
	existing, ok := f.saved[d.ID]
	out.track(model.ActionSwipeRight, d.ID, nil)
	if ok && existing.IsClaimed {
		out.notice(NoticeAlreadySaved, "You already saved this deal.")
	} else {
		saved := model.SavedDeal{UserID: f.userID, DealID: d.ID, IsClaimed: true, SavedAt: f.now()}
		if ok {
			saved.SavedAt = existing.SavedAt
		}
		f.saved[d.ID] = saved
		out.Effects = append(out.Effects, PersistSaved{Saved: saved})
		out.track(model.ActionDealSave, d.ID, nil)
		out.notice(NoticeSaved, "Deal saved.")
	}
	if f.isCurrent(d.ID) {
		f.advance(out)
	}
}

func (f *Feed) advance(out *Outcome) {
	if len(f.ordered) == 0 {
		return
	}
	f.index++
	if f.index >= len(f.ordered) {
		f.index = 0
		out.notice(NoticeWrapped, "You've seen every deal. Starting over.")
	}
}

// expire drops deals whose window closed since the feed was built. The
// cursor stays on the same card, or on the one after a dropped current card.
// A pending rejection is left alone.
func (f *Feed) expire() {
	now := f.now()
	kept := f.ordered[:0]
	index := f.index
	for i := range f.ordered {
		if lifecycle.FeedEligible(&f.ordered[i], now) {
			kept = append(kept, f.ordered[i])
			continue
		}
		if i < f.index {
			index--
		}
	}
	if len(kept) == len(f.ordered) {
		return
	}
	clear(f.ordered[len(kept):])
	f.ordered = kept
	f.index = index
	if f.index >= len(f.ordered) {
		f.index = 0
	}
}

func (f *Feed) isCurrent(dealID string) bool {
	cur, ok := f.Current()
	return ok && cur.ID == dealID
}

func (f *Feed) target(dealID string) (model.Deal, error) {
	if dealID == "" {
		cur, ok := f.Current()
		if !ok {
			return model.Deal{}, ErrEmptyFeed
		}
		return cur, nil
	}
	for _, d := range f.ordered {
		if d.ID == dealID {
			return d, nil
		}
	}
	return model.Deal{}, fmt.Errorf("%w: %s", ErrDealNotInFeed, dealID)
}
