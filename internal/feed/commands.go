package feed

import "github.com/kkkkikiki/dealswipe/internal/model"

// Command is a user gesture or navigation request consumed by Feed.Apply
type Command interface {
	Name() string
}

// AcceptDeal is a swipe right. An empty DealID targets the current card.
type AcceptDeal struct {
	DealID string `json:"deal_id,omitempty"`
}

// RejectDeal is a swipe left; it only opens a confirmation.
type RejectDeal struct {
	DealID string `json:"deal_id,omitempty"`
}

// ConfirmDismiss resolves a pending rejection by dismissing the deal
type ConfirmDismiss struct{}

// SaveInstead resolves a pending rejection by saving the deal
type SaveInstead struct{}

// CancelReject abandons a pending rejection
type CancelReject struct{}

// UnsaveDeal removes a deal from the saved set
type UnsaveDeal struct {
	DealID string `json:"deal_id"`
}

// Next advances to the following card
type Next struct{}

// SelectCategory re-filters the feed and rewinds the cursor
type SelectCategory struct {
	Category model.Category `json:"category"`
}

func (AcceptDeal) Name() string     { return "accept" }
func (RejectDeal) Name() string     { return "reject" }
func (ConfirmDismiss) Name() string { return "confirm_dismiss" }
func (SaveInstead) Name() string    { return "save_instead" }
func (CancelReject) Name() string   { return "cancel_reject" }
func (UnsaveDeal) Name() string     { return "unsave" }
func (Next) Name() string           { return "next" }
func (SelectCategory) Name() string { return "select_category" }

// gated commands require an authenticated user
func gated(cmd Command) bool {
	switch cmd.(type) {
	case AcceptDeal, RejectDeal, ConfirmDismiss, SaveInstead, UnsaveDeal:
		return true
	default:
		return false
	}
}

// NoticeKind classifies informational notices
type NoticeKind string

const (
	NoticeSaved        NoticeKind = "saved"
	NoticeAlreadySaved NoticeKind = "already_saved"
	NoticeDismissed    NoticeKind = "dismissed"
	NoticeUnsaved      NoticeKind = "unsaved"
	NoticeWrapped      NoticeKind = "seen_everything"
	NoticeAuthRequired NoticeKind = "auth_required"
)

// Notice is a non-fatal message for the user
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// Effect is a side effect the caller should carry out after Apply.
// Feed state is already updated optimistically.
type Effect interface {
	effect()
}

// PersistSaved upserts a saved deal
type PersistSaved struct {
	Saved model.SavedDeal
}

// RemoveSaved deletes a saved deal
type RemoveSaved struct {
	UserID string
	DealID string
}

// Track records a telemetry action
type Track struct {
	Action model.ActionType
	DealID string
	Data   map[string]any
}

func (PersistSaved) effect() {}
func (RemoveSaved) effect()  {}
func (Track) effect()        {}

// Outcome is the result of one Apply call
type Outcome struct {
	Notices []Notice
	Effects []Effect
}

func (o *Outcome) notice(kind NoticeKind, msg string) {
	o.Notices = append(o.Notices, Notice{Kind: kind, Message: msg})
}

func (o *Outcome) track(action model.ActionType, dealID string, data map[string]any) {
	o.Effects = append(o.Effects, Track{Action: action, DealID: dealID, Data: data})
}

// HasNotice reports whether o carries a notice of kind
func (o Outcome) HasNotice(kind NoticeKind) bool {
	for _, n := range o.Notices {
		if n.Kind == kind {
			return true
		}
	}
	return false
}
