// Package lifecycle holds the deal state machines. Admin deals move between
// draft, published and archived; partner deals wait for approval.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/kkkkikiki/dealswipe/internal/model"
)

// ErrInvalidTransition is returned for a transition the machine does not allow
var ErrInvalidTransition = errors.New("invalid status transition")

var adminTransitions = map[model.Status][]model.Status{
	model.StatusDraft:     {model.StatusPublished, model.StatusArchived},
	model.StatusPublished: {model.StatusDraft, model.StatusArchived},
	model.StatusArchived:  nil,
}

var partnerTransitions = map[model.Status][]model.Status{
	model.StatusPendingApproval: {model.StatusApproved, model.StatusRejected},
	model.StatusApproved:        nil,
	// an operator edit resubmits a rejected deal
	model.StatusRejected: {model.StatusPendingApproval},
}

func machine(source model.SourceType) (map[model.Status][]model.Status, error) {
	switch source {
	case model.SourceAdmin:
		return adminTransitions, nil
	case model.SourcePartner:
		return partnerTransitions, nil
	default:
		return nil, fmt.Errorf("unknown source type %q", source)
	}
}

// Initial returns the state a new deal of source starts in
func Initial(source model.SourceType) model.Status {
	if source == model.SourcePartner {
		return model.StatusPendingApproval
	}
	return model.StatusDraft
}

// Valid reports whether status belongs to the machine of source
func Valid(source model.SourceType, status model.Status) bool {
	m, err := machine(source)
	if err != nil {
		return false
	}
	_, ok := m[status]
	return ok
}

// CanTransition reports whether from -> to is allowed for source
func CanTransition(source model.SourceType, from, to model.Status) bool {
	m, err := machine(source)
	if err != nil {
		return false
	}
	for _, next := range m[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves d to status to, or returns ErrInvalidTransition.
func Transition(d *model.Deal, to model.Status, now time.Time) error {
	if !CanTransition(d.SourceType, d.Status, to) {
		return fmt.Errorf("%w: %s deal %s cannot move from %s to %s",
			ErrInvalidTransition, d.SourceType, d.ID, d.Status, to)
	}
	d.Status = to
	d.UpdatedAt = now
	return nil
}

// Resubmit returns an edited rejected partner deal to the approval queue.
// Deals in any other state are left unchanged.
func Resubmit(d *model.Deal, now time.Time) {
	if d.SourceType == model.SourcePartner && d.Status == model.StatusRejected {
		d.Status = model.StatusPendingApproval
		d.UpdatedAt = now
	}
}

// Live reports whether status admits a deal to the public feed
func Live(status model.Status) bool {
	return status == model.StatusPublished || status == model.StatusApproved
}

// FeedEligible reports whether d may be shown to end users at now. Deals
// whose window has not started yet are still eligible.
func FeedEligible(d *model.Deal, now time.Time) bool {
	return Live(d.Status) && now.Before(d.Window.End)
}
