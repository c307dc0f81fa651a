package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/kkkkikiki/dealswipe/internal/feed"
	"github.com/kkkkikiki/dealswipe/internal/lifecycle"
	"github.com/kkkkikiki/dealswipe/internal/model"
)

// errFeedNotLoaded is returned for gestures before LoadFeed
var errFeedNotLoaded = errors.New("feed not loaded for this user or session")

// toConnectError maps domain errors onto connect codes
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	switch {
	case errors.Is(err, model.ErrValidation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, model.ErrNotFound), errors.Is(err, feed.ErrDealNotInFeed):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, feed.ErrNoPendingRejection),
		errors.Is(err, feed.ErrRejectionPending),
		errors.Is(err, feed.ErrEmptyFeed),
		errors.Is(err, feed.ErrDealExpired),
		errors.Is(err, errFeedNotLoaded):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, model.ErrStoreUnavailable):
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
