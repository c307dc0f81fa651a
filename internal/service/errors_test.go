package service

import (
	"errors"
	"fmt"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"

	"github.com/kkkkikiki/dealswipe/internal/feed"
	"github.com/kkkkikiki/dealswipe/internal/lifecycle"
	"github.com/kkkkikiki/dealswipe/internal/model"
)

func TestToConnectError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want connect.Code
	}{
		{"validation", &model.ValidationError{Field: "title", Reason: "required"}, connect.CodeInvalidArgument},
		{"not found", fmt.Errorf("failed to get deal: %w", model.ErrNotFound), connect.CodeNotFound},
		{"deal not in feed", feed.ErrDealNotInFeed, connect.CodeNotFound},
		{"transition", fmt.Errorf("%w: archived -> published", lifecycle.ErrInvalidTransition), connect.CodeFailedPrecondition},
		{"rejection pending", feed.ErrRejectionPending, connect.CodeFailedPrecondition},
		{"deal expired", feed.ErrDealExpired, connect.CodeFailedPrecondition},
		{"feed not loaded", errFeedNotLoaded, connect.CodeFailedPrecondition},
		{"store unavailable", fmt.Errorf("failed to list deals: %w", model.ErrStoreUnavailable), connect.CodeUnavailable},
		{"other", errors.New("boom"), connect.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, connect.CodeOf(toConnectError(tt.err)))
		})
	}

	assert.NoError(t, toConnectError(nil))

	existing := connect.NewError(connect.CodePermissionDenied, errors.New("nope"))
	assert.Same(t, existing, toConnectError(existing))
}
