package telemetry

import (
	"errors"
	"fmt"
)

// TypeAnalyticsNotConfigured tags degraded results when the telemetry
// backend is absent
const TypeAnalyticsNotConfigured = "analytics_not_configured"

// ErrAnalyticsNotConfigured matches every *DegradedError
var ErrAnalyticsNotConfigured = errors.New("analytics not configured")

// DegradedError is the sentinel returned instead of failing when the
// telemetry store is unreachable or unprovisioned.
type DegradedError struct {
	Type    string `json:"type"`
	Op      string `json:"op"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func degraded(op string, err error) *DegradedError {
	msg := "telemetry store is not configured"
	if err != nil {
		msg = err.Error()
	}
	return &DegradedError{Type: TypeAnalyticsNotConfigured, Op: op, Message: msg, Err: err}
}

func (e *DegradedError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Type, e.Op, e.Message)
}

func (e *DegradedError) Is(target error) bool {
	return target == ErrAnalyticsNotConfigured
}

func (e *DegradedError) Unwrap() error { return e.Err }

// AsDegraded extracts the sentinel from err
func AsDegraded(err error) (*DegradedError, bool) {
	var d *DegradedError
	ok := errors.As(err, &d)
	return d, ok
}
