package telemetry

import (
	"log/slog"
	"sync/atomic"
)

// Diagnostics holds the degraded-mode warning state of one Tracker. Each
// condition is logged at most once until Reset.
type Diagnostics struct {
	logger        *slog.Logger
	basicWarned   atomic.Bool
	missingWarned atomic.Bool
}

// NewDiagnostics creates diagnostics logging to logger (slog.Default if nil)
func NewDiagnostics(logger *slog.Logger) *Diagnostics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Diagnostics{logger: logger}
}

// BasicTracking notes a fallback from the enhanced procedure to a plain
// insert and reports whether this call logged the warning.
func (d *Diagnostics) BasicTracking(err error) bool {
	if !d.basicWarned.CompareAndSwap(false, true) {
		return false
	}
	d.logger.Warn("enhanced action tracking unavailable, falling back to basic tracking", "error", err)
	return true
}

// NotConfigured notes that the telemetry store is absent
func (d *Diagnostics) NotConfigured(op string, err error) bool {
	if !d.missingWarned.CompareAndSwap(false, true) {
		return false
	}
	d.logger.Info("telemetry store not configured, skipping persistence", "op", op, "error", err)
	return true
}

// BasicTrackingWarned reports whether the fallback warning fired
func (d *Diagnostics) BasicTrackingWarned() bool { return d.basicWarned.Load() }

// Reset re-arms every warning
func (d *Diagnostics) Reset() {
	d.basicWarned.Store(false)
	d.missingWarned.Store(false)
}
