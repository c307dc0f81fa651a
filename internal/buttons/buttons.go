// Package buttons derives the call-to-action buttons a deal exposes. The
// stored preference is advisory: the effective configuration is recomputed
// on every read from the data the deal actually carries.
package buttons

import (
	"log/slog"

	"github.com/kkkkikiki/dealswipe/internal/model"
)

// Completeness captures the data a button configuration depends on
type Completeness struct {
	HasCouponCode bool
}

// CompletenessOf reads the completeness of a deal
func CompletenessOf(d *model.Deal) Completeness {
	return Completeness{HasCouponCode: d.HasCouponCode()}
}

// Resolve returns the effective configuration and whether a stored
// preference had to be downgraded.
func Resolve(stored model.ButtonConfig, c Completeness) (effective model.ButtonConfig, downgraded bool) {
	if !c.HasCouponCode {
		switch stored {
		case model.ButtonsUnset:
			return model.ButtonsClaimOnly, false
		case model.ButtonsClaimOnly:
			return model.ButtonsClaimOnly, false
		default:
			// a code button without a code is never rendered
			return model.ButtonsClaimOnly, true
		}
	}
	switch stored {
	case model.ButtonsBoth, model.ButtonsClaimOnly, model.ButtonsCodeOnly:
		return stored, false
	default:
		return model.ButtonsBoth, false
	}
}

// Effective resolves the configuration of d, logging to the default logger
// when the stored value contradicts the deal data.
func Effective(d *model.Deal) model.ButtonConfig {
	return resolveLogged(slog.Default(), d)
}

// Prefill returns the value to store when a deal is created or edited. A
// downgrade is logged to logger, or to the default logger when nil.
func Prefill(d *model.Deal, logger *slog.Logger) model.ButtonConfig {
	if logger == nil {
		logger = slog.Default()
	}
	return resolveLogged(logger, d)
}

func resolveLogged(logger *slog.Logger, d *model.Deal) model.ButtonConfig {
	effective, downgraded := Resolve(d.ButtonConfig, CompletenessOf(d))
	if downgraded {
		logger.Warn("Stored button config requires a coupon code, downgrading",
			"deal_id", d.ID, "stored", d.ButtonConfig, "effective", effective)
	}
	return effective
}

// Visible reports which buttons a configuration renders
func Visible(cfg model.ButtonConfig) (claim, code bool) {
	switch cfg {
	case model.ButtonsClaimOnly:
		return true, false
	case model.ButtonsCodeOnly:
		return false, true
	default:
		return true, true
	}
}
