// Package sample ships the built-in deal dataset served when the deal store
// cannot be reached, so the feed always has something to render.
package sample

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/kkkkikiki/dealswipe/internal/model"
	"github.com/kkkkikiki/dealswipe/internal/normalize"
)

//go:embed deals.json
var dealsJSON []byte

// Records returns the raw sample rows. They use the same aliased column
// names the stores do and carry no dates.
func Records() ([]normalize.Record, error) {
	var rows []normalize.Record
	if err := json.Unmarshal(dealsJSON, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode sample deals: %w", err)
	}
	return rows, nil
}

// Deals normalizes the sample rows as admin deals. Windows start now and
// run for the normalizer's default validity.
func Deals(n *normalize.Normalizer) ([]model.Deal, error) {
	rows, err := Records()
	if err != nil {
		return nil, err
	}
	deals := make([]model.Deal, 0, len(rows))
	for _, rec := range rows {
		d, err := n.Deal(rec, model.SourceAdmin)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize sample deal %v: %w", rec["id"], err)
		}
		deals = append(deals, *d)
	}
	return deals, nil
}
