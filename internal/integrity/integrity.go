// Package integrity gates persistence: a candidate snapshot that fails any
// check must never replace the prior store.
package integrity

import (
	"errors"
	"fmt"

	"MarketRadar/internal/model"
)

// Rejection reasons, checkable with errors.Is.
var (
	ErrTooFewRecords = errors.New("too few records")
	ErrCanaryInvalid = errors.New("canary ticker missing or invalid")
)

// Gate validates a merged snapshot as a whole before it may be persisted.
type Gate struct {
	MinRecords   int
	CanaryTicker string
}

// Check runs the checks in order, short-circuiting on the first failure.
// nil means the candidate may replace the store.
func (g Gate) Check(candidate model.Snapshot) error {
	if len(candidate) < g.MinRecords {
		return fmt.Errorf("%w: %d records, minimum %d", ErrTooFewRecords, len(candidate), g.MinRecords)
	}
	canary, ok := candidate[g.CanaryTicker]
	if !ok || canary == nil || canary.Valuation.Price <= 0 {
		return fmt.Errorf("%w: %s", ErrCanaryInvalid, g.CanaryTicker)
	}
	return nil
}
