// Package fx normalizes reference-rate provider responses into a
// usable two-sided quote.
package fx

import "github.com/sig-0/premiums/storage/types"

// Quote is a raw reference-rate response from an FX provider.
// Providers on mid-only plans leave Bid and Ask unset
type Quote struct {
	Mid *float64
	Bid *float64
	Ask *float64
}

// Normalize converts a provider quote into a two-sided reference pair.
// A missing side falls back to the mid rate, so a mid-only quote maps
// to Bid == Ask (a parity approximation, not a real spread).
// Returns nil when no usable positive rate is present
func Normalize(q *Quote) *types.FxPair {
	if q == nil {
		return nil
	}

	var (
		bid = sideOrMid(q.Bid, q.Mid)
		ask = sideOrMid(q.Ask, q.Mid)
	)

	if bid == nil || ask == nil {
		return nil
	}

	return &types.FxPair{
		Bid: *bid,
		Ask: *ask,
	}
}

// sideOrMid picks the first usable positive rate
func sideOrMid(side, mid *float64) *float64 {
	if side != nil && *side > 0 {
		return side
	}

	if mid != nil && *mid > 0 {
		return mid
	}

	return nil
}
