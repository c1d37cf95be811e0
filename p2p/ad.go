// Package p2p models peer-to-peer order-book ads and reduces them to a
// single representative rate per side.
//
// Ads come in noisy: the filter drops listings with non-positive prices
// and listings whose trade-amount range cannot serve the configured
// target amount. The aggregator then averages the top ads by
// favorability, refusing to produce a rate from too small a sample.
package p2p

import "github.com/sig-0/premiums/storage/types"

// Ad is a single raw P2P order-book listing.
// A zero MinAmount / MaxAmount means the ad did not declare the bound
type Ad struct {
	Price     float64
	MinAmount float64
	MaxAmount float64
	Side      types.Side
}
