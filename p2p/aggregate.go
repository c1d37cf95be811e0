package p2p

import (
	"sort"

	"github.com/sig-0/premiums/storage/types"
)

// DefaultMinValidAds is the default minimum number of valid ads
// required before an aggregated rate is produced
const DefaultMinValidAds = 5

// AggregatedRate is the representative rate for one side of a market
type AggregatedRate struct {
	Value      float64
	SampleSize int
}

// AggregateRate reduces a filtered, same-side ad list to a single
// representative rate: the unweighted mean of the top minValidAds
// prices by favorability (ascending for BUY, where cheaper is better,
// descending for SELL, where higher is better).
//
// Returns nil when fewer than minValidAds ads are given, so a thin
// order book never yields a partial average
func AggregateRate(ads []Ad, side types.Side, minValidAds int) *AggregatedRate {
	if minValidAds < 1 {
		minValidAds = DefaultMinValidAds
	}

	if len(ads) == 0 || len(ads) < minValidAds {
		return nil
	}

	prices := make([]float64, 0, len(ads))
	for _, ad := range ads {
		prices = append(prices, ad.Price)
	}

	sort.Slice(prices, func(i, j int) bool {
		if side == types.SideSELL {
			return prices[i] > prices[j]
		}

		return prices[i] < prices[j]
	})

	top := prices[:minValidAds]

	var sum float64
	for _, price := range top {
		sum += price
	}

	return &AggregatedRate{
		Value:      sum / float64(len(top)),
		SampleSize: len(top),
	}
}
