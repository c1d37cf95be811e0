package premium

import (
	"errors"

	"github.com/sig-0/premiums/storage/types"
)

// ErrInvalidRate indicates a zero or negative rate reached the
// calculator. Upstream aggregation and FX normalization never emit
// such rates, so this is an upstream contract violation, not a
// data-shortage condition
var ErrInvalidRate = errors.New("invalid rate")

// Result holds the derived premium metrics for a single market.
// Either all three metrics are set (status ok), or none are
// (status insufficient_data) - there are no partial results
type Result struct {
	SellPremium   *float64
	BuyPremium    *float64
	BuySellSpread *float64
	Status        types.Status
}

// Compute derives the premium and spread percentages from the
// aggregated P2P rates and the FX reference pair:
//
//	sell premium    = (sell - fxBid) / fxBid * 100
//	buy premium     = (buy - fxAsk) / fxAsk * 100
//	buy-sell spread = (buy - sell) / sell * 100
//
// A positive premium means the local market trades above the fiat
// reference, a negative one means it trades at a discount.
// Any absent input yields an insufficient-data result, never an error
func Compute(sellRate, buyRate, fxBid, fxAsk *float64) (*Result, error) {
	if sellRate == nil || buyRate == nil || fxBid == nil || fxAsk == nil {
		return &Result{
			Status: types.StatusInsufficientData,
		}, nil
	}

	for _, rate := range []float64{*sellRate, *buyRate, *fxBid, *fxAsk} {
		if rate <= 0 {
			return nil, ErrInvalidRate
		}
	}

	var (
		sellPremium = (*sellRate - *fxBid) / *fxBid * 100
		buyPremium  = (*buyRate - *fxAsk) / *fxAsk * 100
		spread      = (*buyRate - *sellRate) / *sellRate * 100
	)

	return &Result{
		SellPremium:   &sellPremium,
		BuyPremium:    &buyPremium,
		BuySellSpread: &spread,
		Status:        types.StatusOK,
	}, nil
}
