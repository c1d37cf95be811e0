package quote

import (
	"context"

	"github.com/sig-0/premiums/fx"
	"github.com/sig-0/premiums/p2p"
	"github.com/sig-0/premiums/storage/types"
)

type (
	fetchAdsDelegate func(context.Context, types.Currency, types.Currency, types.Side) ([]p2p.Ad, error)
	fetchFxDelegate  func(context.Context, types.Currency, types.Currency) (*fx.Quote, error)
)

type mockAdSource struct {
	fetchAdsFn fetchAdsDelegate
}

func (m *mockAdSource) FetchAds(
	ctx context.Context,
	fiat, asset types.Currency,
	side types.Side,
) ([]p2p.Ad, error) {
	if m.fetchAdsFn != nil {
		return m.fetchAdsFn(ctx, fiat, asset, side)
	}

	return nil, nil
}

type mockFxSource struct {
	fetchFxFn fetchFxDelegate
}

func (m *mockFxSource) FetchFx(
	ctx context.Context,
	fiat, refFiat types.Currency,
) (*fx.Quote, error) {
	if m.fetchFxFn != nil {
		return m.fetchFxFn(ctx, fiat, refFiat)
	}

	return nil, nil
}
