// Package quote sequences the fetch -> filter -> aggregate -> compute
// pipeline that turns raw P2P ads and a reference FX rate into a
// premium snapshot.
package quote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sig-0/premiums/fx"
	"github.com/sig-0/premiums/p2p"
	"github.com/sig-0/premiums/premium"
	"github.com/sig-0/premiums/storage/types"
)

// AdSource fetches the raw P2P order-book ads for one market side.
// A transport failure surfaces as an error and is treated downstream
// exactly like an aggregation shortfall
type AdSource interface {
	FetchAds(ctx context.Context, fiat, asset types.Currency, side types.Side) ([]p2p.Ad, error)
}

// FxSource fetches the raw fiat reference quote
type FxSource interface {
	FetchFx(ctx context.Context, fiat, refFiat types.Currency) (*fx.Quote, error)
}

// Config bounds a single orchestrator's market and acceptance rules
type Config struct {
	Asset       types.Currency
	RefFiat     types.Currency
	MinValidAds int

	// Target trade-amount bounds for ad filtering, zero disables
	MinAmount float64
	MaxAmount float64
}

// DefaultConfig returns the default orchestrator configuration
func DefaultConfig() *Config {
	return &Config{
		Asset:       types.CurrencyUSDT,
		RefFiat:     types.CurrencyUSD,
		MinValidAds: p2p.DefaultMinValidAds,
	}
}

// Orchestrator composes ad filtering and aggregation with FX
// normalization and the premium calculator. It holds no mutable
// state across calls, so concurrent snapshots need no locking
type Orchestrator struct {
	logger *slog.Logger
	config *Config

	ads AdSource
	fx  FxSource
}

// New creates a new Orchestrator instance
func New(ads AdSource, fxSource FxSource, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		config: DefaultConfig(),
		ads:    ads,
		fx:     fxSource,
	}

	// Apply the options
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Snapshot computes a point-in-time premium snapshot for the given
// fiat. The three fetches (BUY ads, SELL ads, FX) are independent and
// run concurrently. Any failed or insufficient leg degrades the
// snapshot to insufficient_data - fetch errors are never propagated.
// The only hard failure is a rate-contract violation in the calculator
func (o *Orchestrator) Snapshot(ctx context.Context, fiat types.Currency) (*types.Snapshot, error) {
	var (
		buyRate  *float64
		sellRate *float64
		pair     *types.FxPair
	)

	group, gCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		buyRate = o.sideRate(gCtx, fiat, types.SideBUY)

		return nil
	})

	group.Go(func() error {
		sellRate = o.sideRate(gCtx, fiat, types.SideSELL)

		return nil
	})

	group.Go(func() error {
		pair = o.fxPair(gCtx, fiat)

		return nil
	})

	// The legs degrade to absent values instead of erroring out
	_ = group.Wait() //nolint:errcheck // no leg returns an error

	var fxBid, fxAsk *float64
	if pair != nil {
		fxBid, fxAsk = &pair.Bid, &pair.Ask
	}

	result, err := premium.Compute(sellRate, buyRate, fxBid, fxAsk)
	if err != nil {
		return nil, fmt.Errorf("unable to compute premiums: %w", err)
	}

	now := time.Now().UTC()

	return &types.Snapshot{
		AsOf:          now,
		FetchedAt:     now,
		Fiat:          fiat,
		Asset:         o.config.Asset,
		RefFiat:       o.config.RefFiat,
		SellRate:      sellRate,
		BuyRate:       buyRate,
		Fx:            pair,
		SellPremium:   result.SellPremium,
		BuyPremium:    result.BuyPremium,
		BuySellSpread: result.BuySellSpread,
		Status:        result.Status,
	}, nil
}

// sideRate fetches, filters and aggregates one side of the P2P book.
// Returns nil when the side cannot produce a representative rate
func (o *Orchestrator) sideRate(ctx context.Context, fiat types.Currency, side types.Side) *float64 {
	ads, err := o.ads.FetchAds(ctx, fiat, o.config.Asset, side)
	if err != nil {
		o.logger.Debug(
			"unable to fetch ads",
			"fiat", fiat,
			"side", side,
			"err", err,
		)

		return nil
	}

	filtered := p2p.Filter(ads, p2p.FilterConfig{
		MinAmount: o.config.MinAmount,
		MaxAmount: o.config.MaxAmount,
	})

	aggregated := p2p.AggregateRate(filtered, side, o.config.MinValidAds)
	if aggregated == nil {
		o.logger.Debug(
			"insufficient valid ads",
			"fiat", fiat,
			"side", side,
			"valid", len(filtered),
			"required", o.config.MinValidAds,
		)

		return nil
	}

	return &aggregated.Value
}

// fxPair fetches and normalizes the fiat reference quote.
// Returns nil when no usable rate is available
func (o *Orchestrator) fxPair(ctx context.Context, fiat types.Currency) *types.FxPair {
	q, err := o.fx.FetchFx(ctx, fiat, o.config.RefFiat)
	if err != nil {
		o.logger.Debug(
			"unable to fetch fx rate",
			"fiat", fiat,
			"ref_fiat", o.config.RefFiat,
			"err", err,
		)

		return nil
	}

	pair := fx.Normalize(q)
	if pair == nil {
		o.logger.Debug(
			"unusable fx quote",
			"fiat", fiat,
			"ref_fiat", o.config.RefFiat,
		)
	}

	return pair
}
