package serve

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/sig-0/premiums/ingest"
	"github.com/sig-0/premiums/provider/binance"
	"github.com/sig-0/premiums/provider/coinapi"
	"github.com/sig-0/premiums/provider/eldorado"
	"github.com/sig-0/premiums/provider/xe"
	"github.com/sig-0/premiums/quote"
	"github.com/sig-0/premiums/storage/types"
)

// snapshotProvider builds the scheduled snapshot provider from the
// serve configuration
func (c *serveCfg) snapshotProvider(logger *slog.Logger) (ingest.Provider, error) {
	ads, err := c.adSource()
	if err != nil {
		return nil, err
	}

	fxSource, err := c.fxSource()
	if err != nil {
		return nil, err
	}

	orchestrator := quote.New(
		ads,
		fxSource,
		quote.WithLogger(logger),
		quote.WithConfig(&quote.Config{
			Asset:       types.Currency(strings.ToUpper(c.asset)),
			RefFiat:     types.Currency(strings.ToUpper(c.refFiat)),
			MinValidAds: c.minValidAds,
			MinAmount:   c.minAmount,
			MaxAmount:   c.maxAmount,
		}),
	)

	fiats := make([]types.Currency, 0)

	for _, part := range strings.Split(c.fiats, ",") {
		code := strings.ToUpper(strings.TrimSpace(part))
		if code == "" {
			continue
		}

		fiats = append(fiats, types.Currency(code))
	}

	if len(fiats) == 0 {
		return nil, fmt.Errorf("no fiats specified")
	}

	return quote.NewScheduledProvider(orchestrator, fiats, c.interval), nil
}

// adSource resolves the configured P2P ad provider
func (c *serveCfg) adSource() (quote.AdSource, error) {
	switch c.adsProvider {
	case "binance":
		return binance.NewProvider(c.timeout), nil
	case "eldorado":
		return eldorado.NewProvider(c.timeout), nil
	default:
		return nil, fmt.Errorf("unknown ads provider %q", c.adsProvider)
	}
}

// fxSource resolves the configured FX provider, preferring
// credentialed providers in auto mode
func (c *serveCfg) fxSource() (quote.FxSource, error) {
	switch c.fxProvider {
	case "xe":
		p := xe.NewProvider(c.xeAccountID, c.xeAPIKey, c.timeout)
		if !p.IsConfigured() {
			return nil, xe.ErrNotConfigured
		}

		return p, nil
	case "xe-scrape":
		return xe.NewScraperProvider(c.timeout), nil
	case "coinapi":
		p := coinapi.NewProvider(c.coinAPIKey, c.timeout)
		if !p.IsConfigured() {
			return nil, coinapi.ErrNotConfigured
		}

		return p, nil
	case "auto":
		if p := xe.NewProvider(c.xeAccountID, c.xeAPIKey, c.timeout); p.IsConfigured() {
			return p, nil
		}

		if p := coinapi.NewProvider(c.coinAPIKey, c.timeout); p.IsConfigured() {
			return p, nil
		}

		return xe.NewScraperProvider(c.timeout), nil
	default:
		return nil, fmt.Errorf("unknown fx provider %q", c.fxProvider)
	}
}
