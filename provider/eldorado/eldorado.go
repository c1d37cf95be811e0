// Package eldorado provides an alternative P2P ad source backed by the
// Eldorado public pricing endpoint. The endpoint exposes one quoted
// price per (side, asset, fiat) without per-ad trade limits, so each
// fetch yields a single ad without amount bounds.
package eldorado

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sig-0/premiums/p2p"
	"github.com/sig-0/premiums/storage/types"
)

const defaultBaseURL = "https://api.eldorado.io/api"

// priceEntry is a single quoted price in the Eldorado payload
type priceEntry struct {
	Price string `json:"price"`
}

// pricesResponse maps side -> asset code -> fiat code -> price,
// e.g. {"SELL": {"TRON-USDT": {"FIAT-VES": {"price": "40.25"}}}}
type pricesResponse map[string]map[string]map[string]priceEntry

// Provider fetches quoted P2P prices from Eldorado
type Provider struct {
	client *http.Client
	url    string
}

// NewProvider creates a new instance of the Eldorado provider
func NewProvider(timeout time.Duration) *Provider {
	return &Provider{
		client: &http.Client{
			Timeout: timeout,
		},
		url: defaultBaseURL,
	}
}

func (p *Provider) Name() string {
	return "Eldorado"
}

// FetchAds fetches the quoted price for the given market side
func (p *Provider) FetchAds(
	ctx context.Context,
	fiat, asset types.Currency,
	side types.Side,
) ([]p2p.Ad, error) {
	endpoint := p.url + "/prices"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("unable to create GET request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to execute GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("invalid status code received: %d", resp.StatusCode)
	}

	var apiResp pricesResponse
	if err = json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("unable to decode response: %w", err)
	}

	var (
		assetKey = "TRON-" + asset.String()
		fiatKey  = "FIAT-" + fiat.String()
	)

	entry, ok := apiResp[side.String()][assetKey][fiatKey]
	if !ok {
		return nil, fmt.Errorf("no quote for %s %s/%s", side, asset, fiat)
	}

	price, err := strconv.ParseFloat(entry.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("unable to parse price %q: %w", entry.Price, err)
	}

	return []p2p.Ad{{
		Price: price,
		Side:  side,
	}}, nil
}
