// Package coinapi provides an alternative mid-only fiat reference
// provider backed by CoinAPI.io exchange rates.
package coinapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sig-0/premiums/fx"
	"github.com/sig-0/premiums/storage/types"
)

const defaultBaseURL = "https://rest.coinapi.io"

// ErrNotConfigured indicates a missing CoinAPI key
var ErrNotConfigured = errors.New("missing CoinAPI key")

// rateResponse is the CoinAPI exchangerate response
type rateResponse struct {
	Rate *float64 `json:"rate"`
}

// Provider fetches reference rates from the CoinAPI REST API
type Provider struct {
	client *http.Client
	url    string
	apiKey string
}

// NewProvider creates a new instance of the CoinAPI provider
func NewProvider(apiKey string, timeout time.Duration) *Provider {
	return &Provider{
		client: &http.Client{
			Timeout: timeout,
		},
		url:    defaultBaseURL,
		apiKey: apiKey,
	}
}

func (p *Provider) Name() string {
	return "CoinAPI"
}

// IsConfigured reports whether an API key is present
func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

// FetchFx fetches the refFiat -> fiat rate. CoinAPI exposes only a
// single rate, so the quote is always mid-only
func (p *Provider) FetchFx(
	ctx context.Context,
	fiat, refFiat types.Currency,
) (*fx.Quote, error) {
	if !p.IsConfigured() {
		return nil, ErrNotConfigured
	}

	endpoint := fmt.Sprintf(
		"%s/v1/exchangerate/%s/%s",
		p.url,
		url.PathEscape(refFiat.String()),
		url.PathEscape(fiat.String()),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("unable to create GET request: %w", err)
	}

	req.Header.Set("X-CoinAPI-Key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to execute GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("invalid status code received: %d", resp.StatusCode)
	}

	var apiResp rateResponse
	if err = json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("unable to decode response: %w", err)
	}

	if apiResp.Rate == nil {
		return nil, fmt.Errorf("no rate for %s/%s", refFiat, fiat)
	}

	return &fx.Quote{
		Mid: apiResp.Rate,
	}, nil
}
