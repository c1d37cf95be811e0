// Package xe provides fiat reference rate providers backed by XE.
//
// The API provider queries the XE Currency Data convert_from endpoint
// with account credentials. Entry-level XE plans expose only a mid
// rate; bid and ask are passed through when the plan includes them.
//
// The scraper provider is a credential-free fallback that parses the
// public XE converter page and always yields a mid-only quote.
package xe

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

const defaultBaseURL = "https://xecdapi.xe.com"

// ErrNotConfigured indicates missing XE API credentials
var ErrNotConfigured = errors.New("missing XE API credentials")

// convertResponse is the XE convert_from API response
type convertResponse struct {
	To []convertRow `json:"to"`
}

type convertRow struct {
	QuoteCurrency string   `json:"quotecurrency"`
	Mid           *float64 `json:"mid"`
	Bid           *float64 `json:"bid"`
	Ask           *float64 `json:"ask"`
}

// Provider fetches reference FX rates from the XE Currency Data API
type Provider struct {
	client *http.Client
	url    string

	accountID string
	apiKey    string
}

// NewProvider creates a new instance of the XE API provider
func NewProvider(accountID, apiKey string, timeout time.Duration) *Provider {
	return &Provider{
		client: &http.Client{
			Timeout: timeout,
		},
		url:       defaultBaseURL,
		accountID: accountID,
		apiKey:    apiKey,
	}
}

func (p *Provider) Name() string {
	return "XE Currency Data"
}

// IsConfigured reports whether API credentials are present
func (p *Provider) IsConfigured() bool {
	return p.accountID != "" && p.apiKey != ""
}

// FetchFx fetches the refFiat -> fiat conversion rate
func (p *Provider) FetchFx(
	ctx context.Context,
	fiat, refFiat types.Currency,
) (*fx.Quote, error) {
	if !p.IsConfigured() {
		return nil, ErrNotConfigured
	}

	endpoint := fmt.Sprintf(
		"%s/v1/convert_from.json?from=%s&to=%s&amount=1",
		p.url,
		url.QueryEscape(refFiat.String()),
		url.QueryEscape(fiat.String()),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("unable to create GET request: %w", err)
	}

	req.SetBasicAuth(p.accountID, p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to execute GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("invalid status code received: %d", resp.StatusCode)
	}

	var apiResp convertResponse
	if err = json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("unable to decode response: %w", err)
	}

	if len(apiResp.To) == 0 {
		return nil, fmt.Errorf("no conversion rows for %s/%s", refFiat, fiat)
	}

	row := apiResp.To[0]

	return &fx.Quote{
		Mid: row.Mid,
		Bid: row.Bid,
		Ask: row.Ask,
	}, nil
}
