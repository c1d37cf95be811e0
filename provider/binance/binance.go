//nolint:tagliatelle // Binance API uses camel case
package binance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sig-0/premiums/p2p"
	"github.com/sig-0/premiums/storage/types"
)

const searchURL = "https://p2p.binance.com/bapi/c2c/v2/friendly/c2c/adv/search"

const defaultRows = 20

// searchRequest is the request body for the Binance P2P API
type searchRequest struct {
	Fiat      types.Currency `json:"fiat"`
	Asset     types.Currency `json:"asset"`
	TradeType types.Side     `json:"tradeType"`
	Rows      int            `json:"rows"`
	Page      int            `json:"page"`
	PayTypes  []string       `json:"payTypes"`
	Countries []string       `json:"countries"`
}

// searchResponse is the response from the Binance P2P API
type searchResponse struct {
	Data []searchOffer `json:"data"`
}

type searchOffer struct {
	Adv searchAdv `json:"adv"`
}

type searchAdv struct {
	Price                string `json:"price"`
	MinSingleTransAmount string `json:"minSingleTransAmount"`
	MaxSingleTransAmount string `json:"maxSingleTransAmount"`
}

// Provider fetches P2P order-book ads from Binance
type Provider struct {
	client *http.Client
	url    string
	rows   int
}

// NewProvider creates a new instance of the Binance P2P ad provider
func NewProvider(timeout time.Duration) *Provider {
	return &Provider{
		client: &http.Client{
			Timeout: timeout,
		},
		url:  searchURL,
		rows: defaultRows,
	}
}

func (p *Provider) Name() string {
	return "Binance P2P"
}

// FetchAds queries Binance P2P for the given market side and parses
// the returned ads. Prices that fail to parse are skipped, amount
// bounds are best-effort (missing bounds stay zero)
func (p *Provider) FetchAds(
	ctx context.Context,
	fiat, asset types.Currency,
	side types.Side,
) ([]p2p.Ad, error) {
	reqBody := searchRequest{
		Fiat:      fiat,
		Asset:     asset,
		TradeType: side,
		Rows:      p.rows,
		Page:      1,
		PayTypes:  []string{},
		Countries: []string{},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("unable to create POST request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to execute POST request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("invalid status code received: %d", resp.StatusCode)
	}

	var apiResp searchResponse
	if err = json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("unable to decode response: %w", err)
	}

	ads := make([]p2p.Ad, 0, len(apiResp.Data))

	for _, offer := range apiResp.Data {
		price, ok := parseFloat(offer.Adv.Price)
		if !ok {
			continue
		}

		var (
			minAmount, _ = parseFloat(offer.Adv.MinSingleTransAmount)
			maxAmount, _ = parseFloat(offer.Adv.MaxSingleTransAmount)
		)

		ads = append(ads, p2p.Ad{
			Price:     price,
			MinAmount: minAmount,
			MaxAmount: maxAmount,
			Side:      side,
		})
	}

	return ads, nil
}

// parseFloat parses a float string into a value
func parseFloat(value string) (float64, bool) {
	if value == "" {
		return 0, false
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}

	return parsed, true
}
