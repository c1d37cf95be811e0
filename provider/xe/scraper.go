package xe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sig-0/premiums/fx"
	"github.com/sig-0/premiums/storage/types"
)

var errRateNotFound = errors.New("rate not found on page")

const converterURL = "https://www.xe.com/currencyconverter/convert/"

// ScraperProvider scrapes the public XE converter page for a mid-only
// reference rate. Used when no API credentials are configured
type ScraperProvider struct {
	client *http.Client
	url    string
}

// NewScraperProvider creates a new instance of the XE page scraper
func NewScraperProvider(timeout time.Duration) *ScraperProvider {
	return &ScraperProvider{
		client: &http.Client{
			Timeout: timeout,
		},
		url: converterURL,
	}
}

func (p *ScraperProvider) Name() string {
	return "XE (public converter)"
}

// FetchFx fetches the refFiat -> fiat mid rate from the converter page
func (p *ScraperProvider) FetchFx(
	ctx context.Context,
	fiat, refFiat types.Currency,
) (*fx.Quote, error) {
	endpoint := fmt.Sprintf(
		"%s?Amount=1&From=%s&To=%s",
		p.url,
		url.QueryEscape(refFiat.String()),
		url.QueryEscape(fiat.String()),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("unable to create GET request: %w", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; premiums/0.1)")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to execute GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("invalid status code received: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to construct query doc: %w", err)
	}

	mid, err := parseConverterRate(doc)
	if err != nil {
		return nil, fmt.Errorf("unable to parse rate for %s/%s: %w", refFiat, fiat, err)
	}

	return &fx.Quote{
		Mid: &mid,
	}, nil
}

// parseConverterRate extracts the conversion result from the page.
// Best source is the embedded page state JSON, with the rendered
// result paragraph as fallback
func parseConverterRate(doc *goquery.Document) (float64, error) {
	// The page embeds its state as JSON, which survives markup changes
	if raw := doc.Find(`script#__NEXT_DATA__`).First().Text(); raw != "" {
		if rate, ok := parseEmbeddedRate(raw); ok {
			return rate, nil
		}
	}

	// Fallback: the rendered result, e.g. "17.123456 Mexican Pesos"
	sel := doc.Find(`p[class*="result__BigRate"]`).First()
	if sel.Length() == 0 {
		return 0, errRateNotFound
	}

	txt := strings.TrimSpace(sel.Text())

	fields := strings.Fields(txt)
	if len(fields) == 0 {
		return 0, errRateNotFound
	}

	rate, err := parseRateNumber(fields[0])
	if err != nil {
		return 0, err
	}

	return rate, nil
}

// parseEmbeddedRate digs the conversion rate out of the page state JSON
func parseEmbeddedRate(raw string) (float64, bool) {
	var state struct {
		Props struct {
			PageProps struct {
				ConversionState struct {
					Rates map[string]float64 `json:"rates"`
					To    string             `json:"to"`
				} `json:"conversionState"`
			} `json:"pageProps"`
		} `json:"props"`
	}

	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return 0, false
	}

	cs := state.Props.PageProps.ConversionState

	rate, ok := cs.Rates[cs.To]
	if !ok || rate <= 0 {
		return 0, false
	}

	return rate, true
}

// parseRateNumber parses the rendered rate, which uses comma as
// thousands separator: "1,234.56" -> "1234.56"
func parseRateNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse rate %q: %w", s, err)
	}

	return f, nil
}
