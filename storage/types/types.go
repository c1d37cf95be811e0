package types

import "time"

type Currency string

const (
	CurrencyUSD  Currency = "USD"
	CurrencyEUR  Currency = "EUR"
	CurrencyUSDT Currency = "USDT"
	CurrencyUSDC Currency = "USDC"
	CurrencyMXN  Currency = "MXN"
	CurrencyBRL  Currency = "BRL"
	CurrencyARS  Currency = "ARS"
	CurrencyCOP  Currency = "COP"
	CurrencyVES  Currency = "VES"
)

func (c Currency) String() string {
	return string(c)
}

// Side is the P2P order-book side, from the perspective of the
// user trading the stablecoin
type Side string

const (
	SideBUY  Side = "BUY"
	SideSELL Side = "SELL"
)

func (s Side) String() string {
	return string(s)
}

// Status is the terminal state of a premium computation
type Status string

const (
	StatusOK               Status = "ok"
	StatusInsufficientData Status = "insufficient_data"
)

func (s Status) String() string {
	return string(s)
}

// FxPair is a two-sided fiat reference rate.
// Mid-only providers are normalized to Bid == Ask
type FxPair struct {
	Bid float64 `json:"bid"`
	Ask float64 `json:"ask"`
}

// Snapshot is a single point-in-time premium computation
// for an (asset, fiat, ref fiat) market triple
type Snapshot struct {
	AsOf      time.Time `json:"as_of"`
	FetchedAt time.Time `json:"fetched_at"`
	Fiat      Currency  `json:"fiat"`
	Asset     Currency  `json:"asset"`
	RefFiat   Currency  `json:"ref_fiat"`

	SellRate *float64 `json:"sell_rate"`
	BuyRate  *float64 `json:"buy_rate"`
	Fx       *FxPair  `json:"fx"`

	SellPremium   *float64 `json:"stablecoin_sell_premium"`
	BuyPremium    *float64 `json:"stablecoin_buy_premium"`
	BuySellSpread *float64 `json:"stablecoin_buy_sell_spread"`

	Status Status `json:"status"`
}

// SnapshotQuery filters persisted snapshots.
// Nil filter fields match everything
type SnapshotQuery struct {
	Fiat    *Currency `json:"fiat"`
	Asset   *Currency `json:"asset"`
	RefFiat *Currency `json:"ref_fiat"`
	Status  *Status   `json:"status"`
	Offset  int64     `json:"offset"`
	Limit   int32     `json:"limit"`
}

// Page wraps the results for pagination
type Page[T any] struct {
	Results []T   `json:"results"`
	Total   int64 `json:"total"`
}
