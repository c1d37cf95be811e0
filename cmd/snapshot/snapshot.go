package snapshot

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/premiums/cmd/env"
	"github.com/sig-0/premiums/p2p"
	"github.com/sig-0/premiums/provider/binance"
	"github.com/sig-0/premiums/provider/coinapi"
	"github.com/sig-0/premiums/provider/eldorado"
	"github.com/sig-0/premiums/provider/xe"
	"github.com/sig-0/premiums/quote"
	"github.com/sig-0/premiums/storage/types"
)

const defaultFiats = "MXN"

// snapshotCfg wraps the snapshot configuration
type snapshotCfg struct {
	fiats   string
	asset   string
	refFiat string

	minValidAds int
	minAmount   float64
	maxAmount   float64

	adsProvider string
	fxProvider  string

	xeAccountID string
	xeAPIKey    string
	coinAPIKey  string

	timeout time.Duration

	output   string
	pretty   bool
	decimals int
	verbose  bool
}

// NewSnapshotCmd creates the snapshot subcommand
func NewSnapshotCmd() *ffcli.Command {
	cfg := &snapshotCfg{}

	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "snapshot",
		ShortUsage: "snapshot [flags]",
		LongHelp:   "Computes one-shot premium snapshots for the given fiat markets",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *snapshotCfg) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.fiats,
		"fiats",
		defaultFiats,
		"comma-separated fiat codes to snapshot",
	)

	fs.StringVar(
		&c.asset,
		"asset",
		types.CurrencyUSDT.String(),
		"the stablecoin asset",
	)

	fs.StringVar(
		&c.refFiat,
		"ref-fiat",
		types.CurrencyUSD.String(),
		"the reference fiat for the FX comparison",
	)

	fs.IntVar(
		&c.minValidAds,
		"min-valid-ads",
		p2p.DefaultMinValidAds,
		"minimum number of valid P2P ads per side",
	)

	fs.Float64Var(
		&c.minAmount,
		"min-amount",
		0,
		"lower target trade-amount bound for ad filtering (0 disables)",
	)

	fs.Float64Var(
		&c.maxAmount,
		"max-amount",
		0,
		"upper target trade-amount bound for ad filtering (0 disables)",
	)

	fs.StringVar(
		&c.adsProvider,
		"ads-provider",
		"binance",
		"the P2P ad source (binance | eldorado)",
	)

	fs.StringVar(
		&c.fxProvider,
		"fx-provider",
		"auto",
		"the FX source (auto | xe | xe-scrape | coinapi)",
	)

	fs.StringVar(
		&c.xeAccountID,
		"xe-account-id",
		"",
		"the XE API account ID",
	)

	fs.StringVar(
		&c.xeAPIKey,
		"xe-api-key",
		"",
		"the XE API key",
	)

	fs.StringVar(
		&c.coinAPIKey,
		"coinapi-key",
		"",
		"the CoinAPI key",
	)

	fs.DurationVar(
		&c.timeout,
		"timeout",
		time.Second*15,
		"the per-request provider timeout",
	)

	fs.StringVar(
		&c.output,
		"output",
		"table",
		"the output format (table | json | csv)",
	)

	fs.BoolVar(
		&c.pretty,
		"pretty",
		false,
		"pretty-print JSON output",
	)

	fs.IntVar(
		&c.decimals,
		"decimals",
		-1,
		"round computed metrics to this many decimals (negative disables)",
	)

	fs.BoolVar(
		&c.verbose,
		"verbose",
		false,
		"log fetch diagnostics to stderr",
	)
}

// exec executes the snapshot command
func (c *snapshotCfg) exec(ctx context.Context, _ []string) error {
	logger := slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel(c.verbose),
		}),
	)

	// Load .env
	if err := godotenv.Load(); err != nil {
		logger.Debug("unable to load .env file")
	}

	fiats := parseFiats(c.fiats)
	if len(fiats) == 0 {
		return fmt.Errorf("no fiats specified")
	}

	// Resolve the ad source
	ads, err := c.adSource()
	if err != nil {
		return err
	}

	// Resolve the FX source
	fxSource, err := c.fxSource()
	if err != nil {
		return err
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

	snapshots := make([]*types.Snapshot, 0, len(fiats))

	for _, fiat := range fiats {
		snapshot, err := orchestrator.Snapshot(ctx, fiat)
		if err != nil {
			return fmt.Errorf("unable to snapshot %s: %w", fiat, err)
		}

		snapshots = append(snapshots, snapshot)
	}

	if err := writeOutput(os.Stdout, snapshots, c.output, c.pretty, c.decimals); err != nil {
		return err
	}

	// Flag data shortages through the exit code
	var insufficient int

	for _, snapshot := range snapshots {
		if snapshot.Status == types.StatusInsufficientData {
			insufficient++
		}
	}

	if insufficient > 0 {
		return fmt.Errorf(
			"insufficient data for %d of %d market(s)",
			insufficient,
			len(snapshots),
		)
	}

	return nil
}

// adSource resolves the configured P2P ad provider
func (c *snapshotCfg) adSource() (quote.AdSource, error) {
	switch c.adsProvider {
	case "binance":
		return binance.NewProvider(c.timeout), nil
	case "eldorado":
		return eldorado.NewProvider(c.timeout), nil
	default:
		return nil, fmt.Errorf("unknown ads provider %q", c.adsProvider)
	}
}

// fxSource resolves the configured FX provider. In auto mode the XE
// API is preferred when credentials are present, then CoinAPI, with
// the credential-free XE page scraper as the fallback
func (c *snapshotCfg) fxSource() (quote.FxSource, error) {
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

// parseFiats splits and normalizes the comma-separated fiat list,
// deduplicating while preserving order
func parseFiats(raw string) []types.Currency {
	var (
		seen = make(map[string]struct{})
		out  []types.Currency
	)

	for _, part := range strings.Split(raw, ",") {
		code := strings.ToUpper(strings.TrimSpace(part))
		if code == "" {
			continue
		}

		if _, ok := seen[code]; ok {
			continue
		}

		seen[code] = struct{}{}
		out = append(out, types.Currency(code))
	}

	return out
}

func logLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}

	return slog.LevelInfo
}
