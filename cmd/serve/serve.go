package serve

import (
	"context"
	"flag"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/premiums/cmd/env"
	"github.com/sig-0/premiums/p2p"
	"github.com/sig-0/premiums/server/config"
	"github.com/sig-0/premiums/storage/types"
)

// serveCfg wraps the serve configuration
type serveCfg struct {
	config *config.Config

	configPath string

	fiats       string
	asset       string
	refFiat     string
	minValidAds int
	minAmount   float64
	maxAmount   float64

	adsProvider string
	fxProvider  string
	xeAccountID string
	xeAPIKey    string
	coinAPIKey  string

	interval time.Duration
	timeout  time.Duration
}

// NewServeCmd creates the serve subcommand
func NewServeCmd() *ffcli.Command {
	cfg := &serveCfg{
		config: config.DefaultConfig(),
	}

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg.registerFlags(fs)

	cmd := &ffcli.Command{
		Name:       "serve",
		ShortUsage: "serve <subcommand> [flags]",
		LongHelp:   "Serves the premiums backend",
		FlagSet:    fs,
		Exec: func(_ context.Context, _ []string) error {
			return flag.ErrHelp
		},
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}

	cmd.Subcommands = []*ffcli.Command{
		newServeSQLCmd(cfg),
		newServeMemoryCmd(cfg),
	}

	return cmd
}

func (c *serveCfg) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.config.ListenAddress,
		"listen",
		config.DefaultListenAddress,
		"the IP:PORT URL for the server",
	)

	fs.StringVar(
		&c.configPath,
		"config",
		"",
		"the path to the server TOML configuration, if any",
	)

	fs.StringVar(
		&c.fiats,
		"fiats",
		"MXN,BRL,ARS",
		"comma-separated fiat codes to track",
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
		&c.interval,
		"interval",
		time.Minute*10,
		"the snapshot ingestion interval",
	)

	fs.DurationVar(
		&c.timeout,
		"timeout",
		time.Second*30,
		"the per-request provider timeout",
	)
}
