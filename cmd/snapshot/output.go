package snapshot

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"github.com/sig-0/premiums/storage/types"
)

// csvHeader is the stable CSV column set
var csvHeader = []string{
	"fiat",
	"asset",
	"ref_fiat",
	"sell_rate",
	"buy_rate",
	"fx.bid",
	"fx.ask",
	"stablecoin_sell_premium",
	"stablecoin_buy_premium",
	"stablecoin_buy_sell_spread",
	"status",
}

// writeOutput renders the snapshots in the requested format
func writeOutput(
	w io.Writer,
	snapshots []*types.Snapshot,
	format string,
	pretty bool,
	decimals int,
) error {
	for _, snapshot := range snapshots {
		roundSnapshot(snapshot, decimals)
	}

	switch format {
	case "json":
		return writeJSON(w, snapshots, pretty)
	case "csv":
		return writeCSV(w, snapshots)
	case "table":
		return writeTable(w, snapshots)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeJSON(w io.Writer, snapshots []*types.Snapshot, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}

	return enc.Encode(snapshots)
}

func writeCSV(w io.Writer, snapshots []*types.Snapshot) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, s := range snapshots {
		var fxBid, fxAsk *float64
		if s.Fx != nil {
			fxBid, fxAsk = &s.Fx.Bid, &s.Fx.Ask
		}

		record := []string{
			s.Fiat.String(),
			s.Asset.String(),
			s.RefFiat.String(),
			csvFloat(s.SellRate),
			csvFloat(s.BuyRate),
			csvFloat(fxBid),
			csvFloat(fxAsk),
			csvFloat(s.SellPremium),
			csvFloat(s.BuyPremium),
			csvFloat(s.BuySellSpread),
			s.Status.String(),
		}

		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

func writeTable(w io.Writer, snapshots []*types.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	_, _ = fmt.Fprintln(
		tw,
		"FIAT\tASSET\tSELL\tBUY\tFX BID\tFX ASK\tSELL %\tBUY %\tSPREAD %\tSTATUS",
	)

	for _, s := range snapshots {
		var fxBid, fxAsk *float64
		if s.Fx != nil {
			fxBid, fxAsk = &s.Fx.Bid, &s.Fx.Ask
		}

		_, _ = fmt.Fprintf(
			tw,
			"%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Fiat,
			s.Asset,
			tableFloat(s.SellRate),
			tableFloat(s.BuyRate),
			tableFloat(fxBid),
			tableFloat(fxAsk),
			tableFloat(s.SellPremium),
			tableFloat(s.BuyPremium),
			tableFloat(s.BuySellSpread),
			s.Status,
		)
	}

	return tw.Flush()
}

// roundSnapshot rounds the computed metrics for display.
// Negative decimals leaves full precision
func roundSnapshot(s *types.Snapshot, decimals int) {
	if decimals < 0 {
		return
	}

	for _, v := range []*float64{s.SellPremium, s.BuyPremium, s.BuySellSpread} {
		if v == nil {
			continue
		}

		*v = roundTo(*v, decimals)
	}
}

func roundTo(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))

	return math.Round(v*factor) / factor
}

func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}

	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func tableFloat(v *float64) string {
	if v == nil {
		return "-"
	}

	return strconv.FormatFloat(*v, 'f', 2, 64)
}
