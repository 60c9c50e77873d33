package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/buddy-dubby/reselling-app/internal/market"
	"github.com/buddy-dubby/reselling-app/internal/pricing"
)

// Check runs a one-off price recommendation and prints it.
func (a *App) Check(ctx context.Context, opts CheckOptions) error {
	engine := a.newEngine()

	req := pricing.Request{
		ItemName:    opts.Name,
		Brand:       opts.Brand,
		Condition:   opts.Condition,
		RetailPrice: decimal.NewFromFloat(opts.RetailPrice),
		ItemCost:    decimal.NewFromFloat(opts.ItemCost),
	}
	if opts.NoLive {
		live := false
		req.LiveData = &live
	}

	rec, err := engine.Recommend(ctx, req)
	if err != nil {
		return err
	}

	printRecommendation(os.Stdout, rec)
	return nil
}

// printRecommendation renders one recommendation for a terminal. Revalue
// shares it for single-item output.
func printRecommendation(w io.Writer, rec *pricing.Recommendation) {
	name := rec.ItemName
	if rec.Brand != "" {
		name = rec.Brand + " " + name
	}
	fmt.Fprintf(w, "Item: %s (condition: %s)\n", name, rec.Condition)
	fmt.Fprintf(w, "Data source: %s\n", rec.DataSource)
	if rec.Market != nil {
		fmt.Fprintf(w, "Comps: %d sold listings, $%s - $%s, median $%s\n",
			rec.Market.Count,
			formatDecimal(rec.Market.Min, 2),
			formatDecimal(rec.Market.Max, 2),
			formatDecimal(rec.Market.Median, 2),
		)
	}

	fmt.Fprintf(w, "\nQuick sale: $%s   Fair price: $%s   Max value: $%s\n\n",
		formatDecimal(rec.Tiers.QuickSale, 2),
		formatDecimal(rec.Tiers.FairPrice, 2),
		formatDecimal(rec.Tiers.MaxValue, 2),
	)

	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Platform\tQuick net\tFair net\tMax net\tFair profit\tMargin%")
	for _, platform := range market.CanonicalPlatforms() {
		b, ok := rec.Platforms[platform]
		if !ok {
			continue
		}
		fmt.Fprintf(writer, "%s\t$%s\t$%s\t$%s\t$%s\t%s\n",
			platform,
			formatDecimal(b.QuickSale.NetPayout, 2),
			formatDecimal(b.FairPrice.NetPayout, 2),
			formatDecimal(b.MaxValue.NetPayout, 2),
			formatDecimal(b.FairPrice.Profit, 2),
			formatDecimal(b.FairPrice.ProfitMarginPct, 1),
		)
	}
	writer.Flush()

	if rec.Advisory != "" {
		fmt.Fprintf(w, "\n%s\n", rec.Advisory)
	}
}
