package app

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/buddy-dubby/reselling-app/internal/market"
	"github.com/buddy-dubby/reselling-app/internal/pricing"
)

// Fees prints the per-marketplace fee and profit table for one sale price.
func (a *App) Fees(opts FeesOptions) error {
	price := decimal.NewFromFloat(opts.SalePrice)
	cost := decimal.NewFromFloat(opts.ItemCost)

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Platform\tFee\tNet payout\tProfit\tMargin%")

	platforms := append(market.CanonicalPlatforms(), market.Xiaohongshu)
	for _, platform := range platforms {
		b := pricing.NetProfit(price, platform, cost)
		fmt.Fprintf(writer, "%s\t$%s\t$%s\t$%s\t%s\n",
			platform,
			formatDecimal(b.PlatformFee, 2),
			formatDecimal(b.NetPayout, 2),
			formatDecimal(b.Profit, 2),
			formatDecimal(b.ProfitMarginPct, 1),
		)
	}
	return writer.Flush()
}
