package app

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/buddy-dubby/reselling-app/internal/market"
	"github.com/buddy-dubby/reselling-app/internal/pricing"
)

// Estimate prints the retail-anchored resale range without touching any
// marketplace.
func (a *App) Estimate(opts EstimateOptions) error {
	retail := decimal.NewFromFloat(opts.RetailPrice)
	condition := market.ParseCondition(opts.Condition)

	est, err := pricing.EstimateFromRetail(retail, condition)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Retail $%s, condition %s:\n", formatDecimal(retail, 2), condition)
	fmt.Fprintf(os.Stdout, "  low:  $%s\n", formatDecimal(est.Low, 2))
	fmt.Fprintf(os.Stdout, "  avg:  $%s\n", formatDecimal(est.Avg, 2))
	fmt.Fprintf(os.Stdout, "  high: $%s\n", formatDecimal(est.High, 2))
	return nil
}
