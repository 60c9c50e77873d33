package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buddy-dubby/reselling-app/internal/app"
)

var (
	feesPrice float64
	feesCost  float64
)

var feesCmd = &cobra.Command{
	Use:   "fees",
	Short: "Show marketplace fees and profit for a sale price",
	RunE: func(cmd *cobra.Command, args []string) error {
		if feesPrice <= 0 {
			return fmt.Errorf("--price must be greater than zero")
		}

		opts := app.FeesOptions{
			SalePrice: feesPrice,
			ItemCost:  feesCost,
		}

		return getApp().Fees(opts)
	},
}

func init() {
	feesCmd.Flags().Float64Var(&feesPrice, "price", 0, "Planned sale price in USD")
	feesCmd.Flags().Float64Var(&feesCost, "cost", 0, "What the item cost you in USD")
}
