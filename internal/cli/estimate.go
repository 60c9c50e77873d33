package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buddy-dubby/reselling-app/internal/app"
)

var (
	estimateRetail float64
	estimateCond   string
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate resale value from retail price alone",
	RunE: func(cmd *cobra.Command, args []string) error {
		if estimateRetail <= 0 {
			return fmt.Errorf("--retail must be greater than zero")
		}

		opts := app.EstimateOptions{
			RetailPrice: estimateRetail,
			Condition:   estimateCond,
		}

		return getApp().Estimate(opts)
	},
}

func init() {
	estimateCmd.Flags().Float64Var(&estimateRetail, "retail", 0, "Original retail price in USD")
	estimateCmd.Flags().StringVar(&estimateCond, "condition", "good", "Condition: new, excellent, good, or fair")
}
