package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buddy-dubby/reselling-app/internal/app"
)

var (
	checkName   string
	checkBrand  string
	checkCond   string
	checkRetail float64
	checkCost   float64
	checkNoLive bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Recommend prices for one item",
	RunE: func(cmd *cobra.Command, args []string) error {
		if checkName == "" {
			return fmt.Errorf("--name must be provided")
		}

		opts := app.CheckOptions{
			Name:        checkName,
			Brand:       checkBrand,
			Condition:   checkCond,
			RetailPrice: checkRetail,
			ItemCost:    checkCost,
			NoLive:      checkNoLive,
		}

		return getApp().Check(cmd.Context(), opts)
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkName, "name", "", "Item name to price")
	checkCmd.Flags().StringVar(&checkBrand, "brand", "", "Brand name")
	checkCmd.Flags().StringVar(&checkCond, "condition", "good", "Condition: new, excellent, good, or fair")
	checkCmd.Flags().Float64Var(&checkRetail, "retail", 0, "Original retail price in USD")
	checkCmd.Flags().Float64Var(&checkCost, "cost", 0, "What the item cost you in USD")
	checkCmd.Flags().BoolVar(&checkNoLive, "no-live", false, "Skip live marketplace lookups")
}
