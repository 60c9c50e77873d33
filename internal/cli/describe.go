package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buddy-dubby/reselling-app/internal/app"
)

var (
	describeItemID   string
	describePlatform string
	describeName     string
	describeBrand    string
	describeCategory string
	describeCond     string
	describeColor    string
	describeSize     string
	describeMeasure  string
	describeNotes    string
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Generate listing copy for an item",
	RunE: func(cmd *cobra.Command, args []string) error {
		if describeItemID == "" && describeName == "" {
			return fmt.Errorf("either --item or --name must be provided")
		}

		opts := app.DescribeOptions{
			ItemID:       describeItemID,
			Platform:     describePlatform,
			Name:         describeName,
			Brand:        describeBrand,
			Category:     describeCategory,
			Condition:    describeCond,
			Color:        describeColor,
			Size:         describeSize,
			Measurements: describeMeasure,
			Notes:        describeNotes,
		}

		return getApp().Describe(cmd.Context(), opts)
	},
}

func init() {
	describeCmd.Flags().StringVar(&describeItemID, "item", "", "Inventory item id to describe")
	describeCmd.Flags().StringVar(&describePlatform, "platform", "", "Print copy for one platform only")
	describeCmd.Flags().StringVar(&describeName, "name", "", "Item name")
	describeCmd.Flags().StringVar(&describeBrand, "brand", "", "Brand name")
	describeCmd.Flags().StringVar(&describeCategory, "category", "", "Category: tops, bottoms, dresses, outerwear, shoes, bags, accessories, other")
	describeCmd.Flags().StringVar(&describeCond, "condition", "good", "Condition: new, excellent, good, or fair")
	describeCmd.Flags().StringVar(&describeColor, "color", "", "Primary color")
	describeCmd.Flags().StringVar(&describeSize, "size", "", "Labelled size")
	describeCmd.Flags().StringVar(&describeMeasure, "measurements", "", "Key measurements")
	describeCmd.Flags().StringVar(&describeNotes, "notes", "", "Extra selling points")
}
