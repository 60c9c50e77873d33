package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buddy-dubby/reselling-app/internal/app"
)

var (
	addName     string
	addBrand    string
	addCategory string
	addCond     string
	addColor    string
	addSize     string
	addMeasure  string
	addNotes    string
	addRetail   float64
	addCost     float64
	addFloor    float64
	addTarget   float64
	addStatus   string

	showHistory int
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Manage tracked resale inventory",
}

var inventoryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an item to inventory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if addName == "" {
			return fmt.Errorf("--name must be provided")
		}

		opts := app.AddItemOptions{
			Name:         addName,
			Brand:        addBrand,
			Category:     addCategory,
			Condition:    addCond,
			Color:        addColor,
			Size:         addSize,
			Measurements: addMeasure,
			Notes:        addNotes,
			RetailPrice:  addRetail,
			Cost:         addCost,
			FloorPrice:   addFloor,
			TargetPrice:  addTarget,
			Status:       addStatus,
		}

		return getApp().InventoryAdd(cmd.Context(), opts)
	},
}

var inventoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all inventory items",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().InventoryList(cmd.Context())
	},
}

var inventoryShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one item and its valuation history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if showHistory <= 0 {
			return fmt.Errorf("--history must be greater than zero")
		}

		opts := app.ShowItemOptions{
			ItemID:  args[0],
			History: showHistory,
		}

		return getApp().InventoryShow(cmd.Context(), opts)
	},
}

var inventoryRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove an item from inventory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().InventoryRemove(cmd.Context(), args[0])
	},
}

func init() {
	inventoryAddCmd.Flags().StringVar(&addName, "name", "", "Item name")
	inventoryAddCmd.Flags().StringVar(&addBrand, "brand", "", "Brand name")
	inventoryAddCmd.Flags().StringVar(&addCategory, "category", "", "Category: tops, bottoms, dresses, outerwear, shoes, bags, accessories, other")
	inventoryAddCmd.Flags().StringVar(&addCond, "condition", "good", "Condition: new, excellent, good, or fair")
	inventoryAddCmd.Flags().StringVar(&addColor, "color", "", "Primary color")
	inventoryAddCmd.Flags().StringVar(&addSize, "size", "", "Labelled size")
	inventoryAddCmd.Flags().StringVar(&addMeasure, "measurements", "", "Key measurements")
	inventoryAddCmd.Flags().StringVar(&addNotes, "notes", "", "Extra selling points")
	inventoryAddCmd.Flags().Float64Var(&addRetail, "retail", 0, "Original retail price in USD")
	inventoryAddCmd.Flags().Float64Var(&addCost, "cost", 0, "What the item cost you in USD")
	inventoryAddCmd.Flags().Float64Var(&addFloor, "floor", 0, "Lowest acceptable sale price in USD")
	inventoryAddCmd.Flags().Float64Var(&addTarget, "target", 0, "Target sale price in USD")
	inventoryAddCmd.Flags().StringVar(&addStatus, "status", "unlisted", "Status: unlisted, listed, or sold")

	inventoryShowCmd.Flags().IntVar(&showHistory, "history", 10, "Number of valuations to display")

	inventoryCmd.AddCommand(inventoryAddCmd)
	inventoryCmd.AddCommand(inventoryListCmd)
	inventoryCmd.AddCommand(inventoryShowCmd)
	inventoryCmd.AddCommand(inventoryRemoveCmd)
}
