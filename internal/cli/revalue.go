package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buddy-dubby/reselling-app/internal/app"
)

var (
	revalueItemID string
	revalueWatch  bool
)

var revalueCmd = &cobra.Command{
	Use:   "revalue",
	Short: "Reprice inventory and record valuation snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		if revalueWatch && revalueItemID != "" {
			return fmt.Errorf("--watch cannot be combined with --item")
		}

		opts := app.RevalueOptions{
			ItemID: revalueItemID,
			Watch:  revalueWatch,
		}

		return getApp().Revalue(cmd.Context(), opts)
	},
}

func init() {
	revalueCmd.Flags().StringVar(&revalueItemID, "item", "", "Revalue a single item id")
	revalueCmd.Flags().BoolVar(&revalueWatch, "watch", false, "Keep revaluing on the configured interval")
}
