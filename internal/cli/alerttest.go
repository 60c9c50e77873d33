package cli

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	alertTestPrevious float64
	alertTestCurrent  float64
)

var alertTestCmd = &cobra.Command{
	Use:   "alert-test",
	Short: "模拟一次估值漂移并触发告警",
	RunE: func(cmd *cobra.Command, args []string) error {
		if alertTestPrevious <= 0 || alertTestCurrent <= 0 {
			return errors.New("--previous 与 --current 必须大于 0")
		}

		previous := decimal.NewFromFloat(alertTestPrevious)
		current := decimal.NewFromFloat(alertTestCurrent)
		return getApp().SimulateAlert(cmd.Context(), previous, current)
	},
}

func init() {
	alertTestCmd.Flags().Float64Var(&alertTestPrevious, "previous", 0, "上一次公允价 (USD)")
	alertTestCmd.Flags().Float64Var(&alertTestCurrent, "current", 0, "本次公允价 (USD)")
}
