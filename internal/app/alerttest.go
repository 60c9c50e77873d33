package app

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/buddy-dubby/reselling-app/internal/alerting"
	"github.com/buddy-dubby/reselling-app/internal/service"
)

// SimulateAlert 通过给定的前后公允价模拟一次漂移告警。
func (a *App) SimulateAlert(ctx context.Context, previous, current decimal.Decimal) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting 未启用")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("未配置任何告警通道")
	}

	drift := service.DriftPct(previous, current)

	direction := "flat"
	switch drift.Sign() {
	case 1:
		direction = "up"
	case -1:
		direction = "down"
	}

	note := alerting.Notification{
		ItemID:       "simulated",
		ItemName:     "Simulated item",
		PreviousFair: previous,
		CurrentFair:  current,
		DriftPct:     drift,
		ThresholdPct: decimal.NewFromFloat(a.Config.Alerting.ThresholdPct),
		Direction:    direction,
		DataSource:   "simulated",
		At:           time.Now().UTC(),
		Channels:     a.Config.Alerting.Channels,
	}

	return notifier.Notify(ctx, note)
}
