package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/buddy-dubby/reselling-app/internal/scheduler"
	"github.com/buddy-dubby/reselling-app/internal/service"
)

// Revalue reprices inventory: one item with --item, the whole inventory by
// default, or a periodic watch loop with --watch.
func (a *App) Revalue(ctx context.Context, opts RevalueOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	var sched *scheduler.Scheduler
	if opts.Watch {
		sched = a.newScheduler()
	}

	svc := service.New(a.Config, sched, a.newEngine(), store, a.newNotifier(), a.Logger)

	switch {
	case opts.Watch:
		ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		a.Logger.Info().Dur("interval", a.Config.Revalue.Interval).Msg("starting revaluation watch")
		if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		a.Logger.Info().Msg("revaluation watch stopped")
		return nil

	case opts.ItemID != "":
		item, err := store.GetItem(ctx, opts.ItemID)
		if err != nil {
			return err
		}

		result, err := svc.RevalueItem(ctx, item)
		if err != nil {
			return err
		}

		printRecommendation(os.Stdout, result.Recommendation)
		if result.PreviousFair.IsPositive() {
			fmt.Fprintf(os.Stdout, "\nFair price drift since last valuation: %s%%\n", result.DriftPct.StringFixed(2))
		}
		if result.Alerted {
			fmt.Fprintln(os.Stdout, "drift alert dispatched")
		}
		return nil

	default:
		return svc.RevalueAll(ctx)
	}
}
