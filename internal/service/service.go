package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/buddy-dubby/reselling-app/internal/alerting"
	"github.com/buddy-dubby/reselling-app/internal/config"
	"github.com/buddy-dubby/reselling-app/internal/pricing"
	"github.com/buddy-dubby/reselling-app/internal/scheduler"
	"github.com/buddy-dubby/reselling-app/internal/storage"
)

var hundred = decimal.NewFromInt(100)

// Service orchestrates repricing, valuation persistence, and drift alerting.
type Service struct {
	scheduler *scheduler.Scheduler
	engine    *pricing.Engine
	store     storage.Store
	notifier  alerting.Notifier
	logger    zerolog.Logger

	threshold decimal.Decimal
	channels  []string
	alertsOn  bool
}

// New constructs the revaluation service.
func New(cfg *config.Config, sched *scheduler.Scheduler, engine *pricing.Engine, store storage.Store, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	threshold := decimal.Zero
	if cfg.Alerting.Enabled && cfg.Alerting.ThresholdPct > 0 {
		threshold = decimal.NewFromFloat(cfg.Alerting.ThresholdPct)
	}

	return &Service{
		scheduler: sched,
		engine:    engine,
		store:     store,
		notifier:  notifier,
		logger:    logger.With().Str("component", "service").Logger(),
		threshold: threshold,
		channels:  cfg.Alerting.Channels,
		alertsOn:  cfg.Alerting.Enabled,
	}
}

// Result is one repricing outcome: the fresh recommendation, the persisted
// snapshot, and how far the fair price drifted since the previous sweep.
type Result struct {
	Recommendation *pricing.Recommendation
	Valuation      storage.Valuation
	PreviousFair   decimal.Decimal
	DriftPct       decimal.Decimal
	Alerted        bool
}

// Run begins the periodic revaluation loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, func(ctx context.Context, _ time.Time) error {
		return s.RevalueAll(ctx)
	})
}

// RevalueAll 对库存中所有未售出物品执行一轮重估。Per-item failures are
// logged and never abort the sweep.
func (s *Service) RevalueAll(ctx context.Context) error {
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}

	processed := 0
	failed := 0
	for _, item := range items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if item.Status == storage.StatusSold {
			continue
		}

		if _, err := s.RevalueItem(ctx, item); err != nil {
			failed++
			s.logger.Error().Err(err).Str("item_id", item.ID).Msg("重估失败")
			continue
		}
		processed++
	}

	s.logger.Info().Int("processed", processed).Int("failed", failed).Msg("重估完成")
	if failed > 0 {
		return errors.New("部分物品重估失败，请检查日志")
	}
	return nil
}

// RevalueItem 对单个物品执行重估逻辑。It reprices the item, appends a
// valuation snapshot, and dispatches a drift alert when the fair price moved
// beyond the configured threshold since the previous snapshot.
func (s *Service) RevalueItem(ctx context.Context, item storage.Item) (*Result, error) {
	previous, err := s.store.ListValuations(ctx, item.ID, 1)
	if err != nil {
		return nil, fmt.Errorf("load previous valuation: %w", err)
	}

	rec, err := s.engine.Recommend(ctx, pricing.Request{
		ItemName:    item.Name,
		Brand:       item.Brand,
		Condition:   item.Condition,
		RetailPrice: item.RetailPrice,
		ItemCost:    item.Cost,
	})
	if err != nil {
		return nil, fmt.Errorf("reprice item: %w", err)
	}

	valuation := storage.Valuation{
		ItemID:     item.ID,
		QuickSale:  rec.Tiers.QuickSale,
		FairPrice:  rec.Tiers.FairPrice,
		MaxValue:   rec.Tiers.MaxValue,
		DataSource: rec.DataSource,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.AppendValuation(ctx, valuation); err != nil {
		s.logger.Error().Err(err).Str("item_id", item.ID).Msg("failed to persist valuation")
	}

	result := &Result{Recommendation: rec, Valuation: valuation}
	if len(previous) > 0 {
		result.PreviousFair = previous[0].FairPrice
		result.DriftPct = DriftPct(previous[0].FairPrice, valuation.FairPrice)
	}

	s.logger.Info().Str("item_id", item.ID).
		Str("data_source", rec.DataSource).
		Str("fair_price", valuation.FairPrice.String()).
		Str("drift_pct", result.DriftPct.String()).
		Msg("valuation recorded")

	if s.alertsOn && s.notifier != nil && !s.threshold.IsZero() && len(previous) > 0 {
		if result.DriftPct.Abs().GreaterThan(s.threshold) {
			note := alerting.Notification{
				ItemID:       item.ID,
				ItemName:     item.Name,
				PreviousFair: result.PreviousFair,
				CurrentFair:  valuation.FairPrice,
				DriftPct:     result.DriftPct,
				ThresholdPct: s.threshold,
				Direction:    classifyDrift(result.DriftPct),
				DataSource:   rec.DataSource,
				At:           valuation.CreatedAt,
				Channels:     s.channels,
			}
			if err := s.notifier.Notify(ctx, note); err != nil {
				s.logger.Error().Err(err).Str("item_id", item.ID).Msg("failed to dispatch alert")
			} else {
				result.Alerted = true
			}
		}
	}

	return result, nil
}

// DriftPct reports the percentage move from previous to current. A
// non-positive previous value yields zero, so a first-ever valuation never
// looks like a jump.
func DriftPct(previous, current decimal.Decimal) decimal.Decimal {
	if !previous.IsPositive() {
		return decimal.Zero
	}
	return current.Div(previous).Sub(decimal.NewFromInt(1)).Mul(hundred)
}

func classifyDrift(d decimal.Decimal) string {
	switch d.Sign() {
	case 1:
		return "up"
	case -1:
		return "down"
	default:
		return "flat"
	}
}
