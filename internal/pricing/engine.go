package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/buddy-dubby/reselling-app/internal/market"
)

// ErrMissingItemName is the only hard failure a recommendation request can
// produce. Every other problem degrades to the next pricing strategy.
var ErrMissingItemName = errors.New("pricing: item name is required")

const (
	sourceTagRetail  = "estimated from retail"
	sourceTagDefault = "default estimate"
)

var (
	defaultQuickSale = decimal.NewFromInt(25)
	defaultFairPrice = decimal.NewFromInt(50)
	defaultMaxValue  = decimal.NewFromInt(75)
	costFloorFactor  = decimal.NewFromFloat(1.10)
)

// Request carries the attributes a recommendation is computed from.
// RetailPrice of zero or less means no retail price is known. LiveData
// overrides the engine-wide live-data switch when set.
type Request struct {
	ItemName    string
	Brand       string
	Condition   string
	RetailPrice decimal.Decimal
	ItemCost    decimal.Decimal
	LiveData    *bool
}

// PriceTiers are the three listing prices offered to the seller.
type PriceTiers struct {
	QuickSale decimal.Decimal
	FairPrice decimal.Decimal
	MaxValue  decimal.Decimal
}

// TierBreakdowns holds one fee breakdown per price tier on one marketplace.
type TierBreakdowns struct {
	QuickSale ProfitBreakdown
	FairPrice ProfitBreakdown
	MaxValue  ProfitBreakdown
}

// Recommendation is the full pricing decision for one item.
type Recommendation struct {
	ItemName   string
	Brand      string
	Condition  market.Condition
	DataSource string
	Market     *market.Summary
	Tiers      PriceTiers
	Range      Estimate
	Platforms  map[market.Platform]TierBreakdowns
	Advisory   string
}

// Engine turns item attributes into a price recommendation. Pricing
// strategies are tried in a fixed order and the first one that produces tiers
// wins: live sold-listing data, then the retail heuristic, then static
// defaults. The default strategy always succeeds, so Recommend only fails on
// invalid input.
type Engine struct {
	source market.Source
	live   bool
	logger zerolog.Logger
}

// NewEngine constructs the recommendation engine. A nil source disables the
// live-data strategy regardless of liveData.
func NewEngine(source market.Source, liveData bool, logger zerolog.Logger) *Engine {
	return &Engine{
		source: source,
		live:   liveData,
		logger: logger.With().Str("component", "pricing").Logger(),
	}
}

// pricing is one strategy's answer: tiers plus provenance.
type pricing struct {
	tiers      PriceTiers
	dataSource string
	summary    *market.Summary
	estRange   Estimate
}

type strategy func(ctx context.Context, req Request) (*pricing, bool)

// Recommend 为单个物品生成定价建议。Marketplace failures and thin data fall
// through to the next strategy instead of surfacing to the caller.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Recommendation, error) {
	name := strings.TrimSpace(req.ItemName)
	if name == "" {
		return nil, ErrMissingItemName
	}
	condition := market.ParseCondition(req.Condition)

	strategies := []strategy{
		e.liveStrategy,
		e.retailStrategy,
		e.defaultStrategy,
	}

	var result *pricing
	for _, s := range strategies {
		if p, ok := s(ctx, req); ok {
			result = p
			break
		}
	}

	tiers := e.applyCostFloor(result.tiers, req.ItemCost)

	platforms := make(map[market.Platform]TierBreakdowns, len(market.CanonicalPlatforms()))
	for _, platform := range market.CanonicalPlatforms() {
		platforms[platform] = TierBreakdowns{
			QuickSale: NetProfit(tiers.QuickSale, platform, req.ItemCost),
			FairPrice: NetProfit(tiers.FairPrice, platform, req.ItemCost),
			MaxValue:  NetProfit(tiers.MaxValue, platform, req.ItemCost),
		}
	}

	return &Recommendation{
		ItemName:   name,
		Brand:      strings.TrimSpace(req.Brand),
		Condition:  condition,
		DataSource: result.dataSource,
		Market:     result.summary,
		Tiers:      tiers,
		Range:      result.estRange,
		Platforms:  platforms,
		Advisory: fmt.Sprintf("List at $%s for fair value, or $%s for quick sale",
			tiers.FairPrice.StringFixed(2), tiers.QuickSale.StringFixed(2)),
	}, nil
}

func (e *Engine) liveStrategy(ctx context.Context, req Request) (*pricing, bool) {
	live := e.live
	if req.LiveData != nil {
		live = *req.LiveData
	}
	if !live || e.source == nil {
		return nil, false
	}

	query := strings.TrimSpace(strings.TrimSpace(req.Brand) + " " + strings.TrimSpace(req.ItemName))
	observations, err := e.source.Search(ctx, query)
	if err != nil {
		e.logger.Warn().Err(err).Str("query", query).Msg("market search failed, falling back")
		return nil, false
	}

	summary, err := market.Summarize(observations)
	if err != nil {
		e.logger.Debug().Str("query", query).Int("observations", len(observations)).
			Msg("not enough sold listings, falling back")
		return nil, false
	}

	return &pricing{
		tiers: PriceTiers{
			QuickSale: summary.QuickSale,
			FairPrice: summary.FairPrice,
			MaxValue:  summary.MaxValue,
		},
		dataSource: fmt.Sprintf("live (%d sold listings)", summary.Count),
		summary:    summary,
		estRange:   Estimate{Low: summary.Min, High: summary.Max, Avg: summary.Average},
	}, true
}

func (e *Engine) retailStrategy(_ context.Context, req Request) (*pricing, bool) {
	est, err := EstimateFromRetail(req.RetailPrice, market.ParseCondition(req.Condition))
	if err != nil {
		return nil, false
	}

	return &pricing{
		tiers: PriceTiers{
			QuickSale: est.Low,
			FairPrice: est.Avg,
			MaxValue:  est.High,
		},
		dataSource: sourceTagRetail,
		estRange:   est,
	}, true
}

func (e *Engine) defaultStrategy(_ context.Context, _ Request) (*pricing, bool) {
	return &pricing{
		tiers: PriceTiers{
			QuickSale: defaultQuickSale,
			FairPrice: defaultFairPrice,
			MaxValue:  defaultMaxValue,
		},
		dataSource: sourceTagDefault,
		estRange:   Estimate{Low: defaultQuickSale, High: defaultMaxValue, Avg: defaultFairPrice},
	}, true
}

// applyCostFloor raises the quick-sale and fair tiers to 110% of the item
// cost. The max-value tier is never raised, so a steep cost can leave the
// fair tier sitting above it.
func (e *Engine) applyCostFloor(tiers PriceTiers, itemCost decimal.Decimal) PriceTiers {
	if !itemCost.IsPositive() {
		return tiers
	}
	floor := itemCost.Mul(costFloorFactor).Round(2)
	if tiers.QuickSale.LessThan(floor) {
		tiers.QuickSale = floor
	}
	if tiers.FairPrice.LessThan(floor) {
		tiers.FairPrice = floor
	}
	return tiers
}
