package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/buddy-dubby/reselling-app/internal/market"
)

// ErrInvalidRetailPrice signals a retail price that cannot anchor an estimate.
var ErrInvalidRetailPrice = errors.New("pricing: retail price must be positive")

// conditionMultipliers maps a condition grade to the share of retail price a
// secondhand sale typically recovers.
type conditionMultipliers struct {
	low  decimal.Decimal
	high decimal.Decimal
}

var multipliers = map[market.Condition]conditionMultipliers{
	market.ConditionNew:       {low: decimal.NewFromFloat(0.60), high: decimal.NewFromFloat(0.85)},
	market.ConditionExcellent: {low: decimal.NewFromFloat(0.45), high: decimal.NewFromFloat(0.65)},
	market.ConditionGood:      {low: decimal.NewFromFloat(0.30), high: decimal.NewFromFloat(0.50)},
	market.ConditionFair:      {low: decimal.NewFromFloat(0.15), high: decimal.NewFromFloat(0.30)},
}

// Estimate is a resale price range anchored on a retail price.
type Estimate struct {
	Low  decimal.Decimal
	High decimal.Decimal
	Avg  decimal.Decimal
}

// EstimateFromRetail 根据零售价与成色推导转售价格区间。
// Unknown condition grades use the good multipliers. All values are rounded to
// two decimal places, half away from zero.
func EstimateFromRetail(retail decimal.Decimal, condition market.Condition) (Estimate, error) {
	if !retail.IsPositive() {
		return Estimate{}, ErrInvalidRetailPrice
	}

	m, ok := multipliers[condition]
	if !ok {
		m = multipliers[market.ConditionGood]
	}

	low := retail.Mul(m.low)
	high := retail.Mul(m.high)
	return Estimate{
		Low:  low.Round(2),
		High: high.Round(2),
		Avg:  low.Add(high).Div(decimal.NewFromInt(2)).Round(2),
	}, nil
}
