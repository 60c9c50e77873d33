package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/buddy-dubby/reselling-app/internal/market"
)

// feeSchedule is one marketplace's cut of a sale. A positive Threshold
// switches to the FlatBelow fee under it (Poshmark); PaymentPct/PaymentFlat
// model a payment-processing surcharge billed on top of the selling fee
// (Depop).
type feeSchedule struct {
	Percent     decimal.Decimal
	FlatBelow   decimal.Decimal
	Threshold   decimal.Decimal
	PaymentPct  decimal.Decimal
	PaymentFlat decimal.Decimal
}

// feeTable is static policy data, never mutated at runtime. Marketplaces not
// listed here pay defaultFee.
var (
	feeTable = map[market.Platform]feeSchedule{
		market.Poshmark: {
			Percent:   decimal.NewFromFloat(0.20),
			FlatBelow: decimal.NewFromFloat(2.95),
			Threshold: decimal.NewFromInt(15),
		},
		market.Depop: {
			Percent:     decimal.NewFromFloat(0.10),
			PaymentPct:  decimal.NewFromFloat(0.029),
			PaymentFlat: decimal.NewFromFloat(0.30),
		},
		market.Mercari: {Percent: decimal.NewFromFloat(0.10)},
		market.EBay:    {Percent: decimal.NewFromFloat(0.1315)},
	}
	defaultFee = feeSchedule{Percent: decimal.NewFromFloat(0.10)}

	hundred = decimal.NewFromInt(100)
)

// ProfitBreakdown describes what a sale at a given price on a given
// marketplace leaves the seller after fees and item cost.
type ProfitBreakdown struct {
	SalePrice       decimal.Decimal
	PlatformFee     decimal.Decimal
	NetPayout       decimal.Decimal
	Profit          decimal.Decimal
	ProfitMarginPct decimal.Decimal
}

// NetProfit computes the fee, payout, and profit for one sale. It is a pure
// function of its inputs. A zero sale price yields a zero margin rather than
// an error. Monetary fields are rounded to two decimal places, the margin to
// one.
func NetProfit(salePrice decimal.Decimal, platform market.Platform, itemCost decimal.Decimal) ProfitBreakdown {
	fee := platformFee(salePrice, platform)
	net := salePrice.Sub(fee)

	profit := net
	if itemCost.IsPositive() {
		profit = net.Sub(itemCost)
	}

	margin := decimal.Zero
	if salePrice.IsPositive() {
		margin = profit.Div(salePrice).Mul(hundred).Round(1)
	}

	return ProfitBreakdown{
		SalePrice:       salePrice.Round(2),
		PlatformFee:     fee.Round(2),
		NetPayout:       net.Round(2),
		Profit:          profit.Round(2),
		ProfitMarginPct: margin,
	}
}

// platformFee 按各平台的抽成规则计算手续费。Unrecognised marketplaces fall
// back to the default rate.
func platformFee(salePrice decimal.Decimal, platform market.Platform) decimal.Decimal {
	schedule, ok := feeTable[platform]
	if !ok {
		schedule = defaultFee
	}

	if schedule.Threshold.IsPositive() && salePrice.LessThan(schedule.Threshold) {
		return schedule.FlatBelow
	}

	fee := salePrice.Mul(schedule.Percent)
	if schedule.PaymentPct.IsPositive() {
		fee = fee.Add(salePrice.Mul(schedule.PaymentPct)).Add(schedule.PaymentFlat)
	}
	return fee
}
