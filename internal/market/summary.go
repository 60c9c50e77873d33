package market

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrInsufficientData signals fewer usable observations than the minimum
// required for a meaningful summary.
var ErrInsufficientData = errors.New("market: insufficient data")

// SourceTagLive tags summaries built from scraped sold listings.
const SourceTagLive = "live_scrape"

// minObservations is the smallest sample a summary may be built from.
const minObservations = 3

var (
	outlierFactor  = decimal.NewFromInt(3)
	quickSaleRatio = decimal.NewFromFloat(0.85)
	maxValueRatio  = decimal.NewFromFloat(1.20)
	two            = decimal.NewFromInt(2)
)

// Summary condenses a set of price observations into robust statistics plus
// the three derived listing tiers. Count reflects the filtered set the
// statistics were computed from.
type Summary struct {
	Count     int
	Min       decimal.Decimal
	Max       decimal.Decimal
	Average   decimal.Decimal
	Median    decimal.Decimal
	QuickSale decimal.Decimal
	FairPrice decimal.Decimal
	MaxValue  decimal.Decimal
	SourceTag string
}

// Summarize aggregates raw price observations into a Summary. It returns
// ErrInsufficientData when fewer than three observations are supplied.
//
// Outliers are removed in a single pass: any price exceeding three times the
// mean of the unfiltered set is dropped. The threshold is never recomputed
// from the survivors, and if the filter would empty the set the unfiltered
// prices are used instead, so filtering alone can never fail the summary.
//
// Monetary results are rounded to two decimal places, half away from zero.
func Summarize(observations []Observation) (*Summary, error) {
	if len(observations) < minObservations {
		return nil, ErrInsufficientData
	}

	prices := make([]decimal.Decimal, 0, len(observations))
	for _, obs := range observations {
		prices = append(prices, obs.Price)
	}

	threshold := mean(prices).Mul(outlierFactor)
	filtered := make([]decimal.Decimal, 0, len(prices))
	for _, p := range prices {
		if !p.GreaterThan(threshold) {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == 0 {
		filtered = prices
	}

	sort.Slice(filtered, func(i, j int) bool { return filtered[i].LessThan(filtered[j]) })
	med := median(filtered)

	return &Summary{
		Count:     len(filtered),
		Min:       filtered[0],
		Max:       filtered[len(filtered)-1],
		Average:   mean(filtered).Round(2),
		Median:    med.Round(2),
		QuickSale: med.Mul(quickSaleRatio).Round(2),
		FairPrice: med.Round(2),
		MaxValue:  med.Mul(maxValueRatio).Round(2),
		SourceTag: SourceTagLive,
	}, nil
}

func mean(prices []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range prices {
		sum = sum.Add(p)
	}
	return sum.Div(decimal.NewFromInt(int64(len(prices))))
}

// median expects its input sorted ascending.
func median(prices []decimal.Decimal) decimal.Decimal {
	mid := len(prices) / 2
	if len(prices)%2 == 1 {
		return prices[mid]
	}
	return prices[mid-1].Add(prices[mid]).Div(two)
}
