package pricing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/buddy-dubby/reselling-app/internal/market"
)

// stubSource replays canned observations and records the query it saw.
type stubSource struct {
	observations []market.Observation
	err          error
	query        string
}

func (s *stubSource) Search(_ context.Context, query string) ([]market.Observation, error) {
	s.query = query
	return s.observations, s.err
}

func soldAt(prices ...float64) []market.Observation {
	obs := make([]market.Observation, 0, len(prices))
	for _, p := range prices {
		obs = append(obs, market.Observation{Platform: market.EBay, Price: decimal.NewFromFloat(p)})
	}
	return obs
}

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestRecommendRequiresItemName(t *testing.T) {
	engine := NewEngine(nil, false, noopLogger())
	if _, err := engine.Recommend(context.Background(), Request{ItemName: "   "}); !errors.Is(err, ErrMissingItemName) {
		t.Fatalf("缺少物品名称应报错, 实际 %v", err)
	}
}

func TestRecommendUsesLiveData(t *testing.T) {
	src := &stubSource{observations: soldAt(40, 45, 50, 52, 200)}
	engine := NewEngine(src, true, noopLogger())

	rec, err := engine.Recommend(context.Background(), Request{
		ItemName:  "Denim Jacket",
		Brand:     "Levi's",
		Condition: "good",
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if src.query != "Levi's Denim Jacket" {
		t.Fatalf("query: want %q, got %q", "Levi's Denim Jacket", src.query)
	}
	if rec.DataSource != "live (5 sold listings)" {
		t.Fatalf("data source: got %q", rec.DataSource)
	}
	if rec.Market == nil {
		t.Fatal("live recommendation should carry the market summary")
	}
	checkDecimal(t, "quick sale", rec.Tiers.QuickSale, "42.50")
	checkDecimal(t, "fair price", rec.Tiers.FairPrice, "50.00")
	checkDecimal(t, "max value", rec.Tiers.MaxValue, "60.00")
	checkDecimal(t, "range low", rec.Range.Low, "40")
	checkDecimal(t, "range high", rec.Range.High, "200")
}

func TestRecommendFallsBackToRetailOnSourceError(t *testing.T) {
	src := &stubSource{err: errors.New("marketplace unreachable")}
	engine := NewEngine(src, true, noopLogger())

	rec, err := engine.Recommend(context.Background(), Request{
		ItemName:    "Wool Coat",
		Condition:   "good",
		RetailPrice: decimal.NewFromInt(200),
	})
	if err != nil {
		t.Fatalf("抓取失败不应让整个请求失败: %v", err)
	}

	if rec.DataSource != sourceTagRetail {
		t.Fatalf("data source: got %q", rec.DataSource)
	}
	if rec.Market != nil {
		t.Fatal("retail fallback should not carry a market summary")
	}
	checkDecimal(t, "quick sale", rec.Tiers.QuickSale, "60.00")
	checkDecimal(t, "fair price", rec.Tiers.FairPrice, "80.00")
	checkDecimal(t, "max value", rec.Tiers.MaxValue, "100.00")
}

func TestRecommendFallsBackOnThinData(t *testing.T) {
	src := &stubSource{observations: soldAt(30, 35)}
	engine := NewEngine(src, true, noopLogger())

	rec, err := engine.Recommend(context.Background(), Request{
		ItemName:    "Silk Scarf",
		Condition:   "excellent",
		RetailPrice: decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.DataSource != sourceTagRetail {
		t.Fatalf("两条成交记录不足以支撑 live 档位, data source: %q", rec.DataSource)
	}
	checkDecimal(t, "fair price", rec.Tiers.FairPrice, "55.00")
}

func TestRecommendDefaultTiersAndCostFloor(t *testing.T) {
	engine := NewEngine(nil, false, noopLogger())

	rec, err := engine.Recommend(context.Background(), Request{
		ItemName: "Mystery Tee",
		ItemCost: decimal.NewFromInt(50),
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if rec.DataSource != sourceTagDefault {
		t.Fatalf("data source: got %q", rec.DataSource)
	}
	// Floor is 55.00; quick and fair are raised, max stays at 75.
	checkDecimal(t, "quick sale", rec.Tiers.QuickSale, "55.00")
	checkDecimal(t, "fair price", rec.Tiers.FairPrice, "55.00")
	checkDecimal(t, "max value", rec.Tiers.MaxValue, "75")
}

func TestRecommendCostFloorNeverRaisesMaxValue(t *testing.T) {
	engine := NewEngine(nil, false, noopLogger())

	rec, err := engine.Recommend(context.Background(), Request{
		ItemName: "Designer Belt",
		ItemCost: decimal.NewFromInt(90),
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	// Floor 99.00 pushes quick and fair above the untouched max of 75.
	checkDecimal(t, "quick sale", rec.Tiers.QuickSale, "99.00")
	checkDecimal(t, "fair price", rec.Tiers.FairPrice, "99.00")
	checkDecimal(t, "max value", rec.Tiers.MaxValue, "75")
}

func TestRecommendRequestOverridesLiveSwitch(t *testing.T) {
	src := &stubSource{observations: soldAt(40, 45, 50)}
	engine := NewEngine(src, true, noopLogger())

	off := false
	rec, err := engine.Recommend(context.Background(), Request{
		ItemName: "Canvas Tote",
		LiveData: &off,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.DataSource != sourceTagDefault {
		t.Fatalf("请求关闭 live 数据后应使用默认档位, 实际 %q", rec.DataSource)
	}
	if src.query != "" {
		t.Fatalf("source should not be queried, got %q", src.query)
	}
}

func TestRecommendBuildsBreakdownTable(t *testing.T) {
	engine := NewEngine(nil, false, noopLogger())

	rec, err := engine.Recommend(context.Background(), Request{
		ItemName: "Leather Boots",
		ItemCost: decimal.NewFromInt(20),
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	for _, platform := range market.CanonicalPlatforms() {
		b, ok := rec.Platforms[platform]
		if !ok {
			t.Fatalf("missing breakdown for %s", platform)
		}
		if b.FairPrice.NetPayout.IsZero() {
			t.Fatalf("%s fair tier payout should be non-zero", platform)
		}
		if b.FairPrice.Profit.Cmp(b.FairPrice.NetPayout.Sub(decimal.NewFromInt(20))) != 0 {
			t.Fatalf("%s profit should subtract item cost", platform)
		}
	}

	if !strings.Contains(rec.Advisory, "$50.00") || !strings.Contains(rec.Advisory, "$25.00") {
		t.Fatalf("advisory should quote fair and quick prices: %q", rec.Advisory)
	}
}
