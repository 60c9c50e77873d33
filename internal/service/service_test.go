package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/buddy-dubby/reselling-app/internal/alerting"
	"github.com/buddy-dubby/reselling-app/internal/config"
	"github.com/buddy-dubby/reselling-app/internal/pricing"
	"github.com/buddy-dubby/reselling-app/internal/storage"
)

// recordingNotifier captures every notification instead of delivering it.
type recordingNotifier struct {
	notes []alerting.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, note alerting.Notification) error {
	n.notes = append(n.notes, note)
	return nil
}

func alertingConfig() *config.Config {
	return &config.Config{
		Alerting: config.AlertingConfig{
			Enabled:      true,
			ThresholdPct: 10,
			Channels:     []string{"telegram"},
		},
	}
}

func newTestService(t *testing.T) (*Service, storage.Store, *recordingNotifier) {
	t.Helper()

	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "inventory.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	notifier := &recordingNotifier{}
	engine := pricing.NewEngine(nil, false, zerolog.Nop())
	svc := New(alertingConfig(), nil, engine, store, notifier, zerolog.Nop())
	return svc, store, notifier
}

// retailItem prices deterministically: retail 200 in good condition puts the
// fair tier at 80.00 via the estimator.
func retailItem(t *testing.T, store storage.Store) storage.Item {
	t.Helper()

	item, err := store.AddItem(context.Background(), storage.Item{
		Name:        "Barbour Waxed Jacket",
		Condition:   "good",
		RetailPrice: decimal.NewFromInt(200),
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	return item
}

func TestRevalueItemRecordsSnapshot(t *testing.T) {
	svc, store, notifier := newTestService(t)
	ctx := context.Background()
	item := retailItem(t, store)

	result, err := svc.RevalueItem(ctx, item)
	if err != nil {
		t.Fatalf("RevalueItem: %v", err)
	}

	if !result.Valuation.FairPrice.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("fair price: got %s", result.Valuation.FairPrice)
	}
	if result.Recommendation.DataSource != "estimated from retail" {
		t.Fatalf("data source: got %q", result.Recommendation.DataSource)
	}

	history, err := store.ListValuations(ctx, item.ID, 0)
	if err != nil {
		t.Fatalf("ListValuations: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("应写入一条估值快照, got %d", len(history))
	}

	// First-ever valuation has nothing to drift from.
	if result.Alerted || len(notifier.notes) != 0 {
		t.Fatalf("首次估值不应触发告警: %+v", notifier.notes)
	}
	if !result.DriftPct.IsZero() {
		t.Fatalf("首次估值漂移应为 0: %s", result.DriftPct)
	}
}

func TestRevalueItemAlertsOnDrift(t *testing.T) {
	svc, store, notifier := newTestService(t)
	ctx := context.Background()
	item := retailItem(t, store)

	seed := storage.Valuation{
		ItemID:    item.ID,
		FairPrice: decimal.NewFromInt(100),
		CreatedAt: time.Now().UTC().Add(-24 * time.Hour),
	}
	if err := store.AppendValuation(ctx, seed); err != nil {
		t.Fatalf("seed valuation: %v", err)
	}

	result, err := svc.RevalueItem(ctx, item)
	if err != nil {
		t.Fatalf("RevalueItem: %v", err)
	}

	// 100 -> 80 is a 20% drop, past the 10% threshold.
	if !result.Alerted || len(notifier.notes) != 1 {
		t.Fatalf("漂移超阈值应触发告警: alerted=%v notes=%d", result.Alerted, len(notifier.notes))
	}
	note := notifier.notes[0]
	if note.Direction != "down" {
		t.Fatalf("direction: got %q", note.Direction)
	}
	if !note.PreviousFair.Equal(decimal.NewFromInt(100)) || !note.CurrentFair.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("告警应携带前后公允价: %s -> %s", note.PreviousFair, note.CurrentFair)
	}
	if !result.DriftPct.Equal(decimal.NewFromInt(-20)) {
		t.Fatalf("drift: got %s", result.DriftPct)
	}
}

func TestRevalueItemStaysQuietBelowThreshold(t *testing.T) {
	svc, store, notifier := newTestService(t)
	ctx := context.Background()
	item := retailItem(t, store)

	seed := storage.Valuation{
		ItemID:    item.ID,
		FairPrice: decimal.NewFromInt(82),
		CreatedAt: time.Now().UTC().Add(-24 * time.Hour),
	}
	if err := store.AppendValuation(ctx, seed); err != nil {
		t.Fatalf("seed valuation: %v", err)
	}

	result, err := svc.RevalueItem(ctx, item)
	if err != nil {
		t.Fatalf("RevalueItem: %v", err)
	}
	if result.Alerted || len(notifier.notes) != 0 {
		t.Fatal("阈值内的漂移不应触发告警")
	}
}

func TestRevalueAllSkipsSoldAndSurvivesFailures(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	good := retailItem(t, store)
	sold, _ := store.AddItem(ctx, storage.Item{Name: "Sold Clog", Status: storage.StatusSold})
	// An item with a blank name is the one hard engine failure.
	broken, _ := store.AddItem(ctx, storage.Item{Name: "   "})

	err := svc.RevalueAll(ctx)
	if err == nil {
		t.Fatal("存在失败物品时应返回错误")
	}

	if history, _ := store.ListValuations(ctx, good.ID, 0); len(history) != 1 {
		t.Fatalf("正常物品应完成重估: %d", len(history))
	}
	if history, _ := store.ListValuations(ctx, sold.ID, 0); len(history) != 0 {
		t.Fatal("已售出物品应被跳过")
	}
	if history, _ := store.ListValuations(ctx, broken.ID, 0); len(history) != 0 {
		t.Fatal("失败物品不应写入快照")
	}
}

func TestDriftPct(t *testing.T) {
	if !DriftPct(decimal.Zero, decimal.NewFromInt(50)).IsZero() {
		t.Fatal("没有历史基准时漂移应为 0")
	}
	if got := DriftPct(decimal.NewFromInt(100), decimal.NewFromInt(55)); !got.Equal(decimal.NewFromInt(-45)) {
		t.Fatalf("drift: want -45, got %s", got)
	}
	if got := DriftPct(decimal.NewFromInt(40), decimal.NewFromInt(50)); !got.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("drift: want 25, got %s", got)
	}
}
