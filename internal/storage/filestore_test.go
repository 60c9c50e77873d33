package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "inventory.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s, path
}

func TestFileStoreAddMintsIdentity(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()

	item, err := s.AddItem(ctx, Item{Name: "Vintage Denim Jacket", Cost: decimal.NewFromInt(12)})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if len(item.ID) != 8 {
		t.Fatalf("id 应为 8 位短码: %q", item.ID)
	}
	if item.Status != StatusUnlisted {
		t.Fatalf("新物品状态应为 unlisted: %q", item.Status)
	}
	if item.CreatedAt.IsZero() || item.UpdatedAt.IsZero() {
		t.Fatal("时间戳不应为零值")
	}
	if item.Photos == nil || item.Platforms == nil {
		t.Fatal("photos/platforms 应初始化为空切片")
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("添加后应立即落盘: %v", err)
	}
}

func TestFileStoreGetAndListRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first, _ := s.AddItem(ctx, Item{Name: "Nike Dunk Low"})
	second, _ := s.AddItem(ctx, Item{Name: "Coach Shoulder Bag"})

	got, err := s.GetItem(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Name != "Coach Shoulder Bag" {
		t.Fatalf("GetItem name: got %q", got.Name)
	}

	items, err := s.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 2 || items[0].ID != first.ID || items[1].ID != second.ID {
		t.Fatalf("列表应按插入顺序返回: %+v", items)
	}

	if _, err := s.GetItem(ctx, "missing1"); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("未知 id 应返回 ErrItemNotFound, got %v", err)
	}
}

func TestFileStoreUpdatePreservesCreatedAt(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	item, _ := s.AddItem(ctx, Item{Name: "Levi's 501", Status: StatusUnlisted})
	created := item.CreatedAt

	item.Status = StatusListed
	item.CreatedAt = time.Time{} // 调用方不需要携带原始时间戳
	updated, err := s.UpdateItem(ctx, item)
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if !updated.CreatedAt.Equal(created) {
		t.Fatalf("更新不应改写 created_at: %v != %v", updated.CreatedAt, created)
	}
	if updated.Status != StatusListed {
		t.Fatalf("状态未更新: %q", updated.Status)
	}

	if _, err := s.UpdateItem(ctx, Item{ID: "missing1"}); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("更新未知 id 应返回 ErrItemNotFound, got %v", err)
	}
}

func TestFileStoreDeleteDropsHistory(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	item, _ := s.AddItem(ctx, Item{Name: "Patagonia Fleece"})
	if err := s.AppendValuation(ctx, Valuation{ItemID: item.ID, FairPrice: decimal.NewFromInt(40)}); err != nil {
		t.Fatalf("AppendValuation: %v", err)
	}

	if err := s.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if err := s.DeleteItem(ctx, item.ID); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("重复删除应返回 ErrItemNotFound, got %v", err)
	}

	history, err := s.ListValuations(ctx, item.ID, 0)
	if err != nil {
		t.Fatalf("ListValuations: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("删除后估值历史应被清空: %d", len(history))
	}
}

func TestFileStoreValuationsNewestFirst(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	item, _ := s.AddItem(ctx, Item{Name: "Supreme Box Logo Tee"})
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		v := Valuation{
			ItemID:    item.ID,
			FairPrice: decimal.NewFromInt(int64(100 + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.AppendValuation(ctx, v); err != nil {
			t.Fatalf("AppendValuation #%d: %v", i, err)
		}
	}

	history, err := s.ListValuations(ctx, item.ID, 2)
	if err != nil {
		t.Fatalf("ListValuations: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("limit 应截断历史: got %d", len(history))
	}
	if !history[0].FairPrice.Equal(decimal.NewFromInt(102)) {
		t.Fatalf("应按时间倒序返回, 首条 fair=%s", history[0].FairPrice)
	}

	err = s.AppendValuation(ctx, Valuation{ItemID: "missing1"})
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("未知物品的估值应被拒绝, got %v", err)
	}
}

func TestFileStoreValuationsBetweenWindow(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	item, _ := s.AddItem(ctx, Item{Name: "Arc'teryx Beta"})
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		v := Valuation{
			ItemID:    item.ID,
			FairPrice: decimal.NewFromInt(int64(200 + i)),
			CreatedAt: base.AddDate(0, 0, i),
		}
		if err := s.AppendValuation(ctx, v); err != nil {
			t.Fatalf("AppendValuation #%d: %v", i, err)
		}
	}

	// [day 1, day 3): 半开区间, 左闭右开。
	window, err := s.ListValuationsBetween(ctx, item.ID, base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("ListValuationsBetween: %v", err)
	}
	if len(window) != 2 {
		t.Fatalf("窗口应只含两条: got %d", len(window))
	}
	if !window[0].FairPrice.Equal(decimal.NewFromInt(201)) || !window[1].FairPrice.Equal(decimal.NewFromInt(202)) {
		t.Fatalf("应按时间升序返回: %s, %s", window[0].FairPrice, window[1].FairPrice)
	}
}

func TestFileStoreReloadsFromDisk(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()

	item, _ := s.AddItem(ctx, Item{
		Name:  "Omega Seamaster",
		Cost:  decimal.RequireFromString("850.50"),
		Notes: "box and papers",
	})
	if err := s.AppendValuation(ctx, Valuation{ItemID: item.ID, FairPrice: decimal.NewFromInt(1200)}); err != nil {
		t.Fatalf("AppendValuation: %v", err)
	}

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("重新打开: %v", err)
	}
	got, err := reopened.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem after reload: %v", err)
	}
	if !got.Cost.Equal(decimal.RequireFromString("850.50")) {
		t.Fatalf("cost 经 JSON 往返后不一致: %s", got.Cost)
	}

	history, _ := reopened.ListValuations(ctx, item.ID, 0)
	if len(history) != 1 {
		t.Fatalf("估值历史应随文件一起恢复: %d", len(history))
	}
}
