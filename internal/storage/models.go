package storage

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemStatus tracks where an item sits in the resale pipeline.
type ItemStatus string

const (
	StatusUnlisted ItemStatus = "unlisted"
	StatusListed   ItemStatus = "listed"
	StatusSold     ItemStatus = "sold"
)

// ParseItemStatus normalises a raw status string, defaulting to unlisted.
func ParseItemStatus(raw string) ItemStatus {
	switch ItemStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusListed:
		return StatusListed
	case StatusSold:
		return StatusSold
	default:
		return StatusUnlisted
	}
}

// Item is one piece of inventory being prepared for resale. RetailPrice is
// the original store price when known; it anchors the estimator whenever live
// market data runs thin.
type Item struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Brand        string          `json:"brand"`
	Category     string          `json:"category"`
	Condition    string          `json:"condition"`
	Color        string          `json:"color"`
	Size         string          `json:"size"`
	Measurements string          `json:"measurements"`
	RetailPrice  decimal.Decimal `json:"retail_price"`
	Cost         decimal.Decimal `json:"cost"`
	FloorPrice   decimal.Decimal `json:"floor_price"`
	TargetPrice  decimal.Decimal `json:"target_price"`
	Notes        string          `json:"notes"`
	Photos       []string        `json:"photos"`
	Status       ItemStatus      `json:"status"`
	Platforms    []string        `json:"platforms"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Valuation is one snapshot of what the pricing engine thought an item was
// worth, kept so drift between sweeps can be measured and charted.
type Valuation struct {
	ItemID     string          `json:"item_id"`
	QuickSale  decimal.Decimal `json:"quick_sale"`
	FairPrice  decimal.Decimal `json:"fair_price"`
	MaxValue   decimal.Decimal `json:"max_value"`
	DataSource string          `json:"data_source"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewItemID mints the short id items are referred to by. Eight hex characters
// of a UUID are plenty for a personal inventory and much friendlier to type.
func NewItemID() string {
	return uuid.NewString()[:8]
}
