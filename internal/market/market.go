package market

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// Platform identifies a resale marketplace.
type Platform string

const (
	Poshmark    Platform = "poshmark"
	Depop       Platform = "depop"
	Mercari     Platform = "mercari"
	EBay        Platform = "ebay"
	Xiaohongshu Platform = "xiaohongshu"
)

// CanonicalPlatforms lists the marketplaces every recommendation is broken
// down against, in display order.
func CanonicalPlatforms() []Platform {
	return []Platform{Poshmark, Depop, Mercari, EBay}
}

// Condition grades the wear of a secondhand item.
type Condition string

const (
	ConditionNew       Condition = "new"
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
)

// ParseCondition normalises a raw condition string. Unrecognised grades fall
// back to good rather than failing.
func ParseCondition(raw string) Condition {
	switch Condition(strings.ToLower(strings.TrimSpace(raw))) {
	case ConditionNew:
		return ConditionNew
	case ConditionExcellent:
		return ConditionExcellent
	case ConditionFair:
		return ConditionFair
	default:
		return ConditionGood
	}
}

// Observation is a single sold-listing price seen on a marketplace. It lives
// only for the duration of one recommendation request and is never persisted.
type Observation struct {
	Platform  Platform
	Price     decimal.Decimal
	SourceURL string
}

// Source yields sold-listing prices for a search query. Implementations are
// best-effort: a failed search may return an error or simply no observations,
// and callers must treat the result as an unordered set.
type Source interface {
	Search(ctx context.Context, query string) ([]Observation, error)
}
