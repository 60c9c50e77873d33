package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/buddy-dubby/reselling-app/internal/listing"
	"github.com/buddy-dubby/reselling-app/internal/market"
	"github.com/buddy-dubby/reselling-app/internal/pricing"
	"github.com/buddy-dubby/reselling-app/internal/version"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.String(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

type priceCheckRequest struct {
	Query       string  `json:"query"`
	Brand       string  `json:"brand"`
	Condition   string  `json:"condition"`
	RetailPrice float64 `json:"retail_price"`
	ItemCost    float64 `json:"item_cost"`
	LiveData    *bool   `json:"live_data"`
}

// platformEstimate is the per-marketplace slice of a price check: low and
// high are the net payouts at the quick-sale and max-value tiers, avg the
// net payout at the fair tier, profit the fair-tier profit after item cost.
type platformEstimate struct {
	Low    float64 `json:"low"`
	High   float64 `json:"high"`
	Avg    float64 `json:"avg"`
	Profit float64 `json:"profit"`
}

type recommendationTiers struct {
	QuickSale float64 `json:"quick_sale"`
	FairPrice float64 `json:"fair_price"`
	MaxValue  float64 `json:"max_value"`
}

type priceCheckResponse struct {
	Query          string                      `json:"query"`
	DataSource     string                      `json:"data_source"`
	Estimates      map[string]platformEstimate `json:"estimates"`
	Recommendation recommendationTiers         `json:"recommendation"`
	Tip            string                      `json:"tip"`
}

func (s *Server) handlePriceCheck(w http.ResponseWriter, r *http.Request) {
	var req priceCheckRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.engine.Recommend(r.Context(), pricing.Request{
		ItemName:    req.Query,
		Brand:       req.Brand,
		Condition:   req.Condition,
		RetailPrice: decimal.NewFromFloat(req.RetailPrice),
		ItemCost:    decimal.NewFromFloat(req.ItemCost),
		LiveData:    req.LiveData,
	})
	if err != nil {
		if errors.Is(err, pricing.ErrMissingItemName) {
			writeError(w, http.StatusBadRequest, "query is required")
			return
		}
		s.logger.Error().Err(err).Str("query", req.Query).Msg("price check failed")
		writeError(w, http.StatusInternalServerError, "price check failed")
		return
	}

	writeJSON(w, http.StatusOK, priceCheckResponse{
		Query:          req.Query,
		DataSource:     rec.DataSource,
		Estimates:      estimatesByPlatform(rec),
		Recommendation: tiersOf(rec.Tiers),
		Tip:            rec.Advisory,
	})
}

func estimatesByPlatform(rec *pricing.Recommendation) map[string]platformEstimate {
	out := make(map[string]platformEstimate, len(rec.Platforms))
	for _, platform := range market.CanonicalPlatforms() {
		b, ok := rec.Platforms[platform]
		if !ok {
			continue
		}
		out[string(platform)] = platformEstimate{
			Low:    b.QuickSale.NetPayout.InexactFloat64(),
			High:   b.MaxValue.NetPayout.InexactFloat64(),
			Avg:    b.FairPrice.NetPayout.InexactFloat64(),
			Profit: b.FairPrice.Profit.InexactFloat64(),
		}
	}
	return out
}

func tiersOf(t pricing.PriceTiers) recommendationTiers {
	return recommendationTiers{
		QuickSale: t.QuickSale.InexactFloat64(),
		FairPrice: t.FairPrice.InexactFloat64(),
		MaxValue:  t.MaxValue.InexactFloat64(),
	}
}

type describeRequest struct {
	Name         string `json:"name"`
	Brand        string `json:"brand"`
	Category     string `json:"category"`
	Condition    string `json:"condition"`
	Color        string `json:"color"`
	Size         string `json:"size"`
	Measurements string `json:"measurements"`
	Notes        string `json:"notes"`
}

type describeResponse struct {
	Title       string `json:"title"`
	Poshmark    string `json:"poshmark"`
	Depop       string `json:"depop"`
	EBay        string `json:"ebay"`
	Mercari     string `json:"mercari"`
	Xiaohongshu string `json:"xiaohongshu"`
	Generic     string `json:"generic"`
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	var req describeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	c := listing.Generate(listing.Details{
		Name:         req.Name,
		Brand:        req.Brand,
		Category:     req.Category,
		Condition:    market.ParseCondition(req.Condition),
		Color:        req.Color,
		Size:         req.Size,
		Measurements: req.Measurements,
		Notes:        req.Notes,
	})

	writeJSON(w, http.StatusOK, describeResponse{
		Title:       c.Title,
		Poshmark:    c.Poshmark,
		Depop:       c.Depop,
		EBay:        c.EBay,
		Mercari:     c.Mercari,
		Xiaohongshu: c.Xiaohongshu,
		Generic:     c.Generic,
	})
}
