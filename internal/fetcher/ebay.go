package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/buddy-dubby/reselling-app/internal/market"
)

// EBay scrapes prices from sold+completed listing search results.
type EBay struct {
	client  *Client
	baseURL string
	limit   int
	logger  zerolog.Logger
}

// NewEBay constructs the eBay fetcher.
func NewEBay(client *Client, opts SiteOptions, logger zerolog.Logger) *EBay {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://www.ebay.com"
	}
	return &EBay{
		client:  client,
		baseURL: baseURL,
		limit:   opts.Limit,
		logger:  logger.With().Str("component", "ebay_fetcher").Logger(),
	}
}

// Platform implements SiteFetcher.
func (e *EBay) Platform() market.Platform { return market.EBay }

// FetchSold reads the price span off each result tile, newest sales first.
func (e *EBay) FetchSold(ctx context.Context, query string) ([]market.Observation, error) {
	searchURL := fmt.Sprintf("%s/sch/i.html?_nkw=%s&LH_Sold=1&LH_Complete=1&_sop=13",
		e.baseURL, url.QueryEscape(query))

	body, err := e.client.Get(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse ebay results: %w", err)
	}

	collector := newPriceCollector(market.EBay, searchURL, e.limit)
	doc.Find("span.s-item__price").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if p, ok := parseDollarPrice(sel.Text()); ok {
			collector.add(p)
		}
		return !collector.full()
	})

	e.logger.Debug().Str("query", query).Int("prices", len(collector.out)).Msg("ebay sold listings scraped")
	return collector.out, nil
}

var _ SiteFetcher = (*EBay)(nil)
