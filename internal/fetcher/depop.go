package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/buddy-dubby/reselling-app/internal/market"
)

// Depop has no sold filter on search, so recent listing prices stand in for
// sale prices. Patterns ordered from display markup to embedded JSON.
var depopPriceRes = []*regexp.Regexp{
	regexp.MustCompile(`\$(\d+(?:\.\d{2})?)`),
	regexp.MustCompile(`"price":\s*\{\s*"amount":\s*"?(\d+(?:\.\d{2})?)"?`),
	regexp.MustCompile(`data-price="(\d+(?:\.\d{2})?)"`),
}

// Depop scrapes listing search results.
type Depop struct {
	client  *Client
	baseURL string
	limit   int
	logger  zerolog.Logger
}

// NewDepop constructs the Depop fetcher.
func NewDepop(client *Client, opts SiteOptions, logger zerolog.Logger) *Depop {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://www.depop.com"
	}
	return &Depop{
		client:  client,
		baseURL: baseURL,
		limit:   opts.Limit,
		logger:  logger.With().Str("component", "depop_fetcher").Logger(),
	}
}

// Platform implements SiteFetcher.
func (d *Depop) Platform() market.Platform { return market.Depop }

// FetchSold extracts listing prices from the search page.
func (d *Depop) FetchSold(ctx context.Context, query string) ([]market.Observation, error) {
	searchURL := fmt.Sprintf("%s/search/?q=%s", d.baseURL, url.QueryEscape(query))

	body, err := d.client.Get(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	collector := newPriceCollector(market.Depop, searchURL, d.limit)
	scanPrices(collector, body, depopPriceRes...)

	d.logger.Debug().Str("query", query).Int("prices", len(collector.out)).Msg("depop listings scraped")
	return collector.out, nil
}

var _ SiteFetcher = (*Depop)(nil)
