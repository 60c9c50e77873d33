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

// Poshmark prices ride in a JSON blob embedded in the search page.
var poshmarkPriceRe = regexp.MustCompile(`"price"\s*:\s*(\d+(?:\.\d+)?)`)

// Poshmark scrapes sold-out listing search results.
type Poshmark struct {
	client  *Client
	baseURL string
	limit   int
	logger  zerolog.Logger
}

// NewPoshmark constructs the Poshmark fetcher.
func NewPoshmark(client *Client, opts SiteOptions, logger zerolog.Logger) *Poshmark {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://poshmark.com"
	}
	return &Poshmark{
		client:  client,
		baseURL: baseURL,
		limit:   opts.Limit,
		logger:  logger.With().Str("component", "poshmark_fetcher").Logger(),
	}
}

// Platform implements SiteFetcher.
func (p *Poshmark) Platform() market.Platform { return market.Poshmark }

// FetchSold extracts prices from the embedded listing data.
func (p *Poshmark) FetchSold(ctx context.Context, query string) ([]market.Observation, error) {
	searchURL := fmt.Sprintf("%s/search?query=%s&availability=sold_out",
		p.baseURL, url.QueryEscape(query))

	body, err := p.client.Get(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	collector := newPriceCollector(market.Poshmark, searchURL, p.limit)
	scanPrices(collector, body, poshmarkPriceRe)

	p.logger.Debug().Str("query", query).Int("prices", len(collector.out)).Msg("poshmark sold listings scraped")
	return collector.out, nil
}

var _ SiteFetcher = (*Poshmark)(nil)
