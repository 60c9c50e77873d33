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

// Mercari renders prices in several shapes depending on the page variant, so
// the patterns are tried in order of reliability.
var mercariPriceRes = []*regexp.Regexp{
	regexp.MustCompile(`\$(\d+(?:\.\d{2})?)</span>`),
	regexp.MustCompile(`"price":(\d+(?:\.\d{2})?)`),
	regexp.MustCompile(`data-price="(\d+(?:\.\d{2})?)"`),
}

// Mercari scrapes sold-out listing search results.
type Mercari struct {
	client  *Client
	baseURL string
	limit   int
	logger  zerolog.Logger
}

// NewMercari constructs the Mercari fetcher.
func NewMercari(client *Client, opts SiteOptions, logger zerolog.Logger) *Mercari {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://www.mercari.com"
	}
	return &Mercari{
		client:  client,
		baseURL: baseURL,
		limit:   opts.Limit,
		logger:  logger.With().Str("component", "mercari_fetcher").Logger(),
	}
}

// Platform implements SiteFetcher.
func (m *Mercari) Platform() market.Platform { return market.Mercari }

// FetchSold extracts prices from whichever markup variant the page uses.
func (m *Mercari) FetchSold(ctx context.Context, query string) ([]market.Observation, error) {
	searchURL := fmt.Sprintf("%s/search/?keyword=%s&status=sold_out",
		m.baseURL, url.QueryEscape(query))

	body, err := m.client.Get(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	collector := newPriceCollector(market.Mercari, searchURL, m.limit)
	scanPrices(collector, body, mercariPriceRes...)

	m.logger.Debug().Str("query", query).Int("prices", len(collector.out)).Msg("mercari sold listings scraped")
	return collector.out, nil
}

var _ SiteFetcher = (*Mercari)(nil)
