package fetcher

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/buddy-dubby/reselling-app/internal/market"
)

// SiteFetcher pulls sold-listing prices from one marketplace.
type SiteFetcher interface {
	Platform() market.Platform
	FetchSold(ctx context.Context, query string) ([]market.Observation, error)
}

// SiteOptions parameterise a single marketplace fetcher. BaseURL exists so
// tests can point a fetcher at a local server; Limit caps how many prices one
// site may contribute.
type SiteOptions struct {
	BaseURL string
	Limit   int
}

const defaultSiteLimit = 15

// Sold prices outside this window are treated as scraping noise, usually
// shipping costs or promo banners caught by the extraction pass.
var (
	minBelievablePrice = decimal.NewFromInt(1)
	maxBelievablePrice = decimal.NewFromInt(5000)
)

func believable(p decimal.Decimal) bool {
	return p.GreaterThan(minBelievablePrice) && p.LessThan(maxBelievablePrice)
}

var dollarPriceRe = regexp.MustCompile(`\$(\d+(?:,\d{3})*(?:\.\d{2})?)`)

// parseDollarPrice reads the first $-prefixed amount in text.
func parseDollarPrice(text string) (decimal.Decimal, bool) {
	m := dollarPriceRe.FindStringSubmatch(text)
	if m == nil {
		return decimal.Decimal{}, false
	}
	p, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return p, true
}

// priceCollector accumulates believable, de-duplicated prices up to a limit.
type priceCollector struct {
	platform market.Platform
	source   string
	limit    int
	seen     map[string]struct{}
	out      []market.Observation
}

func newPriceCollector(platform market.Platform, source string, limit int) *priceCollector {
	if limit <= 0 {
		limit = defaultSiteLimit
	}
	return &priceCollector{
		platform: platform,
		source:   source,
		limit:    limit,
		seen:     make(map[string]struct{}),
	}
}

func (c *priceCollector) add(p decimal.Decimal) {
	if c.full() || !believable(p) {
		return
	}
	key := p.String()
	if _, dup := c.seen[key]; dup {
		return
	}
	c.seen[key] = struct{}{}
	c.out = append(c.out, market.Observation{Platform: c.platform, Price: p, SourceURL: c.source})
}

func (c *priceCollector) full() bool {
	return len(c.out) >= c.limit
}

// scanPrices runs each pattern over the page in turn until the collector
// fills. Every pattern captures the numeric amount in group 1; the per-pattern
// match cap bounds work on pathological pages.
func scanPrices(c *priceCollector, body []byte, patterns ...*regexp.Regexp) {
	for _, re := range patterns {
		for _, m := range re.FindAllSubmatch(body, c.limit*3) {
			if c.full() {
				return
			}
			if p, err := decimal.NewFromString(string(m[1])); err == nil {
				c.add(p)
			}
		}
	}
}

// MultiSource fans a query out to every configured marketplace and merges the
// results. One site failing or timing out never aborts the others; it just
// contributes nothing.
type MultiSource struct {
	sites  []SiteFetcher
	logger zerolog.Logger
}

// NewMultiSource constructs the fan-out source.
func NewMultiSource(sites []SiteFetcher, logger zerolog.Logger) *MultiSource {
	return &MultiSource{
		sites:  sites,
		logger: logger.With().Str("component", "market_source").Logger(),
	}
}

// Search 并发抓取所有平台的成交记录并汇总。Partial results are fine; the
// returned set is unordered.
func (m *MultiSource) Search(ctx context.Context, query string) ([]market.Observation, error) {
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var all []market.Observation

	for _, site := range m.sites {
		site := site
		g.Go(func() error {
			observations, err := site.FetchSold(gctx, query)
			if err != nil {
				m.logger.Warn().Err(err).
					Str("platform", string(site.Platform())).
					Str("query", query).
					Msg("marketplace fetch failed")
				return nil
			}
			mu.Lock()
			all = append(all, observations...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.logger.Debug().Str("query", query).Int("observations", len(all)).Msg("marketplace search merged")
	return all, nil
}

var _ market.Source = (*MultiSource)(nil)
