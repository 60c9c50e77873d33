package app

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/buddy-dubby/reselling-app/internal/alerting"
	"github.com/buddy-dubby/reselling-app/internal/config"
	"github.com/buddy-dubby/reselling-app/internal/fetcher"
	"github.com/buddy-dubby/reselling-app/internal/imaging"
	"github.com/buddy-dubby/reselling-app/internal/market"
	"github.com/buddy-dubby/reselling-app/internal/pricing"
	"github.com/buddy-dubby/reselling-app/internal/scheduler"
	"github.com/buddy-dubby/reselling-app/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

// newSource assembles the fan-out sold-listing source from scraper.sites.
// Unknown names are skipped with a warning so one typo cannot take the whole
// pipeline down.
func (a *App) newSource() market.Source {
	sc := a.Config.Scraper
	client := fetcher.NewClient(fetcher.ClientOptions{
		Timeout:           sc.RequestTimeout,
		UserAgent:         sc.UserAgent,
		RequestsPerSecond: sc.RequestsPerSecond,
		Burst:             sc.Burst,
	}, a.Logger)

	var sites []fetcher.SiteFetcher
	for _, name := range sc.Sites {
		switch market.Platform(strings.ToLower(strings.TrimSpace(name))) {
		case market.EBay:
			sites = append(sites, fetcher.NewEBay(client, fetcher.SiteOptions{BaseURL: sc.EBayBaseURL, Limit: sc.SiteLimit}, a.Logger))
		case market.Poshmark:
			sites = append(sites, fetcher.NewPoshmark(client, fetcher.SiteOptions{BaseURL: sc.PoshmarkBaseURL, Limit: sc.SiteLimit}, a.Logger))
		case market.Mercari:
			sites = append(sites, fetcher.NewMercari(client, fetcher.SiteOptions{BaseURL: sc.MercariBaseURL, Limit: sc.SiteLimit}, a.Logger))
		case market.Depop:
			sites = append(sites, fetcher.NewDepop(client, fetcher.SiteOptions{BaseURL: sc.DepopBaseURL, Limit: sc.SiteLimit}, a.Logger))
		default:
			a.Logger.Warn().Str("site", name).Msg("unknown marketplace in scraper.sites; skipping")
		}
	}

	if len(sites) == 0 {
		return nil
	}
	return fetcher.NewMultiSource(sites, a.Logger)
}

func (a *App) newEngine() *pricing.Engine {
	return pricing.NewEngine(a.newSource(), a.Config.Pricing.LiveData, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) newRemover() *imaging.Remover {
	return imaging.NewRemover(a.Config.Imaging.Endpoint, a.Config.Imaging.RequestTimeout, a.Logger)
}

func (a *App) newScheduler() *scheduler.Scheduler {
	return scheduler.New(scheduler.Options{
		Interval:     a.Config.Revalue.Interval,
		AlignToClock: a.Config.Revalue.AlignToClock,
		StartupDelay: a.Config.Revalue.StartupDelay,
	}, a.Logger)
}

// openStore opens PostgreSQL when database.dsn is configured and falls back
// to the JSON file store otherwise.
func (a *App) openStore(ctx context.Context) (storage.Store, func(), error) {
	if a.Config.Database.DSN != "" {
		pool, err := storage.NewPool(ctx, a.Config.Database)
		if err != nil {
			return nil, nil, err
		}
		store, err := storage.NewPostgres(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, store.Close, nil
	}

	store, err := storage.NewFileStore(a.Config.Inventory.Path)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

// CheckOptions hold the item facts for a one-off price check.
type CheckOptions struct {
	Name        string
	Brand       string
	Condition   string
	RetailPrice float64
	ItemCost    float64
	NoLive      bool
}

// EstimateOptions configure the retail-anchored estimate command.
type EstimateOptions struct {
	RetailPrice float64
	Condition   string
}

// FeesOptions configure the fee table command.
type FeesOptions struct {
	SalePrice float64
	ItemCost  float64
}

// DescribeOptions select what the describe command writes copy for. ItemID
// takes precedence over the ad-hoc fields when both are given.
type DescribeOptions struct {
	ItemID       string
	Platform     string
	Name         string
	Brand        string
	Category     string
	Condition    string
	Color        string
	Size         string
	Measurements string
	Notes        string
}

// AddItemOptions carry the fields for a new inventory item.
type AddItemOptions struct {
	Name         string
	Brand        string
	Category     string
	Condition    string
	Color        string
	Size         string
	Measurements string
	Notes        string
	RetailPrice  float64
	Cost         float64
	FloorPrice   float64
	TargetPrice  float64
	Status       string
}

// ShowItemOptions configure the inventory show command.
type ShowItemOptions struct {
	ItemID  string
	History int
}

// RevalueOptions pick between a one-item, full-sweep, or watch revaluation.
type RevalueOptions struct {
	ItemID string
	Watch  bool
}

// ExportOptions hold parameters for exporting an item's valuation history.
type ExportOptions struct {
	ItemID    string
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}
