package app

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/buddy-dubby/reselling-app/internal/storage"
)

// Export renders one item's valuation history as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	item, err := store.GetItem(ctx, opts.ItemID)
	if err != nil {
		return err
	}

	to := time.Now().UTC()
	if opts.To != nil {
		to = opts.To.UTC()
	}

	from := to.Add(-time.Duration(opts.MaxPoints) * a.Config.Revalue.Interval)
	if opts.From != nil {
		from = opts.From.UTC()
	}

	if !from.Before(to) {
		return errors.New("from must be before to")
	}

	valuations, err := store.ListValuationsBetween(ctx, item.ID, from, to)
	if err != nil {
		return err
	}
	if len(valuations) == 0 {
		a.Logger.Info().Str("item_id", item.ID).Msg("no valuations found for export window")
		return nil
	}

	downsampled := downsampleValuations(valuations, opts.MaxPoints)
	a.Logger.Info().Int("total", len(valuations)).Int("exported", len(downsampled)).Msg("exporting valuations")

	if opts.CSVPath != "" {
		if err := writeValuationsCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if len(downsampled) < 2 {
			return errors.New("PNG 导出至少需要两条估值记录")
		}
		if err := writeValuationsPNG(opts.PNGPath, item.Name, downsampled); err != nil {
			return err
		}
	}

	return nil
}

func downsampleValuations(valuations []storage.Valuation, max int) []storage.Valuation {
	if max <= 0 || len(valuations) <= max {
		return valuations
	}

	result := make([]storage.Valuation, 0, max)
	step := float64(len(valuations)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(valuations) {
			idx = len(valuations) - 1
		}
		result = append(result, valuations[idx])
	}
	return result
}

func writeValuationsCSV(path string, valuations []storage.Valuation) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"created_at", "quick_sale", "fair_price", "max_value", "data_source"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, v := range valuations {
		record := []string{
			v.CreatedAt.UTC().Format(time.RFC3339),
			v.QuickSale.String(),
			v.FairPrice.String(),
			v.MaxValue.String(),
			v.DataSource,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeValuationsPNG(path, title string, valuations []storage.Valuation) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(valuations))
	quick := make([]float64, len(valuations))
	fair := make([]float64, len(valuations))
	maxVal := make([]float64, len(valuations))

	for i, v := range valuations {
		x[i] = v.CreatedAt
		quick[i] = v.QuickSale.InexactFloat64()
		fair[i] = v.FairPrice.InexactFloat64()
		maxVal[i] = v.MaxValue.InexactFloat64()
	}

	priceFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "$%.2f")
	}
	graph := chart.Chart{
		Title:  title,
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Price (USD)",
			ValueFormatter: priceFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Quick sale",
				XValues: x,
				YValues: quick,
			},
			chart.TimeSeries{
				Name:    "Fair price",
				XValues: x,
				YValues: fair,
			},
			chart.TimeSeries{
				Name:    "Max value",
				XValues: x,
				YValues: maxVal,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func formatDecimal(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}
