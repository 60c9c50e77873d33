package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/buddy-dubby/reselling-app/internal/storage"
)

// InventoryAdd stores a new item and prints the assigned id.
func (a *App) InventoryAdd(ctx context.Context, opts AddItemOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	item := storage.Item{
		Name:         opts.Name,
		Brand:        opts.Brand,
		Category:     opts.Category,
		Condition:    opts.Condition,
		Color:        opts.Color,
		Size:         opts.Size,
		Measurements: opts.Measurements,
		Notes:        opts.Notes,
		RetailPrice:  decimal.NewFromFloat(opts.RetailPrice),
		Cost:         decimal.NewFromFloat(opts.Cost),
		FloorPrice:   decimal.NewFromFloat(opts.FloorPrice),
		TargetPrice:  decimal.NewFromFloat(opts.TargetPrice),
		Status:       storage.ParseItemStatus(opts.Status),
	}

	saved, err := store.AddItem(ctx, item)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "added %s (%s)\n", saved.ID, saved.Name)
	return nil
}

// InventoryList prints every stored item, newest last.
func (a *App) InventoryList(ctx context.Context) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	items, err := store.ListItems(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(os.Stdout, "no items in inventory")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tName\tBrand\tCondition\tCost\tStatus\tAdded")
	for _, item := range items {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t$%s\t%s\t%s\n",
			item.ID,
			sanitizeInline(item.Name),
			sanitizeInline(item.Brand),
			item.Condition,
			formatDecimal(item.Cost, 2),
			item.Status,
			item.CreatedAt.UTC().Format("2006-01-02"),
		)
	}
	return writer.Flush()
}

// InventoryShow prints one item in full along with its recent valuations.
func (a *App) InventoryShow(ctx context.Context, opts ShowItemOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	item, err := store.GetItem(ctx, opts.ItemID)
	if err != nil {
		return err
	}

	out := os.Stdout
	fmt.Fprintf(out, "ID:        %s\n", item.ID)
	fmt.Fprintf(out, "Name:      %s\n", item.Name)
	if item.Brand != "" {
		fmt.Fprintf(out, "Brand:     %s\n", item.Brand)
	}
	if item.Category != "" {
		fmt.Fprintf(out, "Category:  %s\n", item.Category)
	}
	fmt.Fprintf(out, "Condition: %s\n", item.Condition)
	if item.Size != "" {
		fmt.Fprintf(out, "Size:      %s\n", item.Size)
	}
	if item.Color != "" {
		fmt.Fprintf(out, "Color:     %s\n", item.Color)
	}
	if item.RetailPrice.IsPositive() {
		fmt.Fprintf(out, "Retail:    $%s\n", formatDecimal(item.RetailPrice, 2))
	}
	fmt.Fprintf(out, "Cost:      $%s\n", formatDecimal(item.Cost, 2))
	if item.FloorPrice.IsPositive() {
		fmt.Fprintf(out, "Floor:     $%s\n", formatDecimal(item.FloorPrice, 2))
	}
	if item.TargetPrice.IsPositive() {
		fmt.Fprintf(out, "Target:    $%s\n", formatDecimal(item.TargetPrice, 2))
	}
	fmt.Fprintf(out, "Status:    %s\n", item.Status)
	if len(item.Platforms) > 0 {
		fmt.Fprintf(out, "Listed on: %s\n", strings.Join(item.Platforms, ", "))
	}
	if len(item.Photos) > 0 {
		fmt.Fprintf(out, "Photos:    %d\n", len(item.Photos))
	}
	if item.Notes != "" {
		fmt.Fprintf(out, "Notes:     %s\n", sanitizeInline(item.Notes))
	}
	fmt.Fprintf(out, "Added:     %s\n", item.CreatedAt.UTC().Format(time.RFC3339))

	valuations, err := store.ListValuations(ctx, item.ID, opts.History)
	if err != nil {
		return err
	}
	if len(valuations) == 0 {
		fmt.Fprintln(out, "\nno valuations recorded")
		return nil
	}

	fmt.Fprintln(out)
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tQuick\tFair\tMax\tSource")
	for _, v := range valuations {
		fmt.Fprintf(writer, "%s\t$%s\t$%s\t$%s\t%s\n",
			v.CreatedAt.UTC().Format(time.RFC3339),
			formatDecimal(v.QuickSale, 2),
			formatDecimal(v.FairPrice, 2),
			formatDecimal(v.MaxValue, 2),
			v.DataSource,
		)
	}
	return writer.Flush()
}

// InventoryRemove deletes one item by id.
func (a *App) InventoryRemove(ctx context.Context, id string) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.DeleteItem(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "removed %s\n", id)
	return nil
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
