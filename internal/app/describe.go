package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/buddy-dubby/reselling-app/internal/listing"
	"github.com/buddy-dubby/reselling-app/internal/market"
	"github.com/buddy-dubby/reselling-app/internal/storage"
)

// Describe generates listing copy, either from flags or from a stored item.
func (a *App) Describe(ctx context.Context, opts DescribeOptions) error {
	details := listing.Details{
		Name:         opts.Name,
		Brand:        opts.Brand,
		Category:     opts.Category,
		Condition:    market.ParseCondition(opts.Condition),
		Color:        opts.Color,
		Size:         opts.Size,
		Measurements: opts.Measurements,
		Notes:        opts.Notes,
	}

	if opts.ItemID != "" {
		store, closeStore, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		item, err := store.GetItem(ctx, opts.ItemID)
		if err != nil {
			return err
		}
		details = detailsFromItem(item)
	}

	if strings.TrimSpace(details.Name) == "" {
		return errors.New("item name is required; pass --name or --item")
	}

	return printCopy(os.Stdout, listing.Generate(details), opts.Platform)
}

func detailsFromItem(item storage.Item) listing.Details {
	return listing.Details{
		Name:         item.Name,
		Brand:        item.Brand,
		Category:     item.Category,
		Condition:    market.ParseCondition(item.Condition),
		Color:        item.Color,
		Size:         item.Size,
		Measurements: item.Measurements,
		Notes:        item.Notes,
	}
}

func printCopy(w io.Writer, c listing.Copy, platform string) error {
	sections := []struct {
		name string
		text string
	}{
		{"poshmark", c.Poshmark},
		{"depop", c.Depop},
		{"ebay", c.EBay},
		{"mercari", c.Mercari},
		{"xiaohongshu", c.Xiaohongshu},
		{"generic", c.Generic},
	}

	if platform != "" {
		want := strings.ToLower(strings.TrimSpace(platform))
		for _, s := range sections {
			if s.name == want {
				fmt.Fprintln(w, c.Title)
				fmt.Fprintln(w)
				fmt.Fprintln(w, s.text)
				return nil
			}
		}
		return fmt.Errorf("unknown platform %q", platform)
	}

	fmt.Fprintln(w, c.Title)
	for _, s := range sections {
		fmt.Fprintf(w, "\n===== %s =====\n%s\n", s.name, s.text)
	}
	return nil
}
