package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buddy-dubby/reselling-app/internal/config"
)

// ErrItemNotFound signals a lookup for an id the store does not hold.
var ErrItemNotFound = errors.New("storage: item not found")

// Store is the inventory persistence contract. Two backends satisfy it: the
// JSON file store and PostgreSQL.
type Store interface {
	AddItem(ctx context.Context, item Item) (Item, error)
	GetItem(ctx context.Context, id string) (Item, error)
	ListItems(ctx context.Context) ([]Item, error)
	UpdateItem(ctx context.Context, item Item) (Item, error)
	DeleteItem(ctx context.Context, id string) error

	AppendValuation(ctx context.Context, v Valuation) error
	// ListValuations returns snapshots for one item, newest first.
	ListValuations(ctx context.Context, itemID string, limit int) ([]Valuation, error)
	// ListValuationsBetween returns snapshots for one item inside
	// [from, to), oldest first, as the export pipeline expects them.
	ListValuationsBetween(ctx context.Context, itemID string, from, to time.Time) ([]Valuation, error)

	Close()
}

// NewPool configures a PostgreSQL connection pool from runtime settings.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	return pool, nil
}
