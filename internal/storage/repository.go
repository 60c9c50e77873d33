package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNotConfigured indicates the storage pool was not initialised.
var ErrNotConfigured = errors.New("storage: pool not configured")

const schemaSQL = `CREATE TABLE IF NOT EXISTS items (
    id           text PRIMARY KEY,
    name         text NOT NULL,
    brand        text NOT NULL DEFAULT '',
    category     text NOT NULL DEFAULT '',
    condition    text NOT NULL DEFAULT 'good',
    color        text NOT NULL DEFAULT '',
    size         text NOT NULL DEFAULT '',
    measurements text NOT NULL DEFAULT '',
    retail_price numeric NOT NULL DEFAULT 0,
    cost         numeric NOT NULL DEFAULT 0,
    floor_price  numeric NOT NULL DEFAULT 0,
    target_price numeric NOT NULL DEFAULT 0,
    notes        text NOT NULL DEFAULT '',
    photos       text[] NOT NULL DEFAULT '{}',
    status       text NOT NULL DEFAULT 'unlisted',
    platforms    text[] NOT NULL DEFAULT '{}',
    created_at   timestamptz NOT NULL DEFAULT now(),
    updated_at   timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS valuations (
    id          bigserial PRIMARY KEY,
    item_id     text NOT NULL REFERENCES items (id) ON DELETE CASCADE,
    quick_sale  numeric NOT NULL,
    fair_price  numeric NOT NULL,
    max_value   numeric NOT NULL,
    data_source text NOT NULL DEFAULT '',
    created_at  timestamptz NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS valuations_item_created_idx
    ON valuations (item_id, created_at DESC);`

const (
	insertItemSQL = `INSERT INTO items (
        id, name, brand, category, condition, color, size, measurements,
        retail_price, cost, floor_price, target_price, notes, photos, status,
        platforms, created_at, updated_at
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18
    );`

	selectItemSQL = `SELECT
        id, name, brand, category, condition, color, size, measurements,
        retail_price::text, cost::text, floor_price::text, target_price::text,
        notes, photos, status, platforms, created_at, updated_at
    FROM items
    WHERE id = $1;`

	listItemsSQL = `SELECT
        id, name, brand, category, condition, color, size, measurements,
        retail_price::text, cost::text, floor_price::text, target_price::text,
        notes, photos, status, platforms, created_at, updated_at
    FROM items
    ORDER BY created_at;`

	updateItemSQL = `UPDATE items
    SET name         = $2,
        brand        = $3,
        category     = $4,
        condition    = $5,
        color        = $6,
        size         = $7,
        measurements = $8,
        retail_price = $9,
        cost         = $10,
        floor_price  = $11,
        target_price = $12,
        notes        = $13,
        photos       = $14,
        status       = $15,
        platforms    = $16,
        updated_at   = $17
    WHERE id = $1;`

	deleteItemSQL = `DELETE FROM items WHERE id = $1;`

	insertValuationSQL = `INSERT INTO valuations (
        item_id, quick_sale, fair_price, max_value, data_source, created_at
    ) VALUES (
        $1,$2,$3,$4,$5,$6
    );`

	listValuationsSQL = `SELECT
        item_id, quick_sale::text, fair_price::text, max_value::text,
        data_source, created_at
    FROM valuations
    WHERE item_id = $1
    ORDER BY created_at DESC
    LIMIT $2;`

	listValuationsBetweenSQL = `SELECT
        item_id, quick_sale::text, fair_price::text, max_value::text,
        data_source, created_at
    FROM valuations
    WHERE item_id = $1
      AND created_at >= $2
      AND created_at < $3
    ORDER BY created_at;`
)

// Postgres keeps inventory in PostgreSQL. It is selected over the file store
// when database.dsn is configured.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wires a pgx pool into a store and bootstraps the schema.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	s := &Postgres{pool: pool}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return s, nil
}

// Close releases the underlying pool resources.
func (s *Postgres) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Postgres) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// AddItem persists a new item, minting an id and timestamps as needed.
func (s *Postgres) AddItem(ctx context.Context, item Item) (Item, error) {
	pool, err := s.getPool()
	if err != nil {
		return Item{}, err
	}

	prepareNewItem(&item)

	_, execErr := pool.Exec(ctx, insertItemSQL,
		item.ID,
		item.Name,
		item.Brand,
		item.Category,
		item.Condition,
		item.Color,
		item.Size,
		item.Measurements,
		item.RetailPrice.String(),
		item.Cost.String(),
		item.FloorPrice.String(),
		item.TargetPrice.String(),
		item.Notes,
		item.Photos,
		string(item.Status),
		item.Platforms,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if execErr != nil {
		return Item{}, fmt.Errorf("insert item: %w", execErr)
	}
	return item, nil
}

// GetItem fetches one item by id.
func (s *Postgres) GetItem(ctx context.Context, id string) (Item, error) {
	pool, err := s.getPool()
	if err != nil {
		return Item{}, err
	}

	rows, queryErr := pool.Query(ctx, selectItemSQL, id)
	if queryErr != nil {
		return Item{}, fmt.Errorf("select item: %w", queryErr)
	}
	defer rows.Close()

	if !rows.Next() {
		if rows.Err() != nil {
			return Item{}, rows.Err()
		}
		return Item{}, ErrItemNotFound
	}
	return scanItem(rows)
}

// ListItems returns every item ordered by creation time.
func (s *Postgres) ListItems(ctx context.Context) ([]Item, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listItemsSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list items: %w", queryErr)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// UpdateItem replaces a stored item's mutable fields.
func (s *Postgres) UpdateItem(ctx context.Context, item Item) (Item, error) {
	pool, err := s.getPool()
	if err != nil {
		return Item{}, err
	}

	item.UpdatedAt = time.Now().UTC()

	cmdTag, execErr := pool.Exec(ctx, updateItemSQL,
		item.ID,
		item.Name,
		item.Brand,
		item.Category,
		item.Condition,
		item.Color,
		item.Size,
		item.Measurements,
		item.RetailPrice.String(),
		item.Cost.String(),
		item.FloorPrice.String(),
		item.TargetPrice.String(),
		item.Notes,
		item.Photos,
		string(item.Status),
		item.Platforms,
		item.UpdatedAt,
	)
	if execErr != nil {
		return Item{}, fmt.Errorf("update item: %w", execErr)
	}
	if cmdTag.RowsAffected() == 0 {
		return Item{}, ErrItemNotFound
	}
	return item, nil
}

// DeleteItem removes an item; its valuations cascade away with it.
func (s *Postgres) DeleteItem(ctx context.Context, id string) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	cmdTag, execErr := pool.Exec(ctx, deleteItemSQL, id)
	if execErr != nil {
		return fmt.Errorf("delete item: %w", execErr)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

// AppendValuation records one pricing snapshot.
func (s *Postgres) AppendValuation(ctx context.Context, v Valuation) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	_, execErr := pool.Exec(ctx, insertValuationSQL,
		v.ItemID,
		v.QuickSale.String(),
		v.FairPrice.String(),
		v.MaxValue.String(),
		v.DataSource,
		v.CreatedAt,
	)
	if execErr != nil {
		return fmt.Errorf("insert valuation: %w", execErr)
	}
	return nil
}

// ListValuations returns the most recent snapshots for one item.
func (s *Postgres) ListValuations(ctx context.Context, itemID string, limit int) ([]Valuation, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listValuationsSQL, itemID, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list valuations: %w", queryErr)
	}
	defer rows.Close()

	return collectValuations(rows)
}

// ListValuationsBetween returns snapshots inside [from, to), oldest first.
func (s *Postgres) ListValuationsBetween(ctx context.Context, itemID string, from, to time.Time) ([]Valuation, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listValuationsBetweenSQL, itemID, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list valuations between: %w", queryErr)
	}
	defer rows.Close()

	return collectValuations(rows)
}

func collectValuations(rows pgx.Rows) ([]Valuation, error) {
	valuations := make([]Valuation, 0)
	for rows.Next() {
		v, err := scanValuation(rows)
		if err != nil {
			return nil, err
		}
		valuations = append(valuations, v)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return valuations, nil
}

func scanValuation(rows pgx.Rows) (Valuation, error) {
	var v Valuation
	var quickStr, fairStr, maxStr string
	if err := rows.Scan(
		&v.ItemID,
		&quickStr,
		&fairStr,
		&maxStr,
		&v.DataSource,
		&v.CreatedAt,
	); err != nil {
		return Valuation{}, err
	}

	var convErr error
	v.QuickSale, convErr = decimal.NewFromString(quickStr)
	if convErr != nil {
		return Valuation{}, fmt.Errorf("parse quick sale: %w", convErr)
	}
	v.FairPrice, convErr = decimal.NewFromString(fairStr)
	if convErr != nil {
		return Valuation{}, fmt.Errorf("parse fair price: %w", convErr)
	}
	v.MaxValue, convErr = decimal.NewFromString(maxStr)
	if convErr != nil {
		return Valuation{}, fmt.Errorf("parse max value: %w", convErr)
	}

	return v, nil
}

func scanItem(rows pgx.Rows) (Item, error) {
	var item Item
	var retailStr, costStr, floorStr, targetStr string
	var status string

	if err := rows.Scan(
		&item.ID,
		&item.Name,
		&item.Brand,
		&item.Category,
		&item.Condition,
		&item.Color,
		&item.Size,
		&item.Measurements,
		&retailStr,
		&costStr,
		&floorStr,
		&targetStr,
		&item.Notes,
		&item.Photos,
		&status,
		&item.Platforms,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return Item{}, err
	}

	var err error
	item.RetailPrice, err = decimal.NewFromString(retailStr)
	if err != nil {
		return Item{}, fmt.Errorf("parse retail price: %w", err)
	}
	item.Cost, err = decimal.NewFromString(costStr)
	if err != nil {
		return Item{}, fmt.Errorf("parse cost: %w", err)
	}
	item.FloorPrice, err = decimal.NewFromString(floorStr)
	if err != nil {
		return Item{}, fmt.Errorf("parse floor price: %w", err)
	}
	item.TargetPrice, err = decimal.NewFromString(targetStr)
	if err != nil {
		return Item{}, fmt.Errorf("parse target price: %w", err)
	}
	item.Status = ParseItemStatus(status)

	return item, nil
}

// prepareNewItem fills the fields every new item must carry.
func prepareNewItem(item *Item) {
	if item.ID == "" {
		item.ID = NewItemID()
	}
	if item.Status == "" {
		item.Status = StatusUnlisted
	}
	if item.Photos == nil {
		item.Photos = []string{}
	}
	if item.Platforms == nil {
		item.Platforms = []string{}
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
}

var _ Store = (*Postgres)(nil)
