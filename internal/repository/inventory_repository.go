package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"mescore/api/internal/models"
)

var (
	ErrItemNotFound      = errors.New("inventory item not found")
	ErrSKUTaken          = errors.New("sku already in use")
	ErrInsufficientStock = errors.New("adjustment would drive quantity below zero")
)

type InventoryRepository struct {
	pool *pgxpool.Pool
}

func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{pool: pool}
}

func (r *InventoryRepository) CreateItem(ctx context.Context, item models.InventoryItem) error {
	const query = `
		INSERT INTO inventory_items (id, sku, name, unit, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.pool.Exec(ctx, query, item.ID, item.SKU, item.Name, item.Unit, item.Quantity)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSKUTaken
		}
		return err
	}
	return nil
}

func (r *InventoryRepository) GetItem(ctx context.Context, id string) (models.InventoryItem, error) {
	const query = `
		SELECT id, sku, name, unit, quantity, created_at, updated_at
		FROM inventory_items WHERE id = $1
	`
	var item models.InventoryItem
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&item.ID, &item.SKU, &item.Name, &item.Unit, &item.Quantity, &item.CreatedAt, &item.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.InventoryItem{}, ErrItemNotFound
		}
		return models.InventoryItem{}, err
	}
	return item, nil
}

func (r *InventoryRepository) ListItems(ctx context.Context) ([]models.InventoryItem, error) {
	const query = `
		SELECT id, sku, name, unit, quantity, created_at, updated_at
		FROM inventory_items ORDER BY sku
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.InventoryItem
	for rows.Next() {
		var item models.InventoryItem
		if err := rows.Scan(
			&item.ID, &item.SKU, &item.Name, &item.Unit, &item.Quantity, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Adjust applies a signed delta and records the adjustment in one
// transaction. The guarded UPDATE refuses to take the quantity negative.
func (r *InventoryRepository) Adjust(ctx context.Context, adj models.InventoryAdjustment) (models.InventoryItem, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return models.InventoryItem{}, err
	}
	defer tx.Rollback(ctx)

	const update = `
		UPDATE inventory_items
		SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1 AND quantity + $2 >= 0
		RETURNING id, sku, name, unit, quantity, created_at, updated_at
	`
	var item models.InventoryItem
	if err := tx.QueryRow(ctx, update, adj.ItemID, adj.Delta).Scan(
		&item.ID, &item.SKU, &item.Name, &item.Unit, &item.Quantity, &item.CreatedAt, &item.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a missing item from a guarded update.
			var exists bool
			if checkErr := r.pool.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM inventory_items WHERE id = $1)`, adj.ItemID,
			).Scan(&exists); checkErr == nil && !exists {
				return models.InventoryItem{}, ErrItemNotFound
			}
			return models.InventoryItem{}, ErrInsufficientStock
		}
		return models.InventoryItem{}, err
	}

	const insert = `
		INSERT INTO inventory_adjustments (id, item_id, delta, reason, adjusted_by, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	if _, err := tx.Exec(ctx, insert, adj.ID, adj.ItemID, adj.Delta, adj.Reason, adj.AdjustedBy); err != nil {
		return models.InventoryItem{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.InventoryItem{}, err
	}
	return item, nil
}

func (r *InventoryRepository) ListAdjustments(ctx context.Context, itemID string, limit int, offset int) ([]models.InventoryAdjustment, error) {
	const query = `
		SELECT id, item_id, delta, reason, adjusted_by, created_at
		FROM inventory_adjustments
		WHERE item_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, itemID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var adjustments []models.InventoryAdjustment
	for rows.Next() {
		var adj models.InventoryAdjustment
		if err := rows.Scan(
			&adj.ID, &adj.ItemID, &adj.Delta, &adj.Reason, &adj.AdjustedBy, &adj.CreatedAt,
		); err != nil {
			return nil, err
		}
		adjustments = append(adjustments, adj)
	}
	return adjustments, rows.Err()
}
