// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/popfeast/internal/logging"
	"github.com/tomtom215/popfeast/internal/metrics"
	"github.com/tomtom215/popfeast/internal/models"
)

// ListFavorites implements Repository.
func (db *DB) ListFavorites(ctx context.Context) (result []models.FavoriteEntry, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("list_favorites", time.Since(start), err) }()

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT item_id, item_type, created_at
		FROM favorites
		ORDER BY created_at DESC, item_type, item_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer closeWithLog(rows, "rows")

	result = make([]models.FavoriteEntry, 0)
	for rows.Next() {
		var (
			e        models.FavoriteEntry
			itemType string
		)
		if err := rows.Scan(&e.ItemID, &itemType, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		e.ItemType = models.ItemType(itemType)
		e.CreatedAt = e.CreatedAt.UTC()
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorites: %w", err)
	}
	return result, nil
}

// AddFavorite implements Repository.
func (db *DB) AddFavorite(ctx context.Context, key models.Key) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("add_favorite", time.Since(start), err) }()

	if err := key.Validate(); err != nil {
		return err
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO favorites (item_id, item_type, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING`,
		key.ItemID, string(key.ItemType), db.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to add favorite %s: %w", key, err)
	}
	return nil
}

// RemoveFavorite implements Repository.
func (db *DB) RemoveFavorite(ctx context.Context, key models.Key) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("remove_favorite", time.Since(start), err) }()

	if err := key.Validate(); err != nil {
		return err
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	_, err = db.conn.ExecContext(ctx,
		`DELETE FROM favorites WHERE item_id = ? AND item_type = ?`,
		key.ItemID, string(key.ItemType))
	if err != nil {
		return fmt.Errorf("failed to remove favorite %s: %w", key, err)
	}
	return nil
}

// ToggleFavorite implements Repository. The lookup and the write share one
// transaction, so concurrent toggles of the same item serialize.
func (db *DB) ToggleFavorite(ctx context.Context, key models.Key) (op models.Op, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("toggle_favorite", time.Since(start), err) }()

	if err := key.Validate(); err != nil {
		return "", err
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin toggle of %s: %w", key, err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Warn().Err(rbErr).Str("item", key.String()).Msg("Toggle rollback failed")
			}
		}
	}()

	var n int
	if err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE item_id = ? AND item_type = ?`,
		key.ItemID, string(key.ItemType)).Scan(&n); err != nil {
		return "", fmt.Errorf("failed to look up favorite %s: %w", key, err)
	}

	op = models.OpFor(n > 0)
	if op == models.OpRemove {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM favorites WHERE item_id = ? AND item_type = ?`,
			key.ItemID, string(key.ItemType))
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO favorites (item_id, item_type, created_at)
			VALUES (?, ?, ?)`,
			key.ItemID, string(key.ItemType), db.now().UTC())
	}
	if err != nil {
		return "", fmt.Errorf("failed to %s favorite %s: %w", op, key, err)
	}
	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit toggle of %s: %w", key, err)
	}
	return op, nil
}
