package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BhanuRekulampati/item-tracker/internal/model"
)

const itemColumns = `id, user_id, name, description, qr_token, icon, scan_count, last_scan, created_at, is_active`

func scanItem(scan func(dest ...any) error) (*model.Item, error) {
	item := &model.Item{}
	var description sql.NullString
	err := scan(&item.ID, &item.UserID, &item.Name, &description, &item.QRToken,
		&item.Icon, &item.ScanCount, &item.LastScan, &item.CreatedAt, &item.IsActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning item: %w", err)
	}
	item.Description = description.String
	return item, nil
}

// CreateItem creates a new item with the given QR token.
func (s *SQLite) CreateItem(ctx context.Context, userID int64, name, description, icon, qrToken string) (*model.Item, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO items (user_id, name, description, icon, qr_token) VALUES (?, ?, ?, ?, ?)`,
		userID, name, description, icon, qrToken,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return s.GetItem(ctx, id)
}

// GetItem returns an item by ID.
func (s *SQLite) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	)
	return scanItem(row.Scan)
}

// GetItemByToken returns an item by its public QR token.
func (s *SQLite) GetItemByToken(ctx context.Context, token string) (*model.Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE qr_token = ?`, token,
	)
	return scanItem(row.Scan)
}

// ListItemsByUser returns all items owned by the user.
func (s *SQLite) ListItemsByUser(ctx context.Context, userID int64) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem overwrites an item's mutable fields. The owner, token,
// counters and timestamps are not touchable through this path.
func (s *SQLite) UpdateItem(ctx context.Context, id int64, name, description, icon string, active bool) (*model.Item, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE items SET name = ?, description = ?, icon = ?, is_active = ? WHERE id = ?`,
		name, description, icon, active, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}
	return s.GetItem(ctx, id)
}

// DeleteItem hard-deletes an item, reporting whether a row was removed.
func (s *SQLite) DeleteItem(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	return n > 0, nil
}

// RecordScan atomically increments the scan counter and stamps the scan
// time. Returns (nil, nil) if the item no longer exists.
func (s *SQLite) RecordScan(ctx context.Context, id int64, at time.Time) (*model.Item, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE items SET scan_count = scan_count + 1, last_scan = ? WHERE id = ?`,
		at, id,
	)
	if err != nil {
		return nil, fmt.Errorf("recording scan: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("recording scan: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return s.GetItem(ctx, id)
}
