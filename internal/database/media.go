package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"media-library/internal/media"
)

// ErrNotFound is returned when no asset has the requested id.
var ErrNotFound = errors.New("media not found")

const mediaColumns = `id, name, description, context, provider_name, provider_reference,
	content_type, size, width, height, status, cdn_is_flushable, created_at, updated_at`

// Create inserts a new asset. Zero timestamps are set to now.
func (s *Store) Create(ctx context.Context, a *media.Asset) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Second)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	start := time.Now()
	_, err := s.db.ExecContext(ctx, `INSERT INTO media (`+mediaColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Description, a.Context, a.ProviderName, a.ProviderReference,
		a.ContentType, a.Size, a.Width, a.Height, string(a.Status), a.CDNIsFlushable,
		a.CreatedAt.Unix(), a.UpdatedAt.Unix(),
	)
	recordQuery("create_media", start, err)
	if err != nil {
		return fmt.Errorf("create media %s: %w", a.ID, err)
	}
	return nil
}

// Get returns the asset with id.
func (s *Store) Get(ctx context.Context, id string) (*media.Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	start := time.Now()
	row := s.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = ?`, id)
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		recordQuery("get_media", start, nil)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	recordQuery("get_media", start, err)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Update replaces every mutable column of an existing asset and bumps its
// updated time.
func (s *Store) Update(ctx context.Context, a *media.Asset) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	a.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	start := time.Now()
	result, err := s.db.ExecContext(ctx, `UPDATE media SET
		name = ?, description = ?, context = ?, provider_name = ?, provider_reference = ?,
		content_type = ?, size = ?, width = ?, height = ?, status = ?, cdn_is_flushable = ?,
		updated_at = ?
		WHERE id = ?`,
		a.Name, a.Description, a.Context, a.ProviderName, a.ProviderReference,
		a.ContentType, a.Size, a.Width, a.Height, string(a.Status), a.CDNIsFlushable,
		a.UpdatedAt.Unix(), a.ID,
	)
	recordQuery("update_media", start, err)
	if err != nil {
		return fmt.Errorf("update media %s: %w", a.ID, err)
	}
	return requireRow(result, a.ID)
}

// Delete removes the asset with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	recordQuery("delete_media", start, err)
	if err != nil {
		return fmt.Errorf("delete media %s: %w", id, err)
	}
	return requireRow(result, id)
}

// ListByContext returns the assets of a context, newest first. A
// non-positive limit returns everything from offset.
func (s *Store) ListByContext(ctx context.Context, mediaContext string, limit, offset int) ([]*media.Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if limit <= 0 {
		limit = -1
	}

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, `SELECT `+mediaColumns+` FROM media
		WHERE context = ?
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`, mediaContext, limit, max(offset, 0))
	if err != nil {
		recordQuery("list_media", start, err)
		return nil, err
	}
	defer rows.Close()

	var out []*media.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			recordQuery("list_media", start, err)
			return nil, err
		}
		out = append(out, a)
	}
	err = rows.Err()
	recordQuery("list_media", start, err)
	return out, err
}

// CountByStatus returns the number of assets per status.
func (s *Store) CountByStatus(ctx context.Context) (map[string]int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM media GROUP BY status`)
	if err != nil {
		recordQuery("count_by_status", start, err)
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			recordQuery("count_by_status", start, err)
			return nil, err
		}
		counts[status] = n
	}
	err = rows.Err()
	recordQuery("count_by_status", start, err)
	return counts, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(row scanner) (*media.Asset, error) {
	var (
		a                media.Asset
		status           string
		created, updated int64
	)
	err := row.Scan(
		&a.ID, &a.Name, &a.Description, &a.Context, &a.ProviderName, &a.ProviderReference,
		&a.ContentType, &a.Size, &a.Width, &a.Height, &status, &a.CDNIsFlushable,
		&created, &updated,
	)
	if err != nil {
		return nil, err
	}
	a.Status = media.Status(status)
	a.CreatedAt = time.Unix(created, 0).UTC()
	a.UpdatedAt = time.Unix(updated, 0).UTC()
	return &a, nil
}

func requireRow(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
