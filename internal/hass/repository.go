package hass

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EntityRecord is one row of the entity registry.
type EntityRecord struct {
	UniqueID      string
	ConfigEntryID string
	Platform      string
	Name          string
	DeviceClass   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Repository persists the entity registry. Only registration metadata is
// stored; entity state is never written.
type Repository interface {
	// Upsert inserts the record or refreshes name/class/updated_at,
	// preserving created_at.
	Upsert(ctx context.Context, rec EntityRecord) error

	// ListByEntry returns all records for a config entry.
	ListByEntry(ctx context.Context, entryID string) ([]EntityRecord, error)

	// Delete removes a record. Deleting an unknown id is not an error.
	Delete(ctx context.Context, uniqueID string) error
}

// SQLiteRepository implements Repository using the entity_registry table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed entity registry.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert implements Repository.
func (r *SQLiteRepository) Upsert(ctx context.Context, rec EntityRecord) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO entity_registry
			(unique_id, config_entry_id, platform, name, device_class, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(unique_id) DO UPDATE SET
			config_entry_id = excluded.config_entry_id,
			platform = excluded.platform,
			name = excluded.name,
			device_class = excluded.device_class,
			updated_at = excluded.updated_at`,
		rec.UniqueID, rec.ConfigEntryID, rec.Platform, rec.Name, rec.DeviceClass, now, now,
	)
	if err != nil {
		return fmt.Errorf("upserting entity %s: %w", rec.UniqueID, err)
	}
	return nil
}

// ListByEntry implements Repository.
func (r *SQLiteRepository) ListByEntry(ctx context.Context, entryID string) ([]EntityRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT unique_id, config_entry_id, platform, name, device_class, created_at, updated_at
		FROM entity_registry
		WHERE config_entry_id = ?
		ORDER BY unique_id`, entryID)
	if err != nil {
		return nil, fmt.Errorf("querying entity registry: %w", err)
	}
	defer rows.Close()

	var records []EntityRecord
	for rows.Next() {
		var rec EntityRecord
		var created, updated string
		if err := rows.Scan(&rec.UniqueID, &rec.ConfigEntryID, &rec.Platform,
			&rec.Name, &rec.DeviceClass, &created, &updated); err != nil {
			return nil, fmt.Errorf("scanning entity row: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, created) //nolint:errcheck // format is ours
		rec.UpdatedAt, _ = time.Parse(time.RFC3339, updated) //nolint:errcheck // format is ours
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entity rows: %w", err)
	}
	return records, nil
}

// Delete implements Repository.
func (r *SQLiteRepository) Delete(ctx context.Context, uniqueID string) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM entity_registry WHERE unique_id = ?", uniqueID,
	); err != nil {
		return fmt.Errorf("deleting entity %s: %w", uniqueID, err)
	}
	return nil
}
