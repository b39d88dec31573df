package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ SourceRepository = (*SourceRepo)(nil)

type SourceRepo struct {
	db  *DB
	now func() time.Time
}

func NewSourceRepository(db *DB) *SourceRepo {
	return &SourceRepo{db: db, now: time.Now}
}

const sourceColumns = `
	s.id, s.name, s.type, s.location, s.last_fetched_at, s.next_fetch_at, s.created_at, s.updated_at,
	(SELECT COUNT(*) FROM articles a WHERE a.source_id = s.id)`

// GetSource returns nil without error when no source has the given name.
func (r *SourceRepo) GetSource(ctx context.Context, name string) (*Source, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sourceColumns+` FROM sources s WHERE s.name = ?`, name)

	source, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}
	return source, nil
}

func (r *SourceRepo) ListSources(ctx context.Context) ([]Source, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sourceColumns+` FROM sources s ORDER BY s.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	sources := []Source{}
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, *source)
	}

	return sources, rows.Err()
}

// UpsertSource registers a source configuration and returns its ID.
func (r *SourceRepo) UpsertSource(ctx context.Context, name, sourceType, location string) (string, error) {
	now := toMillis(r.now())

	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO sources (id, name, type, location, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			type = excluded.type,
			location = excluded.location,
			updated_at = excluded.updated_at
		RETURNING id
	`, uuid.NewString(), name, sourceType, location, now, now).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to upsert source: %w", err)
	}

	return id, nil
}

func (r *SourceRepo) UpdateFetchTimes(ctx context.Context, sourceID string, fetchedAt, nextFetch time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sources
		SET last_fetched_at = ?, next_fetch_at = ?, updated_at = ?
		WHERE id = ?
	`, toMillis(fetchedAt), toMillis(nextFetch), toMillis(r.now()), sourceID)
	if err != nil {
		return fmt.Errorf("failed to update source fetch times: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*Source, error) {
	var (
		s                    Source
		lastFetched, next    sql.NullInt64
		createdAt, updatedAt int64
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Type, &s.Location, &lastFetched, &next, &createdAt, &updatedAt, &s.ArticleCount); err != nil {
		return nil, err
	}
	s.LastFetchedAt = fromNullMillis(lastFetched)
	s.NextFetchAt = fromNullMillis(next)
	s.CreatedAt = fromMillis(createdAt)
	s.UpdatedAt = fromMillis(updatedAt)
	return &s, nil
}
