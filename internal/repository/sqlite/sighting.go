package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/birdwatch/internal/apperror"
	"github.com/sakif/birdwatch/internal/model"
	"github.com/sakif/birdwatch/internal/repository"
)

// dateTimeLayout is fixed width so TEXT comparison orders chronologically.
const dateTimeLayout = "2006-01-02T15:04:05"

type SightingStore struct{ db *DB }

func (db *DB) Sightings() *SightingStore { return &SightingStore{db: db} }

var _ repository.SightingRepository = (*SightingStore)(nil)

const sightingColumns = `id, bird_id, location, date_time`

func (s *SightingStore) Create(ctx context.Context, sighting *model.Sighting) error {
	sighting.ID = xid.New().String()

	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO sightings (id, bird_id, location, date_time)
		 VALUES (?, ?, ?, ?)`,
		sighting.ID,
		sighting.BirdID,
		sighting.Location,
		encodeDateTime(sighting.DateTime),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating sighting: %w", err)
	}

	return nil
}

func (s *SightingStore) GetByID(ctx context.Context, id string) (*model.Sighting, error) {
	row := s.db.conn.QueryRowContext(ctx,
		`SELECT `+sightingColumns+` FROM sightings WHERE id = ?`,
		id,
	)

	sighting, err := scanSighting(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.SightingNotFound()
		}
		return nil, fmt.Errorf("sqlite: getting sighting %s: %w", id, err)
	}

	return sighting, nil
}

// Update replaces every field, bird_id included.
func (s *SightingStore) Update(ctx context.Context, sighting *model.Sighting) error {
	result, err := s.db.conn.ExecContext(ctx,
		`UPDATE sightings
		 SET bird_id = ?, location = ?, date_time = ?
		 WHERE id = ?`,
		sighting.BirdID,
		sighting.Location,
		encodeDateTime(sighting.DateTime),
		sighting.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating sighting %s: %w", sighting.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.SightingNotFound()
	}

	return nil
}

func (s *SightingStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.conn.ExecContext(ctx, `DELETE FROM sightings WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting sighting %s: %w", id, err)
	}
	return nil
}

// DeleteMany removes every sighting in ids with a single statement.
func (s *SightingStore) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	_, err := s.db.conn.ExecContext(ctx,
		`DELETE FROM sightings WHERE id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting %d sightings: %w", len(ids), err)
	}
	return nil
}

func (s *SightingStore) List(ctx context.Context) ([]model.Sighting, error) {
	return s.query(ctx, "listing sightings",
		`SELECT `+sightingColumns+` FROM sightings ORDER BY rowid`)
}

func (s *SightingStore) FindIDsByBirdID(ctx context.Context, birdID string) ([]string, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id FROM sightings WHERE bird_id = ?`,
		birdID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: finding sighting ids for bird %s: %w", birdID, err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning sighting id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating sighting ids: %w", err)
	}

	return ids, nil
}

func (s *SightingStore) FindByBirdID(ctx context.Context, birdID string) ([]model.Sighting, error) {
	return s.query(ctx, "finding sightings by bird",
		`SELECT `+sightingColumns+` FROM sightings WHERE bird_id = ? ORDER BY rowid`, birdID)
}

func (s *SightingStore) FindByLocation(ctx context.Context, location string) ([]model.Sighting, error) {
	return s.query(ctx, "finding sightings by location",
		`SELECT `+sightingColumns+` FROM sightings WHERE location = ? ORDER BY rowid`, location)
}

func (s *SightingStore) FindByDateTimeBetween(ctx context.Context, start, end time.Time) ([]model.Sighting, error) {
	return s.query(ctx, "finding sightings by date-time",
		`SELECT `+sightingColumns+` FROM sightings
		 WHERE date_time IS NOT NULL AND date_time BETWEEN ? AND ?
		 ORDER BY rowid`,
		start.UTC().Format(dateTimeLayout),
		end.UTC().Format(dateTimeLayout),
	)
}

func (s *SightingStore) query(ctx context.Context, action, query string, args ...any) ([]model.Sighting, error) {
	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %s: %w", action, err)
	}
	defer rows.Close()

	sightings := make([]model.Sighting, 0)
	for rows.Next() {
		sighting, err := scanSighting(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning sighting row: %w", err)
		}
		sightings = append(sightings, *sighting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating sightings: %w", err)
	}

	return sightings, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSighting(row scanner) (*model.Sighting, error) {
	var (
		s  model.Sighting
		dt sql.NullString
	)
	if err := row.Scan(&s.ID, &s.BirdID, &s.Location, &dt); err != nil {
		return nil, err
	}
	if dt.Valid {
		t, err := time.Parse(dateTimeLayout, dt.String)
		if err != nil {
			return nil, fmt.Errorf("decoding date_time %q: %w", dt.String, err)
		}
		s.DateTime = &t
	}
	return &s, nil
}

func encodeDateTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(dateTimeLayout)
}
