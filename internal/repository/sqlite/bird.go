package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/birdwatch/internal/apperror"
	"github.com/sakif/birdwatch/internal/model"
	"github.com/sakif/birdwatch/internal/repository"
)

// BirdStore is the birds table. It shares its connection pool with the
// SightingStore returned by the same DB.
type BirdStore struct{ db *DB }

func (db *DB) Birds() *BirdStore { return &BirdStore{db: db} }

var _ repository.BirdRepository = (*BirdStore)(nil)

const birdColumns = `id, name, color, weight, height`

// Create inserts a new bird and writes the generated id back into bird.
func (s *BirdStore) Create(ctx context.Context, bird *model.Bird) error {
	bird.ID = xid.New().String()

	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO birds (id, name, color, weight, height)
		 VALUES (?, ?, ?, ?, ?)`,
		bird.ID,
		bird.Name,
		bird.Color,
		bird.Weight,
		bird.Height,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating bird: %w", err)
	}

	return nil
}

func (s *BirdStore) GetByID(ctx context.Context, id string) (*model.Bird, error) {
	var b model.Bird

	err := s.db.conn.QueryRowContext(ctx,
		`SELECT `+birdColumns+` FROM birds WHERE id = ?`,
		id,
	).Scan(&b.ID, &b.Name, &b.Color, &b.Weight, &b.Height)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.BirdNotFound()
		}
		return nil, fmt.Errorf("sqlite: getting bird %s: %w", id, err)
	}

	return &b, nil
}

// Update replaces every descriptive field. The id never changes.
func (s *BirdStore) Update(ctx context.Context, bird *model.Bird) error {
	result, err := s.db.conn.ExecContext(ctx,
		`UPDATE birds
		 SET name = ?, color = ?, weight = ?, height = ?
		 WHERE id = ?`,
		bird.Name,
		bird.Color,
		bird.Weight,
		bird.Height,
		bird.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating bird %s: %w", bird.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.BirdNotFound()
	}

	return nil
}

// Delete removes a bird. Deleting an unknown id is not an error.
func (s *BirdStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.conn.ExecContext(ctx, `DELETE FROM birds WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting bird %s: %w", id, err)
	}
	return nil
}

func (s *BirdStore) List(ctx context.Context) ([]model.Bird, error) {
	return s.query(ctx, "listing birds",
		`SELECT `+birdColumns+` FROM birds ORDER BY rowid`)
}

func (s *BirdStore) FindByName(ctx context.Context, name string) ([]model.Bird, error) {
	return s.query(ctx, "finding birds by name",
		`SELECT `+birdColumns+` FROM birds WHERE name = ? ORDER BY rowid`, name)
}

func (s *BirdStore) FindByColor(ctx context.Context, color string) ([]model.Bird, error) {
	return s.query(ctx, "finding birds by color",
		`SELECT `+birdColumns+` FROM birds WHERE color = ? ORDER BY rowid`, color)
}

func (s *BirdStore) query(ctx context.Context, action, query string, args ...any) ([]model.Bird, error) {
	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %s: %w", action, err)
	}
	defer rows.Close()

	birds := make([]model.Bird, 0)
	for rows.Next() {
		var b model.Bird
		if err := rows.Scan(&b.ID, &b.Name, &b.Color, &b.Weight, &b.Height); err != nil {
			return nil, fmt.Errorf("sqlite: scanning bird row: %w", err)
		}
		birds = append(birds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating birds: %w", err)
	}

	return birds, nil
}
