package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scythe504/undercover-backend/internal"
)

// ErrReservedCategory is returned when seeding the id clients use for custom lists.
var ErrReservedCategory = errors.New("category id is reserved")

const schema = `
CREATE TABLE IF NOT EXISTS categories (
	id       TEXT    PRIMARY KEY,
	name     TEXT    NOT NULL,
	position INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS words (
	id          BIGSERIAL PRIMARY KEY,
	category_id TEXT      NOT NULL REFERENCES categories (id) ON DELETE CASCADE,
	word        TEXT      NOT NULL,
	UNIQUE (category_id, word)
);
CREATE INDEX IF NOT EXISTS idx_words_category ON words (category_id);
`

// WordRepository stores word categories.
type WordRepository struct {
	db *pgxpool.Pool
}

// NewWordRepository creates a WordRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewWordRepository(db *pgxpool.Pool) *WordRepository {
	return &WordRepository{db: db}
}

// EnsureSchema creates the catalog tables if they do not exist.
func (r *WordRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating catalog schema: %w", err)
	}
	return nil
}

// SeedCategories upserts categories in order and inserts their words,
// skipping words already stored.
//
// Postcondition: Returns the number of newly inserted words, or a non-nil error
// with nothing written.
func (r *WordRepository) SeedCategories(ctx context.Context, categories []internal.Category) (int, error) {
	for _, cat := range categories {
		if cat.ID == internal.CustomCategory {
			return 0, fmt.Errorf("%w: %q", ErrReservedCategory, cat.ID)
		}
	}

	inserted := 0
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for pos, cat := range categories {
			name := cat.Name
			if name == "" {
				name = cat.ID
			}
			batch.Queue(
				`INSERT INTO categories (id, name, position) VALUES ($1, $2, $3)
				 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, position = EXCLUDED.position`,
				cat.ID, name, pos,
			)
			for _, word := range cat.Words {
				batch.Queue(
					`INSERT INTO words (category_id, word) VALUES ($1, $2)
					 ON CONFLICT (category_id, word) DO NOTHING`,
					cat.ID, word,
				).Exec(func(tag pgconn.CommandTag) error {
					inserted += int(tag.RowsAffected())
					return nil
				})
			}
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return 0, fmt.Errorf("seeding categories: %w", err)
	}
	return inserted, nil
}

// ListCategories returns every category with its words, in seed order.
func (r *WordRepository) ListCategories(ctx context.Context) ([]internal.Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT c.id, c.name, w.word
		 FROM categories c
		 JOIN words w ON w.category_id = c.id
		 ORDER BY c.position, c.id, w.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []internal.Category
	for rows.Next() {
		var id, name, word string
		if err := rows.Scan(&id, &name, &word); err != nil {
			return nil, fmt.Errorf("scanning category row: %w", err)
		}
		if n := len(categories); n == 0 || categories[n-1].ID != id {
			categories = append(categories, internal.Category{ID: id, Name: name})
		}
		last := &categories[len(categories)-1]
		last.Words = append(last.Words, word)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}
	return categories, nil
}

// CountWords returns the number of stored words.
func (r *WordRepository) CountWords(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM words`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting words: %w", err)
	}
	return n, nil
}
