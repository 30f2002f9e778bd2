package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"prodcatalog/internal/domain"
)

const (
	insertCategorySQL = `
  INSERT INTO amazon_categories(id, category_name) VALUES (:id, :category_name)`

	insertUserSQL = `
  INSERT INTO users(id, name, email, age_group, gender, country, created_at)
  VALUES (:id, :name, :email, :age_group, :gender, :country, :created_at)`

	insertRatingSQL = `
  INSERT INTO product_ratings(user_id, asin, rating, review, rated_at)
  VALUES (:user_id, :asin, :rating, :review, :rated_at)`
)

// BulkRepo writes loader chunks. Every Insert call is one transaction made of
// multi-row INSERT statements of at most batch rows.
type BulkRepo struct{ db *sqlx.DB }

func NewBulkRepo(db *sqlx.DB) *BulkRepo { return &BulkRepo{db: db} }

func (r *BulkRepo) InsertCategories(ctx context.Context, rows []domain.Category, batch int) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return insertBatches(ctx, tx, insertCategorySQL, rows, batch)
	})
}

func (r *BulkRepo) InsertProducts(ctx context.Context, rows []domain.Product, batch int) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return insertBatches(ctx, tx, insertProductSQL, rows, batch)
	})
}

func (r *BulkRepo) InsertUsers(ctx context.Context, rows []domain.User, batch int) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return insertBatches(ctx, tx, insertUserSQL, rows, batch)
	})
}

func (r *BulkRepo) InsertRatings(ctx context.Context, rows []domain.ProductRating, batch int) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return insertBatches(ctx, tx, insertRatingSQL, rows, batch)
	})
}

// Clear empties ratings, products and categories, children first. Users go
// too when withUsers is set.
func (r *BulkRepo) Clear(ctx context.Context, withUsers bool) error {
	tables := []string{"product_ratings", "amazon_products", "amazon_categories"}
	if withUsers {
		tables = append(tables, "users")
	}
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
				return classify(err)
			}
		}
		return nil
	})
}

func inTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return classify(tx.Commit())
}

// MaxBatchRows bounds one multi-row INSERT. At 11 columns per product row
// it stays under SQLite's 32766 bind variables and Postgres's 65535.
const MaxBatchRows = 2000

func insertBatches[T any](ctx context.Context, tx *sqlx.Tx, query string, rows []T, batch int) error {
	if batch <= 0 {
		batch = 1000
	}
	batch = min(batch, MaxBatchRows)
	for start := 0; start < len(rows); start += batch {
		end := min(start+batch, len(rows))
		if _, err := tx.NamedExecContext(ctx, query, rows[start:end]); err != nil {
			return classify(err)
		}
	}
	return nil
}
