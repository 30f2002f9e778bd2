package repos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"prodcatalog/internal/domain"
)

const productCols = `
    asin, title, price, original_price, stars, reviews, category_id,
    img_url, product_url, is_best_seller, bought_in_last_month`

const insertProductSQL = `
  INSERT INTO amazon_products(
    asin, title, price, original_price, stars, reviews, category_id,
    img_url, product_url, is_best_seller, bought_in_last_month
  ) VALUES (
    :asin, :title, :price, :original_price, :stars, :reviews, :category_id,
    :img_url, :product_url, :is_best_seller, :bought_in_last_month
  )`

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// ProductFilter narrows a listing. Zero values are not applied.
type ProductFilter struct {
	Q          string
	CategoryID *int64
	MinPrice   decimal.NullDecimal
	MaxPrice   decimal.NullDecimal
	MinRating  *float64
}

func (r *ProductRepo) List(ctx context.Context, categoryID *int64, limit, offset int) ([]domain.Product, error) {
	return r.Search(ctx, ProductFilter{CategoryID: categoryID}, limit, offset)
}

// Search returns one page of products matching every set field of f,
// ordered by asin.
func (r *ProductRepo) Search(ctx context.Context, f ProductFilter, limit, offset int) ([]domain.Product, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.Q != "" {
		pat := likePattern(f.Q)
		where = append(where, `(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(asin) LIKE ? ESCAPE '\')`)
		args = append(args, pat, pat)
	}
	if f.CategoryID != nil {
		where = append(where, `category_id = ?`)
		args = append(args, *f.CategoryID)
	}
	if f.MinPrice.Valid {
		where = append(where, `price >= `+numericParam(r.db))
		args = append(args, f.MinPrice.Decimal)
	}
	if f.MaxPrice.Valid {
		where = append(where, `price <= `+numericParam(r.db))
		args = append(args, f.MaxPrice.Decimal)
	}
	if f.MinRating != nil {
		where = append(where, `stars >= ?`)
		args = append(args, *f.MinRating)
	}

	q := `
  SELECT` + productCols + `
  FROM amazon_products
  WHERE ` + strings.Join(where, " AND ") + `
  ORDER BY asin
  LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	out := []domain.Product{}
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (r *ProductRepo) Get(ctx context.Context, asin string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`
  SELECT`+productCols+`
  FROM amazon_products
  WHERE asin = ?`), asin)
	return p, classify(err)
}

// Create inserts p after checking its category inside the same transaction.
func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Product{}, classify(err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := categoryExists(ctx, tx, p.CategoryID); err != nil {
		return domain.Product{}, err
	}
	if _, err := tx.NamedExecContext(ctx, insertProductSQL, p); err != nil {
		return domain.Product{}, classify(err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Product{}, classify(err)
	}
	return p, nil
}

// Update replaces every mutable column of the product p.ASIN.
func (r *ProductRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Product{}, classify(err)
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.GetContext(ctx, &n, tx.Rebind(`SELECT COUNT(*) FROM amazon_products WHERE asin = ?`), p.ASIN); err != nil {
		return domain.Product{}, classify(err)
	}
	if n == 0 {
		return domain.Product{}, domain.ErrNotFound
	}
	if err := categoryExists(ctx, tx, p.CategoryID); err != nil {
		return domain.Product{}, err
	}

	_, err = tx.NamedExecContext(ctx, `
  UPDATE amazon_products SET
    title = :title,
    price = :price,
    original_price = :original_price,
    stars = :stars,
    reviews = :reviews,
    category_id = :category_id,
    img_url = :img_url,
    product_url = :product_url,
    is_best_seller = :is_best_seller,
    bought_in_last_month = :bought_in_last_month
  WHERE asin = :asin`, p)
	if err != nil {
		return domain.Product{}, classify(err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Product{}, classify(err)
	}
	return p, nil
}

// Delete removes the product and its ratings in one transaction.
func (r *ProductRepo) Delete(ctx context.Context, asin string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM product_ratings WHERE asin = ?`), asin); err != nil {
		return classify(err)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM amazon_products WHERE asin = ?`), asin)
	if err != nil {
		return classify(err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return classify(err)
	} else if n == 0 {
		return domain.ErrNotFound
	}
	return classify(tx.Commit())
}

func categoryExists(ctx context.Context, tx *sqlx.Tx, id int64) error {
	var n int
	if err := tx.GetContext(ctx, &n, tx.Rebind(`SELECT COUNT(*) FROM amazon_categories WHERE id = ?`), id); err != nil {
		return classify(err)
	}
	if n == 0 {
		return domain.ErrReferentialIntegrity
	}
	return nil
}

// likePattern lowercases q, escapes LIKE metacharacters with '\' and wraps it
// for a substring match.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}

// numericParam casts a text-bound decimal for Postgres; SQLite applies the
// column's numeric affinity on its own.
func numericParam(db sqlx.Ext) string {
	if isPostgres(db) {
		return `CAST(? AS NUMERIC)`
	}
	return `?`
}
