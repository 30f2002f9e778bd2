package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"prodcatalog/internal/domain"
)

type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) ByID(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, r.db.Rebind(`
  SELECT id, name, email, age_group, gender, country, created_at
  FROM users
  WHERE id = ?`), id)
	return u, classify(err)
}

// Ratings lists a user's ratings with product and category names, best
// rated first. Ratings whose product is gone keep nil product fields.
func (r *UserRepo) Ratings(ctx context.Context, userID int64) ([]domain.RatedProduct, error) {
	out := []domain.RatedProduct{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
  SELECT
    pr.asin, pr.rating, pr.review, pr.rated_at,
    p.title AS product_name, p.price, c.category_name
  FROM product_ratings pr
  LEFT JOIN amazon_products p ON p.asin = pr.asin
  LEFT JOIN amazon_categories c ON c.id = p.category_id
  WHERE pr.user_id = ?
  ORDER BY pr.rating DESC, pr.asin`), userID)
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}
