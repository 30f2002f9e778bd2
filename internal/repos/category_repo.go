package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"prodcatalog/internal/domain"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.SelectContext(ctx, &out, `
  SELECT id, category_name
  FROM amazon_categories
  ORDER BY category_name, id
`)
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}
