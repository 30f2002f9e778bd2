package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"prodcatalog/internal/domain"
)

type StatsRepo struct{ db *sqlx.DB }

func NewStatsRepo(db *sqlx.DB) *StatsRepo { return &StatsRepo{db: db} }

// Counts reads the four table sizes. The reads are independent, so the
// numbers may come from slightly different points in time.
func (r *StatsRepo) Counts(ctx context.Context) (domain.Stats, error) {
	var s domain.Stats
	for _, c := range []struct {
		dst   *int64
		table string
	}{
		{&s.TotalProducts, "amazon_products"},
		{&s.TotalUsers, "users"},
		{&s.TotalRatings, "product_ratings"},
		{&s.TotalCategories, "amazon_categories"},
	} {
		if err := r.db.GetContext(ctx, c.dst, `SELECT COUNT(*) FROM `+c.table); err != nil {
			return domain.Stats{}, classify(err)
		}
	}
	return s, nil
}
