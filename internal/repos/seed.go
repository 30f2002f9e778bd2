package repos

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
)

// SeedIfEmpty inserts a handful of demo categories, products, users and
// ratings when the catalog has no categories yet. It is a no-op otherwise.
func SeedIfEmpty(ctx context.Context, db *sqlx.DB) error {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM amazon_categories`); err != nil {
		return classify(err)
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo categories/products/users/ratings")

	return inTx(ctx, db, func(tx *sqlx.Tx) error {
		for _, q := range []string{
			`INSERT INTO amazon_categories(id, category_name) VALUES
			  (1, 'Beading & Jewelry Making'),
			  (2, 'Fabric Decorating'),
			  (3, 'Knitting & Crochet Supplies')`,
			`INSERT INTO amazon_products(
			  asin, title, price, original_price, stars, reviews, category_id,
			  img_url, product_url, is_best_seller, bought_in_last_month
			) VALUES
			  ('B014TMV5YE', 'Sion Softside Expandable Roller Luggage', 139.99, NULL, 4.5, 0, 1,
			   'https://m.media-amazon.com/images/I/815dLQKYIYL._AC_UL320_.jpg',
			   'https://www.amazon.com/dp/B014TMV5YE', FALSE, 2000),
			  ('B07GDLCQXV', 'Luggage Sets Expandable PC+ABS Durable Suitcase', 169.99, 209.99, 4.5, 0, 1,
			   NULL, 'https://www.amazon.com/dp/B07GDLCQXV', FALSE, 1000),
			  ('B07XSCCZYG', 'Platinum Elite Softside Expandable Checked Luggage', 365.49, 429.99, 4.6, 0, 2,
			   NULL, 'https://www.amazon.com/dp/B07XSCCZYG', TRUE, 300)`,
			`INSERT INTO users(id, name, email, age_group, gender, country, created_at) VALUES
			  (1, 'Alice Shopper', 'alice@example.test', '25-34', 'F', 'US', '2023-01-15'),
			  (2, 'Bob Buyer', 'bob@example.test', '35-44', 'M', 'CA', '2023-03-02')`,
			`INSERT INTO product_ratings(user_id, asin, rating, review, rated_at) VALUES
			  (1, 'B014TMV5YE', 5, 'Great bag', '2023-05-01'),
			  (1, 'B07GDLCQXV', 3, NULL, '2023-05-03'),
			  (2, 'B07XSCCZYG', 4, 'Solid', '2023-06-11')`,
		} {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				return classify(err)
			}
		}
		return nil
	})
}
