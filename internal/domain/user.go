package domain

import "github.com/shopspring/decimal"

type User struct {
	ID        int64  `db:"id" json:"user_id"`
	Name      string `db:"name" json:"name"`
	Email     string `db:"email" json:"email"`
	AgeGroup  string `db:"age_group" json:"age_group"`
	Gender    string `db:"gender" json:"gender"`
	Country   string `db:"country" json:"country"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

type ProductRating struct {
	UserID  int64   `db:"user_id" json:"user_id"`
	ASIN    string  `db:"asin" json:"asin"`
	Rating  float64 `db:"rating" json:"rating"`
	Review  *string `db:"review" json:"review"`
	RatedAt *string `db:"rated_at" json:"rated_at"`
}

// RatedProduct is a rating joined with whatever is left of its product and
// category; the product side is nil when the product row is gone.
type RatedProduct struct {
	ASIN         string              `db:"asin" json:"asin"`
	Rating       float64             `db:"rating" json:"rating"`
	Review       *string             `db:"review" json:"review"`
	RatedAt      *string             `db:"rated_at" json:"rated_at"`
	ProductName  *string             `db:"product_name" json:"product_name"`
	Price        decimal.NullDecimal `db:"price" json:"price"`
	CategoryName *string             `db:"category_name" json:"category_name"`
}

type Profile struct {
	User         User           `json:"user"`
	TotalRatings int            `json:"total_ratings"`
	Ratings      []RatedProduct `json:"ratings"`
}
