package domain

import "github.com/shopspring/decimal"

func init() {
	// Prices go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"category_name" json:"category_name"`
}

type Product struct {
	ASIN              string              `db:"asin" json:"asin"`
	Title             string              `db:"title" json:"title"`
	Price             decimal.Decimal     `db:"price" json:"price"`
	OriginalPrice     decimal.NullDecimal `db:"original_price" json:"original_price"`
	Stars             float64             `db:"stars" json:"stars"`
	Reviews           int                 `db:"reviews" json:"reviews"`
	CategoryID        int64               `db:"category_id" json:"category_id"`
	ImgURL            *string             `db:"img_url" json:"img_url"`
	ProductURL        *string             `db:"product_url" json:"product_url"`
	IsBestSeller      bool                `db:"is_best_seller" json:"is_best_seller"`
	BoughtInLastMonth int                 `db:"bought_in_last_month" json:"bought_in_last_month"`
}

// ProductPage is one page of a listing. TotalResults counts the items on
// this page only.
type ProductPage struct {
	Products     []Product `json:"products"`
	Page         int       `json:"page"`
	Limit        int       `json:"limit"`
	TotalResults int       `json:"total_results"`
}

type Stats struct {
	TotalProducts   int64 `json:"total_products"`
	TotalUsers      int64 `json:"total_users"`
	TotalRatings    int64 `json:"total_ratings"`
	TotalCategories int64 `json:"total_categories"`
}

// SearchParams are the already-validated inputs of a product search. Nil or
// invalid optional fields are not applied.
type SearchParams struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	MinPrice   decimal.NullDecimal
	MaxPrice   decimal.NullDecimal
	MinRating  *float64
}
