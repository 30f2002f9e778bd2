package domain

import "github.com/shopspring/decimal"

// ProductFields are the mutable product columns, as accepted on create and
// on full-replace update.
type ProductFields struct {
	Title             string              `json:"title" validate:"required,max=2000"`
	Price             *decimal.Decimal    `json:"price" validate:"required"`
	OriginalPrice     decimal.NullDecimal `json:"original_price"`
	Stars             float64             `json:"stars" validate:"gte=0,lte=5"`
	Reviews           int                 `json:"reviews" validate:"gte=0"`
	CategoryID        int64               `json:"category_id" validate:"required,gt=0"`
	ImgURL            *string             `json:"img_url" validate:"omitempty,max=8192"`
	ProductURL        *string             `json:"product_url" validate:"omitempty,max=8192"`
	IsBestSeller      bool                `json:"is_best_seller"`
	BoughtInLastMonth int                 `json:"bought_in_last_month" validate:"gte=0"`
}

type CreateProductRequest struct {
	ASIN string `json:"asin" validate:"required,asin"`
	ProductFields
}

type UpdateProductRequest struct {
	ProductFields
}

// Apply copies the fields onto p, leaving p.ASIN alone.
func (f ProductFields) Apply(p *Product) {
	p.Title = f.Title
	if f.Price != nil {
		p.Price = *f.Price
	}
	p.OriginalPrice = f.OriginalPrice
	p.Stars = f.Stars
	p.Reviews = f.Reviews
	p.CategoryID = f.CategoryID
	p.ImgURL = f.ImgURL
	p.ProductURL = f.ProductURL
	p.IsBestSeller = f.IsBestSeller
	p.BoughtInLastMonth = f.BoughtInLastMonth
}

func (r CreateProductRequest) Product() Product {
	p := Product{ASIN: r.ASIN}
	r.Apply(&p)
	return p
}

// ListQuery binds GET /products. Zero values are replaced by defaults
// before binding.
type ListQuery struct {
	Page       int    `query:"page" validate:"gte=1,lte=10000000"`
	Limit      int    `query:"limit" validate:"gte=1,lte=100"`
	CategoryID *int64 `query:"category_id" validate:"omitempty,gt=0"`
}

// SearchQuery binds GET /products/search. Prices stay strings until they
// are parsed into decimals.
type SearchQuery struct {
	Page       int      `query:"page" validate:"gte=1,lte=10000000"`
	Limit      int      `query:"limit" validate:"gte=1,lte=100"`
	Q          string   `query:"q" validate:"max=100"`
	CategoryID *int64   `query:"category_id" validate:"omitempty,gt=0"`
	MinPrice   string   `query:"min_price" validate:"omitempty,numeric"`
	MaxPrice   string   `query:"max_price" validate:"omitempty,numeric"`
	MinRating  *float64 `query:"min_rating" validate:"omitempty,gte=0,lte=5"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100

	// MaxPage keeps (page-1)*MaxLimit far from integer overflow.
	MaxPage = 10000000
)
