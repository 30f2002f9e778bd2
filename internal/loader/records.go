package loader

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"prodcatalog/internal/domain"
	"prodcatalog/internal/validate"
)

// Raw rows as they appear in the flat files. Every field stays a string so
// the converters below can report the exact field that failed.

type categoryRecord struct {
	ID   string `csv:"id"`
	Name string `csv:"category_name"`
}

type productRecord struct {
	ASIN              string `csv:"asin"`
	Title             string `csv:"title"`
	ImgURL            string `csv:"imgUrl"`
	ProductURL        string `csv:"productURL"`
	Stars             string `csv:"stars"`
	Reviews           string `csv:"reviews"`
	Price             string `csv:"price"`
	ListPrice         string `csv:"listPrice"`
	CategoryID        string `csv:"category_id"`
	IsBestSeller      string `csv:"isBestSeller"`
	BoughtInLastMonth string `csv:"boughtInLastMonth"`
}

type userRecord struct {
	UserID    string `csv:"user_id"`
	Name      string `csv:"name"`
	Email     string `csv:"email"`
	AgeGroup  string `csv:"age_group"`
	Gender    string `csv:"gender"`
	Country   string `csv:"country"`
	CreatedAt string `csv:"created_at"`
}

type ratingRecord struct {
	UserID    string `csv:"user_id"`
	ProductID string `csv:"product_id"`
	Rating    string `csv:"rating"`
	Review    string `csv:"review"`
	RatedAt   string `csv:"rated_at"`
}

var (
	categoryColumns = []string{"id", "category_name"}
	productColumns  = []string{"asin", "title", "price", "category_id"}
	userColumns     = []string{"user_id"}
	ratingColumns   = []string{"user_id", "product_id", "rating"}
)

// fieldError names the column a conversion failed on.
type fieldError struct {
	field string
	value string
	msg   string
}

func bad(field, value, msg string) *fieldError {
	return &fieldError{field: field, value: value, msg: msg}
}

func toCategory(r categoryRecord) (domain.Category, *fieldError) {
	id, err := wholeID(r.ID)
	if err != nil || id <= 0 {
		return domain.Category{}, bad("id", r.ID, "must be a positive integer")
	}
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return domain.Category{}, bad("category_name", r.Name, "must not be empty")
	}
	return domain.Category{ID: id, Name: name}, nil
}

func toProduct(r productRecord) (domain.Product, *fieldError) {
	var p domain.Product
	var ok bool

	if p.ASIN, ok = validate.ASIN(r.ASIN); !ok {
		return p, bad("asin", r.ASIN, "must be 1-20 letters or digits")
	}
	if p.Title = strings.TrimSpace(r.Title); p.Title == "" {
		return p, bad("title", r.Title, "must not be empty")
	}

	price, err := money(r.Price)
	if err != nil || !price.Valid {
		return p, bad("price", r.Price, "must be a non-negative amount")
	}
	p.Price = price.Decimal
	if p.OriginalPrice, err = money(r.ListPrice); err != nil {
		return p, bad("listPrice", r.ListPrice, "must be a non-negative amount")
	}
	if p.OriginalPrice.Valid && p.OriginalPrice.Decimal.IsZero() {
		p.OriginalPrice = decimal.NullDecimal{}
	}

	if p.Stars, err = optFloat(r.Stars); err != nil || p.Stars < 0 || p.Stars > 5 {
		return p, bad("stars", r.Stars, "must be a number between 0 and 5")
	}
	if p.Reviews, err = optCount(r.Reviews); err != nil {
		return p, bad("reviews", r.Reviews, "must be a non-negative integer")
	}
	if p.CategoryID, err = wholeID(r.CategoryID); err != nil || p.CategoryID <= 0 {
		return p, bad("category_id", r.CategoryID, "must be a positive integer")
	}
	if p.IsBestSeller, err = optBool(r.IsBestSeller); err != nil {
		return p, bad("isBestSeller", r.IsBestSeller, "must be True or False")
	}
	if p.BoughtInLastMonth, err = optCount(r.BoughtInLastMonth); err != nil {
		return p, bad("boughtInLastMonth", r.BoughtInLastMonth, "must be a non-negative integer")
	}
	p.ImgURL = optString(r.ImgURL)
	p.ProductURL = optString(r.ProductURL)
	return p, nil
}

func toUser(r userRecord) (domain.User, *fieldError) {
	id, err := wholeID(r.UserID)
	if err != nil || id <= 0 {
		return domain.User{}, bad("user_id", r.UserID, "must be a positive integer")
	}
	return domain.User{
		ID:        id,
		Name:      strings.TrimSpace(r.Name),
		Email:     strings.TrimSpace(r.Email),
		AgeGroup:  strings.TrimSpace(r.AgeGroup),
		Gender:    strings.TrimSpace(r.Gender),
		Country:   strings.TrimSpace(r.Country),
		CreatedAt: strings.TrimSpace(r.CreatedAt),
	}, nil
}

func toRating(r ratingRecord) (domain.ProductRating, *fieldError) {
	var out domain.ProductRating
	var err error
	var ok bool

	if out.UserID, err = wholeID(r.UserID); err != nil || out.UserID <= 0 {
		return out, bad("user_id", r.UserID, "must be a positive integer")
	}
	if out.ASIN, ok = validate.ASIN(r.ProductID); !ok {
		return out, bad("product_id", r.ProductID, "must be 1-20 letters or digits")
	}
	if out.Rating, err = number(r.Rating); err != nil || out.Rating < 0 || out.Rating > 5 {
		return out, bad("rating", r.Rating, "must be a number between 0 and 5")
	}
	out.Review = optString(r.Review)
	out.RatedAt = optString(r.RatedAt)
	return out, nil
}

// money parses "$1,299.99" style amounts. Empty means no value.
func money(s string) (decimal.NullDecimal, error) {
	s = strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	if d.IsNegative() {
		return decimal.NullDecimal{}, errNegative
	}
	return decimal.NewNullDecimal(d), nil
}

func optFloat(s string) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return number(s)
}

func number(s string) (float64, error) {
	f, err := cast.ToFloat64E(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) {
		return 0, errNaN
	}
	return f, nil
}

// wholeID reads a base-10 id. Leading zeros are dropped first since cast
// would otherwise take "010" as octal and "0x1F" as hex. A zero fraction
// ("12.0") is accepted.
func wholeID(s string) (int64, error) {
	digits, frac, _ := strings.Cut(strings.TrimSpace(s), ".")
	if digits == "" || strings.Trim(digits, "0123456789") != "" || strings.Trim(frac, "0") != "" {
		return 0, errNotDigits
	}
	if digits = strings.TrimLeft(digits, "0"); digits == "" {
		digits = "0"
	}
	return cast.ToInt64E(digits)
}

// optCount accepts "12" and the "12.0" pandas writes for integer columns
// that held a NaN.
func optCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, errNegative
	}
	if f != math.Trunc(f) {
		return 0, errFraction
	}
	return int(f), nil
}

func optBool(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return false, nil
	}
	return cast.ToBoolE(s)
}

func optString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
