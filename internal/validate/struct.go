package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"prodcatalog/internal/domain"
)

var (
	v     *validator.Validate
	vOnce sync.Once
)

// FieldError is one failed rule, named by its wire name (json or query tag).
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// Error aggregates field failures. It matches domain.ErrValidation.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

func (e *Error) Unwrap() error { return domain.ErrValidation }

// Fail builds a single-field Error.
func Fail(field, tag, msg string) *Error {
	return &Error{Fields: []FieldError{{Field: field, Tag: tag, Message: msg}}}
}

func get() *validator.Validate {
	vOnce.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, key := range []string{"json", "query"} {
				name := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
		_ = v.RegisterValidation("asin", func(fl validator.FieldLevel) bool {
			_, ok := ASIN(fl.Field().String())
			return ok
		})
	})
	return v
}

// Struct runs the validate tags of s. It returns nil or an *Error.
func Struct(s any) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return Fail("unknown", "unknown", err.Error())
	}
	out := &Error{Fields: make([]FieldError, len(ves))}
	for i, fe := range ves {
		out.Fields[i] = FieldError{Field: fe.Field(), Tag: fe.Tag(), Message: message(fe)}
	}
	return out
}

func message(fe validator.FieldError) string {
	f, p := fe.Field(), fe.Param()
	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "asin":
		return f + " must be 1-20 letters or digits"
	case "numeric":
		return f + " must be a number"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", f, p)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", f, p)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", f, p)
	case "max":
		return fmt.Sprintf("%s must be at most %s long", f, p)
	}
	return fmt.Sprintf("%s failed %s", f, fe.Tag())
}

// Prices checks the decimal fields of a product body, which the tags
// cannot express. Run it after Struct.
func Prices(f domain.ProductFields) error {
	if f.Price != nil && f.Price.IsNegative() {
		return Fail("price", "gte", "price must be greater than or equal to 0")
	}
	if f.OriginalPrice.Valid && f.OriginalPrice.Decimal.IsNegative() {
		return Fail("original_price", "gte", "original_price must be greater than or equal to 0")
	}
	return nil
}

// Search validates a bound search query and converts it to service params.
func Search(q domain.SearchQuery) (domain.SearchParams, error) {
	if err := Struct(q); err != nil {
		return domain.SearchParams{}, err
	}
	text, ok := Q(q.Q)
	if !ok {
		return domain.SearchParams{}, Fail("q", "q", "q must be at most 100 printable characters")
	}
	p := domain.SearchParams{
		Page:       q.Page,
		Limit:      q.Limit,
		Q:          text,
		CategoryID: q.CategoryID,
		MinRating:  q.MinRating,
	}
	var err error
	if p.MinPrice, err = price("min_price", q.MinPrice); err != nil {
		return domain.SearchParams{}, err
	}
	if p.MaxPrice, err = price("max_price", q.MaxPrice); err != nil {
		return domain.SearchParams{}, err
	}
	if p.MinPrice.Valid && p.MaxPrice.Valid && p.MinPrice.Decimal.GreaterThan(p.MaxPrice.Decimal) {
		return domain.SearchParams{}, Fail("min_price", "ltefield", "min_price must not exceed max_price")
	}
	return p, nil
}

func price(field, s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, Fail(field, "numeric", field+" must be a number")
	}
	if d.IsNegative() {
		return decimal.NullDecimal{}, Fail(field, "gte", field+" must be greater than or equal to 0")
	}
	return decimal.NewNullDecimal(d), nil
}
