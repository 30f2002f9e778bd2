package services

import (
	"context"
	"strings"

	"prodcatalog/internal/domain"
	"prodcatalog/internal/repos"
	"prodcatalog/internal/validate"
)

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
	Stats *repos.StatsRepo
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo, stats *repos.StatsRepo) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods, Stats: stats}
}

// paginate clamps page and limit and returns the row offset.
func paginate(page, limit int) (int, int, int) {
	if page < 1 {
		page = domain.DefaultPage
	}
	if page > domain.MaxPage {
		page = domain.MaxPage
	}
	if limit <= 0 {
		limit = domain.DefaultLimit
	}
	if limit > domain.MaxLimit {
		limit = domain.MaxLimit
	}
	return page, limit, (page - 1) * limit
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.Cats.List(ctx)
}

func (s *CatalogService) ListProducts(ctx context.Context, page, limit int, categoryID *int64) (domain.ProductPage, error) {
	page, limit, offset := paginate(page, limit)
	ps, err := s.Prods.List(ctx, categoryID, limit, offset)
	if err != nil {
		return domain.ProductPage{}, err
	}
	return domain.ProductPage{Products: ps, Page: page, Limit: limit, TotalResults: len(ps)}, nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, p domain.SearchParams) (domain.ProductPage, error) {
	page, limit, offset := paginate(p.Page, p.Limit)
	ps, err := s.Prods.Search(ctx, repos.ProductFilter{
		Q:          strings.TrimSpace(p.Q),
		CategoryID: p.CategoryID,
		MinPrice:   p.MinPrice,
		MaxPrice:   p.MaxPrice,
		MinRating:  p.MinRating,
	}, limit, offset)
	if err != nil {
		return domain.ProductPage{}, err
	}
	return domain.ProductPage{Products: ps, Page: page, Limit: limit, TotalResults: len(ps)}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, asin string) (domain.Product, error) {
	return s.Prods.Get(ctx, asin)
}

func (s *CatalogService) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (domain.Product, error) {
	req.ASIN = strings.TrimSpace(req.ASIN)
	req.Title = strings.TrimSpace(req.Title)
	if err := validate.Struct(req); err != nil {
		return domain.Product{}, err
	}
	if err := validate.Prices(req.ProductFields); err != nil {
		return domain.Product{}, err
	}
	return s.Prods.Create(ctx, req.Product())
}

// UpdateProduct replaces every mutable field of the product; the asin never
// changes.
func (s *CatalogService) UpdateProduct(ctx context.Context, asin string, req domain.UpdateProductRequest) (domain.Product, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validate.Struct(req); err != nil {
		return domain.Product{}, err
	}
	if err := validate.Prices(req.ProductFields); err != nil {
		return domain.Product{}, err
	}
	p := domain.Product{ASIN: asin}
	req.Apply(&p)
	return s.Prods.Update(ctx, p)
}

// DeleteProduct removes the product together with its ratings.
func (s *CatalogService) DeleteProduct(ctx context.Context, asin string) error {
	return s.Prods.Delete(ctx, asin)
}

func (s *CatalogService) GetStats(ctx context.Context) (domain.Stats, error) {
	return s.Stats.Counts(ctx)
}
