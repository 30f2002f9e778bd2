package handlers

import (
	"prodcatalog/internal/repos"
	"prodcatalog/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	SearchHandler   *SearchHandler
	StatsHandler    *StatsHandler
	UserHandler     *UserHandler
	HealthHandler   *HealthHandler
	AdminHandler    *AdminHandler
}

func NewDeps(db *sqlx.DB) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	statsRepo := repos.NewStatsRepo(db)
	userRepo := repos.NewUserRepo(db)

	catalogSvc := services.NewCatalogService(catRepo, prodRepo, statsRepo)
	profileSvc := services.NewProfileService(userRepo)

	return &Deps{
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc},
		SearchHandler:   &SearchHandler{Catalog: catalogSvc},
		StatsHandler:    &StatsHandler{Catalog: catalogSvc},
		UserHandler:     &UserHandler{Profiles: profileSvc},
		HealthHandler:   &HealthHandler{DB: db},
		AdminHandler:    &AdminHandler{Catalog: catalogSvc},
	}
}
