package http_test

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	app, db := newTestApp(t)

	resp := do(t, app, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["db_connected"])
	assert.NotEmpty(t, body["timestamp"])

	require.NoError(t, db.Close())
	resp = do(t, app, "GET", "/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body = decode[map[string]any](t, resp)
	assert.Equal(t, false, body["db_connected"])
}

func TestListProducts(t *testing.T) {
	app, _ := newTestApp(t)

	resp := do(t, app, "GET", "/products", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pg := decode[pageBody](t, resp)
	assert.Equal(t, 1, pg.Page)
	assert.Equal(t, 20, pg.Limit)
	assert.Equal(t, 3, pg.TotalResults)
	assert.Equal(t, []string{"B014TMV5YE", "B07GDLCQXV", "B07XSCCZYG"}, pg.asins())
	assert.Equal(t, 139.99, pg.Products[0].Price)

	pg = decode[pageBody](t, do(t, app, "GET", "/products?page=2&limit=2", nil))
	assert.Equal(t, []string{"B07XSCCZYG"}, pg.asins())
	assert.Equal(t, 1, pg.TotalResults)

	pg = decode[pageBody](t, do(t, app, "GET", "/products?category_id=2", nil))
	assert.Equal(t, []string{"B07XSCCZYG"}, pg.asins())

	resp = do(t, app, "GET", "/products?page=9", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pg = decode[pageBody](t, resp)
	assert.NotNil(t, pg.Products)
	assert.Empty(t, pg.Products)
}

func TestListProducts_RejectsBadPaging(t *testing.T) {
	app, _ := newTestApp(t)
	for _, target := range []string{
		"/products?page=0",
		"/products?limit=101",
		"/products?limit=0",
		"/products?page=abc",
		"/products?category_id=-1",
		"/products?page=9223372036854775807&limit=100",
		"/products?page=10000001",
		"/products/search?page=9223372036854775807",
	} {
		resp := do(t, app, "GET", target, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
		e := decode[apiError](t, resp)
		assert.Equal(t, "VALIDATION_ERROR", e.Error.Code, target)
	}
}

func TestSearchProducts(t *testing.T) {
	app, _ := newTestApp(t)

	pg := decode[pageBody](t, do(t, app, "GET", "/products/search?q=LUGGAGE&limit=2", nil))
	assert.Equal(t, []string{"B014TMV5YE", "B07GDLCQXV"}, pg.asins())
	assert.Equal(t, 2, pg.Limit)

	pg = decode[pageBody](t, do(t, app, "GET", "/products/search?min_price=150&max_price=200", nil))
	assert.Equal(t, []string{"B07GDLCQXV"}, pg.asins())

	pg = decode[pageBody](t, do(t, app, "GET", "/products/search?min_rating=4.6&category_id=2", nil))
	assert.Equal(t, []string{"B07XSCCZYG"}, pg.asins())

	pg = decode[pageBody](t, do(t, app, "GET", "/products/search?q=%25", nil))
	assert.Empty(t, pg.Products)

	pg = decode[pageBody](t, do(t, app, "GET", "/products/search", nil))
	assert.Len(t, pg.Products, 3)
}

func TestSearchProducts_RejectsBadFilters(t *testing.T) {
	app, _ := newTestApp(t)
	for _, target := range []string{
		"/products/search?min_price=abc",
		"/products/search?min_price=-1",
		"/products/search?min_price=50&max_price=10",
		"/products/search?min_rating=6",
		"/products/search?limit=500",
	} {
		resp := do(t, app, "GET", target, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
		e := decode[apiError](t, resp)
		assert.Equal(t, "VALIDATION_ERROR", e.Error.Code, target)
	}
}

func TestGetProduct(t *testing.T) {
	app, _ := newTestApp(t)

	resp := do(t, app, "GET", "/products/B07XSCCZYG", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	p := decode[map[string]any](t, resp)
	assert.Equal(t, "B07XSCCZYG", p["asin"])
	assert.Equal(t, 365.49, p["price"])
	assert.Equal(t, 429.99, p["original_price"])
	assert.Equal(t, true, p["is_best_seller"])

	resp = do(t, app, "GET", "/products/B014TMV5YE", nil)
	p = decode[map[string]any](t, resp)
	assert.Nil(t, p["original_price"])

	resp = do(t, app, "GET", "/products/NOPE123", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[apiError](t, resp).Error.Code)

	resp = do(t, app, "GET", "/products/bad_asin", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func newProduct(asin string, cat int) map[string]any {
	return map[string]any{
		"asin":        asin,
		"title":       "Travel pillow",
		"price":       "24.50",
		"stars":       4.1,
		"reviews":     12,
		"category_id": cat,
	}
}

func TestCreateProduct(t *testing.T) {
	app, _ := newTestApp(t)

	resp := do(t, app, "POST", "/products", newProduct("NEW0001", 3))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	p := decode[map[string]any](t, resp)
	assert.Equal(t, "NEW0001", p["asin"])
	assert.Equal(t, 24.5, p["price"])

	resp = do(t, app, "GET", "/products/NEW0001", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, app, "POST", "/products", newProduct("NEW0001", 3))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", decode[apiError](t, resp).Error.Code)

	resp = do(t, app, "POST", "/products", newProduct("NEW0002", 999))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "REFERENTIAL_INTEGRITY", decode[apiError](t, resp).Error.Code)
}

func TestCreateProduct_GetReturnsEverySuppliedField(t *testing.T) {
	app, _ := newTestApp(t)

	body := map[string]any{
		"asin":                 "RT00000001",
		"title":                "Hard-shell carry-on",
		"price":                129.95,
		"original_price":       159.5,
		"stars":                4.3,
		"reviews":              87,
		"category_id":          2,
		"img_url":              "https://img.example.test/rt1.jpg",
		"product_url":          "https://shop.example.test/dp/RT00000001",
		"is_best_seller":       true,
		"bought_in_last_month": 450,
	}
	resp := do(t, app, "POST", "/products", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, app, "GET", "/products/RT00000001", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[map[string]any](t, resp)
	for k, want := range body {
		assert.EqualValues(t, want, got[k], k)
	}
}

func TestSearchProducts_PriceBand(t *testing.T) {
	app, _ := newTestApp(t)
	for i, price := range []string{"499.99", "500", "750.25", "1000", "1000.01"} {
		p := newProduct(fmt.Sprintf("BAND%d", i), 1)
		p["price"] = price
		require.Equal(t, http.StatusCreated, do(t, app, "POST", "/products", p).StatusCode)
	}

	pg := decode[pageBody](t, do(t, app, "GET", "/products/search?min_price=500&max_price=1000&limit=100", nil))
	assert.Equal(t, []string{"BAND1", "BAND2", "BAND3"}, pg.asins())
	for _, p := range pg.Products {
		assert.GreaterOrEqual(t, p.Price, 500.0)
		assert.LessOrEqual(t, p.Price, 1000.0)
	}
}

func TestCreateProduct_Validation(t *testing.T) {
	app, _ := newTestApp(t)

	resp := do(t, app, "POST", "/products", map[string]any{"asin": "X1"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e := decode[apiError](t, resp)
	assert.Equal(t, "VALIDATION_ERROR", e.Error.Code)
	assert.Contains(t, string(e.Error.Details), `"title"`)
	assert.Contains(t, string(e.Error.Details), `"price"`)

	bad := newProduct("X2", 1)
	bad["stars"] = 7
	resp = do(t, app, "POST", "/products", bad)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	bad = newProduct("X3", 1)
	bad["price"] = "-2"
	resp = do(t, app, "POST", "/products", bad)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, "POST", "/products", "{not json")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, "POST", "/products", newProduct("has space", 1))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateProduct(t *testing.T) {
	app, _ := newTestApp(t)

	body := newProduct("IGNORED", 2)
	body["title"] = "Renamed"
	resp := do(t, app, "PUT", "/products/B014TMV5YE", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	p := decode[map[string]any](t, resp)
	assert.Equal(t, "B014TMV5YE", p["asin"])
	assert.Equal(t, "Renamed", p["title"])

	p = decode[map[string]any](t, do(t, app, "GET", "/products/B014TMV5YE", nil))
	assert.Equal(t, "Renamed", p["title"])
	assert.EqualValues(t, 2, p["category_id"])

	resp = do(t, app, "PUT", "/products/MISSING1", newProduct("", 2))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, app, "PUT", "/products/B014TMV5YE", newProduct("", 404))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = do(t, app, "PUT", "/products/B014TMV5YE", map[string]any{"title": "no price"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteProduct_CascadesRatings(t *testing.T) {
	app, _ := newTestApp(t)

	prof := decode[map[string]any](t, do(t, app, "GET", "/users/1/profile", nil))
	assert.EqualValues(t, 2, prof["total_ratings"])

	resp := do(t, app, "DELETE", "/products/B014TMV5YE", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "B014TMV5YE", body["asin"])
	assert.NotEmpty(t, body["message"])

	resp = do(t, app, "GET", "/products/B014TMV5YE", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	prof = decode[map[string]any](t, do(t, app, "GET", "/users/1/profile", nil))
	assert.EqualValues(t, 1, prof["total_ratings"])

	resp = do(t, app, "DELETE", "/products/B014TMV5YE", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCategoriesAndStats(t *testing.T) {
	app, _ := newTestApp(t)

	cats := decode[[]map[string]any](t, do(t, app, "GET", "/categories", nil))
	require.Len(t, cats, 3)
	assert.Equal(t, "Beading & Jewelry Making", cats[0]["category_name"])

	stats := decode[map[string]int64](t, do(t, app, "GET", "/stats", nil))
	assert.Equal(t, map[string]int64{
		"total_products":   3,
		"total_users":      2,
		"total_ratings":    3,
		"total_categories": 3,
	}, stats)

	decode[map[string]any](t, do(t, app, "POST", "/products", newProduct("STAT1", 1)))
	stats = decode[map[string]int64](t, do(t, app, "GET", "/stats", nil))
	assert.EqualValues(t, 4, stats["total_products"])
}

type profileBody struct {
	User struct {
		ID   int64  `json:"user_id"`
		Name string `json:"name"`
	} `json:"user"`
	TotalRatings int `json:"total_ratings"`
	Ratings      []struct {
		ASIN         string  `json:"asin"`
		Rating       float64 `json:"rating"`
		ProductName  string  `json:"product_name"`
		CategoryName string  `json:"category_name"`
	} `json:"ratings"`
}

func TestUserProfile(t *testing.T) {
	app, _ := newTestApp(t)

	resp := do(t, app, "GET", "/users/1/profile", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	prof := decode[profileBody](t, resp)
	assert.EqualValues(t, 1, prof.User.ID)
	assert.Equal(t, 2, prof.TotalRatings)
	require.Len(t, prof.Ratings, 2)
	assert.Equal(t, 5.0, prof.Ratings[0].Rating)
	assert.Equal(t, "Sion Softside Expandable Roller Luggage", prof.Ratings[0].ProductName)
	assert.Equal(t, "Beading & Jewelry Making", prof.Ratings[0].CategoryName)

	resp = do(t, app, "GET", "/users/999/profile", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, app, "GET", "/users/abc/profile", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRecommendationsNotImplemented(t *testing.T) {
	app, _ := newTestApp(t)
	for _, c := range []struct{ method, target string }{
		{"GET", "/recommendations"},
		{"GET", "/recommendations/1"},
		{"POST", "/recommendations/generate"},
		{"GET", "/recommend/1"},
		{"GET", "/recommend/1/top"},
		{"GET", "/recommend/1/category"},
		{"GET", "/recommend/1/live"},
		{"GET", "/similar-users/1"},
		{"GET", "/products/top-recommended"},
		{"GET", "/products/B014TMV5YE/recommended-to"},
		{"POST", "/model/reload"},
	} {
		resp := do(t, app, c.method, c.target, nil)
		require.Equal(t, http.StatusNotImplemented, resp.StatusCode, c.target)
		assert.Equal(t, "NOT_IMPLEMENTED", decode[apiError](t, resp).Error.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	app, _ := newTestApp(t)
	resp := do(t, app, "GET", "/nope", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[apiError](t, resp).Error.Code)
}

func TestAdminDashboard(t *testing.T) {
	app, _ := newTestApp(t)
	resp := do(t, app, "GET", "/admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	html := string(b)
	assert.Contains(t, html, "Fabric Decorating")
	assert.Contains(t, html, "B07XSCCZYG")
	assert.Contains(t, html, "$365.49")
}

func TestDatabaseDownIsUpstreamUnavailable(t *testing.T) {
	app, db := newTestApp(t)
	require.NoError(t, db.Close())

	resp := do(t, app, "GET", "/products", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	e := decode[apiError](t, resp)
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", e.Error.Code)
	assert.NotContains(t, e.Error.Message, "sql")
}
