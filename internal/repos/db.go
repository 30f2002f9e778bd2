package repos

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"prodcatalog/internal/config"
)

const (
	driverSQLite   = "sqlite"
	driverPostgres = "pgx"
)

func init() {
	// sqlx does not know the modernc driver name.
	sqlx.BindDriver(driverSQLite, sqlx.QUESTION)
}

// Open creates the pool for cfg.DBDriver, pings it and makes sure the schema
// exists. The caller owns the pool and must Close it.
func Open(cfg config.Config) (*sqlx.DB, error) {
	driver, dsn := driverSQLite, sqliteDSN(cfg.DBDSN)
	if cfg.DBDriver == "postgres" {
		driver, dsn = driverPostgres, cfg.DBDSN
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, classify(err)
	}
	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	if driver == driverSQLite && isMemory(dsn) {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, classify(err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Ping reports whether the store answers within ctx.
func Ping(ctx context.Context, db *sqlx.DB) error {
	return classify(db.PingContext(ctx))
}

func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = "prodcatalog.db"
	}
	if strings.Contains(dsn, "_pragma=foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func isMemory(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func isPostgres(db sqlx.Ext) bool {
	return db.DriverName() == driverPostgres
}

func ensureSchema(ctx context.Context, db *sqlx.DB) error {
	schema := schemaSQLite
	if isPostgres(db) {
		schema = schemaPostgres
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", classify(err))
	}
	return nil
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS amazon_categories(
  id INTEGER PRIMARY KEY,
  category_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS amazon_products(
  asin TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  price NUMERIC NOT NULL CHECK (price >= 0),
  original_price NUMERIC CHECK (original_price IS NULL OR original_price >= 0),
  stars REAL NOT NULL DEFAULT 0 CHECK (stars >= 0 AND stars <= 5),
  reviews INTEGER NOT NULL DEFAULT 0 CHECK (reviews >= 0),
  category_id INTEGER NOT NULL REFERENCES amazon_categories(id),
  img_url TEXT,
  product_url TEXT,
  is_best_seller INTEGER NOT NULL DEFAULT 0,
  bought_in_last_month INTEGER NOT NULL DEFAULT 0 CHECK (bought_in_last_month >= 0)
);
CREATE INDEX IF NOT EXISTS idx_products_category ON amazon_products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_price    ON amazon_products(price);
CREATE INDEX IF NOT EXISTS idx_products_stars    ON amazon_products(stars);

CREATE TABLE IF NOT EXISTS users(
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  age_group TEXT NOT NULL DEFAULT '',
  gender TEXT NOT NULL DEFAULT '',
  country TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS product_ratings(
  user_id INTEGER NOT NULL REFERENCES users(id),
  asin TEXT NOT NULL REFERENCES amazon_products(asin),
  rating REAL NOT NULL CHECK (rating >= 0 AND rating <= 5),
  review TEXT,
  rated_at TEXT,
  PRIMARY KEY (user_id, asin)
);
CREATE INDEX IF NOT EXISTS idx_ratings_asin ON product_ratings(asin);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS amazon_categories(
  id BIGINT PRIMARY KEY,
  category_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS amazon_products(
  asin TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
  original_price NUMERIC(12,2) CHECK (original_price IS NULL OR original_price >= 0),
  stars DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (stars >= 0 AND stars <= 5),
  reviews INTEGER NOT NULL DEFAULT 0 CHECK (reviews >= 0),
  category_id BIGINT NOT NULL REFERENCES amazon_categories(id),
  img_url TEXT,
  product_url TEXT,
  is_best_seller BOOLEAN NOT NULL DEFAULT FALSE,
  bought_in_last_month INTEGER NOT NULL DEFAULT 0 CHECK (bought_in_last_month >= 0)
);
CREATE INDEX IF NOT EXISTS idx_products_category ON amazon_products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_price    ON amazon_products(price);
CREATE INDEX IF NOT EXISTS idx_products_stars    ON amazon_products(stars);

CREATE TABLE IF NOT EXISTS users(
  id BIGINT PRIMARY KEY,
  name TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  age_group TEXT NOT NULL DEFAULT '',
  gender TEXT NOT NULL DEFAULT '',
  country TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS product_ratings(
  user_id BIGINT NOT NULL REFERENCES users(id),
  asin TEXT NOT NULL REFERENCES amazon_products(asin),
  rating DOUBLE PRECISION NOT NULL CHECK (rating >= 0 AND rating <= 5),
  review TEXT,
  rated_at TEXT,
  PRIMARY KEY (user_id, asin)
);
CREATE INDEX IF NOT EXISTS idx_ratings_asin ON product_ratings(asin);
`
