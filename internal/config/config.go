package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	DBDriver string // sqlite | postgres
	DBDSN    string
	DB       DBConfig
	LogFile  string
	SeedDemo bool

	RateLimitPerMin int
	CORSOrigins     string

	Loader LoaderConfig
}

// DBConfig holds the discrete connection settings used when DB_DSN is not
// given for Postgres, plus pool sizing shared by both drivers.
type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LoaderConfig struct {
	CategoriesCSV string
	ProductsCSV   string
	UsersCSV      string
	RatingsCSV    string
	ChunkSize     int
	WriteBatch    int
	IfExists      string // append | replace
}

// Load reads the process environment, after loading a .env file when one is
// present in the working directory.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:     env("PORT", "8005"),
		DBDriver: strings.ToLower(env("DB_DRIVER", "sqlite")),
		DB: DBConfig{
			Host:            env("DB_HOST", "localhost"),
			Port:            env("DB_PORT", "5432"),
			Name:            env("DB_NAME", "prodcatalog"),
			User:            env("DB_USER", "postgres"),
			Password:        os.Getenv("DB_PASSWORD"),
			SSLMode:         env("DB_SSLMODE", "disable"),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		LogFile:         os.Getenv("LOG_FILE"),
		SeedDemo:        envBool("SEED_DEMO", false),
		RateLimitPerMin: envInt("RATE_LIMIT_PER_MIN", 120),
		CORSOrigins:     env("CORS_ORIGINS", "*"),
		Loader: LoaderConfig{
			CategoriesCSV: env("CATEGORIES_CSV", "amazon_categories.csv"),
			ProductsCSV:   env("PRODUCTS_CSV", "amazon_products.csv"),
			UsersCSV:      os.Getenv("USERS_CSV"),
			RatingsCSV:    os.Getenv("RATINGS_CSV"),
			ChunkSize:     envInt("READ_CHUNK_SIZE", 50000),
			WriteBatch:    envInt("CHUNK_SIZE", 1000),
			IfExists:      strings.ToLower(env("IF_EXISTS", "append")),
		},
	}
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		cfg.DBDSN = cfg.DefaultDSN()
	}

	log.Printf("[config] PORT=%s DB_DRIVER=%s DB_DSN=%s LOG_FILE=%s", cfg.Port, cfg.DBDriver, cfg.MaskedDSN(), cfg.LogFile)
	return cfg
}

// DefaultDSN builds the DSN from the discrete DB_* settings.
func (c Config) DefaultDSN() string {
	if c.DBDriver != "postgres" {
		return "prodcatalog.db" // sqlite file in working dir
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     c.DB.Host + ":" + c.DB.Port,
		Path:     "/" + c.DB.Name,
		RawQuery: url.Values{"sslmode": {c.DB.SSLMode}}.Encode(),
	}
	return u.String()
}

// MaskedDSN is DBDSN with any password replaced, for logging.
func (c Config) MaskedDSN() string {
	u, err := url.Parse(c.DBDSN)
	if err != nil || u.User == nil {
		return c.DBDSN
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] %s=%q is not an integer, using %d", key, v, def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] %s=%q is not a duration, using %s", key, v, def)
		return def
	}
	return d
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[config] %s=%q is not a boolean, using %t", key, v, def)
		return def
	}
	return b
}
