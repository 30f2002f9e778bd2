package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"prodcatalog/internal/config"
	apphttp "prodcatalog/internal/http"
	"prodcatalog/internal/repos"
)

func testConfig(t *testing.T) config.Config {
	return config.Config{
		DBDriver:    "sqlite",
		DBDSN:       filepath.Join(t.TempDir(), "api.db"),
		DB:          config.DBConfig{MaxOpenConns: 4, MaxIdleConns: 2},
		CORSOrigins: "*",
	}
}

// newTestApp serves the seeded demo catalog.
func newTestApp(t *testing.T, mutate ...func(*config.Config)) (*fiber.App, *sqlx.DB) {
	t.Helper()
	cfg := testConfig(t)
	for _, m := range mutate {
		m(&cfg)
	}
	db, err := repos.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repos.SeedIfEmpty(context.Background(), db))
	return apphttp.NewApp(db, cfg), db
}

func do(t *testing.T, app *fiber.App, method, target string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type apiError struct {
	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type pageBody struct {
	Products []struct {
		ASIN  string  `json:"asin"`
		Title string  `json:"title"`
		Price float64 `json:"price"`
	} `json:"products"`
	Page         int `json:"page"`
	Limit        int `json:"limit"`
	TotalResults int `json:"total_results"`
}

func (p pageBody) asins() []string {
	out := make([]string, len(p.Products))
	for i, x := range p.Products {
		out[i] = x.ASIN
	}
	return out
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Route  string         `json:"route"`
	ReqID  string         `json:"req_id"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	b  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

// captureLogs collects the JSON log lines written while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedBuf{b: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil && e.Action != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
