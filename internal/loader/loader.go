// Package loader bulk-loads the catalog flat files into the relational store.
//
// Categories are read whole and written in one transaction. Products, and
// the optional users and ratings files, are streamed in chunks of
// Options.ChunkSize rows; each chunk is one transaction made of multi-row
// INSERTs of Options.WriteBatch rows. A failed chunk leaves every earlier
// chunk committed.
package loader

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"prodcatalog/internal/config"
	"prodcatalog/internal/domain"
	applog "prodcatalog/internal/log"
	"prodcatalog/internal/repos"
)

var (
	errNegative  = errors.New("negative value")
	errFraction  = errors.New("not a whole number")
	errNaN       = errors.New("not a number")
	errNotDigits = errors.New("not a base-10 integer")
)

const (
	DefaultChunkSize  = 50000
	DefaultWriteBatch = 1000
)

type Options struct {
	CategoriesCSV string
	ProductsCSV   string
	UsersCSV      string // optional
	RatingsCSV    string // optional, needs users and products in place
	ChunkSize     int
	WriteBatch    int
	Replace       bool // empty the tables before loading
}

// OptionsFrom maps the env-driven loader config onto Options.
func OptionsFrom(c config.LoaderConfig) Options {
	return Options{
		CategoriesCSV: c.CategoriesCSV,
		ProductsCSV:   c.ProductsCSV,
		UsersCSV:      c.UsersCSV,
		RatingsCSV:    c.RatingsCSV,
		ChunkSize:     c.ChunkSize,
		WriteBatch:    c.WriteBatch,
		Replace:       c.IfExists == "replace",
	}
}

// Report summarises one Load call. Row counts are rows written; Counts are
// the table sizes read back afterwards.
type Report struct {
	RunID      string        `json:"run_id"`
	Categories int           `json:"categories"`
	Products   int           `json:"products"`
	Users      int           `json:"users"`
	Ratings    int           `json:"ratings"`
	Chunks     int           `json:"chunks"`
	Duplicates int           `json:"duplicates"`
	Elapsed    time.Duration `json:"elapsed"`
	Counts     domain.Stats  `json:"counts"`
}

// RowError reports a malformed input row. Row is the 1-based data row in
// File, not counting the header.
type RowError struct {
	File  string
	Chunk int
	Row   int
	Field string
	Value string
	Msg   string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s: chunk %d, row %d: field %s=%q %s", e.File, e.Chunk, e.Row, e.Field, e.Value, e.Msg)
}

func (e *RowError) Unwrap() error { return domain.ErrValidation }

type Loader struct {
	bulk  *repos.BulkRepo
	stats *repos.StatsRepo
	opt   Options
}

func New(db *sqlx.DB, opt Options) *Loader {
	if opt.ChunkSize <= 0 {
		opt.ChunkSize = DefaultChunkSize
	}
	if opt.WriteBatch <= 0 {
		opt.WriteBatch = DefaultWriteBatch
	}
	opt.WriteBatch = min(opt.WriteBatch, repos.MaxBatchRows)
	return &Loader{bulk: repos.NewBulkRepo(db), stats: repos.NewStatsRepo(db), opt: opt}
}

// Load runs the whole ingest. It is not idempotent: in append mode a second
// run fails on the first duplicate key.
func (l *Loader) Load(ctx context.Context) (Report, error) {
	start := time.Now()
	rep := Report{RunID: uuid.NewString()}
	applog.Info(nil, "loader.start", map[string]any{
		"run_id":      rep.RunID,
		"categories":  l.opt.CategoriesCSV,
		"products":    l.opt.ProductsCSV,
		"users":       l.opt.UsersCSV,
		"ratings":     l.opt.RatingsCSV,
		"chunk_size":  l.opt.ChunkSize,
		"write_batch": l.opt.WriteBatch,
		"replace":     l.opt.Replace,
	})

	if err := l.checkInputs(); err != nil {
		return rep, err
	}

	if l.opt.Replace {
		if err := l.bulk.Clear(ctx, l.opt.UsersCSV != ""); err != nil {
			return rep, errors.Wrap(err, "replace: clear tables")
		}
	}

	steps := []struct {
		name string
		path string
		run  func(context.Context, string, *Report) (int, error)
	}{
		{"categories", l.opt.CategoriesCSV, l.loadCategories},
		{"products", l.opt.ProductsCSV, l.loadProducts},
		{"users", l.opt.UsersCSV, l.loadUsers},
		{"ratings", l.opt.RatingsCSV, l.loadRatings},
	}
	for _, s := range steps {
		if s.path == "" {
			continue
		}
		n, err := s.run(ctx, s.path, &rep)
		switch s.name {
		case "categories":
			rep.Categories = n
		case "products":
			rep.Products = n
		case "users":
			rep.Users = n
		case "ratings":
			rep.Ratings = n
		}
		if err != nil {
			rep.Elapsed = time.Since(start)
			applog.Error(nil, "loader.fail", err, map[string]any{"run_id": rep.RunID, "step": s.name, "written": n})
			return rep, err
		}
	}

	counts, err := l.stats.Counts(ctx)
	if err != nil {
		return rep, errors.Wrap(err, "read back counts")
	}
	rep.Counts = counts
	rep.Elapsed = time.Since(start)
	applog.Info(nil, "loader.done", map[string]any{
		"run_id":           rep.RunID,
		"chunks":           rep.Chunks,
		"duplicates":       rep.Duplicates,
		"elapsed_ms":       rep.Elapsed.Milliseconds(),
		"total_products":   counts.TotalProducts,
		"total_categories": counts.TotalCategories,
		"total_users":      counts.TotalUsers,
		"total_ratings":    counts.TotalRatings,
	})
	return rep, nil
}

// checkInputs opens every given file and checks its header before anything
// is written, so a usage mistake leaves the database untouched.
func (l *Loader) checkInputs() error {
	inputs := []struct {
		name     string
		path     string
		required bool
		out      any
		columns  []string
	}{
		{"categories", l.opt.CategoriesCSV, true, categoryRecord{}, categoryColumns},
		{"products", l.opt.ProductsCSV, true, productRecord{}, productColumns},
		{"users", l.opt.UsersCSV, false, userRecord{}, userColumns},
		{"ratings", l.opt.RatingsCSV, false, ratingRecord{}, ratingColumns},
	}
	for _, in := range inputs {
		if in.path == "" {
			if in.required {
				return errors.Errorf("%s file is required", in.name)
			}
			continue
		}
		_, f, err := openCSV(in.path, in.out, in.columns)
		if err != nil {
			return err
		}
		f.Close()
	}
	return nil
}

func (l *Loader) loadCategories(ctx context.Context, path string, rep *Report) (int, error) {
	// chunk size 0 reads the whole file into a single transaction
	return stream(ctx, rep, path, 0, categoryColumns, toCategory,
		func(ctx context.Context, rows []domain.Category) error {
			return l.bulk.InsertCategories(ctx, rows, l.opt.WriteBatch)
		})
}

func (l *Loader) loadProducts(ctx context.Context, path string, rep *Report) (int, error) {
	return stream(ctx, rep, path, l.opt.ChunkSize, productColumns, toProduct,
		func(ctx context.Context, rows []domain.Product) error {
			return l.bulk.InsertProducts(ctx, rows, l.opt.WriteBatch)
		})
}

func (l *Loader) loadUsers(ctx context.Context, path string, rep *Report) (int, error) {
	return stream(ctx, rep, path, l.opt.ChunkSize, userColumns, toUser,
		func(ctx context.Context, rows []domain.User) error {
			return l.bulk.InsertUsers(ctx, rows, l.opt.WriteBatch)
		})
}

func (l *Loader) loadRatings(ctx context.Context, path string, rep *Report) (int, error) {
	return stream(ctx, rep, path, l.opt.ChunkSize, ratingColumns, toRating,
		func(ctx context.Context, rows []domain.ProductRating) error {
			return l.bulk.InsertRatings(ctx, rows, l.opt.WriteBatch)
		})
}

type numbered[R any] struct {
	row int
	rec R
}

// openCSV opens path and checks that its header row names every required
// column. The caller closes the file.
func openCSV(path string, out any, required []string) (*gocsv.Unmarshaller, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "open input")
	}
	um, err := gocsv.NewUnmarshaller(csv.NewReader(skipBOM(f)), out)
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrapf(err, "%s: read header", path)
	}
	if missing := missingColumns(um.Headers, required); len(missing) > 0 {
		f.Close()
		return nil, nil, errors.Errorf("%s: missing columns %s", path, strings.Join(missing, ", "))
	}
	return um, f, nil
}

// stream decodes path record by record and hands every chunkSize records to
// write as one unit. chunkSize <= 0 means one chunk for the whole file.
// Records that convert to an identical row within a chunk are written once.
func stream[R any, T any](
	ctx context.Context,
	rep *Report,
	path string,
	chunkSize int,
	required []string,
	conv func(R) (T, *fieldError),
	write func(context.Context, []T) error,
) (int, error) {
	var zero R
	um, f, err := openCSV(path, zero, required)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var (
		buf     []numbered[R]
		written int
		chunk   int
		row     int
	)
	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		chunk++
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "%s: chunk %d", path, chunk)
		}
		seen := make(map[string]struct{}, len(buf))
		out := make([]T, 0, len(buf))
		dups := 0
		for _, n := range buf {
			v, ferr := conv(n.rec)
			if ferr != nil {
				return &RowError{File: path, Chunk: chunk, Row: n.row, Field: ferr.field, Value: ferr.value, Msg: ferr.msg}
			}
			key, err := json.Marshal(v)
			if err != nil {
				return errors.Wrapf(err, "%s: chunk %d, row %d", path, chunk, n.row)
			}
			if _, ok := seen[string(key)]; ok {
				dups++
				continue
			}
			seen[string(key)] = struct{}{}
			out = append(out, v)
		}
		if err := write(ctx, out); err != nil {
			return errors.Wrapf(err, "%s: chunk %d (rows %d-%d)", path, chunk, buf[0].row, buf[len(buf)-1].row)
		}
		written += len(out)
		rep.Chunks++
		rep.Duplicates += dups
		applog.Info(nil, "loader.chunk", map[string]any{
			"run_id":     rep.RunID,
			"file":       path,
			"chunk":      chunk,
			"rows":       len(out),
			"duplicates": dups,
			"written":    written,
		})
		buf = buf[:0]
		return nil
	}

	for {
		v, err := um.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return written, &RowError{File: path, Chunk: chunk + 1, Row: row, Field: "-", Msg: err.Error()}
		}
		buf = append(buf, numbered[R]{row: row, rec: v.(R)})
		if chunkSize > 0 && len(buf) >= chunkSize {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}
	if err := flush(); err != nil {
		return written, err
	}
	return written, nil
}

func missingColumns(header, required []string) []string {
	have := make(map[string]bool, len(header))
	for _, c := range header {
		have[strings.TrimSpace(c)] = true
	}
	var out []string
	for _, c := range required {
		if !have[c] {
			out = append(out, c)
		}
	}
	return out
}

func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && string(b) == "\xef\xbb\xbf" {
		_, _ = br.Discard(3)
	}
	return br
}
