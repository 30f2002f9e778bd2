package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"prodcatalog/internal/config"
	"prodcatalog/internal/domain"
	"prodcatalog/internal/loader"
	applog "prodcatalog/internal/log"
	"prodcatalog/internal/repos"
)

// Exit codes
const (
	exitLoadFailed    = 1
	exitUsage         = 2
	exitBadInput      = 10
	exitDBUnavailable = 11
)

func main() {
	cmd := newRootCmd(config.Load())
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

type usageError struct{ error }

func newRootCmd(cfg config.Config) *cobra.Command {
	lc := cfg.Loader
	cmd := &cobra.Command{
		Use:   "catalogload",
		Short: "Bulk-load the catalog CSV files into the database",
		Long: `catalogload reads the categories file whole and streams the products
file in chunks, committing one transaction per chunk. Users and ratings
files are optional and follow the same chunked path.

Flags default to the CATEGORIES_CSV, PRODUCTS_CSV, USERS_CSV, RATINGS_CSV,
READ_CHUNK_SIZE, CHUNK_SIZE and IF_EXISTS environment variables.

Exit Codes:
  0  - Success
  1  - Load failed
  2  - CLI usage error
  10 - Malformed input row
  11 - Database unavailable`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if lc.IfExists != "append" && lc.IfExists != "replace" {
				return usageError{fmt.Errorf("--if-exists must be append or replace, got %q", lc.IfExists)}
			}
			if lc.ChunkSize <= 0 || lc.WriteBatch <= 0 {
				return usageError{errors.New("--chunk-size and --write-batch must be positive")}
			}
			if lc.WriteBatch > repos.MaxBatchRows {
				return usageError{fmt.Errorf("--write-batch must be at most %d", repos.MaxBatchRows)}
			}
			cfg.Loader = lc

			if cfg.LogFile != "" {
				if f, err := applog.Tee(cfg.LogFile); err == nil {
					defer f.Close()
				}
			}

			db, err := repos.Open(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rep, err := loader.New(db, loader.OptionsFrom(lc)).Load(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"loaded %d categories, %d products, %d users, %d ratings in %d chunks (%s); tables now hold %d products\n",
				rep.Categories, rep.Products, rep.Users, rep.Ratings, rep.Chunks, rep.Elapsed.Round(1e6), rep.Counts.TotalProducts)
			return nil
		},
	}
	cmd.SetContext(context.Background())

	f := cmd.Flags()
	f.StringVar(&lc.CategoriesCSV, "categories", lc.CategoriesCSV, "categories CSV (id, category_name)")
	f.StringVar(&lc.ProductsCSV, "products", lc.ProductsCSV, "products CSV")
	f.StringVar(&lc.UsersCSV, "users", lc.UsersCSV, "optional users CSV")
	f.StringVar(&lc.RatingsCSV, "ratings", lc.RatingsCSV, "optional ratings CSV")
	f.IntVar(&lc.ChunkSize, "chunk-size", lc.ChunkSize, "rows read and committed per transaction")
	f.IntVar(&lc.WriteBatch, "write-batch", lc.WriteBatch, fmt.Sprintf("rows per multi-row INSERT (max %d)", repos.MaxBatchRows))
	f.StringVar(&lc.IfExists, "if-exists", lc.IfExists, "append or replace existing rows")
	return cmd
}

func exitCode(err error) int {
	var ue usageError
	switch {
	case errors.As(err, &ue):
		return exitUsage
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return exitDBUnavailable
	case errors.Is(err, domain.ErrValidation):
		return exitBadInput
	}
	return exitLoadFailed
}
