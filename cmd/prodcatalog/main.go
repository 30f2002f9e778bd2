package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prodcatalog/internal/config"
	apphttp "prodcatalog/internal/http"
	applog "prodcatalog/internal/log"
	"prodcatalog/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := applog.Tee(cfg.LogFile)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
		}
	}

	db, err := repos.Open(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if cfg.SeedDemo {
		if err := repos.SeedIfEmpty(context.Background(), db); err != nil {
			log.Fatal(err)
		}
	}

	app := apphttp.NewApp(db, cfg)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("[server] listen: %v", err)
		}
	}()
	applog.Info(nil, "server.start", map[string]any{"port": cfg.Port, "driver": cfg.DBDriver})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		applog.Error(nil, "server.shutdown", err, nil)
	}
	applog.Info(nil, "server.stop", nil)
}
