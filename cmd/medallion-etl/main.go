package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/veralake/medallion-etl/internal/audit"
	"github.com/veralake/medallion-etl/internal/catalog"
	"github.com/veralake/medallion-etl/internal/config"
	"github.com/veralake/medallion-etl/internal/logging"
	"github.com/veralake/medallion-etl/internal/metrics"
	"github.com/veralake/medallion-etl/internal/pipeline"
	"github.com/veralake/medallion-etl/internal/source"
	"github.com/veralake/medallion-etl/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("medallion-etl", pipeline.Version)
		return
	}

	cfg := config.MustLoad(*configPath)
	logging.Setup(cfg.Logging)
	log := logging.Component("main")
	log.Info("starting", "version", pipeline.Version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		sig := <-ch
		log.Info("received shutdown signal", "signal", sig.String())
		cancel()
	}()

	if cfg.Metrics.Enabled {
		metrics.Init("")
		go func() {
			if err := metrics.StartServer(cfg.Metrics.ListenAddr); err != nil {
				log.Error("metrics server failed", "error", err)
			}
		}()
	}

	src, err := source.NewRawSource(cfg.Source)
	if err != nil {
		log.Error("failed to create raw source", "error", err)
		os.Exit(1)
	}
	defer src.Close()

	store, err := storage.NewLayerStore(cfg.Storage)
	if err != nil {
		log.Error("failed to create layer store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	cat, err := catalog.NewWriter(catalog.Config{
		DSN:       cfg.Catalog.DSN,
		Namespace: cfg.Catalog.Namespace,
	})
	if err != nil {
		log.Error("failed to connect to catalog", "error", err)
		os.Exit(1)
	}
	defer cat.Close()

	aud, err := audit.NewEmitter(audit.Config{
		Enabled: cfg.Audit.Enabled,
		Dir:     cfg.Audit.Dir,
	})
	if err != nil {
		log.Error("failed to create audit emitter", "error", err)
		os.Exit(1)
	}
	defer aud.Close()

	p := pipeline.New(cfg, src, store, cat, aud)
	report, err := p.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			log.Info("shutdown complete")
			return
		}
		log.Error("pipeline failed", "error", err)
		os.Exit(1)
	}

	log.Info("pipeline finished",
		"run_id", report.RunID,
		"ingest_dates", report.IngestDates,
		"tables", len(report.Tables),
		"orders_rejected", report.Gold.OrdersRejected,
		"items_rejected", report.Gold.ItemsRejected)
}
