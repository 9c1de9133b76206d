// Command warehouse-web serves the read-only warehouse query API.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"salesetl/internal/config"
	"salesetl/internal/logging"
	"salesetl/internal/storage"
	_ "salesetl/internal/storage/all"
	"salesetl/internal/webui"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "pipeline config YAML path")
	addr := flag.String("addr", "", "listen address (overrides web.addr)")
	flag.Parse()

	p, err := config.Load(*cfgPath)
	if err != nil {
		logging.Must("info", "console").Fatal("load config", zap.Error(err))
	}
	if *addr != "" {
		p.Web.Addr = *addr
	}

	log := logging.Must(p.Logging.Level, p.Logging.Format)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := storage.New(ctx, storage.Config{Kind: p.Warehouse.Kind, DSN: p.WarehouseDSN(), ReadOnly: true})
	if err != nil {
		log.Fatal("open warehouse", zap.Error(err))
	}
	defer repo.Close()

	srv := webui.NewServer(webui.Config{Addr: p.Web.Addr, MaxRows: p.Web.MaxRows}, repo, log)
	if err := srv.ListenAndServe(ctx); err != nil {
		log.Error("server stopped", zap.Error(err))
		stop()
		os.Exit(1)
	}
}
