package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/five82/potluck/internal/logging"
	"github.com/five82/potluck/internal/storesrv"
)

func main() {
	os.Exit(run())
}

func run() int {
	addr := flag.String("addr", "127.0.0.1:7488", "listen address")
	dsn := flag.String("dsn", "sqlite:potluck.db", "database: sqlite:<path> or postgres://...")
	table := flag.String("table", "guests", "table name served under /rest/v1/")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "potluckd: %v\n", err)
		return 2
	}
	log := logging.Component(logging.New(os.Stderr, level), "potluckd")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storesrv.Open(ctx, *dsn)
	if err != nil {
		log.Error().Err(err).Msg("open store")
		return 1
	}
	defer func() { _ = store.Close() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := &http.Server{
		Addr:              *addr,
		Handler:           storesrv.NewHandler(store, storesrv.Options{Table: *table, Logger: log, Registry: reg}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", *addr).Str("table", *table).Msg("serving")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("serve")
		return 1
	}
	log.Info().Msg("stopped")
	return 0
}
