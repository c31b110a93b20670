package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/five82/potluck/internal/config"
	"github.com/five82/potluck/internal/logging"
	"github.com/five82/potluck/internal/metrics"
	"github.com/five82/potluck/internal/prefs"
	"github.com/five82/potluck/internal/reconcile"
	"github.com/five82/potluck/internal/remote"
	"github.com/five82/potluck/internal/ui"
)

// Options configure the potluck application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/potluck/prefs.toml
	PollEvery  int    // seconds; zero uses the config value
}

// Run boots the potluck TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logFile, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()
	base := logging.New(logFile, cfg.LogLevel)
	log := logging.Component(base, "app")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	engine, err := newEngine(cfg, base, metrics.New(reg))
	if err != nil {
		return err
	}
	defer engine.Close()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, reg, log); err != nil {
				log.Warn().Err(err).Str("addr", cfg.MetricsAddr).Msg("metrics listener stopped")
			}
		}()
	}

	// Populate the cache before the UI starts; polling retries on failure.
	if err := engine.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("initial refresh failed")
	}
	engine.StartPolling(cfg.PollInterval())
	log.Info().
		Str("store", cfg.StoreURL).
		Dur("poll", cfg.PollInterval()).
		Stringer("remove_rollback", cfg.RemoveRollback).
		Msg("potluck started")

	userPrefs := prefs.Load(opts.PrefsPath)
	return ui.Run(ui.Options{
		Context:   ctx,
		Engine:    engine,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
		Query:     userPrefs.Query,
		Locale:    cfg.Locale,
		LogPath:   cfg.LogFile,
	})
}

func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if opts.PollEvery > 0 {
		cfg.PollSeconds = opts.PollEvery
	}
	return cfg, nil
}

func newEngine(cfg config.Config, log zerolog.Logger, m *metrics.Metrics) (*reconcile.Engine, error) {
	client, err := remote.NewClient(cfg.StoreURL,
		remote.WithAPIKey(cfg.APIKey),
		remote.WithTable(cfg.Table),
	)
	if err != nil {
		return nil, fmt.Errorf("init store client: %w", err)
	}

	return reconcile.New(client, reconcile.Options{
		Logger:         &log,
		Metrics:        m,
		RemoveRollback: cfg.RemoveRollback,
		OnTransition: func(mut reconcile.Mutation) {
			ev := log.Debug()
			if mut.Err != nil {
				ev = log.Info().Err(mut.Err)
			}
			ev.Uint64("seq", mut.Seq).
				Str("kind", string(mut.Kind)).
				Str("id", string(mut.RecordID)).
				Str("state", string(mut.State)).
				Msg("mutation")
		},
	}), nil
}
