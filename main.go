package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/browserscan/trustscore/internal/api"
	"github.com/browserscan/trustscore/internal/config"
	"github.com/browserscan/trustscore/internal/ipintel"
	"github.com/browserscan/trustscore/internal/logging"
	"github.com/browserscan/trustscore/internal/metrics"
	"github.com/browserscan/trustscore/internal/report"
)

func main() {
	configPath := flag.String("config", os.Getenv("TRUSTSCORE_CONFIG"), "path to a TOML, YAML or JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Logging)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lookup, closeLookup, err := openLookup(cfg.GeoIP, log)
	if err != nil {
		return err
	}
	defer closeLookup()

	store, closeStore := openStore(ctx, cfg, log)
	defer closeStore()

	m := metrics.New()
	assembler := report.NewAssembler(lookup, store, log, cfg.ReportTTL(), report.WithObserver(m))
	server := api.NewServer(assembler, store, m, log, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port.String(),
		Handler:      server.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
		IdleTimeout:  cfg.Server.IdleTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("trustscore server starting", "port", cfg.Server.Port.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openLookup uses the MaxMind databases when configured. Entries in the
// static intel file answer ahead of them. With neither, every address
// resolves to its bogon flag only.
func openLookup(cfg config.GeoIPConfig, log *slog.Logger) (ipintel.Lookup, func(), error) {
	var overrides ipintel.StaticLookup
	if cfg.StaticFile != "" {
		var err error
		overrides, err = ipintel.LoadStaticLookup(cfg.StaticFile)
		if err != nil {
			return nil, nil, err
		}
		log.Info("static ip intel loaded", "file", cfg.StaticFile, "entries", len(overrides))
	}

	if cfg.CityDB == "" {
		if overrides == nil {
			log.Warn("no GeoIP database configured, IP intelligence disabled")
			overrides = ipintel.StaticLookup{}
		}
		return overrides, func() {}, nil
	}

	mm, err := ipintel.OpenMaxMind(cfg.CityDB, cfg.ASNDB, cfg.AnonymousDB)
	if err != nil {
		return nil, nil, err
	}
	log.Info("geoip databases loaded", "city", cfg.CityDB, "asn", cfg.ASNDB, "anonymous", cfg.AnonymousDB)
	closeFn := func() {
		if err := mm.Close(); err != nil {
			log.Warn("close geoip databases", "err", err)
		}
	}
	if len(overrides) > 0 {
		return ipintel.OverrideLookup{Overrides: overrides, Next: mm}, closeFn, nil
	}
	return mm, closeFn, nil
}

// openStore prefers Redis and falls back to memory when it is unset or
// unreachable.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (report.Store, func()) {
	if cfg.Redis.URL != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		client, err := report.NewRedisClient(pingCtx, cfg.Redis.URL)
		cancel()
		if err == nil {
			log.Info("storing reports in redis", "prefix", cfg.Redis.KeyPrefix)
			return report.NewRedisStore(client, cfg.Redis.KeyPrefix), func() {
				if err := client.Close(); err != nil {
					log.Warn("close redis", "err", err)
				}
			}
		}
		log.Warn("redis unavailable, falling back to in-memory reports", "err", err)
	}

	mem := report.NewMemoryStore()
	go mem.RunCleanup(ctx, time.Minute)
	return mem, func() {}
}
