package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/dkeye/Watch/internal/adapters/directory"
	router "github.com/dkeye/Watch/internal/adapters/http"
	wsignal "github.com/dkeye/Watch/internal/adapters/signal"
	"github.com/dkeye/Watch/internal/app"
	"github.com/dkeye/Watch/internal/app/orch"
	"github.com/dkeye/Watch/internal/config"
	"github.com/dkeye/Watch/internal/core"
	"github.com/dkeye/Watch/internal/domain"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_ = godotenv.Load()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := app.NewMetrics(reg)

	dir, closeDir, err := openDirectory(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open room directory")
	}
	defer closeDir()

	o := orch.New(orch.Options{
		Directory:        dir,
		DirectoryTimeout: cfg.Directory.Timeout,
		DriftThreshold:   cfg.Sync.DriftThreshold,
		MaxClockSkew:     cfg.Sync.MaxClockSkew,
		BootstrapTimeout: cfg.Sync.BootstrapTimeout,
		Policy:           app.PolicyFor(cfg.Sync.Policy),
		Metrics:          metrics,
	})

	limiter := wsignal.NewRateLimiter(cfg.RateLimit.Events, cfg.RateLimit.Interval, nil)
	ctl := wsignal.NewSignalWSController(o, limiter, wsignal.Settings{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		WriteWait:  cfg.WriteWait,
		SendBuffer: cfg.SendBuffer,
		Origins:    originsForUpgrade(cfg.CORSOrigins),
	})

	r := router.SetupRouter(ctx, cfg, o, ctl, reg)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           router.WithCORS(r, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg conc.WaitGroup
	wg.Go(func() {
		log.Info().Str("addr", addr).Msg("Watch server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	})

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	wg.Wait()
	o.Wait()
	log.Info().Msg("Server exited gracefully")
}

func setupLogging(cfg *config.Config) {
	if cfg.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, keeping info")
		return
	}
	zerolog.SetGlobalLevel(lvl)
}

func openDirectory(ctx context.Context, cfg *config.Config) (core.RoomDirectory, func(), error) {
	switch cfg.Directory.Driver {
	case "postgres":
		pg, err := directory.NewPostgres(ctx, cfg.Directory.DSN)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	case "static":
		rooms := make([]domain.RoomInfo, 0, len(cfg.Directory.Rooms))
		for _, r := range cfg.Directory.Rooms {
			rooms = append(rooms, domain.RoomInfo{
				ID:           domain.RoomID(r.ID),
				RoomName:     r.Name,
				CreatedBy:    r.CreatedBy,
				InvitedUsers: r.InvitedUsers,
			})
		}
		return directory.NewStatic(rooms...), func() {}, nil
	default:
		return nil, func() {}, nil
	}
}

// originsForUpgrade maps the CORS wildcard to "any origin" for the
// websocket upgrader.
func originsForUpgrade(origins []string) []string {
	for _, o := range origins {
		if o == "*" {
			return nil
		}
	}
	return origins
}
