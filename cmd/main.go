package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hoopsight/hoopsight/internal/adapters/feeds"
	"github.com/hoopsight/hoopsight/internal/adapters/http/api"
	app "github.com/hoopsight/hoopsight/internal/app"
	"github.com/hoopsight/hoopsight/internal/config"
	"github.com/hoopsight/hoopsight/internal/domain/regress"
	"github.com/hoopsight/hoopsight/internal/domain/stats"
	"github.com/hoopsight/hoopsight/internal/domain/team"
	"github.com/hoopsight/hoopsight/pkg/logger"
	"github.com/hoopsight/hoopsight/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithGameSource(feeds.NewMemorySource()),
		app.WithRegressor(regress.NewLinear()),
		app.WithResultQueueSize(cfg.ResultQueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithTeamConfig(teamConfig(cfg)),
		app.WithMomentumConfig(stats.MomentumConfig{Window: cfg.MomentumWindow, Decay: cfg.MomentumDecay}),
		app.WithBlendWeights(cfg.FilterWeight, cfg.AuxWeight),
		app.WithAgreementPolicy(cfg.AgreementBoost, cfg.DisagreementPenalty),
		app.WithRegressorTimeout(time.Duration(cfg.RegressorTimeoutMS)*time.Millisecond),
		app.WithNeutralKeywords(cfg.NeutralKeywords),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	go startServiceMetricsUpdater(ctx, svc)

	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// teamConfig maps the flat process config onto the filter tuning. Zero
// values keep the built-in defaults.
func teamConfig(cfg *config.Config) team.Config {
	return team.Config{
		BaselineRating: cfg.BaselineRating,
		HomeAdvantage:  cfg.HomeAdvantage,
		LeagueTempo:    cfg.LeagueTempo,
		RatingNoise:    cfg.RatingNoise,
		HomeAdvNoise:   cfg.HomeAdvNoise,
		HealthNoise:    cfg.HealthNoise,
		MomentumNoise:  cfg.MomentumNoise,
		FatigueNoise:   cfg.FatigueNoise,
		TempoNoise:     cfg.TempoNoise,
		MarginNoise:    cfg.MarginNoise,
		TotalNoise:     cfg.TotalNoise,
	}
}

// startServiceMetricsUpdater periodically refreshes queue gauges from
// service stats.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := svc.GetStats()
			if queueLen, ok := st["queueLength"].(int); ok {
				metrics.UpdateQueueSize(queueLen)
			}
			if teams, ok := st["teams"].(int); ok {
				metrics.UpdateTrackedTeams(teams)
			}
		}
	}
}
