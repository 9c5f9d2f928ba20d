package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/hoopsight/hoopsight/internal/seasonsim"
	"github.com/hoopsight/hoopsight/pkg/logger"
)

// Default run constants.
const (
	defaultTeams   = 12
	defaultRounds  = 2
	defaultSeed    = 1
	defaultTimeout = 5 * time.Minute
)

func main() {
	var (
		teams   = flag.Int("teams", defaultTeams, "Number of teams in the synthetic league")
		rounds  = flag.Int("rounds", defaultRounds, "Home-and-away meetings per pair")
		seed    = flag.Int64("seed", defaultSeed, "RNG seed; same seed reproduces the same season")
		noise   = flag.Float64("noise", 0, "Per-game score noise (0 uses the default)")
		timeout = flag.Duration("timeout", defaultTimeout, "Overall run timeout")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get().Named("backtest")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cfg := seasonsim.Config{
		Teams:      *teams,
		Rounds:     *rounds,
		Seed:       *seed,
		ScoreNoise: *noise,
	}

	start := time.Now()
	report, err := seasonsim.Run(ctx, cfg)
	if err != nil {
		log.Error(ctx, "backtest failed", logger.Error(err))
		os.Exit(1)
	}

	log.Info(ctx, "backtest complete",
		logger.Int("games", report.Games),
		logger.Int("evaluated", report.Evaluated),
		logger.Float64("winner_accuracy", report.WinnerAccuracy),
		logger.Float64("margin_mae", report.MarginMAE),
		logger.Float64("total_mae", report.TotalMAE),
		logger.Float64("rank_correlation", report.RankCorrelation),
		logger.String("elapsed", time.Since(start).String()),
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)
}
