package seasonsim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/hoopsight/hoopsight/internal/domain/league"
	"github.com/hoopsight/hoopsight/internal/domain/predict"
	"github.com/hoopsight/hoopsight/internal/domain/team"
)

// Games each team must have played before its predictions count toward the
// report. Early-season forecasts are dominated by the prior.
const warmupGames = 4

// Report summarizes how the estimator did against the synthetic truth.
type Report struct {
	Games          int     `json:"games"`
	Evaluated      int     `json:"evaluated"`
	WinnerAccuracy float64 `json:"winner_accuracy"`
	MarginMAE      float64 `json:"margin_mae"`
	TotalMAE       float64 `json:"total_mae"`
	// RankCorrelation is the Spearman correlation between the truth net
	// ratings and the estimated ones at season end.
	RankCorrelation float64 `json:"rank_correlation"`
	// Calibration buckets predictions by reported confidence so the two
	// can be compared: a well-calibrated forecaster wins more of its
	// high-confidence picks.
	Calibration []CalibrationBucket `json:"calibration"`
}

// CalibrationBucket aggregates the predictions whose confidence fell in
// [Lo, Hi).
type CalibrationBucket struct {
	Lo             float64 `json:"lo"`
	Hi             float64 `json:"hi"`
	Count          int     `json:"count"`
	MeanConfidence float64 `json:"mean_confidence"`
	WinnerAccuracy float64 `json:"winner_accuracy"`
}

const calibrationBucketWidth = 25.0

type bucketAcc struct {
	count   int
	conf    float64
	correct int
}

// Run generates a season and replays it game by game, forecasting each game
// from the states the earlier games produced before applying its result.
func Run(ctx context.Context, cfg Config) (Report, error) {
	games, truths := Generate(cfg)

	manager := league.NewManager(team.Config{})
	predictor := predict.NewPredictor(manager)

	var report Report
	var marginErr, totalErr float64
	var winners int
	buckets := map[int]*bucketAcc{}

	for _, g := range games {
		if err := ctx.Err(); err != nil {
			return Report{}, fmt.Errorf("season aborted: %w", err)
		}
		report.Games++

		if manager.Games(g.HomeTeam) >= warmupGames && manager.Games(g.AwayTeam) >= warmupGames {
			pred, err := predictor.Predict(g.HomeTeam, g.AwayTeam, false)
			if err != nil {
				return Report{}, fmt.Errorf("forecasting %s: %w", g.GameID, err)
			}
			report.Evaluated++
			marginErr += math.Abs(pred.Margin - g.Margin())
			totalErr += math.Abs(pred.Total - g.Total())
			correct := (pred.Margin > 0) == (g.Margin() > 0)
			if correct {
				winners++
			}

			key := int(pred.Confidence / calibrationBucketWidth)
			acc, ok := buckets[key]
			if !ok {
				acc = &bucketAcc{}
				buckets[key] = acc
			}
			acc.count++
			acc.conf += pred.Confidence
			if correct {
				acc.correct++
			}
		}

		if err := manager.Apply(ctx, g); err != nil {
			return Report{}, fmt.Errorf("applying %s: %w", g.GameID, err)
		}
	}

	if report.Evaluated > 0 {
		report.WinnerAccuracy = float64(winners) / float64(report.Evaluated)
		report.MarginMAE = marginErr / float64(report.Evaluated)
		report.TotalMAE = totalErr / float64(report.Evaluated)
	}
	report.RankCorrelation = rankCorrelation(manager, truths)
	report.Calibration = calibration(buckets)
	return report, nil
}

func calibration(buckets map[int]*bucketAcc) []CalibrationBucket {
	keys := make([]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]CalibrationBucket, 0, len(keys))
	for _, k := range keys {
		acc := buckets[k]
		out = append(out, CalibrationBucket{
			Lo:             float64(k) * calibrationBucketWidth,
			Hi:             float64(k+1) * calibrationBucketWidth,
			Count:          acc.count,
			MeanConfidence: acc.conf / float64(acc.count),
			WinnerAccuracy: float64(acc.correct) / float64(acc.count),
		})
	}
	return out
}

// rankCorrelation computes the Spearman correlation between truth and
// estimated net ratings.
func rankCorrelation(manager *league.Manager, truths []Truth) float64 {
	truthNets := make([]float64, 0, len(truths))
	estNets := make([]float64, 0, len(truths))
	estimates := manager.Ratings()
	for _, t := range truths {
		est, ok := estimates[t.TeamID]
		if !ok {
			continue
		}
		truthNets = append(truthNets, t.Net())
		estNets = append(estNets, est)
	}
	if len(truthNets) < 2 {
		return 0
	}
	return stat.Correlation(ranks(truthNets), ranks(estNets), nil)
}

func ranks(vals []float64) []float64 {
	idx := make([]int, len(vals))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return vals[idx[a]] < vals[idx[b]] })
	out := make([]float64, len(vals))
	for rank, i := range idx {
		out[i] = float64(rank)
	}
	return out
}
