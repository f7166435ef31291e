// Package montecarlo estimates the robustness of a backtest result by
// bootstrap-resampling its per-event returns and rebuilding equity paths.
package montecarlo

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/quantfabric/backtest/internal/stats"
	"github.com/quantfabric/backtest/internal/workers"
	"github.com/quantfabric/backtest/pkg/types"
	"go.uber.org/zap"
)

// Config configures the simulator.
type Config struct {
	// NumSimulations is the number of resampled equity paths.
	NumSimulations int `mapstructure:"num_simulations"`
	// Seed seeds the resampler; 0 means time-based.
	Seed int64 `mapstructure:"seed"`
	// ConfidenceLevels are the percentiles reported per distribution.
	ConfidenceLevels []float64 `mapstructure:"confidence_levels"`
	// Workers bounds the resampling parallelism.
	Workers int `mapstructure:"workers"`
}

// DefaultConfig returns the default simulator configuration.
func DefaultConfig() Config {
	return Config{
		NumSimulations:   1000,
		Seed:             0,
		ConfidenceLevels: []float64{0.05, 0.25, 0.50, 0.75, 0.95},
		Workers:          8,
	}
}

// Distribution summarizes one metric across all resampled paths.
type Distribution struct {
	Mean        float64
	Median      float64
	StdDev      float64
	Min         float64
	Max         float64
	Percentiles map[float64]float64
}

// Result holds the per-metric distributions of a simulation.
type Result struct {
	NumSimulations int
	FinalEquity    Distribution
	MaxDrawdown    Distribution
	Sharpe         Distribution
}

// Simulator resamples a returns series with replacement and measures how
// the headline metrics vary across the resampled paths.
type Simulator struct {
	logger *zap.Logger
	config Config
	seed   int64
}

// New creates a simulator.
func New(logger *zap.Logger, config Config) *Simulator {
	if config.NumSimulations < 1 {
		config.NumSimulations = DefaultConfig().NumSimulations
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	if len(config.ConfidenceLevels) == 0 {
		config.ConfidenceLevels = DefaultConfig().ConfidenceLevels
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Simulator{
		logger: logger,
		config: config,
		seed:   seed,
	}
}

// Run bootstraps the given per-event returns into NumSimulations equity
// paths starting from initialEquity and returns the distributions of
// final equity, max drawdown, and Sharpe ratio. The timeframe sets the
// annualization factor.
func (s *Simulator) Run(returns []float64, initialEquity float64, tf types.Timeframe) (*Result, error) {
	if len(returns) < 2 {
		return nil, fmt.Errorf("montecarlo: need at least 2 returns, got %d", len(returns))
	}

	n := s.config.NumSimulations
	finals := make([]float64, n)
	drawdowns := make([]float64, n)
	sharpes := make([]float64, n)

	periodsPerYear := tf.PeriodsPerYear()

	// Each shard owns its own seeded stream, so the resampled paths do
	// not depend on task-to-worker scheduling.
	pool := workers.New(s.logger, "montecarlo", s.config.Workers, s.config.Workers)
	perShard := (n + s.config.Workers - 1) / s.config.Workers
	for w := 0; w < s.config.Workers; w++ {
		lo := w * perShard
		hi := lo + perShard
		if hi > n {
			hi = n
		}
		if lo >= hi {
			break
		}

		rng := rand.New(rand.NewSource(s.seed + int64(w)))
		pool.Submit(workers.TaskFunc(func() error {
			path := make([]float64, len(returns)+1)
			sampled := make([]float64, len(returns))
			for i := lo; i < hi; i++ {
				resample(rng, returns, sampled)
				equityPath(initialEquity, sampled, path)
				finals[i] = path[len(path)-1]
				drawdowns[i] = stats.MaxDrawdown(path, sampled)
				sharpes[i] = stats.Sharpe(sampled, 0, periodsPerYear)
			}
			return nil
		}))
	}
	pool.Shutdown()

	result := &Result{
		NumSimulations: n,
		FinalEquity:    s.describe(finals),
		MaxDrawdown:    s.describe(drawdowns),
		Sharpe:         s.describe(sharpes),
	}

	s.logger.Info("monte carlo simulation finished",
		zap.Int("simulations", n),
		zap.Int("returns", len(returns)),
		zap.Float64("medianFinalEquity", result.FinalEquity.Median))
	return result, nil
}

// resample fills dst with draws from src, with replacement.
func resample(rng *rand.Rand, src, dst []float64) {
	for i := range dst {
		dst[i] = src[rng.Intn(len(src))]
	}
}

// equityPath compounds returns from initial into path. path has one more
// element than returns; path[0] is the initial equity.
func equityPath(initial float64, returns []float64, path []float64) {
	path[0] = initial
	for i, r := range returns {
		path[i+1] = path[i] * (1 + r)
	}
}

func (s *Simulator) describe(samples []float64) Distribution {
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	var variance float64
	for _, v := range sorted {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(sorted))

	percentiles := make(map[float64]float64, len(s.config.ConfidenceLevels))
	for _, level := range s.config.ConfidenceLevels {
		percentiles[level] = percentile(sorted, level)
	}

	return Distribution{
		Mean:        mean,
		Median:      percentile(sorted, 0.5),
		StdDev:      math.Sqrt(variance),
		Min:         sorted[0],
		Max:         sorted[len(sorted)-1],
		Percentiles: percentiles,
	}
}

// percentile reads the p-quantile from an ascending sorted slice using
// linear interpolation between the two nearest ranks.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
