// Package config loads runtime configuration from an optional YAML file,
// a .env file, and the process environment.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/quantfabric/backtest/internal/engine"
	"github.com/quantfabric/backtest/internal/montecarlo"
	"github.com/quantfabric/backtest/internal/simulation"
	"github.com/quantfabric/backtest/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is the full runtime configuration of a backtest run.
type Config struct {
	Run        types.RunConfig
	Simulation simulation.QuoteConfig
	Engine     engine.Config
	MonteCarlo montecarlo.Config

	// ExportDir is where CSV results are written; empty disables export.
	ExportDir string
	// MetricsAddr is the Prometheus listen address; empty disables the
	// metrics server.
	MetricsAddr string
}

// Load builds a Config from defaults, an optional YAML file at path, a
// best-effort .env file, and environment variables. Environment variables
// override file values; NUM_TICKS and INITIAL_CAPITAL are the documented
// overrides for the two most commonly tuned knobs.
func Load(logger *zap.Logger, path string) (*Config, error) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	run := types.DefaultRunConfig()
	sim := simulation.DefaultQuoteConfig()
	mc := montecarlo.DefaultConfig()

	v.SetDefault("num_ticks", run.NumTicks)
	v.SetDefault("initial_capital", run.InitialCapital.InexactFloat64())
	v.SetDefault("timeframe", string(run.Timeframe))
	v.SetDefault("seed", run.Seed)

	v.SetDefault("start_price", sim.StartPrice)
	v.SetDefault("mu", sim.Mu)
	v.SetDefault("implied_vol", sim.ImpliedVol)
	v.SetDefault("jump_lambda", sim.JumpLambda)
	v.SetDefault("jump_mu", sim.JumpMu)
	v.SetDefault("jump_sigma", sim.JumpSigma)
	v.SetDefault("spread_mu", sim.SpreadMu)
	v.SetDefault("spread_sigma", sim.SpreadSigma)

	v.SetDefault("risk_free_rate", engine.DefaultConfig().RiskFreeRate)
	v.SetDefault("monte_carlo_runs", mc.NumSimulations)
	v.SetDefault("monte_carlo_workers", mc.Workers)

	v.SetDefault("export_dir", "results")
	v.SetDefault("metrics_addr", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		logger.Info("config file loaded", zap.String("path", path))
	}

	cfg := &Config{
		Run: types.RunConfig{
			NumTicks:       v.GetInt("num_ticks"),
			InitialCapital: decimal.NewFromFloat(v.GetFloat64("initial_capital")),
			Timeframe:      types.Timeframe(v.GetString("timeframe")),
			Seed:           v.GetInt64("seed"),
		},
		Simulation: simulation.QuoteConfig{
			Config: simulation.Config{
				StartPrice: v.GetFloat64("start_price"),
				Mu:         v.GetFloat64("mu"),
				ImpliedVol: v.GetFloat64("implied_vol"),
				JumpLambda: v.GetFloat64("jump_lambda"),
				JumpMu:     v.GetFloat64("jump_mu"),
				JumpSigma:  v.GetFloat64("jump_sigma"),
				Seed:       v.GetInt64("seed"),
			},
			SpreadMu:    v.GetFloat64("spread_mu"),
			SpreadSigma: v.GetFloat64("spread_sigma"),
		},
		Engine: engine.Config{
			RiskFreeRate: v.GetFloat64("risk_free_rate"),
		},
		MonteCarlo: montecarlo.Config{
			NumSimulations:   v.GetInt("monte_carlo_runs"),
			Seed:             v.GetInt64("seed"),
			ConfidenceLevels: mc.ConfidenceLevels,
			Workers:          v.GetInt("monte_carlo_workers"),
		},
		ExportDir:   v.GetString("export_dir"),
		MetricsAddr: v.GetString("metrics_addr"),
	}

	if err := cfg.Run.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}
