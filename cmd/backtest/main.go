// Package main provides the entry point for the backtest runner. It
// generates synthetic tick and quote paths, runs the built-in strategies
// over them concurrently, and reports per-strategy performance.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/quantfabric/backtest/internal/config"
	"github.com/quantfabric/backtest/internal/engine"
	"github.com/quantfabric/backtest/internal/export"
	"github.com/quantfabric/backtest/internal/metrics"
	"github.com/quantfabric/backtest/internal/montecarlo"
	"github.com/quantfabric/backtest/internal/report"
	"github.com/quantfabric/backtest/internal/simulation"
	"github.com/quantfabric/backtest/internal/strategy"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	runMonteCarlo := flag.Bool("montecarlo", false, "Bootstrap the result distributions after the run")
	flag.Parse()

	logger := setupLogger(*logLevel)
	defer logger.Sync()

	cfg, err := config.Load(logger, *configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Starting backtest",
		zap.Int("numTicks", cfg.Run.NumTicks),
		zap.String("initialCapital", cfg.Run.InitialCapital.String()),
		zap.String("timeframe", string(cfg.Run.Timeframe)),
		zap.Int64("seed", cfg.Run.Seed),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.MetricsAddr != "" {
		metrics.Serve(cfg.MetricsAddr)
		logger.Info("Metrics server listening", zap.String("addr", cfg.MetricsAddr))
	}

	// Generate the shared market data.
	tickGen := simulation.NewTickGenerator(logger, &cfg.Simulation.Config, cfg.Run.Timeframe)
	quoteGen := simulation.NewQuoteGenerator(logger, &cfg.Simulation, cfg.Run.Timeframe)
	ticks := tickGen.Generate(cfg.Run.NumTicks)
	quotes := quoteGen.Generate(cfg.Run.NumTicks)

	// Register the built-in strategies.
	eng := engine.New(logger, cfg.Engine)
	eng.SetTickData(ticks)
	eng.SetQuoteData(quotes)

	registrations := []struct {
		name  string
		strat strategy.Strategy
	}{
		{"mean_reversion", strategy.NewMeanReversion(logger)},
		{"breakout", strategy.NewBreakout(logger, 20)},
		{"spread", strategy.NewSpread(logger, 0, 0, 0)},
	}
	for _, reg := range registrations {
		if err := eng.AddStrategy(reg.name, reg.strat, cfg.Run.Timeframe, cfg.Run.InitialCapital); err != nil {
			logger.Fatal("Failed to register strategy", zap.String("name", reg.name), zap.Error(err))
		}
	}

	var results []engine.Result
	for res := range eng.Run(ctx) {
		results = append(results, res)
	}

	report.NewPrinter(os.Stdout).Print(results)

	if cfg.ExportDir != "" {
		writer := export.NewWriter(logger, cfg.ExportDir)
		for _, res := range results {
			// Export failures are reported but never abort the run.
			if err := writer.WriteResult(res); err != nil {
				logger.Warn("CSV export failed", zap.String("name", res.Name), zap.Error(err))
			}
		}
	}

	if *runMonteCarlo {
		runBootstrap(logger, cfg, results)
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	logger.Info("Backtest finished",
		zap.Int("strategies", len(results)),
		zap.Int("failed", failed),
	)
	if failed == len(results) && len(results) > 0 {
		os.Exit(1)
	}
}

// runBootstrap resamples each successful result and logs the spread of
// the headline metrics.
func runBootstrap(logger *zap.Logger, cfg *config.Config, results []engine.Result) {
	sim := montecarlo.New(logger, cfg.MonteCarlo)
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		capital, _ := res.InitialCapital.Float64()
		dist, err := sim.Run(res.Returns, capital, res.Timeframe)
		if err != nil {
			logger.Warn("Monte Carlo skipped", zap.String("name", res.Name), zap.Error(err))
			continue
		}
		logger.Info("Monte Carlo distributions",
			zap.String("name", res.Name),
			zap.Int("simulations", dist.NumSimulations),
			zap.Float64("finalEquityP05", dist.FinalEquity.Percentiles[0.05]),
			zap.Float64("finalEquityMedian", dist.FinalEquity.Median),
			zap.Float64("finalEquityP95", dist.FinalEquity.Percentiles[0.95]),
			zap.Float64("maxDrawdownP05", dist.MaxDrawdown.Percentiles[0.05]),
			zap.Float64("sharpeMedian", dist.Sharpe.Median),
		)
	}
}

func setupLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Encoding:    "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := config.Build()
	if err != nil {
		panic(err)
	}

	return logger
}
