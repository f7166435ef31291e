// Package engine runs registered strategies concurrently over shared
// market data and collects per-strategy results.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quantfabric/backtest/internal/ledger"
	"github.com/quantfabric/backtest/internal/metrics"
	"github.com/quantfabric/backtest/internal/stats"
	"github.com/quantfabric/backtest/internal/strategy"
	"github.com/quantfabric/backtest/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Config configures the engine.
type Config struct {
	// RiskFreeRate is the per-period risk-free rate used by the
	// Sharpe and Sortino calculations.
	RiskFreeRate float64 `mapstructure:"risk_free_rate"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{RiskFreeRate: 0.0}
}

// Result is the outcome of one strategy context. Exactly one of Err or
// the metric fields is meaningful: a failed context carries its error and
// empty metrics.
type Result struct {
	ContextID      string
	Name           string
	Timeframe      types.Timeframe
	InitialCapital decimal.Decimal
	FinalEquity    decimal.Decimal
	Metrics        map[string]float64
	PnLSeries      []float64
	Returns        []float64
	Duration       time.Duration
	Err            error
}

// driveMode is decided once at registration time, so the per-event loop
// never re-checks strategy capabilities.
type driveMode int

const (
	driveTicks driveMode = iota
	driveQuotes
)

type strategyContext struct {
	id             string
	name           string
	strat          strategy.Strategy
	mode           driveMode
	timeframe      types.Timeframe
	initialCapital decimal.Decimal
}

// Engine owns the registered strategy contexts and the market data they
// run over. Registration is not safe for concurrent use; Run is called
// once after setup.
type Engine struct {
	logger   *zap.Logger
	config   Config
	ticks    []types.Tick
	quotes   []types.QuoteTick
	contexts []*strategyContext
}

// New creates an engine.
func New(logger *zap.Logger, config Config) *Engine {
	return &Engine{
		logger: logger,
		config: config,
	}
}

// SetTickData installs the trade tick series shared by all tick-driven
// contexts. The engine reads the slice but never mutates it.
func (e *Engine) SetTickData(ticks []types.Tick) {
	e.ticks = ticks
}

// SetQuoteData installs the quote series shared by all quote-driven
// contexts.
func (e *Engine) SetQuoteData(quotes []types.QuoteTick) {
	e.quotes = quotes
}

// AddStrategy registers a strategy under a display name. The strategy's
// event capability is detected here, once: it must implement exactly one
// of OnTick or OnQuote. Bar strategies are registered through
// strategy.NewBarDriver, which presents them as tick-driven.
func (e *Engine) AddStrategy(name string, strat strategy.Strategy, tf types.Timeframe, initialCapital decimal.Decimal) error {
	_, handlesTicks := strat.(strategy.TickHandler)
	_, handlesQuotes := strat.(strategy.QuoteHandler)

	var mode driveMode
	switch {
	case handlesTicks && handlesQuotes:
		return fmt.Errorf("strategy %q implements both OnTick and OnQuote; a context is driven by one event stream", name)
	case handlesTicks:
		mode = driveTicks
	case handlesQuotes:
		mode = driveQuotes
	default:
		return fmt.Errorf("strategy %q implements neither OnTick nor OnQuote", name)
	}

	if initialCapital.IsNegative() {
		return fmt.Errorf("strategy %q: initial capital must not be negative, got %s", name, initialCapital)
	}

	sc := &strategyContext{
		id:             uuid.New().String(),
		name:           name,
		strat:          strat,
		mode:           mode,
		timeframe:      tf,
		initialCapital: initialCapital,
	}
	e.contexts = append(e.contexts, sc)

	e.logger.Info("strategy registered",
		zap.String("contextID", sc.id),
		zap.String("name", name),
		zap.String("timeframe", string(tf)),
		zap.String("initialCapital", initialCapital.String()))
	return nil
}

// Run executes every registered context in its own goroutine and streams
// results over the returned channel. The channel is closed once all
// contexts have finished. A panicking or failing context produces a
// Result carrying the error; it never takes down the other contexts.
func (e *Engine) Run(ctx context.Context) <-chan Result {
	results := make(chan Result, len(e.contexts))

	var wg sync.WaitGroup
	for _, sc := range e.contexts {
		wg.Add(1)
		go func(sc *strategyContext) {
			defer wg.Done()
			results <- e.runContext(ctx, sc)
		}(sc)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

func (e *Engine) runContext(ctx context.Context, sc *strategyContext) (res Result) {
	started := time.Now()
	res = Result{
		ContextID:      sc.id,
		Name:           sc.name,
		Timeframe:      sc.timeframe,
		InitialCapital: sc.initialCapital,
	}

	defer func() {
		res.Duration = time.Since(started)
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("strategy %q panicked: %v", sc.name, r)
			e.logger.Error("strategy context panicked",
				zap.String("contextID", sc.id),
				zap.String("name", sc.name),
				zap.Any("panic", r))
		}
	}()

	switch sc.mode {
	case driveTicks:
		if len(e.ticks) == 0 {
			res.Err = fmt.Errorf("strategy %q is tick-driven but no tick data was set", sc.name)
			return res
		}
	case driveQuotes:
		if len(e.quotes) == 0 {
			res.Err = fmt.Errorf("strategy %q is quote-driven but no quote data was set", sc.name)
			return res
		}
	}

	// A context that has not started yet can still be abandoned, but a
	// running event loop always finishes: there is no mid-run cancellation.
	if err := ctx.Err(); err != nil {
		res.Err = fmt.Errorf("strategy %q not started: %w", sc.name, err)
		return res
	}

	capital, _ := sc.initialCapital.Float64()
	book := ledger.New(e.logger, capital)
	collector := stats.NewCollector()
	stats.RegisterStandard(collector, sc.timeframe, e.config.RiskFreeRate)

	sc.strat.SetBroker(book)
	sc.strat.OnStart()

	switch sc.mode {
	case driveTicks:
		handler := sc.strat.(strategy.TickHandler)
		for _, tick := range e.ticks {
			handler.OnTick(tick)
			book.HandleTick(tick)
			collector.RecordPnL(book.PnL(tick.Price))
			metrics.EventsProcessed.WithLabelValues(sc.name, "tick").Inc()
		}
	case driveQuotes:
		handler := sc.strat.(strategy.QuoteHandler)
		for _, quote := range e.quotes {
			handler.OnQuote(quote)
			book.HandleQuote(quote)
			collector.RecordPnL(book.PnL(quote.Mid()))
			metrics.EventsProcessed.WithLabelValues(sc.name, "quote").Inc()
		}
	}

	sc.strat.OnEnd()

	res.Metrics = collector.Compute()
	res.PnLSeries = collector.PnLSeries()
	res.Returns = collector.ReturnsSeries()
	if series := res.PnLSeries; len(series) > 0 {
		res.FinalEquity = decimal.NewFromFloat(series[len(series)-1])
	} else {
		res.FinalEquity = sc.initialCapital
	}

	metrics.ContextsCompleted.Inc()
	e.logger.Info("strategy context finished",
		zap.String("contextID", sc.id),
		zap.String("name", sc.name),
		zap.Int("pnlSamples", len(res.PnLSeries)),
		zap.Duration("elapsed", time.Since(started)))
	return res
}
