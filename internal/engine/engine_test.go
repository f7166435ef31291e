package engine_test

import (
	"context"
	"testing"

	"github.com/quantfabric/backtest/internal/engine"
	"github.com/quantfabric/backtest/internal/simulation"
	"github.com/quantfabric/backtest/internal/stats"
	"github.com/quantfabric/backtest/internal/strategy"
	"github.com/quantfabric/backtest/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// idleTick consumes ticks and never trades.
type idleTick struct{ strategy.Base }

func (s *idleTick) OnTick(tick types.Tick) {}

// idleQuote consumes quotes and never trades.
type idleQuote struct{ strategy.Base }

func (s *idleQuote) OnQuote(quote types.QuoteTick) {}

// ambidextrous claims both event capabilities.
type ambidextrous struct{ strategy.Base }

func (s *ambidextrous) OnTick(tick types.Tick)        {}
func (s *ambidextrous) OnQuote(quote types.QuoteTick) {}

// lifecycleOnly implements no event capability at all.
type lifecycleOnly struct{ strategy.Base }

// panicky blows up on its first tick.
type panicky struct{ strategy.Base }

func (s *panicky) OnTick(tick types.Tick) { panic("boom") }

func testTicks(t *testing.T, n int) []types.Tick {
	t.Helper()
	cfg := simulation.DefaultConfig()
	cfg.Seed = 42
	gen := simulation.NewTickGenerator(zap.NewNop(), cfg, types.Timeframe1m)
	return gen.Generate(n)
}

func collect(t *testing.T, results <-chan engine.Result) map[string]engine.Result {
	t.Helper()
	byName := make(map[string]engine.Result)
	for res := range results {
		byName[res.Name] = res
	}
	return byName
}

func TestAddStrategyCapabilityDetection(t *testing.T) {
	e := engine.New(zap.NewNop(), engine.DefaultConfig())
	capital := decimal.NewFromInt(10000)

	assert.NoError(t, e.AddStrategy("ticks", &idleTick{}, types.Timeframe1m, capital))
	assert.NoError(t, e.AddStrategy("quotes", &idleQuote{}, types.Timeframe1m, capital))
	assert.Error(t, e.AddStrategy("both", &ambidextrous{}, types.Timeframe1m, capital))
	assert.Error(t, e.AddStrategy("neither", &lifecycleOnly{}, types.Timeframe1m, capital))
	assert.Error(t, e.AddStrategy("debt", &idleTick{}, types.Timeframe1m, decimal.NewFromInt(-1)))
}

func TestIdenticalStrategiesProduceIdenticalResults(t *testing.T) {
	ticks := testTicks(t, 500)
	capital := decimal.NewFromInt(10000)

	e := engine.New(zap.NewNop(), engine.DefaultConfig())
	e.SetTickData(ticks)
	require.NoError(t, e.AddStrategy("a", strategy.NewMeanReversion(zap.NewNop()), types.Timeframe1m, capital))
	require.NoError(t, e.AddStrategy("b", strategy.NewMeanReversion(zap.NewNop()), types.Timeframe1m, capital))

	results := collect(t, e.Run(context.Background()))
	require.Len(t, results, 2)

	a, b := results["a"], results["b"]
	require.NoError(t, a.Err)
	require.NoError(t, b.Err)
	assert.NotEqual(t, a.ContextID, b.ContextID)
	assert.Equal(t, a.PnLSeries, b.PnLSeries)
	assert.Equal(t, a.Metrics, b.Metrics)
	assert.True(t, a.FinalEquity.Equal(b.FinalEquity))
}

func TestIdleStrategyHoldsInitialCapital(t *testing.T) {
	ticks := testTicks(t, 100)
	capital := decimal.NewFromInt(10000)

	e := engine.New(zap.NewNop(), engine.DefaultConfig())
	e.SetTickData(ticks)
	require.NoError(t, e.AddStrategy("idle", &idleTick{}, types.Timeframe1m, capital))

	results := collect(t, e.Run(context.Background()))
	res := results["idle"]
	require.NoError(t, res.Err)

	require.Len(t, res.PnLSeries, len(ticks))
	for _, v := range res.PnLSeries {
		assert.Equal(t, 10000.0, v)
	}
	assert.Equal(t, 0.0, res.Metrics[stats.MetricTotalReturn])
	assert.Equal(t, 0.0, res.Metrics[stats.MetricMaxDrawdown])
	assert.True(t, res.FinalEquity.Equal(capital))
}

func TestMissingDataFailsOnlyThatContext(t *testing.T) {
	ticks := testTicks(t, 100)
	capital := decimal.NewFromInt(10000)

	e := engine.New(zap.NewNop(), engine.DefaultConfig())
	e.SetTickData(ticks)
	require.NoError(t, e.AddStrategy("ticks", &idleTick{}, types.Timeframe1m, capital))
	require.NoError(t, e.AddStrategy("quotes", &idleQuote{}, types.Timeframe1m, capital))

	results := collect(t, e.Run(context.Background()))
	require.Len(t, results, 2)
	assert.NoError(t, results["ticks"].Err)
	assert.Error(t, results["quotes"].Err)
}

func TestPanicIsIsolatedToItsContext(t *testing.T) {
	ticks := testTicks(t, 100)
	capital := decimal.NewFromInt(10000)

	e := engine.New(zap.NewNop(), engine.DefaultConfig())
	e.SetTickData(ticks)
	require.NoError(t, e.AddStrategy("bad", &panicky{}, types.Timeframe1m, capital))
	require.NoError(t, e.AddStrategy("good", &idleTick{}, types.Timeframe1m, capital))

	results := collect(t, e.Run(context.Background()))
	require.Len(t, results, 2)
	require.Error(t, results["bad"].Err)
	assert.Contains(t, results["bad"].Err.Error(), "panicked")
	assert.NoError(t, results["good"].Err)
}

func TestPreCancelledContextNeverStarts(t *testing.T) {
	ticks := testTicks(t, 100)
	capital := decimal.NewFromInt(10000)

	e := engine.New(zap.NewNop(), engine.DefaultConfig())
	e.SetTickData(ticks)
	require.NoError(t, e.AddStrategy("cancelled", &idleTick{}, types.Timeframe1m, capital))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := collect(t, e.Run(ctx))
	require.Error(t, results["cancelled"].Err)
}

func TestBarStrategyRegistersAsTickDriven(t *testing.T) {
	ticks := testTicks(t, 200)
	capital := decimal.NewFromInt(10000)

	e := engine.New(zap.NewNop(), engine.DefaultConfig())
	e.SetTickData(ticks)
	driver := strategy.NewBarDriver(&barCounter{}, 10)
	require.NoError(t, e.AddStrategy("bars", driver, types.Timeframe1m, capital))

	results := collect(t, e.Run(context.Background()))
	assert.NoError(t, results["bars"].Err)
}

type barCounter struct {
	strategy.Base
	bars int
}

func (s *barCounter) OnBar(bar types.Bar) { s.bars++ }
