package strategy_test

import (
	"testing"

	"github.com/quantfabric/backtest/internal/strategy"
	"github.com/quantfabric/backtest/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubBroker records submitted orders and answers with a fixed position.
type stubBroker struct {
	orders   []types.Order
	position float64
}

func (b *stubBroker) Submit(order types.Order) { b.orders = append(b.orders, order) }
func (b *stubBroker) Position() float64        { return b.position }
func (b *stubBroker) PnL(ref float64) float64  { return 0 }

func tick(ts uint64, price float64) types.Tick {
	return types.Tick{Timestamp: ts, Price: price, Volume: 1}
}

func TestMeanReversionRoundTrip(t *testing.T) {
	broker := &stubBroker{}
	s := strategy.NewMeanReversion(zap.NewNop())
	s.SetBroker(broker)

	s.OnTick(tick(0, 100))  // first observation, no trade possible
	s.OnTick(tick(1, 99.9)) // 0.1% drop, below threshold
	assert.Empty(t, broker.orders)

	s.OnTick(tick(2, 99.0)) // 0.9% drop from 99.9, buys
	require.Len(t, broker.orders, 1)
	assert.Equal(t, types.OrderSideBuy, broker.orders[0].Side)
	assert.Equal(t, types.OrderTypeMarket, broker.orders[0].Type)
	assert.Equal(t, 99.0, broker.orders[0].Price)

	s.OnTick(tick(3, 99.2)) // 0.2% above entry, holds
	require.Len(t, broker.orders, 1)

	s.OnTick(tick(4, 99.6)) // 0.6% above entry, sells
	require.Len(t, broker.orders, 2)
	assert.Equal(t, types.OrderSideSell, broker.orders[1].Side)
}

func TestMeanReversionNoReentryWhileInPosition(t *testing.T) {
	broker := &stubBroker{}
	s := strategy.NewMeanReversion(zap.NewNop())
	s.SetBroker(broker)

	s.OnTick(tick(0, 100))
	s.OnTick(tick(1, 99.0)) // buys
	s.OnTick(tick(2, 98.0)) // another drop, but already in position
	s.OnTick(tick(3, 97.0))
	require.Len(t, broker.orders, 1)
}

func TestBreakoutEntryAndExit(t *testing.T) {
	broker := &stubBroker{}
	s := strategy.NewBreakout(zap.NewNop(), 3)
	s.SetBroker(broker)

	// Fill the window: high 102, low 100.
	s.OnTick(tick(0, 100))
	s.OnTick(tick(1, 102))
	s.OnTick(tick(2, 101))
	assert.Empty(t, broker.orders)

	s.OnTick(tick(3, 101.5)) // inside the window, no signal
	assert.Empty(t, broker.orders)

	s.OnTick(tick(4, 103)) // above window high 102, enters
	require.Len(t, broker.orders, 1)
	assert.Equal(t, types.OrderSideBuy, broker.orders[0].Side)
	assert.Equal(t, 103.0, broker.orders[0].Price)

	s.OnTick(tick(5, 102.5)) // inside window, holds
	require.Len(t, broker.orders, 1)

	s.OnTick(tick(6, 101.0)) // below window low 101.5, exits
	require.Len(t, broker.orders, 2)
	assert.Equal(t, types.OrderSideSell, broker.orders[1].Side)
}

func TestBreakoutWindowSizeFallback(t *testing.T) {
	s := strategy.NewBreakout(zap.NewNop(), 0)
	s.SetBroker(&stubBroker{})
	for i := 0; i < 19; i++ {
		s.OnTick(tick(uint64(i), 100))
	}
	// 19 observations never fill the fallback window of 20.
	s.OnTick(tick(19, 200))
	assert.Empty(t, s.Broker().(*stubBroker).orders)
}

func TestSpreadQuotesBothSides(t *testing.T) {
	broker := &stubBroker{}
	s := strategy.NewSpread(zap.NewNop(), 0, 0, 0)
	s.SetBroker(broker)

	s.OnQuote(types.QuoteTick{Timestamp: 0, Bid: 100.00, Ask: 100.05, Volume: 1})
	require.Len(t, broker.orders, 2)

	buy, sell := broker.orders[0], broker.orders[1]
	assert.Equal(t, types.OrderSideBuy, buy.Side)
	assert.Equal(t, types.OrderTypeLimit, buy.Type)
	assert.InDelta(t, 99.995, buy.Price, 1e-12)
	assert.Equal(t, types.OrderSideSell, sell.Side)
	assert.Equal(t, types.OrderTypeLimit, sell.Type)
	assert.InDelta(t, 100.055, sell.Price, 1e-12)
}

func TestSpreadSkipsNarrowSpread(t *testing.T) {
	broker := &stubBroker{}
	s := strategy.NewSpread(zap.NewNop(), 1.0, 0.02, 0.005)
	s.SetBroker(broker)

	s.OnQuote(types.QuoteTick{Timestamp: 0, Bid: 100.00, Ask: 100.01, Volume: 1})
	assert.Empty(t, broker.orders)
}

func TestSpreadRespectsPositionBand(t *testing.T) {
	long := &stubBroker{position: 5.0}
	s := strategy.NewSpread(zap.NewNop(), 0, 0, 0)
	s.SetBroker(long)
	s.OnQuote(types.QuoteTick{Timestamp: 0, Bid: 100.00, Ask: 100.05, Volume: 1})
	require.Len(t, long.orders, 1)
	assert.Equal(t, types.OrderSideSell, long.orders[0].Side)

	short := &stubBroker{position: -5.0}
	s2 := strategy.NewSpread(zap.NewNop(), 0, 0, 0)
	s2.SetBroker(short)
	s2.OnQuote(types.QuoteTick{Timestamp: 0, Bid: 100.00, Ask: 100.05, Volume: 1})
	require.Len(t, short.orders, 1)
	assert.Equal(t, types.OrderSideBuy, short.orders[0].Side)
}
