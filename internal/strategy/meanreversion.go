package strategy

import (
	"github.com/quantfabric/backtest/pkg/types"
	"go.uber.org/zap"
)

// MeanReversion buys one share on a 0.5% drop from the previous price and
// takes profit on a 0.5% rise from the entry price, using market orders.
type MeanReversion struct {
	Base
	logger     *zap.Logger
	lastPrice  float64
	entryPrice float64
	inPosition bool
	seen       bool
}

// NewMeanReversion creates a mean-reversion strategy.
func NewMeanReversion(logger *zap.Logger) *MeanReversion {
	return &MeanReversion{logger: logger}
}

// OnTick implements the tick capability.
func (s *MeanReversion) OnTick(tick types.Tick) {
	if !s.seen {
		s.lastPrice = tick.Price
		s.seen = true
		return
	}

	switch {
	case !s.inPosition && tick.Price < s.lastPrice*0.995:
		s.Broker().Submit(types.Order{
			Side:      types.OrderSideBuy,
			Type:      types.OrderTypeMarket,
			Timestamp: tick.Timestamp,
			Volume:    1.0,
			Price:     tick.Price,
		})
		s.entryPrice = tick.Price
		s.inPosition = true
		s.logger.Debug("mean reversion buy", zap.Float64("price", tick.Price))

	case s.inPosition && tick.Price > s.entryPrice*1.005:
		s.Broker().Submit(types.Order{
			Side:      types.OrderSideSell,
			Type:      types.OrderTypeMarket,
			Timestamp: tick.Timestamp,
			Volume:    1.0,
			Price:     tick.Price,
		})
		s.inPosition = false
		s.logger.Debug("mean reversion sell", zap.Float64("price", tick.Price))
	}

	s.lastPrice = tick.Price
}
