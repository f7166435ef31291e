package strategy

import (
	"github.com/quantfabric/backtest/pkg/types"
	"go.uber.org/zap"
)

// Breakout enters long when the price breaks above the high of a rolling
// window of recent prices and exits when it breaks below the window low.
type Breakout struct {
	Base
	logger     *zap.Logger
	windowSize int
	recent     []float64
	entryPrice float64
	inPosition bool
}

// NewBreakout creates a breakout strategy with the given rolling window
// size. Sizes below 1 fall back to 20.
func NewBreakout(logger *zap.Logger, windowSize int) *Breakout {
	if windowSize < 1 {
		windowSize = 20
	}
	return &Breakout{
		logger:     logger,
		windowSize: windowSize,
		recent:     make([]float64, 0, windowSize+1),
	}
}

// OnTick implements the tick capability.
func (s *Breakout) OnTick(tick types.Tick) {
	if len(s.recent) >= s.windowSize {
		high, low := s.recent[0], s.recent[0]
		for _, p := range s.recent[1:] {
			if p > high {
				high = p
			}
			if p < low {
				low = p
			}
		}

		switch {
		case !s.inPosition && tick.Price > high:
			s.Broker().Submit(types.Order{
				Side:      types.OrderSideBuy,
				Type:      types.OrderTypeMarket,
				Timestamp: tick.Timestamp,
				Volume:    1.0,
				Price:     tick.Price,
			})
			s.entryPrice = tick.Price
			s.inPosition = true
			s.logger.Debug("breakout buy", zap.Float64("price", tick.Price), zap.Float64("windowHigh", high))

		case s.inPosition && tick.Price < low:
			s.Broker().Submit(types.Order{
				Side:      types.OrderSideSell,
				Type:      types.OrderTypeMarket,
				Timestamp: tick.Timestamp,
				Volume:    1.0,
				Price:     tick.Price,
			})
			s.inPosition = false
			s.logger.Debug("breakout sell", zap.Float64("price", tick.Price), zap.Float64("windowLow", low))
		}
	}

	s.recent = append(s.recent, tick.Price)
	if len(s.recent) > s.windowSize {
		s.recent = s.recent[1:]
	}
}
