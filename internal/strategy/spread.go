package strategy

import (
	"github.com/quantfabric/backtest/pkg/types"
	"go.uber.org/zap"
)

// Spread quotes both sides of the book: when the observed spread is wide
// enough it places a limit buy below the bid and a limit sell above the
// ask, keeping the net position inside a fixed band.
type Spread struct {
	Base
	logger      *zap.Logger
	orderSize   float64
	minSpread   float64
	offset      float64
	maxPosition float64
}

// NewSpread creates a spread-quoting strategy. Zero-valued parameters take
// the defaults: size 1.0, minSpread 0.01, offset 0.005.
func NewSpread(logger *zap.Logger, orderSize, minSpread, offset float64) *Spread {
	if orderSize == 0 {
		orderSize = 1.0
	}
	if minSpread == 0 {
		minSpread = 0.01
	}
	if offset == 0 {
		offset = 0.005
	}
	return &Spread{
		logger:      logger,
		orderSize:   orderSize,
		minSpread:   minSpread,
		offset:      offset,
		maxPosition: 5.0,
	}
}

// OnQuote implements the quote capability.
func (s *Spread) OnQuote(quote types.QuoteTick) {
	spread := quote.Ask - quote.Bid
	if spread < s.minSpread {
		return
	}

	position := s.Broker().Position()
	bidQuote := quote.Bid - s.offset
	askQuote := quote.Ask + s.offset

	if position < s.maxPosition {
		s.Broker().Submit(types.Order{
			Side:      types.OrderSideBuy,
			Type:      types.OrderTypeLimit,
			Timestamp: quote.Timestamp,
			Volume:    s.orderSize,
			Price:     bidQuote,
		})
		s.logger.Debug("spread limit buy", zap.Float64("price", bidQuote))
	}

	if position > -s.maxPosition {
		s.Broker().Submit(types.Order{
			Side:      types.OrderSideSell,
			Type:      types.OrderTypeLimit,
			Timestamp: quote.Timestamp,
			Volume:    s.orderSize,
			Price:     askQuote,
		})
		s.logger.Debug("spread limit sell", zap.Float64("price", askQuote))
	}
}
