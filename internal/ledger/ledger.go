// Package ledger provides per-strategy order matching and position/cash
// accounting.
package ledger

import (
	"github.com/quantfabric/backtest/internal/metrics"
	"github.com/quantfabric/backtest/pkg/types"
	"go.uber.org/zap"
)

// Ledger accepts orders from exactly one strategy, executes them against
// the event stream, and maintains that strategy's position and cash.
//
// A Ledger is owned exclusively by one execution context and is not safe
// for concurrent use; the orchestrator guarantees single-goroutine access.
//
// Execution never validates available cash or position: both can go
// arbitrarily negative. This is a deliberate simplification of the model,
// not a bug.
type Ledger struct {
	logger   *zap.Logger
	pending  []types.Order
	position float64
	cash     float64
}

// New creates a Ledger with the given starting cash.
func New(logger *zap.Logger, initialCash float64) *Ledger {
	return &Ledger{
		logger: logger,
		cash:   initialCash,
	}
}

// Submit accepts an order. Market orders execute immediately at their
// stated price, with no price check. Limit orders are appended to the
// pending set in submission order and wait for a crossing event.
func (l *Ledger) Submit(order types.Order) {
	if order.Type == types.OrderTypeMarket {
		l.execute(order)
		return
	}
	l.pending = append(l.pending, order)

	l.logger.Debug("limit order queued",
		zap.String("side", string(order.Side)),
		zap.Float64("price", order.Price),
		zap.Float64("volume", order.Volume),
		zap.Uint64("timestamp", order.Timestamp),
	)
}

// HandleTick scans the pending set against a trade tick. A BUY limit
// executes iff the tick price is at or below its limit; a SELL limit iff
// the tick price is at or above. Fills happen at the order's limit price,
// not the tick price. Unmatched orders stay pending.
func (l *Ledger) HandleTick(tick types.Tick) {
	l.match(func(order types.Order) bool {
		if order.Side == types.OrderSideBuy {
			return tick.Price <= order.Price
		}
		return tick.Price >= order.Price
	})
}

// HandleQuote scans the pending set against a quote tick, crossing the
// spread against the standing best bid/ask: a BUY limit executes iff its
// price is at or above the ask, a SELL limit iff its price is at or below
// the bid.
func (l *Ledger) HandleQuote(quote types.QuoteTick) {
	l.match(func(order types.Order) bool {
		if order.Side == types.OrderSideBuy {
			return order.Price >= quote.Ask
		}
		return order.Price <= quote.Bid
	})
}

// match executes every pending order whose crossing condition holds and
// compacts the pending set in place, preserving submission order.
func (l *Ledger) match(crosses func(types.Order) bool) {
	stillPending := l.pending[:0]
	for _, order := range l.pending {
		if crosses(order) {
			l.execute(order)
			continue
		}
		stillPending = append(stillPending, order)
	}
	l.pending = stillPending
}

// execute applies an order to the ledger. BUY increases position and
// decreases cash by volume*price; SELL is the mirror.
func (l *Ledger) execute(order types.Order) {
	if order.Side == types.OrderSideBuy {
		l.position += order.Volume
		l.cash -= order.Volume * order.Price
	} else {
		l.position -= order.Volume
		l.cash += order.Volume * order.Price
	}

	metrics.OrdersExecuted.WithLabelValues(string(order.Side)).Inc()
	l.logger.Debug("order executed",
		zap.String("side", string(order.Side)),
		zap.String("type", string(order.Type)),
		zap.Float64("price", order.Price),
		zap.Float64("volume", order.Volume),
		zap.Float64("position", l.position),
		zap.Float64("cash", l.cash),
	)
}

// PnL returns the portfolio value cash + position*referencePrice.
func (l *Ledger) PnL(referencePrice float64) float64 {
	return l.cash + l.position*referencePrice
}

// Position returns the current signed position.
func (l *Ledger) Position() float64 {
	return l.position
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 {
	return l.cash
}

// PendingCount returns the number of not-yet-executed limit orders.
func (l *Ledger) PendingCount() int {
	return len(l.pending)
}
