// Package strategy defines the strategy plug-in contract and the built-in
// strategy implementations.
package strategy

import (
	"github.com/quantfabric/backtest/pkg/types"
)

// Broker is the order-submission surface a strategy sees. It is
// implemented by the per-context ledger; strategies hold it for the
// duration of one run and must not share it.
type Broker interface {
	Submit(order types.Order)
	Position() float64
	PnL(referencePrice float64) float64
}

// Strategy is the base lifecycle every strategy implements. OnStart fires
// once before the first event, OnEnd once after the last. A strategy
// additionally implements exactly one per-event capability: TickHandler,
// QuoteHandler, or BarHandler (via NewBarDriver).
type Strategy interface {
	SetBroker(b Broker)
	OnStart()
	OnEnd()
}

// TickHandler is the capability of trade-driven strategies.
type TickHandler interface {
	Strategy
	OnTick(tick types.Tick)
}

// QuoteHandler is the capability of quote-driven strategies.
type QuoteHandler interface {
	Strategy
	OnQuote(quote types.QuoteTick)
}

// BarHandler is the capability of strategies that prefer aggregated
// candles. Bar strategies are driven by trade ticks through a BarDriver,
// which owns the tick-to-bar aggregation.
type BarHandler interface {
	Strategy
	OnBar(bar types.Bar)
}

// Base provides the no-op lifecycle and broker storage; embed it to
// implement only the hooks a strategy cares about.
type Base struct {
	broker Broker
}

// SetBroker stores the broker for order submission.
func (b *Base) SetBroker(br Broker) { b.broker = br }

// Broker returns the bound broker.
func (b *Base) Broker() Broker { return b.broker }

// OnStart is a no-op by default.
func (b *Base) OnStart() {}

// OnEnd is a no-op by default.
func (b *Base) OnEnd() {}
