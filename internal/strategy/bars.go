package strategy

import (
	"github.com/quantfabric/backtest/pkg/types"
)

// BarAggregator buckets ticks into fixed-width time windows and emits a
// completed OHLCV bar whenever a tick crosses into a new window.
//
// The "no bar yet" and "bar in progress" states are explicit: current is
// only meaningful while started is true.
type BarAggregator struct {
	windowSize    uint64
	currentWindow uint64
	current       types.Bar
	started       bool
}

// NewBarAggregator creates an aggregator with the given window width, in
// the same time unit as tick timestamps. There is no default width:
// callers must choose one.
func NewBarAggregator(windowSize uint64) *BarAggregator {
	return &BarAggregator{windowSize: windowSize}
}

// Update folds a tick into the aggregation. When the tick belongs to a new
// window, the previous window's completed bar is returned with ok=true and
// a fresh bar is started; otherwise the in-progress bar absorbs the tick.
func (a *BarAggregator) Update(tick types.Tick) (bar types.Bar, ok bool) {
	tickWindow := tick.Timestamp / a.windowSize * a.windowSize

	if !a.started || tickWindow != a.currentWindow {
		completed, hadBar := a.current, a.started

		a.current = types.Bar{
			StartTimestamp: tickWindow,
			EndTimestamp:   tickWindow + a.windowSize,
			Open:           tick.Price,
			High:           tick.Price,
			Low:            tick.Price,
			Close:          tick.Price,
			Volume:         tick.Volume,
		}
		a.currentWindow = tickWindow
		a.started = true

		return completed, hadBar
	}

	if tick.Price > a.current.High {
		a.current.High = tick.Price
	}
	if tick.Price < a.current.Low {
		a.current.Low = tick.Price
	}
	a.current.Close = tick.Price
	a.current.Volume += tick.Volume

	return types.Bar{}, false
}

// Flush returns the in-progress bar, if any, without completing it.
func (a *BarAggregator) Flush() (types.Bar, bool) {
	return a.current, a.started
}

// BarDriver adapts a BarHandler into the tick capability: it aggregates
// the tick stream and forwards completed bars. The wrapped strategy's
// lifecycle hooks are passed through.
type BarDriver struct {
	inner      BarHandler
	aggregator *BarAggregator
}

// NewBarDriver wraps a bar strategy with a tick-to-bar aggregator of the
// given window width.
func NewBarDriver(inner BarHandler, windowSize uint64) *BarDriver {
	return &BarDriver{
		inner:      inner,
		aggregator: NewBarAggregator(windowSize),
	}
}

// SetBroker forwards the broker to the wrapped strategy.
func (d *BarDriver) SetBroker(b Broker) { d.inner.SetBroker(b) }

// OnStart forwards to the wrapped strategy.
func (d *BarDriver) OnStart() { d.inner.OnStart() }

// OnEnd forwards to the wrapped strategy.
func (d *BarDriver) OnEnd() { d.inner.OnEnd() }

// OnTick folds the tick into the current bar and delivers the completed
// bar, if this tick closed one.
func (d *BarDriver) OnTick(tick types.Tick) {
	if bar, ok := d.aggregator.Update(tick); ok {
		d.inner.OnBar(bar)
	}
}

// Flush exposes the in-progress bar of the underlying aggregator.
func (d *BarDriver) Flush() (types.Bar, bool) {
	return d.aggregator.Flush()
}
