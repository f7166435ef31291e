// Package stats accumulates a portfolio-value series during a run and
// computes named performance metrics afterward.
package stats

// epsilon guards divisions against zero denominators throughout the
// metric math.
const epsilon = 1e-8

// MetricFunc computes one metric from the PnL series and the returns
// series. Metric functions are pure: they capture no run state, which
// keeps each one independently testable.
type MetricFunc func(pnl, returns []float64) float64

// Collector tracks the PnL series (one sample per consumed event) and the
// derived returns series (one element shorter), and holds the registered
// metric functions. Owned exclusively by one execution context.
type Collector struct {
	initialPnL float64
	pnlSeries  []float64
	returns    []float64
	metrics    map[string]MetricFunc
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		metrics: make(map[string]MetricFunc),
	}
}

// RecordPnL appends a portfolio value to the PnL series. The first
// recorded value becomes the run's initial value; every later call also
// appends (value - previous) / (|previous| + eps) to the returns series.
func (c *Collector) RecordPnL(value float64) {
	if len(c.pnlSeries) == 0 {
		c.initialPnL = value
	} else {
		prev := c.pnlSeries[len(c.pnlSeries)-1]
		c.returns = append(c.returns, (value-prev)/(abs(prev)+epsilon))
	}
	c.pnlSeries = append(c.pnlSeries, value)
}

// AddStat registers a named metric function. Registration is lazy: the
// function runs only when Compute is called, so metrics can be registered
// before any data exists. An already-registered name is not overwritten.
func (c *Collector) AddStat(name string, fn MetricFunc) {
	if _, ok := c.metrics[name]; ok {
		return
	}
	c.metrics[name] = fn
}

// Compute evaluates every registered metric. With fewer than 2 PnL
// samples there is nothing meaningful to compute and the result is empty.
func (c *Collector) Compute() map[string]float64 {
	results := make(map[string]float64)
	if len(c.pnlSeries) < 2 {
		return results
	}
	for name, fn := range c.metrics {
		results[name] = fn(c.pnlSeries, c.returns)
	}
	return results
}

// InitialPnL returns the first recorded portfolio value.
func (c *Collector) InitialPnL() float64 {
	return c.initialPnL
}

// PnLSeries returns the accumulated PnL series. The slice is owned by the
// collector; callers must treat it as read-only.
func (c *Collector) PnLSeries() []float64 {
	return c.pnlSeries
}

// ReturnsSeries returns the accumulated returns series, one element
// shorter than the PnL series. Read-only for callers.
func (c *Collector) ReturnsSeries() []float64 {
	return c.returns
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
