package report_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/quantfabric/backtest/internal/engine"
	"github.com/quantfabric/backtest/internal/report"
	"github.com/quantfabric/backtest/internal/stats"
	"github.com/quantfabric/backtest/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPrintRendersResultsSortedByName(t *testing.T) {
	var buf bytes.Buffer
	p := report.NewPrinter(&buf)

	results := []engine.Result{
		{
			Name:           "zeta",
			Timeframe:      types.Timeframe1m,
			InitialCapital: decimal.NewFromInt(10000),
			FinalEquity:    decimal.NewFromInt(10500),
			Metrics: map[string]float64{
				stats.MetricTotalReturn: 0.05,
				stats.MetricMaxDrawdown: -0.02,
				stats.MetricSharpe:      1.1,
				stats.MetricSortino:     1.4,
			},
		},
		{
			Name:           "alpha",
			Timeframe:      types.Timeframe1d,
			InitialCapital: decimal.NewFromInt(10000),
			Err:            errors.New("no quote data"),
		},
	}
	p.Print(results)

	out := buf.String()
	assert.Contains(t, out, "zeta")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "FAILED: no quote data")
	assert.Contains(t, out, "5.0000%")
	assert.Less(t, strings.Index(out, "alpha"), strings.Index(out, "zeta"))
}
