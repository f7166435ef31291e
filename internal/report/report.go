// Package report renders backtest results as a console table.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/quantfabric/backtest/internal/engine"
	"github.com/quantfabric/backtest/internal/stats"
)

// Printer renders results to a writer.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Print renders one summary row per result, sorted by strategy name.
// Failed contexts show their error in place of metrics.
func (p *Printer) Print(results []engine.Result) {
	sorted := make([]engine.Result, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	table := tablewriter.NewWriter(p.out)
	table.Header("Strategy", "Timeframe", "Initial", "Final", "Total Ret", "Max DD", "Sharpe", "Sortino", "Status")

	for _, res := range sorted {
		if res.Err != nil {
			table.Append(res.Name, string(res.Timeframe),
				res.InitialCapital.StringFixed(2),
				"-", "-", "-", "-", "-",
				fmt.Sprintf("FAILED: %v", res.Err))
			continue
		}

		table.Append(
			res.Name,
			string(res.Timeframe),
			res.InitialCapital.StringFixed(2),
			res.FinalEquity.StringFixed(2),
			fmt.Sprintf("%.4f%%", res.Metrics[stats.MetricTotalReturn]*100),
			fmt.Sprintf("%.4f%%", res.Metrics[stats.MetricMaxDrawdown]*100),
			fmt.Sprintf("%.4f", res.Metrics[stats.MetricSharpe]),
			fmt.Sprintf("%.4f", res.Metrics[stats.MetricSortino]),
			"ok",
		)
	}

	table.Render()
}
