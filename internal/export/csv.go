// Package export writes backtest results to CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/quantfabric/backtest/internal/engine"
	"go.uber.org/zap"
)

// Writer exports per-strategy results under a base directory, one pair of
// files per context: <name>_pnl.csv and <name>_metrics.csv.
type Writer struct {
	logger *zap.Logger
	dir    string
}

// NewWriter creates a Writer rooted at dir. The directory is created on
// first use.
func NewWriter(logger *zap.Logger, dir string) *Writer {
	return &Writer{logger: logger, dir: dir}
}

// WriteResult exports one result. A failed context is skipped, not an
// error: there is nothing to export.
func (w *Writer) WriteResult(res engine.Result) error {
	if res.Err != nil {
		w.logger.Debug("skipping export of failed context", zap.String("name", res.Name))
		return nil
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("export: create directory %s: %w", w.dir, err)
	}

	if err := w.writePnL(res); err != nil {
		return err
	}
	return w.writeMetrics(res)
}

func (w *Writer) writePnL(res engine.Result) error {
	path := filepath.Join(w.dir, res.Name+"_pnl.csv")

	rows := make([][]string, 0, len(res.PnLSeries)+1)
	rows = append(rows, []string{"index", "pnl"})
	for i, v := range res.PnLSeries {
		rows = append(rows, []string{
			strconv.Itoa(i),
			strconv.FormatFloat(v, 'f', -1, 64),
		})
	}

	return w.writeFile(path, rows)
}

func (w *Writer) writeMetrics(res engine.Result) error {
	path := filepath.Join(w.dir, res.Name+"_metrics.csv")

	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names)+1)
	rows = append(rows, []string{"metric", "value"})
	for _, name := range names {
		rows = append(rows, []string{
			name,
			strconv.FormatFloat(res.Metrics[name], 'f', -1, 64),
		})
	}

	return w.writeFile(path, rows)
}

func (w *Writer) writeFile(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}

	w.logger.Debug("csv written", zap.String("path", path), zap.Int("rows", len(rows)-1))
	return nil
}
