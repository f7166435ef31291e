package export_test

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/quantfabric/backtest/internal/engine"
	"github.com/quantfabric/backtest/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteResult(t *testing.T) {
	dir := t.TempDir()
	w := export.NewWriter(zap.NewNop(), dir)

	res := engine.Result{
		Name:      "meanrev",
		PnLSeries: []float64{10000, 10100, 9950},
		Metrics: map[string]float64{
			"sharpe":       1.25,
			"total_return": -0.005,
		},
	}
	require.NoError(t, w.WriteResult(res))

	pnl := readCSV(t, filepath.Join(dir, "meanrev_pnl.csv"))
	require.Len(t, pnl, 4)
	assert.Equal(t, []string{"index", "pnl"}, pnl[0])
	assert.Equal(t, []string{"0", "10000"}, pnl[1])
	assert.Equal(t, []string{"2", "9950"}, pnl[3])

	metrics := readCSV(t, filepath.Join(dir, "meanrev_metrics.csv"))
	require.Len(t, metrics, 3)
	assert.Equal(t, []string{"metric", "value"}, metrics[0])
	// Metric rows come out sorted by name.
	assert.Equal(t, "sharpe", metrics[1][0])
	assert.Equal(t, "total_return", metrics[2][0])
	assert.Equal(t, "1.25", metrics[1][1])
}

func TestWriteResultSkipsFailedContext(t *testing.T) {
	dir := t.TempDir()
	w := export.NewWriter(zap.NewNop(), dir)

	res := engine.Result{Name: "broken", Err: errors.New("no data")}
	require.NoError(t, w.WriteResult(res))

	_, err := os.Stat(filepath.Join(dir, "broken_pnl.csv"))
	assert.True(t, os.IsNotExist(err))
}
