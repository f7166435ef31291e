package stats

import (
	"math"

	"github.com/quantfabric/backtest/pkg/types"
)

// Names of the standard metric set.
const (
	MetricMeanReturn           = "MeanReturn"
	MetricTotalReturn          = "TotalReturn"
	MetricMaxDrawdown          = "MaxDrawdown"
	MetricAnnualizedVolatility = "AnnualizedVolatility"
	MetricSharpe               = "Sharpe"
	MetricSortino              = "Sortino"
)

// RegisterStandard registers the standard metric set on a collector,
// annualized for the given timeframe.
func RegisterStandard(c *Collector, tf types.Timeframe, riskFreeRate float64) {
	periods := tf.PeriodsPerYear()

	c.AddStat(MetricMeanReturn, MeanReturn)
	c.AddStat(MetricTotalReturn, TotalReturn)
	c.AddStat(MetricMaxDrawdown, MaxDrawdown)
	c.AddStat(MetricAnnualizedVolatility, func(pnl, returns []float64) float64 {
		return AnnualizedVolatility(returns, periods)
	})
	c.AddStat(MetricSharpe, func(pnl, returns []float64) float64 {
		return Sharpe(returns, riskFreeRate, periods)
	})
	c.AddStat(MetricSortino, func(pnl, returns []float64) float64 {
		return Sortino(returns, riskFreeRate, periods)
	})
}

// MeanReturn is the arithmetic mean of the returns series, 0 if empty.
func MeanReturn(_, returns []float64) float64 {
	return mean(returns)
}

// TotalReturn is last(pnl)/first(pnl) - 1, or 0 when the first sample is
// too close to zero to divide by.
func TotalReturn(pnl, _ []float64) float64 {
	if len(pnl) == 0 || math.Abs(pnl[0]) <= epsilon {
		return 0
	}
	return pnl[len(pnl)-1]/pnl[0] - 1
}

// MaxDrawdown is the minimum of (value - runningPeak)/runningPeak over the
// PnL series. The result is always <= 0; a monotonically non-decreasing
// series yields exactly 0.
func MaxDrawdown(pnl, _ []float64) float64 {
	if len(pnl) == 0 {
		return 0
	}

	peak := pnl[0]
	maxDD := 0.0
	for _, v := range pnl {
		if v > peak {
			peak = v
		}
		if peak > epsilon {
			if dd := (v - peak) / peak; dd < maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// AnnualizedVolatility is the population standard deviation of the
// returns, scaled by sqrt(periodsPerYear). 0 below 2 samples.
func AnnualizedVolatility(returns []float64, periodsPerYear float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	return math.Sqrt(variance(returns)) * math.Sqrt(periodsPerYear)
}

// Sharpe is (mean - riskFreeRate) / sqrt(variance + eps), annualized by
// sqrt(periodsPerYear). 0 below 2 samples.
func Sharpe(returns []float64, riskFreeRate, periodsPerYear float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	m := mean(returns)
	return (m - riskFreeRate) / math.Sqrt(variance(returns)+epsilon) * math.Sqrt(periodsPerYear)
}

// Sortino is like Sharpe but the denominator uses only the mean of squared
// negative returns. 0 below 2 samples or when no return is negative.
func Sortino(returns []float64, riskFreeRate, periodsPerYear float64) float64 {
	downsideVar := 0.0
	downsideCount := 0
	for _, r := range returns {
		if r < 0 {
			downsideVar += r * r
			downsideCount++
		}
	}
	if len(returns) < 2 || downsideCount == 0 {
		return 0
	}
	downsideVar /= float64(downsideCount)

	m := mean(returns)
	return (m - riskFreeRate) / math.Sqrt(downsideVar+epsilon) * math.Sqrt(periodsPerYear)
}

// mean is the arithmetic mean, 0 for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// variance is the population variance (divide by n, not n-1).
func variance(values []float64) float64 {
	m := mean(values)
	v := 0.0
	for _, val := range values {
		diff := val - m
		v += diff * diff
	}
	return v / float64(len(values))
}
