package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Run-configuration bounds. Values outside these ranges are configuration
// errors: the run never begins.
const (
	MinNumTicks       = 10
	MaxNumTicks       = 100000
	MaxInitialCapital = 100000000
)

// RunConfig represents the configuration for one backtest run.
type RunConfig struct {
	NumTicks       int             `json:"numTicks" mapstructure:"num_ticks"`
	InitialCapital decimal.Decimal `json:"initialCapital" mapstructure:"initial_capital"`
	Timeframe      Timeframe       `json:"timeframe" mapstructure:"timeframe"`

	// Seed for the path generators. 0 keeps the default behavior of
	// seeding from system entropy, making runs non-reproducible.
	Seed int64 `json:"seed" mapstructure:"seed"`
}

// DefaultRunConfig returns sensible defaults.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		NumTicks:       1000,
		InitialCapital: decimal.NewFromInt(10000),
		Timeframe:      Timeframe1m,
		Seed:           0,
	}
}

// Validate checks the configuration against the supported ranges.
func (c *RunConfig) Validate() error {
	if c.NumTicks < MinNumTicks || c.NumTicks > MaxNumTicks {
		return fmt.Errorf("num_ticks must be between %d and %d, got %d",
			MinNumTicks, MaxNumTicks, c.NumTicks)
	}
	if !c.InitialCapital.IsPositive() ||
		c.InitialCapital.GreaterThan(decimal.NewFromInt(MaxInitialCapital)) {
		return fmt.Errorf("initial_capital must be between 0 and %d, got %s",
			MaxInitialCapital, c.InitialCapital)
	}
	switch c.Timeframe {
	case Timeframe1m, Timeframe5m, Timeframe1h, Timeframe1d:
	default:
		return fmt.Errorf("unknown timeframe %q", c.Timeframe)
	}
	return nil
}
