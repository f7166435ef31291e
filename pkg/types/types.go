// Package types provides shared type definitions for the backtester.
package types

// OrderSide represents buy or sell
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderType represents the type of order
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// Timeframe represents the per-step time increment of a generated path
type Timeframe string

const (
	Timeframe1m Timeframe = "1m"
	Timeframe5m Timeframe = "5m"
	Timeframe1h Timeframe = "1h"
	Timeframe1d Timeframe = "1d"
)

// StepsPerDay returns how many steps of this timeframe fit in one 6.5-hour
// trading day. Used for the generator time step and for metric annualization.
func (tf Timeframe) StepsPerDay() float64 {
	switch tf {
	case Timeframe1m:
		return 390.0
	case Timeframe5m:
		return 78.0
	case Timeframe1h:
		return 6.5
	case Timeframe1d:
		return 1.0
	default:
		return 1.0
	}
}

// TradingDaysPerYear is the standard trading-day count used for
// annualization and for the generator's time step.
const TradingDaysPerYear = 252.0

// Dt returns the per-step time increment in years for this timeframe.
func (tf Timeframe) Dt() float64 {
	return 1.0 / (TradingDaysPerYear * tf.StepsPerDay())
}

// PeriodsPerYear returns the number of steps of this timeframe in a year.
func (tf Timeframe) PeriodsPerYear() float64 {
	return tf.StepsPerDay() * TradingDaysPerYear
}

// Tick represents one executed trade. Immutable once generated; the
// timestamp is the step index of the path it belongs to.
type Tick struct {
	Timestamp uint64  `json:"timestamp"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
}

// QuoteTick represents the best bid/ask at one step of a quote path.
// Bid < Ask always holds for generated quotes.
type QuoteTick struct {
	Timestamp uint64  `json:"timestamp"`
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	Volume    float64 `json:"volume"`
}

// Mid returns the quote mid-price.
func (q QuoteTick) Mid() float64 {
	return (q.Bid + q.Ask) / 2.0
}

// Bar represents an OHLCV aggregation of the ticks inside one time window.
// StartTimestamp is inclusive, EndTimestamp exclusive.
type Bar struct {
	StartTimestamp uint64  `json:"startTimestamp"`
	EndTimestamp   uint64  `json:"endTimestamp"`
	Open           float64 `json:"open"`
	High           float64 `json:"high"`
	Low            float64 `json:"low"`
	Close          float64 `json:"close"`
	Volume         float64 `json:"volume"`
}

// Order is a request to trade Volume at Price. For market orders Price is
// taken as the fill price; for limit orders it is the crossing threshold.
// Orders are ephemeral: executed orders are not retained.
type Order struct {
	Side      OrderSide `json:"side"`
	Type      OrderType `json:"type"`
	Timestamp uint64    `json:"timestamp"`
	Volume    float64   `json:"volume"`
	Price     float64   `json:"price"`
}
