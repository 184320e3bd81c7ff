package market

import "time"

// TimeKey is the canonical layout for a candle's primary key column.
const TimeKey = "2006-01-02 15:04:05"

// Granularity is the bucket duration of a candle series.
type Granularity string

const (
	Daily  Granularity = "daily"
	Minute Granularity = "minute"
)

// Period returns the bucket duration.
func (g Granularity) Period() time.Duration {
	if g == Daily {
		return 24 * time.Hour
	}
	return time.Minute
}

// Rate is one raw period as returned by the terminal: period start in epoch
// seconds plus OHLC prices and volume counters.
type Rate struct {
	Time       int64   `json:"time"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	TickVolume int64   `json:"tick_volume"`
	Spread     int64   `json:"spread"`
	RealVolume int64   `json:"real_volume"`
}

// Classification labels a candle by the sign of close minus open.
type Classification string

const (
	Bullish Classification = "bullish"
	Bearish Classification = "bearish"
	Neutral Classification = "neutral"
)

// Classify returns the candle classification for an open/close pair.
func Classify(open, close float64) Classification {
	switch {
	case close > open:
		return Bullish
	case close < open:
		return Bearish
	default:
		return Neutral
	}
}

// Candle represents one storable OHLC row. Time is the period start, already
// shifted from server time to local display time.
type Candle struct {
	Time       time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	TickVolume int64
	Spread     int64
	RealVolume int64
	Type       Classification
	Range      float64
}

// Key returns the primary-key string for the candle.
func (c Candle) Key() string {
	return c.Time.Format(TimeKey)
}

// Transform converts raw rates into candles, preserving order. serverOffset
// is subtracted from each provider timestamp to align server time with local
// display time. Type and Range are always recomputed from the OHLC values.
func Transform(rates []Rate, serverOffset time.Duration) []Candle {
	if len(rates) == 0 {
		return nil
	}
	candles := make([]Candle, len(rates))
	for i, r := range rates {
		candles[i] = Candle{
			Time:       time.Unix(r.Time, 0).UTC().Add(-serverOffset),
			Open:       r.Open,
			High:       r.High,
			Low:        r.Low,
			Close:      r.Close,
			TickVolume: r.TickVolume,
			Spread:     r.Spread,
			RealVolume: r.RealVolume,
			Type:       Classify(r.Open, r.Close),
			Range:      r.High - r.Low,
		}
	}
	return candles
}
