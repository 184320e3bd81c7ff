package ingest

import "github.com/Fasterbrick/FetchOHLCMT5/market"

// Completion is positional, not timestamp-based: the terminal returns bars
// oldest-first, and only the newest bar can still be accumulating. Deciding
// by position avoids trusting the server clock against local wall-clock.

// CompletedBackfill drops the newest element of an oldest-first window and
// keeps the rest. Request N+1 bars to backfill N completed candles.
func CompletedBackfill(candles []market.Candle) []market.Candle {
	if len(candles) == 0 {
		return nil
	}
	return candles[:len(candles)-1]
}

// CompletedTick expects the two most recent bars oldest-first and returns
// only the completed one. Fewer than two bars means no completed data is
// available this cycle.
func CompletedTick(candles []market.Candle) []market.Candle {
	if len(candles) < 2 {
		return nil
	}
	return candles[:1]
}
