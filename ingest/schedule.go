package ingest

import (
	"time"

	"github.com/Fasterbrick/FetchOHLCMT5/market"
)

// GraceDelay is added past each period boundary so the terminal has
// finalized and published the just-closed bar before it is queried.
const GraceDelay = 5 * time.Second

// NextFetchDelay returns how long to wait from now until the next fetch
// instant: the next period boundary (local midnight for daily, the next
// whole minute otherwise) plus GraceDelay. If that instant is not in the
// future the target advances one full period, so the result is never
// negative and the loop cannot busy-spin inside the grace window.
func NextFetchDelay(now time.Time, g market.Granularity) time.Duration {
	var boundary time.Time
	switch g {
	case market.Daily:
		y, m, d := now.Date()
		boundary = time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	default:
		boundary = now.Truncate(time.Minute).Add(time.Minute)
	}

	target := boundary.Add(GraceDelay)
	if !target.After(now) {
		target = boundary.Add(g.Period()).Add(GraceDelay)
	}
	return target.Sub(now)
}
