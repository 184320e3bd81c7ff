package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fasterbrick/FetchOHLCMT5/config"
	"github.com/Fasterbrick/FetchOHLCMT5/logger"
	"github.com/Fasterbrick/FetchOHLCMT5/market"
	"github.com/Fasterbrick/FetchOHLCMT5/store"
)

// fakeSource replays canned responses and records requested counts.
type fakeSource struct {
	rates  []market.Rate
	err    error
	counts []int
}

func (f *fakeSource) FetchRecent(_ context.Context, count int) ([]market.Rate, error) {
	f.counts = append(f.counts, count)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.rates) > count {
		return f.rates[len(f.rates)-count:], nil
	}
	return f.rates, nil
}

func rateSeries(n int) []market.Rate {
	const dayStart = 1577836800 // 2020-01-01 00:00:00 UTC
	rates := make([]market.Rate, n)
	for i := range rates {
		open := 40000 + float64(i)
		rates[i] = market.Rate{
			Time:  dayStart + int64(i)*86400,
			Open:  open,
			High:  open + 50,
			Low:   open - 50,
			Close: open + 10,
		}
	}
	return rates
}

func newTestLoop(t *testing.T, src Source) (*Loop, *store.CandleStore) {
	t.Helper()

	cfg := config.Daily()
	cfg.DBPath = filepath.Join(t.TempDir(), "candles.db")

	st, err := store.Open(cfg.DBPath, cfg.Table)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Init(true))

	return New(cfg, src, st, logger.Nop()), st
}

func TestBackfillPersistsAllCompletedCandles(t *testing.T) {
	src := &fakeSource{rates: rateSeries(5001)}
	l, st := newTestLoop(t, src)

	l.backfill(context.Background(), l.log)

	// One extra bar requested to cover the in-progress period.
	require.Equal(t, []int{5001}, src.counts)

	count, err := st.Count()
	require.NoError(t, err)
	assert.Equal(t, 5000, count)

	// Identical re-run is fully suppressed by the time primary key.
	l.backfill(context.Background(), l.log)
	count, err = st.Count()
	require.NoError(t, err)
	assert.Equal(t, 5000, count)
}

func TestBackfillFetchErrorIsNonFatal(t *testing.T) {
	src := &fakeSource{err: errors.New("terminal gone")}
	l, st := newTestLoop(t, src)

	l.backfill(context.Background(), l.log)

	count, err := st.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBackfillEmptyResultIsNonFatal(t *testing.T) {
	src := &fakeSource{}
	l, st := newTestLoop(t, src)

	l.backfill(context.Background(), l.log)

	count, err := st.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTickPersistsOnlyTheCompletedBar(t *testing.T) {
	rates := rateSeries(2)
	src := &fakeSource{rates: rates}
	l, st := newTestLoop(t, src)

	require.NoError(t, l.tick(context.Background(), l.log))
	require.Equal(t, []int{2}, src.counts)

	count, err := st.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The same window next cycle is a duplicate, not an error.
	require.NoError(t, l.tick(context.Background(), l.log))
	count, err = st.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTickShortWindowSkipsPersistence(t *testing.T) {
	src := &fakeSource{rates: rateSeries(1)}
	l, st := newTestLoop(t, src)

	require.NoError(t, l.tick(context.Background(), l.log))

	count, err := st.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTickFetchErrorSkipsCycle(t *testing.T) {
	src := &fakeSource{err: errors.New("connection degraded")}
	l, st := newTestLoop(t, src)

	require.NoError(t, l.tick(context.Background(), l.log))

	count, err := st.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRunBackfillsThenStopsOnCancellation(t *testing.T) {
	src := &fakeSource{rates: rateSeries(11)}
	l, st := newTestLoop(t, src)
	l.cfg.InitialCandles = 10

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	count, err := st.Count()
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}
