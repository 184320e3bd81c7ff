// Package ingest drives the scheduled idempotent collection loop: backfill
// once, then wake just after every period boundary, fetch a small trailing
// window, and persist the completed candle.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Fasterbrick/FetchOHLCMT5/config"
	"github.com/Fasterbrick/FetchOHLCMT5/logger"
	"github.com/Fasterbrick/FetchOHLCMT5/market"
	"github.com/Fasterbrick/FetchOHLCMT5/store"
)

// Source fetches the most recent bars for the instance's symbol and
// timeframe, oldest-first. It may return fewer bars than requested.
type Source interface {
	FetchRecent(ctx context.Context, count int) ([]market.Rate, error)
}

// Loop is one collector instance. It owns neither the source connection nor
// the store; the caller establishes and releases both.
type Loop struct {
	cfg    config.Config
	source Source
	store  *store.CandleStore
	log    logger.Logger

	now func() time.Time
}

func New(cfg config.Config, src Source, st *store.CandleStore, log logger.Logger) *Loop {
	return &Loop{
		cfg:    cfg,
		source: src,
		store:  st,
		log:    log,
		now:    time.Now,
	}
}

// Run initializes the schema, backfills once, then collects one completed
// candle per period until ctx is cancelled. Backfill and per-tick errors
// are logged and absorbed; a schema failure or an unexpected store failure
// during the steady loop ends the run with an error.
func (l *Loop) Run(ctx context.Context) error {
	log := l.log.With(
		"run_id", ulid.Make().String(),
		"symbol", l.cfg.Symbol,
		"granularity", string(l.cfg.Granularity),
	)

	if err := l.store.Init(l.cfg.RecreateTable); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	log.Infof("table %s ready", l.cfg.Table)

	l.backfill(ctx, log)

	log.Infof("starting continuous collection")
	for {
		delay := NextFetchDelay(l.now(), l.cfg.Granularity)
		log.Infof("waiting %s until next fetch", delay.Round(time.Second))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if err := l.tick(ctx, log); err != nil {
			return err
		}
	}
}

// backfill performs the one-time bulk ingest. Nothing here is fatal: the
// steady loop recovers on its next natural tick.
func (l *Loop) backfill(ctx context.Context, log logger.Logger) {
	log.Infof("fetching initial history (%d candles)", l.cfg.InitialCandles)

	// One extra bar covers the current, in-progress period.
	rates, err := l.source.FetchRecent(ctx, l.cfg.InitialCandles+1)
	if err != nil {
		log.Errorf("initial fetch failed, continuing with live collection: %s", err)
		return
	}

	completed := CompletedBackfill(market.Transform(rates, l.cfg.ServerOffset()))
	if len(completed) == 0 {
		log.Warnf("no historical data returned, continuing with live collection")
		return
	}

	inserted, err := l.store.Upsert(completed)
	if err != nil {
		log.Errorf("backfill persist failed after %d rows, continuing with live collection: %s", inserted, err)
		return
	}
	log.Infof("backfill complete: %d candles stored, %d duplicates skipped", inserted, len(completed)-inserted)
}

// tick runs one steady-state cycle. Fetch problems and short windows skip
// the cycle; only a store failure propagates.
func (l *Loop) tick(ctx context.Context, log logger.Logger) error {
	rates, err := l.source.FetchRecent(ctx, 2)
	if err != nil {
		log.Warnf("fetch failed, skipping this cycle: %s", err)
		return nil
	}

	completed := CompletedTick(market.Transform(rates, l.cfg.ServerOffset()))
	if len(completed) == 0 {
		log.Warnf("fewer than 2 bars returned, no completed candle this cycle")
		return nil
	}

	inserted, err := l.store.Upsert(completed)
	if err != nil {
		return fmt.Errorf("persist candle: %w", err)
	}

	c := completed[0]
	if inserted > 0 {
		log.Infof("stored completed candle %s o=%.2f h=%.2f l=%.2f c=%.2f type=%s range=%.2f",
			c.Key(), c.Open, c.High, c.Low, c.Close, c.Type, c.Range)
	} else {
		log.Infof("candle %s already stored, duplicate skipped", c.Key())
	}
	return nil
}
