package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Fasterbrick/FetchOHLCMT5/market"
)

// commitEvery bounds transaction size during bulk backfill.
const commitEvery = 100

// CandleStore persists completed candles into one SQLite table, keyed on
// period start time. Upsert is idempotent: re-persisting a candle is a
// no-op, not an error.
type CandleStore struct {
	db    *sql.DB
	table string
}

// Open opens (or creates) the SQLite file and verifies it is reachable.
// The schema is not touched until Init.
func Open(path, table string) (*CandleStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	return &CandleStore{db: db, table: table}, nil
}

// Init creates the candle table, dropping any existing one first when
// recreate is set.
func (s *CandleStore) Init(recreate bool) error {
	if recreate {
		if _, err := s.db.Exec(fmt.Sprintf(dropTableTmpl, s.table)); err != nil {
			return fmt.Errorf("drop table %s: %w", s.table, err)
		}
	}
	if _, err := s.db.Exec(fmt.Sprintf(createTableTmpl, s.table)); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// Upsert inserts candles that are not already present, in order, and
// returns how many rows were newly inserted. Duplicate keys are skipped
// silently; INSERT OR IGNORE makes the suppression atomic, so a concurrent
// external writer cannot turn it into a constraint error. Commits happen
// every commitEvery inserted rows to bound transaction size, with a final
// commit always, even for an empty batch.
func (s *CandleStore) Upsert(candles []market.Candle) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}

	stmt := fmt.Sprintf(insertTmpl, s.table)
	inserted := 0

	for _, c := range candles {
		res, err := tx.Exec(stmt,
			c.Key(), c.Open, c.High, c.Low, c.Close,
			c.TickVolume, c.Spread, c.RealVolume, string(c.Type), c.Range,
		)
		if err != nil {
			// Keep whatever the open transaction already holds.
			if cerr := tx.Commit(); cerr != nil {
				return inserted, fmt.Errorf("insert candle %s: %v (commit: %w)", c.Key(), err, cerr)
			}
			return inserted, fmt.Errorf("insert candle %s: %w", c.Key(), err)
		}

		n, _ := res.RowsAffected()
		if n > 0 {
			inserted++
			if inserted%commitEvery == 0 {
				if err := tx.Commit(); err != nil {
					return inserted, fmt.Errorf("commit batch: %w", err)
				}
				tx, err = s.db.Begin()
				if err != nil {
					return inserted, fmt.Errorf("begin: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("final commit: %w", err)
	}
	return inserted, nil
}

// Count returns the number of stored candles.
func (s *CandleStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", s.table, err)
	}
	return n, nil
}

func (s *CandleStore) Close() error {
	return s.db.Close()
}
