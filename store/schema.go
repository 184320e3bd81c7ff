package store

// Candle table schema. The period start is the primary key; "range" is
// quoted because it is a keyword in newer SQLite versions.
const createTableTmpl = `
CREATE TABLE IF NOT EXISTS %s (
	time TEXT PRIMARY KEY,
	open REAL,
	high REAL,
	low REAL,
	close REAL,
	tick_volume INTEGER,
	spread INTEGER,
	real_volume INTEGER,
	candle_type TEXT,
	"range" REAL
)`

const dropTableTmpl = `DROP TABLE IF EXISTS %s`

const insertTmpl = `
INSERT OR IGNORE INTO %s
(time, open, high, low, close, tick_volume, spread, real_volume, candle_type, "range")
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
