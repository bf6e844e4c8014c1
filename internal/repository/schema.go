package repository

// Schema lists the idempotent DDL for the persistent store. Timestamps are
// stored as unix nanoseconds so one write transaction yields exactly one
// generation marker per series batch.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS cached_index_data (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		index_id        TEXT NOT NULL,
		symbol          TEXT NOT NULL,
		date            INTEGER NOT NULL,
		open            REAL,
		high            REAL,
		low             REAL,
		close           REAL,
		volume          INTEGER,
		change_percent  REAL,
		period          TEXT NOT NULL,
		interval        TEXT NOT NULL,
		fetched_at      INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_series_key ON cached_index_data(index_id, period, interval, fetched_at)`,
	`CREATE INDEX IF NOT EXISTS idx_series_date ON cached_index_data(index_id, date)`,

	`CREATE TABLE IF NOT EXISTS index_quote_cache (
		index_id            TEXT PRIMARY KEY,
		symbol              TEXT NOT NULL,
		price               REAL,
		previous_close      REAL,
		change              REAL,
		change_percent      REAL,
		volume              INTEGER,
		day_high            REAL,
		day_low             REAL,
		fifty_two_week_high REAL,
		fifty_two_week_low  REAL,
		updated_at          INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS sentiment_history (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		index_id       TEXT NOT NULL,
		query          TEXT NOT NULL,
		label          TEXT,
		score          REAL,
		total_articles INTEGER,
		positive_count INTEGER,
		negative_count INTEGER,
		neutral_count  INTEGER,
		articles       TEXT,
		analyzed_at    INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sentiment_index_date ON sentiment_history(index_id, analyzed_at)`,

	`CREATE TABLE IF NOT EXISTS prediction_logs (
		id                       INTEGER PRIMARY KEY AUTOINCREMENT,
		index_id                 TEXT NOT NULL,
		prediction_date          INTEGER NOT NULL,
		target_date              INTEGER NOT NULL,
		horizon_days             INTEGER,
		current_price            REAL,
		predicted_price          REAL,
		predicted_direction      TEXT,
		predicted_change_percent REAL,
		confidence               REAL,
		technical_factors        TEXT,
		sentiment_factors        TEXT,
		combined_signal          REAL,
		actual_price             REAL,
		actual_direction         TEXT,
		actual_change_percent    REAL,
		was_correct              INTEGER,
		accuracy_score           REAL,
		evaluated_at             INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_prediction_index_target ON prediction_logs(index_id, target_date)`,
	`CREATE INDEX IF NOT EXISTS idx_prediction_pending ON prediction_logs(actual_price)`,
}
