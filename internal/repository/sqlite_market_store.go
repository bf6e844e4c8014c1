package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"IndexPulse/internal/domain/models"
	domrepo "IndexPulse/internal/domain/repository"
	applogger "IndexPulse/pkg/logger"
	pkgsqlite "IndexPulse/pkg/sqlite"
)

// SQLiteMarketStore implements MarketStore over the cached_index_data,
// index_quote_cache and sentiment_history tables.
type SQLiteMarketStore struct {
	db  *sql.DB
	l   *applogger.Logger
	now func() time.Time
}

func NewSQLiteMarketStore(client *pkgsqlite.Client) *SQLiteMarketStore {
	return &SQLiteMarketStore{db: client.DB(), now: time.Now}
}

// SetLogger injects a structured logger.
func (s *SQLiteMarketStore) SetLogger(l *applogger.Logger) { s.l = l }

// SetClock overrides the freshness clock.
func (s *SQLiteMarketStore) SetClock(now func() time.Time) { s.now = now }

func (s *SQLiteMarketStore) ReadSeries(ctx context.Context, indexID, period, interval string) ([]models.TimeSeriesPoint, bool, error) {
	start := time.Now()

	var fetchedNanos int64
	err := s.db.QueryRowContext(ctx, `
        SELECT fetched_at FROM cached_index_data
        WHERE index_id = ? AND period = ? AND interval = ?
        ORDER BY fetched_at DESC
        LIMIT 1
    `, indexID, period, interval).Scan(&fetchedNanos)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		if s.l != nil {
			s.l.Error("sqlite read_series generation query error",
				applogger.String("index_id", indexID),
				applogger.String("period", period),
				applogger.String("interval", interval),
				applogger.Error(err),
			)
		}
		return nil, false, fmt.Errorf("read series generation: %w", err)
	}

	fetchedAt := time.Unix(0, fetchedNanos)
	if !domrepo.IsFresh(s.now(), fetchedAt, domrepo.SeriesClass(interval)) {
		return nil, false, nil
	}

	// Pin the generation so a concurrent write cannot mix batches into
	// this read.
	rows, err := s.db.QueryContext(ctx, `
        SELECT date, open, high, low, close, volume, change_percent
        FROM cached_index_data
        WHERE index_id = ? AND period = ? AND interval = ? AND fetched_at = ?
        ORDER BY date ASC
    `, indexID, period, interval, fetchedNanos)
	if err != nil {
		if s.l != nil {
			s.l.Error("sqlite read_series query error",
				applogger.String("index_id", indexID),
				applogger.String("period", period),
				applogger.String("interval", interval),
				applogger.Error(err),
			)
		}
		return nil, false, fmt.Errorf("read series: %w", err)
	}
	defer rows.Close()

	out := make([]models.TimeSeriesPoint, 0, 64)
	for rows.Next() {
		var p models.TimeSeriesPoint
		var dateNanos int64
		if err := rows.Scan(&dateNanos, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume, &p.ChangePercent); err != nil {
			return nil, false, fmt.Errorf("scan series point: %w", err)
		}
		p.Date = time.Unix(0, dateNanos).UTC()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("rows: %w", err)
	}
	if len(out) == 0 {
		// The pinned generation was pruned by a concurrent write between
		// the freshness query and the row query. Treat it as a miss.
		return nil, false, nil
	}
	if s.l != nil {
		s.l.Debug("sqlite read_series hit",
			applogger.String("index_id", indexID),
			applogger.String("period", period),
			applogger.String("interval", interval),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, true, nil
}

func (s *SQLiteMarketStore) WriteSeries(ctx context.Context, indexID, symbol, period, interval string, points []models.TimeSeriesPoint) error {
	if len(points) == 0 {
		return fmt.Errorf("write series %s/%s/%s: empty batch", indexID, period, interval)
	}
	start := time.Now()
	fetchedAt := s.now().UnixNano()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin series tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO cached_index_data
            (index_id, symbol, date, open, high, low, close, volume, change_percent, period, interval, fetched_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		return fmt.Errorf("prepare series insert: %w", err)
	}
	defer stmt.Close()

	// Every row of the batch shares one fetched_at; the timestamp is the
	// generation identity.
	for _, p := range points {
		if _, err := stmt.ExecContext(ctx,
			indexID, symbol, p.Date.UnixNano(),
			p.Open, p.High, p.Low, p.Close, p.Volume, p.ChangePercent,
			period, interval, fetchedAt,
		); err != nil {
			return fmt.Errorf("insert series point: %w", err)
		}
	}

	// FIFO prune: keep only the newest generations for this key.
	if _, err := tx.ExecContext(ctx, `
        DELETE FROM cached_index_data
        WHERE index_id = ? AND period = ? AND interval = ?
          AND fetched_at NOT IN (
            SELECT DISTINCT fetched_at FROM cached_index_data
            WHERE index_id = ? AND period = ? AND interval = ?
            ORDER BY fetched_at DESC
            LIMIT ?
          )
    `, indexID, period, interval, indexID, period, interval, domrepo.MaxSeriesGenerations); err != nil {
		return fmt.Errorf("prune series generations: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit series tx: %w", err)
	}
	if s.l != nil {
		s.l.Info("sqlite write_series ok",
			applogger.String("index_id", indexID),
			applogger.String("period", period),
			applogger.String("interval", interval),
			applogger.Int("rows", len(points)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *SQLiteMarketStore) ReadQuote(ctx context.Context, indexID string) (*models.Quote, bool, error) {
	var q models.Quote
	var updatedNanos int64
	err := s.db.QueryRowContext(ctx, `
        SELECT index_id, symbol, price, previous_close, change, change_percent,
               volume, day_high, day_low, fifty_two_week_high, fifty_two_week_low, updated_at
        FROM index_quote_cache
        WHERE index_id = ?
    `, indexID).Scan(
		&q.IndexID, &q.Symbol, &q.Price, &q.PreviousClose, &q.Change, &q.ChangePercent,
		&q.Volume, &q.DayHigh, &q.DayLow, &q.FiftyTwoWeekHigh, &q.FiftyTwoWeekLow, &updatedNanos,
	)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		if s.l != nil {
			s.l.Error("sqlite read_quote error",
				applogger.String("index_id", indexID),
				applogger.Error(err),
			)
		}
		return nil, false, fmt.Errorf("read quote: %w", err)
	}
	q.UpdatedAt = time.Unix(0, updatedNanos).UTC()
	if !domrepo.IsFresh(s.now(), q.UpdatedAt, domrepo.ResourceQuote) {
		return nil, false, nil
	}
	return &q, true, nil
}

func (s *SQLiteMarketStore) WriteQuote(ctx context.Context, q *models.Quote) error {
	start := time.Now()
	updatedAt := q.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO index_quote_cache
            (index_id, symbol, price, previous_close, change, change_percent,
             volume, day_high, day_low, fifty_two_week_high, fifty_two_week_low, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(index_id) DO UPDATE SET
            symbol = excluded.symbol,
            price = excluded.price,
            previous_close = excluded.previous_close,
            change = excluded.change,
            change_percent = excluded.change_percent,
            volume = excluded.volume,
            day_high = excluded.day_high,
            day_low = excluded.day_low,
            fifty_two_week_high = excluded.fifty_two_week_high,
            fifty_two_week_low = excluded.fifty_two_week_low,
            updated_at = excluded.updated_at
    `,
		q.IndexID, q.Symbol, q.Price, q.PreviousClose, q.Change, q.ChangePercent,
		q.Volume, q.DayHigh, q.DayLow, q.FiftyTwoWeekHigh, q.FiftyTwoWeekLow, updatedAt.UnixNano(),
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("sqlite write_quote error",
				applogger.String("index_id", q.IndexID),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("write quote: %w", err)
	}
	if s.l != nil {
		s.l.Debug("sqlite write_quote ok",
			applogger.String("index_id", q.IndexID),
			applogger.Float64("price", q.Price),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *SQLiteMarketStore) ReadSentiment(ctx context.Context, indexID string) (*models.SentimentSnapshot, bool, error) {
	var snap models.SentimentSnapshot
	var analyzedNanos int64
	var articlesJSON string
	err := s.db.QueryRowContext(ctx, `
        SELECT index_id, query, label, score, total_articles,
               positive_count, negative_count, neutral_count, articles, analyzed_at
        FROM sentiment_history
        WHERE index_id = ?
        ORDER BY analyzed_at DESC
        LIMIT 1
    `, indexID).Scan(
		&snap.IndexID, &snap.Query, &snap.Label, &snap.Score, new(int),
		&snap.PositiveCount, &snap.NegativeCount, &snap.NeutralCount, &articlesJSON, &analyzedNanos,
	)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		if s.l != nil {
			s.l.Error("sqlite read_sentiment error",
				applogger.String("index_id", indexID),
				applogger.Error(err),
			)
		}
		return nil, false, fmt.Errorf("read sentiment: %w", err)
	}
	snap.AnalyzedAt = time.Unix(0, analyzedNanos).UTC()
	if !domrepo.IsFresh(s.now(), snap.AnalyzedAt, domrepo.ResourceSentiment) {
		return nil, false, nil
	}
	if articlesJSON != "" {
		if err := json.Unmarshal([]byte(articlesJSON), &snap.Articles); err != nil {
			return nil, false, fmt.Errorf("decode sentiment articles: %w", err)
		}
	}
	return &snap, true, nil
}

func (s *SQLiteMarketStore) WriteSentiment(ctx context.Context, snap *models.SentimentSnapshot) error {
	start := time.Now()
	analyzedAt := snap.AnalyzedAt
	if analyzedAt.IsZero() {
		analyzedAt = s.now()
	}
	articlesJSON, err := json.Marshal(snap.Articles)
	if err != nil {
		return fmt.Errorf("encode sentiment articles: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO sentiment_history
            (index_id, query, label, score, total_articles,
             positive_count, negative_count, neutral_count, articles, analyzed_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `,
		snap.IndexID, snap.Query, string(snap.Label), snap.Score, len(snap.Articles),
		snap.PositiveCount, snap.NegativeCount, snap.NeutralCount, string(articlesJSON), analyzedAt.UnixNano(),
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("sqlite write_sentiment error",
				applogger.String("index_id", snap.IndexID),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("write sentiment: %w", err)
	}
	if s.l != nil {
		s.l.Debug("sqlite write_sentiment ok",
			applogger.String("index_id", snap.IndexID),
			applogger.String("label", string(snap.Label)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *SQLiteMarketStore) SentimentTrend(ctx context.Context, indexID string, since time.Time) ([]models.SentimentTrendPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT analyzed_at, label, score, total_articles
        FROM sentiment_history
        WHERE index_id = ? AND analyzed_at >= ?
        ORDER BY analyzed_at ASC
    `, indexID, since.UnixNano())
	if err != nil {
		if s.l != nil {
			s.l.Error("sqlite sentiment_trend error",
				applogger.String("index_id", indexID),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("sentiment trend: %w", err)
	}
	defer rows.Close()

	out := make([]models.SentimentTrendPoint, 0, 32)
	for rows.Next() {
		var p models.SentimentTrendPoint
		var analyzedNanos int64
		if err := rows.Scan(&analyzedNanos, &p.Label, &p.Score, &p.ArticleCount); err != nil {
			return nil, fmt.Errorf("scan trend point: %w", err)
		}
		p.Date = time.Unix(0, analyzedNanos).UTC()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
