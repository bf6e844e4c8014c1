package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"IndexPulse/internal/domain/models"
	applogger "IndexPulse/pkg/logger"
	pkgsqlite "IndexPulse/pkg/sqlite"
)

// SQLitePredictionStore implements PredictionStore over prediction_logs.
// A NULL actual_price marks a Pending row; the evaluation UPDATE is
// conditioned on it, which makes the transition idempotent.
type SQLitePredictionStore struct {
	db  *sql.DB
	l   *applogger.Logger
	now func() time.Time
}

func NewSQLitePredictionStore(client *pkgsqlite.Client) *SQLitePredictionStore {
	return &SQLitePredictionStore{db: client.DB(), now: time.Now}
}

// SetLogger injects a structured logger.
func (s *SQLitePredictionStore) SetLogger(l *applogger.Logger) { s.l = l }

// SetClock overrides the evaluation clock.
func (s *SQLitePredictionStore) SetClock(now func() time.Time) { s.now = now }

func (s *SQLitePredictionStore) Log(ctx context.Context, entries []models.PredictionEntry) error {
	if len(entries) == 0 {
		return nil
	}
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin prediction tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO prediction_logs
            (index_id, prediction_date, target_date, horizon_days,
             current_price, predicted_price, predicted_direction, predicted_change_percent,
             confidence, technical_factors, sentiment_factors, combined_signal)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		return fmt.Errorf("prepare prediction insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		techJSON, err := json.Marshal(e.Technical)
		if err != nil {
			return fmt.Errorf("encode technical factors: %w", err)
		}
		sentJSON, err := json.Marshal(e.Sentiment)
		if err != nil {
			return fmt.Errorf("encode sentiment factors: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			e.IndexID, e.PredictionDate.UnixNano(), e.TargetDate.UnixNano(), e.HorizonDays,
			e.CurrentPrice, e.PredictedPrice, string(e.PredictedDirection), e.PredictedChangePct,
			e.Confidence, string(techJSON), string(sentJSON), e.CombinedSignal,
		); err != nil {
			return fmt.Errorf("insert prediction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit prediction tx: %w", err)
	}
	if s.l != nil {
		s.l.Info("sqlite log_predictions ok",
			applogger.String("index_id", entries[0].IndexID),
			applogger.Int("rows", len(entries)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

const predictionColumns = `
    id, index_id, prediction_date, target_date, horizon_days,
    current_price, predicted_price, predicted_direction, predicted_change_percent,
    confidence, technical_factors, sentiment_factors, combined_signal,
    actual_price, actual_direction, actual_change_percent,
    was_correct, accuracy_score, evaluated_at
`

func (s *SQLitePredictionStore) PendingDue(ctx context.Context, indexID string, asOf time.Time) ([]models.PredictionEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+predictionColumns+`
        FROM prediction_logs
        WHERE index_id = ? AND actual_price IS NULL AND target_date <= ?
        ORDER BY target_date ASC
    `, indexID, asOf.UnixNano())
	if err != nil {
		if s.l != nil {
			s.l.Error("sqlite pending_due query error",
				applogger.String("index_id", indexID),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("pending due: %w", err)
	}
	defer rows.Close()
	return scanPredictions(rows)
}

func (s *SQLitePredictionStore) MarkEvaluated(ctx context.Context, id int64, outcome models.PredictionOutcome) (bool, error) {
	evaluatedAt := outcome.EvaluatedAt
	if evaluatedAt.IsZero() {
		evaluatedAt = s.now()
	}
	// Unscored outcomes keep their verdict columns NULL so they never
	// count toward accuracy aggregates.
	var direction, changePct, wasCorrect, score interface{}
	if outcome.Scored {
		direction = string(outcome.ActualDirection)
		changePct = outcome.ActualChangePct
		wasCorrect = boolToInt(outcome.WasCorrect)
		score = outcome.AccuracyScore
	}
	res, err := s.db.ExecContext(ctx, `
        UPDATE prediction_logs
        SET actual_price = ?,
            actual_direction = ?,
            actual_change_percent = ?,
            was_correct = ?,
            accuracy_score = ?,
            evaluated_at = ?
        WHERE id = ? AND actual_price IS NULL
    `,
		outcome.ActualPrice, direction, changePct,
		wasCorrect, score, evaluatedAt.UnixNano(),
		id,
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("sqlite mark_evaluated error",
				applogger.Int64("id", id),
				applogger.Error(err),
			)
		}
		return false, fmt.Errorf("mark evaluated: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark evaluated rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *SQLitePredictionStore) History(ctx context.Context, indexID string, since time.Time, limit int) ([]models.PredictionEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+predictionColumns+`
        FROM prediction_logs
        WHERE index_id = ? AND prediction_date >= ?
        ORDER BY prediction_date DESC, id DESC
        LIMIT ?
    `, indexID, since.UnixNano(), limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("sqlite prediction_history query error",
				applogger.String("index_id", indexID),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("prediction history: %w", err)
	}
	defer rows.Close()
	return scanPredictions(rows)
}

func (s *SQLitePredictionStore) AccuracyStats(ctx context.Context, indexID string) (*models.AccuracyStats, bool, error) {
	var (
		total        int
		correct      sql.NullInt64
		avgScore     sql.NullFloat64
		lastEvalNano sql.NullInt64
	)
	// Only scored rows count toward the aggregate; rows evaluated without
	// a verdict (NULL was_correct) are left out entirely.
	err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(*), SUM(was_correct), AVG(accuracy_score), MAX(evaluated_at)
        FROM prediction_logs
        WHERE index_id = ? AND was_correct IS NOT NULL
    `, indexID).Scan(&total, &correct, &avgScore, &lastEvalNano)
	if err != nil {
		if s.l != nil {
			s.l.Error("sqlite accuracy_stats error",
				applogger.String("index_id", indexID),
				applogger.Error(err),
			)
		}
		return nil, false, fmt.Errorf("accuracy stats: %w", err)
	}
	if total == 0 {
		return nil, false, nil
	}
	stats := &models.AccuracyStats{
		Total:   total,
		Correct: int(correct.Int64),
	}
	stats.DirectionAccuracyPct = float64(stats.Correct) / float64(total) * 100
	if avgScore.Valid {
		stats.PriceAccuracyPct = avgScore.Float64 * 100
	}
	if lastEvalNano.Valid {
		stats.LastEvaluated = time.Unix(0, lastEvalNano.Int64).UTC()
	}
	return stats, true, nil
}

func scanPredictions(rows *sql.Rows) ([]models.PredictionEntry, error) {
	out := make([]models.PredictionEntry, 0, 16)
	for rows.Next() {
		var (
			e             models.PredictionEntry
			predNanos     int64
			targetNanos   int64
			techJSON      string
			sentJSON      string
			direction     string
			actualPrice   sql.NullFloat64
			actualDir     sql.NullString
			actualChange  sql.NullFloat64
			wasCorrect    sql.NullInt64
			accuracyScore sql.NullFloat64
			evalNanos     sql.NullInt64
		)
		if err := rows.Scan(
			&e.ID, &e.IndexID, &predNanos, &targetNanos, &e.HorizonDays,
			&e.CurrentPrice, &e.PredictedPrice, &direction, &e.PredictedChangePct,
			&e.Confidence, &techJSON, &sentJSON, &e.CombinedSignal,
			&actualPrice, &actualDir, &actualChange,
			&wasCorrect, &accuracyScore, &evalNanos,
		); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		e.PredictionDate = time.Unix(0, predNanos).UTC()
		e.TargetDate = time.Unix(0, targetNanos).UTC()
		e.PredictedDirection = models.Direction(direction)
		if err := json.Unmarshal([]byte(techJSON), &e.Technical); err != nil {
			return nil, fmt.Errorf("decode technical factors: %w", err)
		}
		if err := json.Unmarshal([]byte(sentJSON), &e.Sentiment); err != nil {
			return nil, fmt.Errorf("decode sentiment factors: %w", err)
		}
		if actualPrice.Valid {
			e.Status = models.PredictionEvaluated
			e.Outcome = &models.PredictionOutcome{
				ActualPrice: actualPrice.Float64,
			}
			if wasCorrect.Valid {
				e.Outcome.Scored = true
				e.Outcome.ActualDirection = models.Direction(actualDir.String)
				e.Outcome.ActualChangePct = actualChange.Float64
				e.Outcome.WasCorrect = wasCorrect.Int64 != 0
				e.Outcome.AccuracyScore = accuracyScore.Float64
			}
			if evalNanos.Valid {
				e.Outcome.EvaluatedAt = time.Unix(0, evalNanos.Int64).UTC()
			}
		} else {
			e.Status = models.PredictionPending
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
