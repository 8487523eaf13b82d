package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"diet-wizard/internal/nutrition"
)

// FetchMetric records metadata for a single resolved diet fetch.
type FetchMetric struct {
	SessionID string
	Status    string
	ErrorKind string
	LatencyMS int64
	Timestamp time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(m FetchMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO fetch_metrics (session_id, status, error_kind, latency_ms, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.SessionID, m.Status, m.ErrorKind, m.LatencyMS, ts.Unix(),
	)
	return err
}

// ObserveFetch records a resolved fetch reported by the nutrition controller.
func (s *Store) ObserveFetch(sessionID string, o nutrition.Outcome, latency time.Duration) {
	if err := s.Record(MapOutcome(sessionID, o, latency)); err != nil {
		log.Printf("Warning: failed to record fetch metric for session %s: %v", sessionID, err)
	}
}

// DailyUsage represents fetch totals for a single day.
type DailyUsage struct {
	Date         string
	Succeeded    int
	Failed       int
	AvgLatencyMS int64
}

// Total is the number of fetches that day.
func (d DailyUsage) Total() int {
	return d.Succeeded + d.Failed
}

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days).Unix()
	rows, err := s.db.QueryContext(context.Background(), `
		SELECT date(created_at, 'unixepoch') AS day,
		       SUM(CASE WHEN status = 'succeeded' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END),
		       CAST(AVG(latency_ms) AS INTEGER)
		FROM fetch_metrics
		WHERE created_at >= ?
		GROUP BY day
		ORDER BY day DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.Succeeded, &u.Failed, &u.AvgLatencyMS); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays).Unix()
	res, err := s.db.ExecContext(context.Background(), `DELETE FROM fetch_metrics WHERE created_at < ?`, threshold)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MapOutcome converts a fetch outcome to a FetchMetric.
func MapOutcome(sessionID string, o nutrition.Outcome, latency time.Duration) FetchMetric {
	return FetchMetric{
		SessionID: sessionID,
		Status:    o.Status.String(),
		ErrorKind: o.ErrorKind(),
		LatencyMS: latency.Milliseconds(),
		Timestamp: time.Now().UTC(),
	}
}
