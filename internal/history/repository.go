package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"diet-wizard/internal/diet"
)

// Entry is a stored diet.
type Entry struct {
	ID        int64
	UserID    string
	SessionID string
	Plan      diet.Plan
	CreatedAt time.Time
}

// Repository is a database-backed repository for generated diets.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save inserts a generated diet for a user. A session is stored once; later
// saves for the same session are ignored.
func (r *Repository) Save(ctx context.Context, userID, sessionID string, plan *diet.Plan) error {
	planData, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal diet to JSON: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO diets (user_id, session_id, name, objective, plan_data, created_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO NOTHING`,
		userID, sessionID, plan.Name, plan.Objective, string(planData), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save diet for user %s: %w", userID, err)
	}
	return nil
}

// ListRecent retrieves the N most recent diets for a given user, newest first.
func (r *Repository) ListRecent(ctx context.Context, userID string, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, session_id, plan_data, created_at FROM diets WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent diets for user %s: %w", userID, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			planData string
			created  int64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.SessionID, &planData, &created); err != nil {
			return nil, fmt.Errorf("failed to scan diet row: %w", err)
		}
		if err := json.Unmarshal([]byte(planData), &e.Plan); err != nil {
			return nil, fmt.Errorf("failed to unmarshal diet %d: %w", e.ID, err)
		}
		e.CreatedAt = time.Unix(created, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
