// Package sqlite provides a SQLite-backed implementation of the
// domain.MealLogStore interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mealsnap/backend/internal/domain"
)

// Ensure Store implements domain.MealLogStore
var _ domain.MealLogStore = (*Store)(nil)

// Store implements domain.MealLogStore using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*Store, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert persists a new meal log, assigning its ID and CreatedAt.
func (s *Store) Insert(ctx context.Context, log *domain.MealLog) error {
	if log.UserID == "" {
		return domain.ErrNoValidIdentity
	}

	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	foodItems, err := json.Marshal(log.FoodItems)
	if err != nil {
		return fmt.Errorf("failed to encode food items: %w", err)
	}
	summary, err := json.Marshal(log.NutritionSummary)
	if err != nil {
		return fmt.Errorf("failed to encode nutrition summary: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO meal_logs (id, user_id, created_at, food_items, nutrition_summary, mock_data) VALUES (?, ?, ?, ?, ?, ?)",
		log.ID, log.UserID, log.CreatedAt.UnixMilli(), string(foodItems), string(summary), log.IsMockData,
	)
	if err != nil {
		return fmt.Errorf("failed to insert meal log: %w", err)
	}

	return nil
}

// ListByUser retrieves meal logs for a user, newest first.
// A limit of 0 means no limit.
func (s *Store) ListByUser(ctx context.Context, userID string, limit int) ([]domain.MealLog, error) {
	query := "SELECT id, user_id, created_at, food_items, nutrition_summary, mock_data FROM meal_logs WHERE user_id = ? ORDER BY created_at DESC"
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query meal logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.MealLog
	for rows.Next() {
		log, err := scanMealLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meal logs: %w", err)
	}

	return logs, nil
}

// FirstLogTime returns the creation time of the user's earliest meal log.
func (s *Store) FirstLogTime(ctx context.Context, userID string) (time.Time, error) {
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT created_at FROM meal_logs WHERE user_id = ? ORDER BY created_at ASC LIMIT 1",
		userID,
	).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, domain.ErrMealLogNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get first meal log: %w", err)
	}

	return time.UnixMilli(createdAt).UTC(), nil
}

func scanMealLog(rows *sql.Rows) (domain.MealLog, error) {
	var (
		log       domain.MealLog
		createdAt int64
		foodItems string
		summary   string
	)
	if err := rows.Scan(&log.ID, &log.UserID, &createdAt, &foodItems, &summary, &log.IsMockData); err != nil {
		return domain.MealLog{}, fmt.Errorf("failed to scan meal log: %w", err)
	}

	log.CreatedAt = time.UnixMilli(createdAt).UTC()
	if err := json.Unmarshal([]byte(foodItems), &log.FoodItems); err != nil {
		return domain.MealLog{}, fmt.Errorf("failed to decode food items: %w", err)
	}
	if err := json.Unmarshal([]byte(summary), &log.NutritionSummary); err != nil {
		return domain.MealLog{}, fmt.Errorf("failed to decode nutrition summary: %w", err)
	}

	return log, nil
}
