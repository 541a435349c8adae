package domain

import (
	"context"
	"time"
)

// AnalysisClient defines the interface for the external AI analysis endpoint.
type AnalysisClient interface {
	// AnalyzeText sends free-form meal text using the given API key and
	// returns the detected items. An empty slice means "no items
	// detected" and is not an error.
	AnalyzeText(ctx context.Context, text, apiKey string, pro bool) ([]FoodItem, error)

	// AnalyzeImage sends a base64 data-URL encoded photo using the given
	// API key and returns the detected items.
	AnalyzeImage(ctx context.Context, imageDataURL, apiKey string, pro bool) ([]FoodItem, error)
}

// MealLogStore defines the interface for meal log persistence.
type MealLogStore interface {
	// Insert persists a new meal log. The log's ID and CreatedAt fields
	// will be populated by the store.
	Insert(ctx context.Context, log *MealLog) error

	// ListByUser retrieves meal logs for a user, newest first.
	// A limit of 0 means no limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]MealLog, error)

	// FirstLogTime returns the creation time of the user's earliest meal
	// log, or ErrMealLogNotFound if the user has none.
	FirstLogTime(ctx context.Context, userID string) (time.Time, error)

	// Close releases any resources held by the store.
	Close() error
}

// KeyValueStore defines the interface for small durable local storage,
// the server-side stand-in for browser localStorage.
type KeyValueStore interface {
	// Get returns the value for key, or ok=false if the key is absent.
	Get(key string) (value string, ok bool, err error)

	// Set durably stores value under key.
	Set(key, value string) error
}
