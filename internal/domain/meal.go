package domain

import "time"

// NutritionSummary is the enriched item list plus its aggregate totals.
type NutritionSummary struct {
	Items  []FoodWithNutrition `json:"items"`
	Totals Nutrition           `json:"totals"`
}

// MealLog is a persisted record of one confirmed, enriched meal.
// ID and CreatedAt are assigned by the store; a MealLog is never
// mutated after insert.
type MealLog struct {
	ID               string           `json:"id"`
	UserID           string           `json:"userId"`
	CreatedAt        time.Time        `json:"createdAt"`
	FoodItems        []FoodItem       `json:"foodItems"`
	NutritionSummary NutritionSummary `json:"nutritionSummary"`
	IsMockData       bool             `json:"isMockData"`
}

// AnonymousIDPrefix marks identifiers generated for unauthenticated users.
// The prefixed form is canonical: it is what gets stored locally, returned
// to callers, written into meal log rows, and used in history queries.
const AnonymousIDPrefix = "anon_"
