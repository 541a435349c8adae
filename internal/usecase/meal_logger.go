package usecase

import (
	"context"
	"log/slog"

	"github.com/mealsnap/backend/internal/domain"
)

// SaveStatus classifies the outcome of a meal log save.
type SaveStatus string

const (
	SaveStatusSaved           SaveStatus = "saved"
	SaveStatusNoNutritionData SaveStatus = "no_nutrition_data"
	SaveStatusNoValidIdentity SaveStatus = "no_valid_identity"
	SaveStatusWriteFailed     SaveStatus = "write_failed"
)

// SaveResult reports how a save attempt ended. Failures are data, not
// errors: callers branch on Status for user feedback and nothing is
// thrown past this boundary.
type SaveResult struct {
	Status  SaveStatus
	UserID  string
	LogID   string
	Message string
}

// MealLogger shapes confirmed food items into a meal log and persists it.
type MealLogger struct {
	store    domain.MealLogStore
	identity *IdentityService
}

// NewMealLogger creates a new meal logger with dependencies.
func NewMealLogger(store domain.MealLogStore, identity *IdentityService) *MealLogger {
	return &MealLogger{store: store, identity: identity}
}

// SaveMealLog persists one confirmed meal. foodItems is the confirmed
// list as the user saw it (pre-enrichment snapshot); enriched is the
// same meal after nutrition enrichment, filtered here to items with a
// complete estimate. userID may be empty, in which case the anonymous
// identity is used. isMock flags sample-data provenance.
func (m *MealLogger) SaveMealLog(ctx context.Context, foodItems, enriched []domain.FoodItem, userID string, isMock bool) SaveResult {
	effectiveID := userID
	if effectiveID == "" {
		anonID, err := m.identity.AnonymousID()
		if err != nil {
			slog.Error("failed to resolve anonymous identity", "error", err)
			return SaveResult{Status: SaveStatusNoValidIdentity, Message: err.Error()}
		}
		effectiveID = anonID
	}
	if effectiveID == "" {
		return SaveResult{Status: SaveStatusNoValidIdentity, Message: "no user identity available"}
	}

	valid := make([]domain.FoodWithNutrition, 0, len(enriched))
	for _, item := range enriched {
		if item.HasNutrition() {
			valid = append(valid, domain.FoodWithNutrition{
				ID:          item.ID,
				Name:        item.Name,
				Nutrition:   *item.Nutrition,
				HealthySwap: item.HealthySwap,
				Rating:      item.Rating,
			})
		}
	}
	if len(valid) == 0 {
		slog.Warn("no items with valid nutrition data, skipping save", "user_id", effectiveID)
		return SaveResult{Status: SaveStatusNoNutritionData, UserID: effectiveID}
	}

	log := domain.MealLog{
		UserID:    effectiveID,
		FoodItems: foodItems,
		NutritionSummary: domain.NutritionSummary{
			Items:  valid,
			Totals: domain.CalculateTotals(valid),
		},
		IsMockData: isMock,
	}

	if err := m.store.Insert(ctx, &log); err != nil {
		slog.Error("failed to insert meal log", "user_id", effectiveID, "error", err)
		return SaveResult{Status: SaveStatusWriteFailed, UserID: effectiveID, Message: err.Error()}
	}

	slog.Info("meal log saved", "log_id", log.ID, "user_id", effectiveID, "items", len(valid))
	return SaveResult{Status: SaveStatusSaved, UserID: effectiveID, LogID: log.ID}
}
