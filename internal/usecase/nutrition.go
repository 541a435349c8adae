package usecase

import (
	"math/rand"
	"strings"

	"github.com/mealsnap/backend/internal/domain"
)

// referenceNutrition is the built-in lookup table for common foods,
// matched by case-insensitive substring.
var referenceNutrition = []struct {
	key       string
	nutrition domain.Nutrition
}{
	{"apple", domain.Nutrition{Calories: 52, Protein: 0.3, Carbs: 14, Fat: 0.2}},
	{"chicken breast", domain.Nutrition{Calories: 165, Protein: 31, Carbs: 0, Fat: 3.6}},
	{"mixed vegetables", domain.Nutrition{Calories: 45, Protein: 2.5, Carbs: 9, Fat: 0.3}},
	{"salad", domain.Nutrition{Calories: 20, Protein: 1, Carbs: 3, Fat: 0.5}},
	{"grilled chicken", domain.Nutrition{Calories: 165, Protein: 31, Carbs: 0, Fat: 3.6}},
	{"brown rice", domain.Nutrition{Calories: 112, Protein: 2.3, Carbs: 23, Fat: 0.8}},
}

// NutritionService enriches food items with nutrition estimates.
type NutritionService struct {
	// randFloat returns a value in [0,1); replaceable for deterministic tests.
	randFloat func() float64
}

// NewNutritionService creates a new nutrition service.
func NewNutritionService() *NutritionService {
	return &NutritionService{randFloat: rand.Float64}
}

// GetNutritionInfo attaches nutrition to each item. Items already
// carrying a complete estimate pass through unchanged; the rest get a
// reference-table hit by substring match, or synthesized values within
// plausible ranges. Items for which nothing valid could be established
// are excluded, so the output is never longer than the input.
func (s *NutritionService) GetNutritionInfo(items []domain.FoodItem) []domain.FoodWithNutrition {
	results := make([]domain.FoodWithNutrition, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			continue
		}

		nutrition := item.Nutrition
		if nutrition == nil {
			n := s.lookupOrSynthesize(item.Name)
			nutrition = &n
		}

		results = append(results, domain.FoodWithNutrition{
			ID:          item.ID,
			Name:        item.Name,
			Nutrition:   *nutrition,
			HealthySwap: item.HealthySwap,
			Rating:      item.Rating,
		})
	}
	return results
}

func (s *NutritionService) lookupOrSynthesize(name string) domain.Nutrition {
	lower := strings.ToLower(name)
	for _, ref := range referenceNutrition {
		if strings.Contains(lower, ref.key) {
			return ref.nutrition
		}
	}

	// Unknown food: sample within plausible ranges
	return domain.Nutrition{
		Calories: float64(int(50 + s.randFloat()*300)),
		Protein:  round1(1 + s.randFloat()*15),
		Carbs:    round1(5 + s.randFloat()*30),
		Fat:      round1(1 + s.randFloat()*10),
	}
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
