package domain

import "math"

// Nutrition holds the four macronutrient estimates for a single food item.
// Values are per detected portion, calories in kcal and macros in grams.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// FoodItem represents a single detected or user-entered food.
// Nutrition is nil until the item has been enriched; items without
// nutrition never enter a persisted summary or totals.
type FoodItem struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Nutrition   *Nutrition `json:"nutrition,omitempty"`
	HealthySwap string     `json:"healthy_swap,omitempty"`
	Rating      int        `json:"rating,omitempty"`
}

// HasNutrition reports whether the item carries a complete nutrition estimate.
func (f FoodItem) HasNutrition() bool {
	return f.Nutrition != nil
}

// FoodWithNutrition is a FoodItem whose nutrition is mandatory.
type FoodWithNutrition struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Nutrition   Nutrition `json:"nutrition"`
	HealthySwap string    `json:"healthy_swap,omitempty"`
	Rating      int       `json:"rating,omitempty"`
}

// AsFoodItem converts back to the optional-nutrition representation.
func (f FoodWithNutrition) AsFoodItem() FoodItem {
	n := f.Nutrition
	return FoodItem{
		ID:          f.ID,
		Name:        f.Name,
		Nutrition:   &n,
		HealthySwap: f.HealthySwap,
		Rating:      f.Rating,
	}
}

// CalculateTotals sums each nutrition field across items, rounded to one
// decimal place.
func CalculateTotals(items []FoodWithNutrition) Nutrition {
	var t Nutrition
	for _, item := range items {
		t.Calories += item.Nutrition.Calories
		t.Protein += item.Nutrition.Protein
		t.Carbs += item.Nutrition.Carbs
		t.Fat += item.Nutrition.Fat
	}
	t.Calories = round1(t.Calories)
	t.Protein = round1(t.Protein)
	t.Carbs = round1(t.Carbs)
	t.Fat = round1(t.Fat)
	return t
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
