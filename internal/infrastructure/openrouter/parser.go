package openrouter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mealsnap/backend/internal/domain"
)

// ExtractItems locates the first well-formed JSON array in content,
// which may be wrapped in explanatory prose, and parses it into typed
// food items. Items with an empty name are dropped; items whose
// nutrition block is incomplete keep the name but lose the nutrition so
// a later enrichment pass can fill it in. Returns
// domain.ErrInvalidResponseFormat when no parsable array exists.
func ExtractItems(content string) ([]domain.FoodItem, error) {
	arr, err := extractJSONArray(content)
	if err != nil {
		return nil, err
	}

	var raw []rawItem
	if err := json.Unmarshal([]byte(arr), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidResponseFormat, err)
	}

	items := make([]domain.FoodItem, 0, len(raw))
	for _, r := range raw {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}

		item := domain.FoodItem{
			ID:          r.ID,
			Name:        name,
			HealthySwap: r.HealthySwap,
			Rating:      r.Rating,
		}
		if item.ID == "" {
			item.ID = "food-" + uuid.NewString()
		}
		if n, ok := r.Nutrition.toNutrition(); ok {
			item.Nutrition = &n
		}

		items = append(items, item)
	}

	return items, nil
}

// extractJSONArray returns the first balanced [...] substring of s that
// opens onto an object literal. The scan is string-aware so brackets
// inside quoted values do not terminate the array early.
func extractJSONArray(s string) (string, error) {
	for start := 0; start < len(s); start++ {
		if s[start] != '[' {
			continue
		}
		// Only arrays of objects (or the empty array, a valid "no
		// items" answer) qualify; skip things like "[1, 2]" or
		// bracketed prose.
		if !opensObjectArray(s[start:]) {
			continue
		}

		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(s); i++ {
			ch := s[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case ch == '\\':
					escaped = true
				case ch == '"':
					inString = false
				}
				continue
			}
			switch ch {
			case '"':
				inString = true
			case '[', '{':
				depth++
			case ']', '}':
				depth--
				if depth == 0 {
					return s[start : i+1], nil
				}
			}
		}
		// Unbalanced from this start; try the next candidate.
	}

	return "", fmt.Errorf("%w: no JSON array found in response", domain.ErrInvalidResponseFormat)
}

// opensObjectArray reports whether s, starting at '[', leads to '{' or
// a closing ']' through nothing but whitespace.
func opensObjectArray(s string) bool {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			continue
		case '{', ']':
			return true
		default:
			return false
		}
	}
	return false
}

// rawItem tolerates the loose shapes the model produces: numeric fields
// may arrive as numbers or numeric strings.
type rawItem struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Nutrition   rawNutrition `json:"nutrition"`
	HealthySwap string       `json:"healthy_swap"`
	Rating      int          `json:"rating"`
}

type rawNutrition struct {
	Calories *flexFloat `json:"calories"`
	Protein  *flexFloat `json:"protein"`
	Carbs    *flexFloat `json:"carbs"`
	Fat      *flexFloat `json:"fat"`
}

// toNutrition validates that all four fields parsed; partial nutrition
// is discarded rather than guessed.
func (r rawNutrition) toNutrition() (domain.Nutrition, bool) {
	if r.Calories == nil || r.Protein == nil || r.Carbs == nil || r.Fat == nil {
		return domain.Nutrition{}, false
	}
	return domain.Nutrition{
		Calories: float64(*r.Calories),
		Protein:  float64(*r.Protein),
		Carbs:    float64(*r.Carbs),
		Fat:      float64(*r.Fat),
	}, true
}

// flexFloat decodes JSON numbers and numeric strings like "52" or
// "450-550 kcal" (leading number wins).
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat(num)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("value is neither number nor string: %s", data)
	}

	num, err := parseLeadingNumber(s)
	if err != nil {
		return err
	}
	*f = flexFloat(num)
	return nil
}

// parseLeadingNumber extracts the leading numeric portion of a string
// such as "450-550 kcal" or "15g".
func parseLeadingNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		ch := s[end]
		if (ch >= '0' && ch <= '9') || ch == '.' || (end == 0 && ch == '-') {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0, fmt.Errorf("no numeric value in %q", s)
	}
	return strconv.ParseFloat(s[:end], 64)
}
