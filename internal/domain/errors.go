package domain

import "errors"

var (
	// ErrAnalysisFailed is returned when the analysis endpoint cannot be
	// reached or responds with a non-2xx status
	ErrAnalysisFailed = errors.New("food analysis failed")

	// ErrInvalidResponseFormat is returned when the analysis endpoint
	// responded 2xx but its payload contained no parsable item array
	ErrInvalidResponseFormat = errors.New("invalid analysis response format")

	// ErrNoItemsDetected is returned when analysis succeeded but found no food
	ErrNoItemsDetected = errors.New("no food items detected")

	// ErrNutritionUnavailable is returned when no valid nutrition could be
	// established for an item, even after fallback synthesis
	ErrNutritionUnavailable = errors.New("nutrition data unavailable")

	// ErrSaveFailed is returned when a meal log write fails
	ErrSaveFailed = errors.New("failed to save meal log")

	// ErrNoValidIdentity is returned when neither an authenticated nor an
	// anonymous identity could be resolved
	ErrNoValidIdentity = errors.New("no valid user identity")

	// ErrMealLogNotFound is returned when a queried meal log does not exist
	ErrMealLogNotFound = errors.New("meal log not found")

	// ErrInvalidState is returned when a flow action is attempted from a
	// state that does not permit it
	ErrInvalidState = errors.New("action not allowed in current state")
)
