package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mealsnap/backend/internal/domain"
)

// AnalyzerConfig holds the key sources available to the analyzer.
// Key priority for image analysis: caller-supplied > brokered > env.
type AnalyzerConfig struct {
	APIKey      string
	BrokeredKey string
}

// AnalyzerService orchestrates food detection through the external
// analysis endpoint.
type AnalyzerService struct {
	client domain.AnalysisClient
	cfg    AnalyzerConfig
}

// NewAnalyzerService creates a new analyzer service with dependencies.
func NewAnalyzerService(client domain.AnalysisClient, cfg AnalyzerConfig) *AnalyzerService {
	return &AnalyzerService{client: client, cfg: cfg}
}

// AnalyzeText detects food items in free-form meal text. The key chain
// is the same as for images, minus the caller-supplied slot (text
// requests carry no explicit key). Transport and format failures
// propagate as typed errors; an empty result means "no items detected"
// and must be handled by the caller, not treated as an error.
func (s *AnalyzerService) AnalyzeText(ctx context.Context, text string, pro bool) ([]domain.FoodItem, error) {
	return s.client.AnalyzeText(ctx, text, s.resolveKey(""), pro)
}

// AnalyzeImage detects food items in a meal photo. On any failure (no
// key available, transport error, unparsable payload) it returns the
// fixed sample set with mock=true instead of an error, so the UI can
// warn the user rather than dead-end.
func (s *AnalyzerService) AnalyzeImage(ctx context.Context, image io.Reader, contentType, explicitKey string, pro bool) (items []domain.FoodItem, mock bool, err error) {
	key := s.resolveKey(explicitKey)
	if key == "" {
		slog.Warn("no analysis API key available, falling back to sample data")
		return SampleFoodItems(), true, nil
	}

	dataURL, err := encodeImage(image, contentType)
	if err != nil {
		slog.Warn("failed to encode image, falling back to sample data", "error", err)
		return SampleFoodItems(), true, nil
	}

	items, err = s.client.AnalyzeImage(ctx, dataURL, key, pro)
	if err != nil {
		slog.Warn("image analysis failed, falling back to sample data", "error", err)
		return SampleFoodItems(), true, nil
	}

	return items, false, nil
}

func (s *AnalyzerService) resolveKey(explicitKey string) string {
	switch {
	case explicitKey != "":
		return explicitKey
	case s.cfg.BrokeredKey != "":
		return s.cfg.BrokeredKey
	default:
		return s.cfg.APIKey
	}
}

// encodeImage converts image bytes to a base64 data URL.
func encodeImage(image io.Reader, contentType string) (string, error) {
	raw, err := io.ReadAll(image)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("image is empty")
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(raw)), nil
}

// SampleFoodItems returns the fixed fallback set used when a real
// image analysis cannot be completed.
func SampleFoodItems() []domain.FoodItem {
	return []domain.FoodItem{
		{
			ID:          "food-" + uuid.NewString(),
			Name:        "Avocado",
			Nutrition:   &domain.Nutrition{Calories: 160, Protein: 2, Carbs: 9, Fat: 15},
			HealthySwap: "Use as a spread instead of butter",
			Rating:      9,
		},
		{
			ID:          "food-" + uuid.NewString(),
			Name:        "Tofu",
			Nutrition:   &domain.Nutrition{Calories: 76, Protein: 8, Carbs: 2, Fat: 5},
			HealthySwap: "Great protein source",
			Rating:      8,
		},
	}
}
