package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mealsnap/backend/internal/domain"
)

func TestAnalyzeText(t *testing.T) {
	ctx := context.Background()

	t.Run("propagates detected items", func(t *testing.T) {
		client := NewMockAnalysisClient()
		client.textResult = []domain.FoodItem{
			{ID: "food-1", Name: "Apple"},
			{ID: "food-2", Name: "Chicken Breast"},
		}
		svc := NewAnalyzerService(client, AnalyzerConfig{})

		items, err := svc.AnalyzeText(ctx, "apple, chicken breast", false)
		if err != nil {
			t.Fatalf("AnalyzeText() error = %v", err)
		}
		if len(items) != 2 {
			t.Errorf("got %d items, want 2", len(items))
		}
	})

	t.Run("propagates failures as errors", func(t *testing.T) {
		client := NewMockAnalysisClient()
		client.textError = domain.ErrAnalysisFailed
		svc := NewAnalyzerService(client, AnalyzerConfig{})

		_, err := svc.AnalyzeText(ctx, "apple", false)
		if !errors.Is(err, domain.ErrAnalysisFailed) {
			t.Errorf("error = %v, want ErrAnalysisFailed", err)
		}
	})

	t.Run("key priority is brokered then env", func(t *testing.T) {
		client := NewMockAnalysisClient()
		svc := NewAnalyzerService(client, AnalyzerConfig{APIKey: "env-key", BrokeredKey: "brokered-key"})

		svc.AnalyzeText(ctx, "apple", false)
		if got := client.LastTextKey(); got != "brokered-key" {
			t.Errorf("key = %q, want brokered-key", got)
		}

		svc = NewAnalyzerService(client, AnalyzerConfig{APIKey: "env-key"})
		svc.AnalyzeText(ctx, "apple", false)
		if got := client.LastTextKey(); got != "env-key" {
			t.Errorf("key = %q, want env-key", got)
		}
	})
}

func TestAnalyzeImage(t *testing.T) {
	ctx := context.Background()
	png := strings.NewReader("\x89PNG fake bytes")

	t.Run("falls back to sample data when no key is available", func(t *testing.T) {
		client := NewMockAnalysisClient()
		svc := NewAnalyzerService(client, AnalyzerConfig{})

		items, mock, err := svc.AnalyzeImage(ctx, png, "image/png", "", false)
		if err != nil {
			t.Fatalf("AnalyzeImage() error = %v", err)
		}
		if !mock {
			t.Error("expected mock flag for keyless fallback")
		}
		if len(items) != 2 {
			t.Fatalf("got %d items, want the 2 sample items", len(items))
		}
		if items[0].Name != "Avocado" || items[1].Name != "Tofu" {
			t.Errorf("sample items = %q, %q; want Avocado, Tofu", items[0].Name, items[1].Name)
		}
		if client.imageCalls != 0 {
			t.Errorf("client was called %d times without a key", client.imageCalls)
		}
	})

	t.Run("falls back to sample data on analysis failure", func(t *testing.T) {
		client := NewMockAnalysisClient()
		client.imageError = domain.ErrAnalysisFailed
		svc := NewAnalyzerService(client, AnalyzerConfig{APIKey: "env-key"})

		items, mock, err := svc.AnalyzeImage(ctx, strings.NewReader("img"), "image/jpeg", "", false)
		if err != nil {
			t.Fatalf("AnalyzeImage() error = %v", err)
		}
		if !mock || len(items) != 2 {
			t.Errorf("got mock=%v items=%d, want fallback sample set", mock, len(items))
		}
	})

	t.Run("returns real results unflagged", func(t *testing.T) {
		client := NewMockAnalysisClient()
		client.imageResult = []domain.FoodItem{{ID: "food-1", Name: "Sushi"}}
		svc := NewAnalyzerService(client, AnalyzerConfig{APIKey: "env-key"})

		items, mock, err := svc.AnalyzeImage(ctx, strings.NewReader("img"), "image/jpeg", "", false)
		if err != nil {
			t.Fatalf("AnalyzeImage() error = %v", err)
		}
		if mock {
			t.Error("real analysis flagged as mock")
		}
		if len(items) != 1 || items[0].Name != "Sushi" {
			t.Errorf("items = %+v", items)
		}
	})

	t.Run("key priority is caller then brokered then env", func(t *testing.T) {
		client := NewMockAnalysisClient()
		client.imageResult = []domain.FoodItem{{ID: "food-1", Name: "Sushi"}}
		svc := NewAnalyzerService(client, AnalyzerConfig{APIKey: "env-key", BrokeredKey: "brokered-key"})

		svc.AnalyzeImage(ctx, strings.NewReader("img"), "image/jpeg", "caller-key", false)
		if got := client.LastKey(); got != "caller-key" {
			t.Errorf("key = %q, want caller-key", got)
		}

		svc.AnalyzeImage(ctx, strings.NewReader("img"), "image/jpeg", "", false)
		if got := client.LastKey(); got != "brokered-key" {
			t.Errorf("key = %q, want brokered-key", got)
		}

		svc = NewAnalyzerService(client, AnalyzerConfig{APIKey: "env-key"})
		svc.AnalyzeImage(ctx, strings.NewReader("img"), "image/jpeg", "", false)
		if got := client.LastKey(); got != "env-key" {
			t.Errorf("key = %q, want env-key", got)
		}
	})

	t.Run("empty image falls back to sample data", func(t *testing.T) {
		client := NewMockAnalysisClient()
		svc := NewAnalyzerService(client, AnalyzerConfig{APIKey: "env-key"})

		items, mock, err := svc.AnalyzeImage(ctx, strings.NewReader(""), "image/png", "", false)
		if err != nil {
			t.Fatalf("AnalyzeImage() error = %v", err)
		}
		if !mock || len(items) != 2 {
			t.Errorf("got mock=%v items=%d, want fallback sample set", mock, len(items))
		}
	})
}

func TestSampleFoodItems(t *testing.T) {
	items := SampleFoodItems()

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	for _, item := range items {
		if item.ID == "" {
			t.Errorf("sample item %q has no ID", item.Name)
		}
		if item.Nutrition == nil {
			t.Errorf("sample item %q has no nutrition", item.Name)
		}
	}
	if items[0].Nutrition.Calories != 160 || items[1].Nutrition.Calories != 76 {
		t.Errorf("sample calories = %v, %v; want 160, 76",
			items[0].Nutrition.Calories, items[1].Nutrition.Calories)
	}
}
