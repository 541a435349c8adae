package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mealsnap/backend/internal/domain"
)

// historyWindow is how long after a user's first meal log their history
// stays open on the free tier.
const historyWindow = 7 * 24 * time.Hour

// HistoryService reads back persisted meal logs for a user.
type HistoryService struct {
	store domain.MealLogStore
	now   func() time.Time
}

// NewHistoryService creates a new history service.
func NewHistoryService(store domain.MealLogStore) *HistoryService {
	return &HistoryService{store: store, now: time.Now}
}

// History returns the user's meal logs, newest first, together with
// whether the history window has closed. A user with no logs gets an
// empty, unlocked history.
func (h *HistoryService) History(ctx context.Context, userID string, limit int) ([]domain.MealLog, bool, error) {
	if userID == "" {
		return nil, false, domain.ErrNoValidIdentity
	}

	locked := false
	first, err := h.store.FirstLogTime(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrMealLogNotFound):
		// No logs yet
	case err != nil:
		return nil, false, fmt.Errorf("failed to check history window: %w", err)
	default:
		locked = h.now().After(first.Add(historyWindow))
	}

	logs, err := h.store.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, locked, fmt.Errorf("failed to list meal logs: %w", err)
	}

	return logs, locked, nil
}
