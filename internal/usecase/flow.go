package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mealsnap/backend/internal/domain"
)

// State identifies a step of the meal analysis flow.
type State string

const (
	StateUpload          State = "upload"
	StateAnalyzing       State = "analyzing"
	StateConfirmingItems State = "confirming_items"
	StateCalculating     State = "calculating"
	StateResults         State = "results"
)

// NoticeKind classifies user-visible notices emitted by the flow.
type NoticeKind string

const (
	NoticeAnalysisFailed    NoticeKind = "analysis_failed"
	NoticeNoItemsDetected   NoticeKind = "no_items_detected"
	NoticeCalculationFailed NoticeKind = "calculation_failed"
	NoticeSaveFailed        NoticeKind = "save_failed"
	NoticeMealSaved         NoticeKind = "meal_saved"
)

// Notice is a user-visible message produced by a transition.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// FlowConfig holds per-flow settings.
type FlowConfig struct {
	// AnalysisTimeout bounds every adapter call so a hung network
	// request cannot strand the flow in Analyzing or Calculating.
	AnalysisTimeout time.Duration
}

// Flow is the finite-state controller driving one meal submission from
// Upload through Results. All transitions are serialized on one mutex;
// results of in-flight calls are applied only if the flow has not been
// reset in the meantime (generation check), and the persistence side
// effect of a confirmation fires at most once per entry into
// ConfirmingItems (one-shot latch).
type Flow struct {
	analyzer  *AnalyzerService
	nutrition *NutritionService
	logger    *MealLogger
	timeout   time.Duration

	mu        sync.Mutex
	state     State
	gen       uint64
	confirmed bool
	items     []domain.FoodItem
	results   []domain.FoodWithNutrition
	notices   []Notice
	isMock    bool

	saving sync.WaitGroup
}

// NewFlow creates a flow in the Upload state.
func NewFlow(analyzer *AnalyzerService, nutrition *NutritionService, logger *MealLogger, cfg FlowConfig) *Flow {
	timeout := cfg.AnalysisTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Flow{
		analyzer:  analyzer,
		nutrition: nutrition,
		logger:    logger,
		timeout:   timeout,
		state:     StateUpload,
	}
}

// SubmitText runs the Upload -> Analyzing transition for a text meal.
// Analysis failures and empty results return the flow to Upload with a
// notice; one or more detected items advance it to ConfirmingItems.
func (f *Flow) SubmitText(ctx context.Context, text string, pro bool) error {
	gen, err := f.beginAnalysis()
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	items, err := f.analyzer.AnalyzeText(cctx, text, pro)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen != gen {
		// Flow was reset while analyzing; discard the stale result
		return nil
	}

	if err != nil {
		if errors.Is(err, domain.ErrInvalidResponseFormat) {
			slog.Error("analysis returned unparsable payload", "error", err)
		} else {
			slog.Error("text analysis failed", "error", err)
		}
		f.state = StateUpload
		f.pushNotice(NoticeAnalysisFailed, "We couldn't analyze your text. Please try again.")
		return err
	}

	return f.applyDetected(items, false)
}

// SubmitImage runs the Upload -> Analyzing transition for a photo.
// The adapter never fails this path: it substitutes the sample set and
// flags the flow as mock data instead.
func (f *Flow) SubmitImage(ctx context.Context, image io.Reader, contentType, apiKey string, pro bool) error {
	gen, err := f.beginAnalysis()
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	items, mock, _ := f.analyzer.AnalyzeImage(cctx, image, contentType, apiKey, pro)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen != gen {
		return nil
	}

	return f.applyDetected(items, mock)
}

// beginAnalysis moves Upload -> Analyzing and returns the generation to
// check against when the asynchronous result arrives.
func (f *Flow) beginAnalysis() (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateUpload {
		return 0, domain.ErrInvalidState
	}
	f.state = StateAnalyzing
	return f.gen, nil
}

// applyDetected finishes an analysis transition. Callers hold f.mu.
func (f *Flow) applyDetected(items []domain.FoodItem, mock bool) error {
	if len(items) == 0 {
		f.state = StateUpload
		f.pushNotice(NoticeNoItemsDetected, "No food items were detected. Try different input.")
		return nil
	}

	f.items = items
	f.isMock = mock
	f.enterConfirming()
	return nil
}

// enterConfirming re-arms the confirm latch on every entry. Callers hold f.mu.
func (f *Flow) enterConfirming() {
	f.state = StateConfirmingItems
	f.confirmed = false
}

// AddItem appends a user-entered food while confirming.
func (f *Flow) AddItem(name string) (domain.FoodItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateConfirmingItems {
		return domain.FoodItem{}, domain.ErrInvalidState
	}

	item := domain.FoodItem{
		ID:   "food-" + uuid.NewString(),
		Name: name,
	}
	f.items = append(f.items, item)
	return item, nil
}

// RemoveItem deletes a detected item while confirming.
func (f *Flow) RemoveItem(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateConfirmingItems {
		return domain.ErrInvalidState
	}

	for i, item := range f.items {
		if item.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return nil
}

// Confirm runs ConfirmingItems -> Calculating -> Results. Duplicate
// triggers while the latch is armed are silent no-ops, so the
// nutrition-computation-and-save sequence executes exactly once per
// confirmation. The save runs asynchronously and reports through a
// notice; a save failure never blocks Results.
func (f *Flow) Confirm(ctx context.Context, userID string) error {
	f.mu.Lock()
	if f.state != StateConfirmingItems {
		f.mu.Unlock()
		return domain.ErrInvalidState
	}
	if f.confirmed {
		f.mu.Unlock()
		return nil
	}
	f.confirmed = true
	f.state = StateCalculating
	gen := f.gen
	items := slices.Clone(f.items)
	isMock := f.isMock
	f.mu.Unlock()

	// Enrichment returns its result directly to this transition; the
	// flow never re-reads external state to discover it.
	results := f.nutrition.GetNutritionInfo(items)

	f.mu.Lock()
	if f.gen != gen {
		f.mu.Unlock()
		return nil
	}
	if len(results) == 0 {
		// Back to confirming so the user keeps their item list
		f.enterConfirming()
		f.pushNotice(NoticeCalculationFailed, "We couldn't calculate nutrition for these items. Please try again.")
		f.mu.Unlock()
		return nil
	}
	f.results = results
	f.state = StateResults
	f.mu.Unlock()

	enriched := make([]domain.FoodItem, len(results))
	for i, r := range results {
		enriched[i] = r.AsFoodItem()
	}

	f.saving.Add(1)
	go func() {
		defer f.saving.Done()
		sctx, cancel := context.WithTimeout(context.Background(), f.timeout)
		defer cancel()

		res := f.logger.SaveMealLog(sctx, items, enriched, userID, isMock)

		f.mu.Lock()
		defer f.mu.Unlock()
		if f.gen != gen {
			return
		}
		switch res.Status {
		case SaveStatusSaved:
			f.pushNotice(NoticeMealSaved, "Meal logged successfully")
		case SaveStatusNoNutritionData:
			f.pushNotice(NoticeSaveFailed, "No nutritional data available to save")
		case SaveStatusNoValidIdentity:
			f.pushNotice(NoticeSaveFailed, "Failed to save meal log: no valid user ID")
		default:
			f.pushNotice(NoticeSaveFailed, "Failed to save your meal log")
		}
	}()

	return nil
}

// Reset returns the flow to Upload from any state, clearing all
// transient data. In-flight analysis or save results are discarded when
// they arrive (their generation no longer matches).
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	f.state = StateUpload
	f.confirmed = false
	f.items = nil
	f.results = nil
	f.notices = nil
	f.isMock = false
}

// pushNotice appends a user-visible notice. Callers hold f.mu.
func (f *Flow) pushNotice(kind NoticeKind, message string) {
	f.notices = append(f.notices, Notice{Kind: kind, Message: message})
}

// Snapshot is a point-in-time view of the flow for rendering.
type Snapshot struct {
	State      State                      `json:"state"`
	Items      []domain.FoodItem          `json:"items"`
	Results    []domain.FoodWithNutrition `json:"results"`
	Totals     *domain.Nutrition          `json:"totals,omitempty"`
	Notices    []Notice                   `json:"notices"`
	IsMockData bool                       `json:"isMockData"`
}

// Snapshot returns the current state, items, results and pending notices.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := Snapshot{
		State:      f.state,
		Items:      slices.Clone(f.items),
		Results:    slices.Clone(f.results),
		Notices:    slices.Clone(f.notices),
		IsMockData: f.isMock,
	}
	if len(f.results) > 0 {
		totals := domain.CalculateTotals(f.results)
		snap.Totals = &totals
	}
	return snap
}

// WaitForSave blocks until any in-flight save has completed.
// Diagnostic hook used by tests and graceful shutdown.
func (f *Flow) WaitForSave() {
	f.saving.Wait()
}
