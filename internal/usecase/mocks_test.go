package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/mealsnap/backend/internal/domain"
)

// MockKeyValueStore is an in-memory implementation of domain.KeyValueStore
type MockKeyValueStore struct {
	data     map[string]string
	getError error
	setError error
}

func NewMockKeyValueStore() *MockKeyValueStore {
	return &MockKeyValueStore{data: make(map[string]string)}
}

func (m *MockKeyValueStore) Get(key string) (string, bool, error) {
	if m.getError != nil {
		return "", false, m.getError
	}
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *MockKeyValueStore) Set(key, value string) error {
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

// MockMealLogStore is a mock implementation of domain.MealLogStore
type MockMealLogStore struct {
	mu          sync.Mutex
	inserted    []domain.MealLog
	insertError error
	listResult  []domain.MealLog
	listError   error
	firstTime   time.Time
	firstError  error
}

func NewMockMealLogStore() *MockMealLogStore {
	return &MockMealLogStore{firstError: domain.ErrMealLogNotFound}
}

func (m *MockMealLogStore) Insert(ctx context.Context, log *domain.MealLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertError != nil {
		return m.insertError
	}
	log.ID = "log-mock"
	log.CreatedAt = time.Now().UTC()
	m.inserted = append(m.inserted, *log)
	return nil
}

func (m *MockMealLogStore) ListByUser(ctx context.Context, userID string, limit int) ([]domain.MealLog, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	return m.listResult, nil
}

func (m *MockMealLogStore) FirstLogTime(ctx context.Context, userID string) (time.Time, error) {
	if m.firstError != nil {
		return time.Time{}, m.firstError
	}
	return m.firstTime, nil
}

func (m *MockMealLogStore) Close() error { return nil }

// InsertCount returns how many inserts have been performed.
func (m *MockMealLogStore) InsertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inserted)
}

// Inserted returns a copy of the inserted logs.
func (m *MockMealLogStore) Inserted() []domain.MealLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.MealLog, len(m.inserted))
	copy(out, m.inserted)
	return out
}

// MockAnalysisClient is a mock implementation of domain.AnalysisClient
type MockAnalysisClient struct {
	mu          sync.Mutex
	textResult  []domain.FoodItem
	textError   error
	imageResult []domain.FoodItem
	imageError  error
	textCalls   int
	imageCalls  int
	lastKey     string
	lastTextKey string

	// Optional single-use gate: when set, AnalyzeText signals
	// textStarted and then blocks until textProceed closes, letting a
	// test act while the call is in flight.
	textStarted chan struct{}
	textProceed chan struct{}
}

func NewMockAnalysisClient() *MockAnalysisClient {
	return &MockAnalysisClient{}
}

func (m *MockAnalysisClient) AnalyzeText(ctx context.Context, text, apiKey string, pro bool) ([]domain.FoodItem, error) {
	m.mu.Lock()
	m.textCalls++
	m.lastTextKey = apiKey
	started, proceed := m.textStarted, m.textProceed
	result, err := m.textResult, m.textError
	m.mu.Unlock()

	if started != nil {
		close(started)
	}
	if proceed != nil {
		<-proceed
	}

	if err != nil {
		return nil, err
	}
	return result, nil
}

func (m *MockAnalysisClient) AnalyzeImage(ctx context.Context, imageDataURL, apiKey string, pro bool) ([]domain.FoodItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imageCalls++
	m.lastKey = apiKey
	if m.imageError != nil {
		return nil, m.imageError
	}
	return m.imageResult, nil
}

func (m *MockAnalysisClient) LastKey() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastKey
}

func (m *MockAnalysisClient) LastTextKey() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastTextKey
}
