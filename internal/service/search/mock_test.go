package search

import (
	"context"
	"sync"

	"github.com/uma-arai/sbcntr-golf-search/internal/model"
	"github.com/uma-arai/sbcntr-golf-search/internal/rakuten"
	"github.com/uma-arai/sbcntr-golf-search/internal/repository"
)

// MockPlanSearcher はテスト用のプラン検索APIです
type MockPlanSearcher struct {
	result rakuten.PlanSearchResult
	err    error
	params []rakuten.PlanSearchParams
}

func (m *MockPlanSearcher) SearchPlans(ctx context.Context, params rakuten.PlanSearchParams) (rakuten.PlanSearchResult, error) {
	m.params = append(m.params, params)
	return m.result, m.err
}

// MockTravelTimeRepository はテスト用の所要時間ストアです
type MockTravelTimeRepository struct {
	mu      sync.Mutex
	records map[int64]model.Durations
	errs    map[int64]error
	lookups map[int64]int
}

func newMockTravelTimeRepository(records map[int64]model.Durations) *MockTravelTimeRepository {
	return &MockTravelTimeRepository{
		records: records,
		errs:    make(map[int64]error),
		lookups: make(map[int64]int),
	}
}

func (m *MockTravelTimeRepository) FindByCourseID(ctx context.Context, courseID int64) (*model.CourseTravelTime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lookups[courseID]++
	if err, ok := m.errs[courseID]; ok {
		return nil, err
	}
	durations, ok := m.records[courseID]
	if !ok {
		return nil, repository.ErrTravelTimeNotFound
	}
	return &model.CourseTravelTime{GolfCourseID: courseID, Durations: durations}, nil
}

func (m *MockTravelTimeRepository) PutIfAbsent(ctx context.Context, courseID int64, durations model.Durations) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[courseID]; ok {
		return false, nil
	}
	m.records[courseID] = durations
	return true, nil
}
