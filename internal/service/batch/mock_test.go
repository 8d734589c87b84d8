package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/uma-arai/sbcntr-golf-search/internal/model"
	"github.com/uma-arai/sbcntr-golf-search/internal/rakuten"
	"github.com/uma-arai/sbcntr-golf-search/internal/repository"
)

// MockCourseLister はテスト用のゴルフ場一覧APIです
type MockCourseLister struct {
	mu     sync.Mutex
	pages  map[string][]rakuten.CoursePage
	errs   map[string]error
	called map[string][]int
}

func newMockCourseLister() *MockCourseLister {
	return &MockCourseLister{
		pages:  make(map[string][]rakuten.CoursePage),
		errs:   make(map[string]error),
		called: make(map[string][]int),
	}
}

// addPages はエリアにページを追加します。pageCountは追加したページ数になります
func (m *MockCourseLister) addPages(area string, pages ...[]model.RawCourse) {
	for i, courses := range pages {
		m.pages[area] = append(m.pages[area], rakuten.CoursePage{
			Courses:   courses,
			Page:      i + 1,
			PageCount: len(pages),
		})
	}
}

func (m *MockCourseLister) SearchCourses(ctx context.Context, areaCode string, page int) (rakuten.CoursePage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.called[areaCode] = append(m.called[areaCode], page)

	if err, ok := m.errs[fmt.Sprintf("%s/%d", areaCode, page)]; ok {
		return rakuten.CoursePage{}, err
	}

	pages := m.pages[areaCode]
	if page > len(pages) {
		return rakuten.CoursePage{Page: page, PageCount: len(pages)}, nil
	}
	return pages[page-1], nil
}

type resolveResult struct {
	minutes   int
	reachable bool
	err       error
}

// MockResolver はテスト用の所要時間の問い合わせ先です
// 登録されていない組み合わせは到達不可として扱います
type MockResolver struct {
	mu      sync.Mutex
	results map[string]resolveResult
	calls   int
}

func newMockResolver() *MockResolver {
	return &MockResolver{results: make(map[string]resolveResult)}
}

func (m *MockResolver) set(departure, destination string, minutes int) {
	m.results[departure+"|"+destination] = resolveResult{minutes: minutes, reachable: true}
}

func (m *MockResolver) fail(departure, destination string) {
	m.results[departure+"|"+destination] = resolveResult{err: errors.New("timeout")}
}

func (m *MockResolver) Resolve(ctx context.Context, departure, destination string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	r := m.results[departure+"|"+destination]
	return r.minutes, r.reachable, r.err
}

// MockTravelTimeRepository はテスト用のインメモリの所要時間ストアです
type MockTravelTimeRepository struct {
	mu      sync.Mutex
	records map[int64]model.Durations
	findErr error
	putErr  error
	puts    int
}

func newMockTravelTimeRepository() *MockTravelTimeRepository {
	return &MockTravelTimeRepository{records: make(map[int64]model.Durations)}
}

func (m *MockTravelTimeRepository) FindByCourseID(ctx context.Context, courseID int64) (*model.CourseTravelTime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findErr != nil {
		return nil, m.findErr
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

	m.puts++
	if m.putErr != nil {
		return false, m.putErr
	}
	if _, ok := m.records[courseID]; ok {
		return false, nil
	}

	copied := make(model.Durations, len(durations))
	for k, v := range durations {
		copied[k] = v
	}
	m.records[courseID] = copied
	return true, nil
}

func (m *MockTravelTimeRepository) snapshot() map[int64]model.Durations {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[int64]model.Durations, len(m.records))
	for id, d := range m.records {
		copied := make(model.Durations, len(d))
		for k, v := range d {
			copied[k] = v
		}
		out[id] = copied
	}
	return out
}

// MockSFN はテスト用のStep Functionsクライアントです
type MockSFN struct {
	input *sfn.SendTaskSuccessInput
	err   error
}

func (m *MockSFN) SendTaskSuccess(ctx context.Context, params *sfn.SendTaskSuccessInput, optFns ...func(*sfn.Options)) (*sfn.SendTaskSuccessOutput, error) {
	m.input = params
	return &sfn.SendTaskSuccessOutput{}, m.err
}
