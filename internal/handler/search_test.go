package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uma-arai/sbcntr-golf-search/internal/model"
)

// MockSearcher はテスト用の検索処理です
type MockSearcher struct {
	result   model.SearchResult
	err      error
	criteria []model.SearchCriteria
}

func (m *MockSearcher) Search(ctx context.Context, criteria model.SearchCriteria) (model.SearchResult, error) {
	m.criteria = append(m.criteria, criteria)
	return m.result, m.err
}

func newTestServer(searcher Searcher) *echo.Echo {
	e := echo.New()
	e.Use(ErrorLogMiddleware(log.New(&bytes.Buffer{}, "", 0)))
	NewSearchHandler(searcher).Register(e.Group("/api"))
	return e
}

func matchedResult() model.SearchResult {
	return model.SearchResult{
		Count: 1,
		Plans: []model.MatchedPlan{{
			PlanID:     1,
			PlanName:   "1R昼食付",
			CourseName: "Bゴルフクラブ",
			Price:      9800,
			Duration:   30,
		}},
	}
}

func TestSearchHandler_Search(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		target       string
		body         string
		wantStatus   int
		wantCriteria *model.SearchCriteria
	}{
		{
			name:       "GETのクエリパラメータ",
			method:     http.MethodGet,
			target:     "/api/search?date=20240501&budget=10000&departure=1&duration=60",
			wantStatus: http.StatusOK,
			wantCriteria: &model.SearchCriteria{
				PlayDate:    time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
				MaxPrice:    10000,
				Departure:   1,
				MaxDuration: 60,
			},
		},
		{
			name:       "POSTのJSONボディで数値の日付",
			method:     http.MethodPost,
			target:     "/api/search",
			body:       `{"date":20240501,"budget":8000,"departure":2,"duration":90}`,
			wantStatus: http.StatusOK,
			wantCriteria: &model.SearchCriteria{
				PlayDate:    time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
				MaxPrice:    8000,
				Departure:   2,
				MaxDuration: 90,
			},
		},
		{
			name:       "POSTのJSONボディでハイフン区切りの日付",
			method:     http.MethodPost,
			target:     "/api/search",
			body:       `{"date":"2024-05-01","budget":8000,"departure":1,"duration":90}`,
			wantStatus: http.StatusOK,
			wantCriteria: &model.SearchCriteria{
				PlayDate:    time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
				MaxPrice:    8000,
				Departure:   1,
				MaxDuration: 90,
			},
		},
		{
			name:       "日付の形式が不正",
			method:     http.MethodGet,
			target:     "/api/search?date=2024/05/01&budget=10000&departure=1&duration=60",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "未知の出発地点は検索処理に渡す",
			method:     http.MethodGet,
			target:     "/api/search?date=20240501&budget=10000&departure=3&duration=60",
			wantStatus: http.StatusOK,
			wantCriteria: &model.SearchCriteria{
				PlayDate:    time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
				MaxPrice:    10000,
				Departure:   3,
				MaxDuration: 60,
			},
		},
		{
			name:       "予算が数値ではない",
			method:     http.MethodGet,
			target:     "/api/search?date=20240501&budget=abc&departure=1&duration=60",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "所要時間の指定なしは検索処理に渡す",
			method:     http.MethodGet,
			target:     "/api/search?date=20240501&budget=10000&departure=1",
			wantStatus: http.StatusOK,
			wantCriteria: &model.SearchCriteria{
				PlayDate:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
				MaxPrice:  10000,
				Departure: 1,
			},
		},
		{
			name:       "日付なし",
			method:     http.MethodGet,
			target:     "/api/search?budget=10000&departure=1&duration=60",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &MockSearcher{result: matchedResult()}
			e := newTestServer(searcher)

			req := httptest.NewRequest(tt.method, tt.target, bytes.NewBufferString(tt.body))
			if tt.body != "" {
				req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCriteria == nil {
				assert.Empty(t, searcher.criteria)
				return
			}

			require.Len(t, searcher.criteria, 1)
			assert.Equal(t, *tt.wantCriteria, searcher.criteria[0])

			var got model.SearchResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, matchedResult(), got)
		})
	}
}

func TestSearchHandler_Search_EmptyResult(t *testing.T) {
	e := newTestServer(&MockSearcher{result: model.EmptySearchResult()})

	req := httptest.NewRequest(http.MethodGet, "/api/search?date=20240501&budget=10000&departure=1&duration=60", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":0,"plans":[]}`, rec.Body.String())
}

func TestSearchHandler_Search_InternalError(t *testing.T) {
	e := newTestServer(&MockSearcher{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/api/search?date=20240501&budget=10000&departure=1&duration=60", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestLambdaHandler(t *testing.T) {
	searcher := &MockSearcher{result: matchedResult()}
	handle := NewLambdaHandler(searcher)

	var req SearchRequest
	require.NoError(t, json.Unmarshal([]byte(`{"date":20240501,"budget":10000,"departure":1,"duration":60}`), &req))

	got, err := handle(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, matchedResult(), got)

	// 存在しない出発地点はエラーにせず検索処理に渡す
	_, err = handle(context.Background(), SearchRequest{Date: "20200520", Budget: 8000, Departure: 3, Duration: 60})
	require.NoError(t, err)
	require.Len(t, searcher.criteria, 2)
	assert.Equal(t, model.DepartureID(3), searcher.criteria[1].Departure)

	_, err = handle(context.Background(), SearchRequest{Date: "2020/05/20", Budget: 8000, Departure: 1, Duration: 60})
	assert.ErrorIs(t, err, model.ErrInvalidCriteria)
	assert.Len(t, searcher.criteria, 2)
}

func TestPlayDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    PlayDate
		wantErr bool
	}{
		{name: "数値", input: `20240501`, want: "20240501"},
		{name: "文字列", input: `"2024-05-01"`, want: "2024-05-01"},
		{name: "真偽値", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got PlayDate
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
