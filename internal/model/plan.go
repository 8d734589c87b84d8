package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidCriteria は検索条件が不正な場合のエラーです
var ErrInvalidCriteria = errors.New("invalid search criteria")

// PlanCandidate はプラン検索APIから取得した予約可能なプランです
// 検索リクエストごとに生成され、キャッシュはされません
type PlanCandidate struct {
	PlanID       int64
	PlanName     string
	GolfCourseID int64
	CourseName   string
	Caption      string
	Prefecture   string
	ImageURL     string
	Evaluation   float64
	Price        int
	ReserveURLPC string
	StockCount   int
}

// MatchedPlan は所要時間の条件に合致したプランです
type MatchedPlan struct {
	PlanID       int64   `json:"plan_id"`
	PlanName     string  `json:"plan_name"`
	CourseName   string  `json:"course_name"`
	Caption      string  `json:"caption"`
	Prefecture   string  `json:"prefecture"`
	ImageURL     string  `json:"image_url"`
	Evaluation   float64 `json:"evaluation"`
	Price        int     `json:"price"`
	Duration     int     `json:"duration"`
	ReserveURLPC string  `json:"reserve_url_pc"`
	StockCount   int     `json:"stock_count"`
}

// NewMatchedPlan はプランに所要時間を付与します
func NewMatchedPlan(c PlanCandidate, duration int) MatchedPlan {
	return MatchedPlan{
		PlanID:       c.PlanID,
		PlanName:     c.PlanName,
		CourseName:   c.CourseName,
		Caption:      c.Caption,
		Prefecture:   c.Prefecture,
		ImageURL:     c.ImageURL,
		Evaluation:   c.Evaluation,
		Price:        c.Price,
		Duration:     duration,
		ReserveURLPC: c.ReserveURLPC,
		StockCount:   c.StockCount,
	}
}

// SearchResult は検索結果です
// 条件に合うプランがない場合も count: 0, plans: [] を返します
type SearchResult struct {
	Count int           `json:"count"`
	Plans []MatchedPlan `json:"plans"`
}

// EmptySearchResult は0件の検索結果を返します
func EmptySearchResult() SearchResult {
	return SearchResult{Count: 0, Plans: []MatchedPlan{}}
}

// SearchCriteria は検索条件です
type SearchCriteria struct {
	PlayDate    time.Time
	MaxPrice    int
	Departure   DepartureID
	MaxDuration int
}

const playDateLayout = "2006-01-02"

// PlayDateString はプラン検索APIで必要な形式(YYYY-MM-DD)の日付を返します
func (c SearchCriteria) PlayDateString() string {
	return c.PlayDate.Format(playDateLayout)
}

// Validate は検索条件を検証します
// 検索できない条件(日付なし)の場合のみエラーを返します
func (c SearchCriteria) Validate() error {
	if c.PlayDate.IsZero() {
		return fmt.Errorf("%w: play date is required", ErrInvalidCriteria)
	}
	return nil
}

// Unmatchable は該当するプランが存在し得ない条件の場合に、その理由を返します
// 存在しない出発地点は所要時間が保存されていないため、全てのプランが除外されます
func (c SearchCriteria) Unmatchable() error {
	if c.MaxPrice <= 0 {
		return fmt.Errorf("budget must be positive: %d", c.MaxPrice)
	}
	if _, ok := FindDeparture(c.Departure); !ok {
		return fmt.Errorf("unknown departure: %d", c.Departure)
	}
	if c.MaxDuration <= 0 {
		return fmt.Errorf("duration must be positive: %d", c.MaxDuration)
	}
	return nil
}

// ParsePlayDate は YYYYMMDD または YYYY-MM-DD 形式の日付を解析します
func ParsePlayDate(s string) (time.Time, error) {
	for _, layout := range []string{"20060102", playDateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date format: %q", ErrInvalidCriteria, s)
}
