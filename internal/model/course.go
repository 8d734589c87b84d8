package model

import "strings"

// RawCourse はゴルフ場一覧APIから取得したゴルフ場の情報です
type RawCourse struct {
	GolfCourseID   int64  `json:"golfCourseId"`
	GolfCourseName string `json:"golfCourseName"`
	Address        string `json:"address"`
}

// IsLesson はゴルフ場ではない商品（レッスン情報）かどうかを返します
func (c RawCourse) IsLesson() bool {
	return strings.Contains(c.GolfCourseName, LessonMarker)
}

// PrecomputeSummary は所要時間の事前計算バッチの実行結果です
type PrecomputeSummary struct {
	Regions        int `json:"regions"`
	CoursesSeen    int `json:"courses_seen"`
	Inserted       int `json:"inserted"`
	AlreadyPresent int `json:"already_present"`
	Unreachable    int `json:"unreachable"`
	StoreErrors    int `json:"store_errors"`
	PageErrors     int `json:"page_errors"`
}
