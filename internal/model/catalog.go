package model

import (
	"slices"
	"strings"
)

// DepartureID は出発地点のインデックスです
type DepartureID int

// Departure は経路検索の出発地として使う基準地点です
type Departure struct {
	ID   DepartureID
	Name string
}

// Departures は基準とする出発地点の一覧です（ID昇順）
// 実行中に変更されることはありません
var Departures = []Departure{
	{ID: 1, Name: "東京駅"},
	{ID: 2, Name: "横浜駅"},
}

// Regions はゴルフ場の取得・プラン検索の対象となるエリアコードです
// 8:茨城県, 11:埼玉県, 12:千葉県, 13:東京都, 14:神奈川県
var Regions = []string{"8", "11", "12", "13", "14"}

// LessonMarker はゴルフ場ではない商品（レッスン）を示すコース名の目印です
const LessonMarker = "レッスン"

// ExcludedPlanTypes はプラン検索で除外するプランの種類です
var ExcludedPlanTypes = []string{
	"planHalfRound",
	"planLesson",
	"planOpenCompe",
	"planRegularCompe",
}

// FindDeparture は指定されたIDの出発地点を返します
func FindDeparture(id DepartureID) (Departure, bool) {
	i := slices.IndexFunc(Departures, func(d Departure) bool {
		return d.ID == id
	})
	if i < 0 {
		return Departure{}, false
	}
	return Departures[i], true
}

// RegionCodeList はプラン検索APIに渡すカンマ区切りのエリアコードを返します
func RegionCodeList() string {
	return strings.Join(Regions, ",")
}
