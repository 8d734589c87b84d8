package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Durations は出発地点ごとの所要時間（分）です
// 値が存在しない出発地点は「到達不可」を意味します
type Durations map[DepartureID]int

// Get は指定された出発地点の所要時間を返します
func (d Durations) Get(id DepartureID) (int, bool) {
	v, ok := d[id]
	return v, ok
}

// Validate は所要時間が全て0以上であることを確認します
func (d Durations) Validate() error {
	for id, minutes := range d {
		if minutes < 0 {
			return fmt.Errorf("negative duration %d for departure %d", minutes, id)
		}
	}
	return nil
}

// Value はDurationsをJSONBとして保存するための値を返します
func (d Durations) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

// Scan はJSONBの値からDurationsを復元します
func (d *Durations) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		*d = Durations{}
		return nil
	default:
		return fmt.Errorf("unexpected type for durations: %T", src)
	}

	out := make(Durations)
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("invalid durations format: %w", err)
	}
	*d = out
	return nil
}

// CourseTravelTime はゴルフ場ごとの出発地点からの所要時間です
// golf_course_id ごとに1件のみ存在し、一度書き込まれた後は更新されません
type CourseTravelTime struct {
	GolfCourseID int64     `db:"golf_course_id" json:"golf_course_id"`
	Durations    Durations `db:"durations" json:"durations"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// DurationFrom は指定された出発地点からの所要時間を返します
func (c CourseTravelTime) DurationFrom(id DepartureID) (int, bool) {
	return c.Durations.Get(id)
}
