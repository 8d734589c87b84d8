package handler

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/uma-arai/sbcntr-golf-search/internal/model"
)

// PlayDate は検索リクエストの日付です
// 画面からは 20200520 のような数値で送られてくることがあるため、文字列と数値の両方を受け付けます
type PlayDate string

// UnmarshalJSON は文字列または数値の日付を読み込みます
func (d *PlayDate) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = PlayDate(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*d = PlayDate(n.String())
	return nil
}

// SearchRequest は検索リクエストです
type SearchRequest struct {
	Date      PlayDate `json:"date" query:"date" form:"date"`
	Budget    int      `json:"budget" query:"budget" form:"budget"`
	Departure int      `json:"departure" query:"departure" form:"departure"`
	Duration  int      `json:"duration" query:"duration" form:"duration"`
}

// Criteria はリクエストを検索条件に変換します
// エラーになるのは日付が解析できない場合のみで、出発地点などの値は検索処理で判定します
func (r SearchRequest) Criteria() (model.SearchCriteria, error) {
	playDate, err := model.ParsePlayDate(strings.TrimSpace(string(r.Date)))
	if err != nil {
		return model.SearchCriteria{}, err
	}

	criteria := model.SearchCriteria{
		PlayDate:    playDate,
		MaxPrice:    r.Budget,
		Departure:   model.DepartureID(r.Departure),
		MaxDuration: r.Duration,
	}
	if err := criteria.Validate(); err != nil {
		return model.SearchCriteria{}, err
	}
	return criteria, nil
}
