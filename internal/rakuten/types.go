package rakuten

import "github.com/uma-arai/sbcntr-golf-search/internal/model"

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type pagedResponse struct {
	Count     int `json:"count"`
	Page      int `json:"page"`
	First     int `json:"first"`
	Last      int `json:"last"`
	Hits      int `json:"hits"`
	PageCount int `json:"pageCount"`
}

type courseSearchResponse struct {
	pagedResponse
	Items []courseItem `json:"Items"`
}

type courseItem struct {
	GolfCourseID   int64  `json:"golfCourseId"`
	GolfCourseName string `json:"golfCourseName"`
	Address        string `json:"address"`
}

type planSearchResponse struct {
	pagedResponse
	Items []planItem `json:"Items"`
}

type planItem struct {
	GolfCourseID       int64      `json:"golfCourseId"`
	GolfCourseName     string     `json:"golfCourseName"`
	GolfCourseCaption  string     `json:"golfCourseCaption"`
	Prefecture         string     `json:"prefecture"`
	GolfCourseImageURL string     `json:"golfCourseImageUrl"`
	Evaluation         float64    `json:"evaluation"`
	PlanInfo           []planInfo `json:"planInfo"`
}

type planInfo struct {
	PlanID   int64    `json:"planId"`
	PlanName string   `json:"planName"`
	Price    int      `json:"price"`
	CallInfo callInfo `json:"callInfo"`
}

type callInfo struct {
	PlayDate         string `json:"playDate"`
	StockStatus      int    `json:"stockStatus"`
	StockCount       int    `json:"stockCount"`
	ReservePageURLPC string `json:"reservePageUrlPC"`
}

// CoursePage はゴルフ場一覧APIの1ページ分の結果です
type CoursePage struct {
	Courses   []model.RawCourse
	Page      int
	PageCount int
}

// HasNextPage は次のページが存在するかを返します
func (p CoursePage) HasNextPage() bool {
	return p.Page < p.PageCount
}

// PlanSearchParams はプラン検索APIのリクエストパラメータです
type PlanSearchParams struct {
	MaxPrice  int
	PlayDate  string
	AreaCodes string
	NGPlan    []string
}

// PlanSearchResult はプラン検索APIの結果です
// 該当プランが0件の場合、APIはエラー(404 not_found)を返すため NoMatches として区別します
type PlanSearchResult struct {
	Candidates []model.PlanCandidate
	NoMatches  bool
}

func (i planItem) toCandidate() (model.PlanCandidate, bool) {
	if len(i.PlanInfo) == 0 {
		return model.PlanCandidate{}, false
	}

	plan := i.PlanInfo[0]
	return model.PlanCandidate{
		PlanID:       plan.PlanID,
		PlanName:     plan.PlanName,
		GolfCourseID: i.GolfCourseID,
		CourseName:   i.GolfCourseName,
		Caption:      i.GolfCourseCaption,
		Prefecture:   i.Prefecture,
		ImageURL:     i.GolfCourseImageURL,
		Evaluation:   i.Evaluation,
		Price:        plan.Price,
		ReserveURLPC: plan.CallInfo.ReservePageURLPC,
		StockCount:   plan.CallInfo.StockCount,
	}, true
}
