package rakuten

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/cenkalti/backoff/v4"
	"github.com/uma-arai/sbcntr-golf-search/internal/model"
	"golang.org/x/time/rate"
)

const (
	courseSearchPath = "/Gora/GoraGolfCourseSearch/20170623"
	planSearchPath   = "/Gora/GoraPlanSearch/20170623"
)

// ErrNotFound は検索条件に該当するデータがない場合にAPIが返すエラーです
var ErrNotFound = errors.New("rakuten: not found")

// ResponseStatusError は200以外のレスポンスを表します
type ResponseStatusError struct {
	StatusCode  int
	Status      string
	Code        string
	Description string
}

func (e ResponseStatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Status, e.Code, e.Description)
	}
	return e.Status
}

func (e ResponseStatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound || e.Code == "not_found" {
		return ErrNotFound
	}
	return nil
}

// Temporary はリトライで回復する可能性があるエラーかどうかを返します
func (e ResponseStatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

type Client struct {
	httpClient    *http.Client
	limiter       *rate.Limiter
	baseUrl       string
	applicationId string
	affiliateId   string
	maxRetries    uint64
	newBackOff    func() backoff.BackOff
}

type ClientOption func(c *Client)

func WithHttpClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithRateLimiter(limiter *rate.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = limiter
	}
}

func WithBaseUrl(baseUrl string) ClientOption {
	return func(c *Client) {
		c.baseUrl = baseUrl
	}
}

func WithAffiliateId(affiliateId string) ClientOption {
	return func(c *Client) {
		c.affiliateId = affiliateId
	}
}

// WithRetry はゴルフ場一覧取得時のリトライ回数とバックオフを設定します
func WithRetry(maxRetries uint64, newBackOff func() backoff.BackOff) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.newBackOff = newBackOff
	}
}

func NewClient(applicationId string, opts ...ClientOption) *Client {
	c := &Client{
		applicationId: applicationId,
		maxRetries:    2,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.httpClient = cmp.Or(c.httpClient, http.DefaultClient)
	c.baseUrl = strings.TrimSuffix(cmp.Or(c.baseUrl, "https://app.rakuten.co.jp/services/api"), "/")
	if c.newBackOff == nil {
		c.newBackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			return b
		}
	}

	return c
}

func (c *Client) doRequest(ctx context.Context, path string, q url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseUrl+path, nil)
	if err != nil {
		return nil, err
	}

	fullQuery := req.URL.Query()
	maps.Copy(fullQuery, q)
	fullQuery.Set("applicationId", c.applicationId)
	if c.affiliateId != "" {
		fullQuery.Set("affiliateId", c.affiliateId)
	}
	fullQuery.Set("format", "json")
	fullQuery.Set("formatVersion", "2")
	req.URL.RawQuery = fullQuery.Encode()

	req.Header.Set("Accept", "application/json")

	if c.limiter != nil {
		if err = c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	return c.httpClient.Do(req)
}

func doRequest[T any](ctx context.Context, c *Client, path string, q url.Values) (T, error) {
	var r T

	resp, err := c.doRequest(ctx, path, q)
	if err != nil {
		return r, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := ResponseStatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}

		var body errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			statusErr.Code = body.Error
			statusErr.Description = body.ErrorDescription
		}

		return r, statusErr
	}

	return r, json.NewDecoder(resp.Body).Decode(&r)
}

// SearchCourses はエリア内のゴルフ場一覧を1ページ分取得します
// 一時的なエラーの場合はバックオフしながらリトライします
// 該当するゴルフ場がない場合はエラーではなく、次のページがない空のページを返します
func (c *Client) SearchCourses(ctx context.Context, areaCode string, page int) (CoursePage, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "RakutenClient.SearchCourses")
	defer seg.Close(nil)

	q := make(url.Values)
	q.Set("areaCode", areaCode)
	q.Set("page", strconv.Itoa(page))

	var resp courseSearchResponse
	op := func() error {
		var err error
		resp, err = doRequest[courseSearchResponse](ctx, c, courseSearchPath, q)
		if err == nil {
			return nil
		}

		var statusErr ResponseStatusError
		if errors.As(err, &statusErr) && !statusErr.Temporary() {
			return backoff.Permanent(err)
		}

		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.maxRetries), ctx)
	err := backoff.Retry(op, b)
	if errors.Is(err, ErrNotFound) {
		// 該当するゴルフ場がない場合、APIは404(not_found)を返すため空の最終ページとして扱う
		return CoursePage{Courses: []model.RawCourse{}, Page: page, PageCount: page}, nil
	}
	if err != nil {
		seg.Close(err)
		return CoursePage{}, fmt.Errorf("failed to search courses (area=%s, page=%d): %w", areaCode, page, err)
	}

	courses := make([]model.RawCourse, 0, len(resp.Items))
	for _, item := range resp.Items {
		courses = append(courses, model.RawCourse{
			GolfCourseID:   item.GolfCourseID,
			GolfCourseName: item.GolfCourseName,
			Address:        item.Address,
		})
	}

	return CoursePage{
		Courses:   courses,
		Page:      cmp.Or(resp.Page, page),
		PageCount: resp.PageCount,
	}, nil
}

// SearchPlans は予約可能なプランを検索します
// 検索ごとにAPIの呼び出しは1回のみで、リトライは行いません
func (c *Client) SearchPlans(ctx context.Context, params PlanSearchParams) (PlanSearchResult, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "RakutenClient.SearchPlans")
	defer seg.Close(nil)

	q := make(url.Values)
	q.Set("maxPrice", strconv.Itoa(params.MaxPrice))
	q.Set("playDate", params.PlayDate)
	q.Set("areaCode", params.AreaCodes)
	if len(params.NGPlan) > 0 {
		q.Set("NGPlan", strings.Join(params.NGPlan, ","))
	}

	resp, err := doRequest[planSearchResponse](ctx, c, planSearchPath, q)
	if errors.Is(err, ErrNotFound) {
		return PlanSearchResult{NoMatches: true}, nil
	}
	if err != nil {
		seg.Close(err)
		return PlanSearchResult{}, fmt.Errorf("failed to search plans: %w", err)
	}

	candidates := make([]model.PlanCandidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		if candidate, ok := item.toCandidate(); ok {
			candidates = append(candidates, candidate)
		}
	}

	return PlanSearchResult{Candidates: candidates}, nil
}
