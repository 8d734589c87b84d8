package rakuten

import (
	"net/http"

	"github.com/uma-arai/sbcntr-golf-search/internal/common/config"
	"golang.org/x/time/rate"
)

// NewClientFromConfig は設定から楽天GORA APIのクライアントを作成します
// APIの利用制限に合わせてリクエスト数を制限します
func NewClientFromConfig(cfg config.RakutenConfig, httpClient *http.Client) *Client {
	rps := max(cfg.RequestPerSec, 1)

	return NewClient(
		cfg.ApplicationID,
		WithAffiliateId(cfg.AffiliateID),
		WithHttpClient(httpClient),
		WithRateLimiter(rate.NewLimiter(rate.Limit(rps), 1)),
	)
}
