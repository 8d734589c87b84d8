package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/uma-arai/sbcntr-golf-search/internal/model"
)

// Searcher は検索処理を抽象化します
type Searcher interface {
	Search(ctx context.Context, criteria model.SearchCriteria) (model.SearchResult, error)
}

// SearchHandler は検索APIのハンドラーです
type SearchHandler struct {
	searcher Searcher
}

// NewSearchHandler は新しいSearchHandlerを作成します
func NewSearchHandler(searcher Searcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

// Search は GET のクエリパラメータ、または POST のJSONボディで検索条件を受け取ります
func (h *SearchHandler) Search(c echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	criteria, err := req.Criteria()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.searcher.Search(c.Request().Context(), criteria)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCriteria) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// Register は検索APIのルートを登録します
func (h *SearchHandler) Register(g *echo.Group) {
	g.GET("/search", h.Search)
	g.POST("/search", h.Search)
}

// ErrorLogMiddleware はハンドラーが返したエラーをログに出力し、内部エラーの詳細はレスポンスに含めません
func ErrorLogMiddleware(logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError {
				return err
			}

			logger.Printf("Request %s %s failed: %v", c.Request().Method, c.Request().URL.Path, err)
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
	}
}
