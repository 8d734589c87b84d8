package handler

import (
	"context"
	"log"

	"github.com/uma-arai/sbcntr-golf-search/internal/model"
)

// LambdaHandler はLambdaから呼び出される検索処理です
type LambdaHandler func(ctx context.Context, req SearchRequest) (model.SearchResult, error)

// NewLambdaHandler は検索処理をLambdaのハンドラーとして返します
// 日付が解析できない場合のみエラーを返し、それ以外は該当プランなしを含めて検索結果を返します
func NewLambdaHandler(searcher Searcher) LambdaHandler {
	return func(ctx context.Context, req SearchRequest) (model.SearchResult, error) {
		criteria, err := req.Criteria()
		if err != nil {
			log.Printf("Invalid search request %+v: %v", req, err)
			return model.SearchResult{}, err
		}

		return searcher.Search(ctx, criteria)
	}
}
