package search

import (
	"cmp"
	"context"
	"errors"
	"log"
	"net/http"
	"slices"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/uma-arai/sbcntr-golf-search/internal/common/config"
	"github.com/uma-arai/sbcntr-golf-search/internal/model"
	"github.com/uma-arai/sbcntr-golf-search/internal/rakuten"
	"github.com/uma-arai/sbcntr-golf-search/internal/repository"
	"golang.org/x/sync/errgroup"
)

// PlanSearcher はプラン検索APIを抽象化します
type PlanSearcher interface {
	SearchPlans(ctx context.Context, params rakuten.PlanSearchParams) (rakuten.PlanSearchResult, error)
}

// PlanSearchService は予約可能なプランと事前計算した所要時間を突き合わせます
// 呼び出しごとに状態を持たず、プラン検索APIのリトライも行いません
type PlanSearchService struct {
	searcher       PlanSearcher
	travelTimeRepo repository.TravelTimeRepository
	parallelism    int
	closeStore     func() error
}

// NewPlanSearchService は新しいPlanSearchServiceを作成します
func NewPlanSearchService(ctx context.Context, cfg *config.Config, awsCfg aws.Config) (*PlanSearchService, error) {
	if err := cfg.ValidateRakuten(); err != nil {
		return nil, err
	}

	repo, closeStore, err := repository.OpenTravelTimeStore(ctx, cfg, awsCfg)
	if err != nil {
		return nil, err
	}

	rakutenClient := rakuten.NewClientFromConfig(cfg.Rakuten, xray.Client(&http.Client{Timeout: cfg.Rakuten.Timeout}))

	s := newPlanSearchService(rakutenClient, repo, cfg.Search.LookupParallelism)
	s.closeStore = closeStore
	return s, nil
}

func newPlanSearchService(searcher PlanSearcher, repo repository.TravelTimeRepository, parallelism int) *PlanSearchService {
	return &PlanSearchService{
		searcher:       searcher,
		travelTimeRepo: repo,
		parallelism:    max(parallelism, 1),
	}
}

// Close は終了処理を行います
func (s *PlanSearchService) Close() error {
	if s.closeStore != nil {
		return s.closeStore()
	}
	return nil
}

// Search は条件に合うプランを所要時間の短い順に返します
// プラン検索APIが失敗した場合や該当プランがない場合も、エラーではなく0件の結果を返します
// 出発地点が存在しない場合など、該当するプランがあり得ない条件も0件の結果を返します
// エラーを返すのは日付が指定されていない場合のみです
func (s *PlanSearchService) Search(ctx context.Context, criteria model.SearchCriteria) (model.SearchResult, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "PlanSearchService.Search")
	defer seg.Close(nil)

	if err := criteria.Validate(); err != nil {
		return model.SearchResult{}, err
	}
	if reason := criteria.Unmatchable(); reason != nil {
		log.Printf("No plans can match the search criteria, returning empty result: %v", reason)
		return model.EmptySearchResult(), nil
	}

	// 1. 「予約可能なゴルフ場」
	found, err := s.searcher.SearchPlans(ctx, rakuten.PlanSearchParams{
		MaxPrice:  criteria.MaxPrice,
		PlayDate:  criteria.PlayDateString(),
		AreaCodes: model.RegionCodeList(),
		NGPlan:    model.ExcludedPlanTypes,
	})
	if err != nil {
		log.Printf("Plan search failed, returning empty result: %v", err)
		return model.EmptySearchResult(), nil
	}
	if found.NoMatches || len(found.Candidates) == 0 {
		return model.EmptySearchResult(), nil
	}

	// 2. 保存しておいた所要時間を使って条件がマッチしたゴルフ場だけを返す
	durations := s.lookupDurations(ctx, found.Candidates, criteria.Departure)

	plans := make([]model.MatchedPlan, 0, len(found.Candidates))
	for _, candidate := range found.Candidates {
		minutes, ok := durations[candidate.GolfCourseID]
		if !ok {
			continue
		}
		// 希望の所要時間より長いものの場合はスキップ
		if minutes > criteria.MaxDuration {
			continue
		}
		plans = append(plans, model.NewMatchedPlan(candidate, minutes))
	}

	// 所要時間が短い順にソート（同じ所要時間の場合はAPIの返却順を維持）
	slices.SortStableFunc(plans, func(a, b model.MatchedPlan) int {
		return cmp.Compare(a.Duration, b.Duration)
	})

	if err := seg.AddMetadata("candidate_count", len(found.Candidates)); err != nil {
		log.Printf("Failed to add candidate_count metadata: %v", err)
	}
	if err := seg.AddMetadata("matched_count", len(plans)); err != nil {
		log.Printf("Failed to add matched_count metadata: %v", err)
	}

	return model.SearchResult{
		Count: len(plans),
		Plans: plans,
	}, nil
}

// lookupDurations はプランのゴルフ場ごとに、指定された出発地点からの所要時間を取得します
// N+1とならないように先に重複がないゴルフ場IDを取得しておく
// 所要時間が保存されていない、または取得に失敗したゴルフ場は結果に含めません
func (s *PlanSearchService) lookupDurations(ctx context.Context, candidates []model.PlanCandidate, departure model.DepartureID) map[int64]int {
	ctx, seg := xray.BeginSubsegment(ctx, "PlanSearchService.lookupDurations")
	defer seg.Close(nil)

	courseIDs := make([]int64, 0, len(candidates))
	for _, candidate := range candidates {
		if !slices.Contains(courseIDs, candidate.GolfCourseID) {
			courseIDs = append(courseIDs, candidate.GolfCourseID)
		}
	}

	var (
		mu        sync.Mutex
		durations = make(map[int64]int, len(courseIDs))
		g         errgroup.Group
	)
	g.SetLimit(s.parallelism)

	for _, courseID := range courseIDs {
		g.Go(func() error {
			record, err := s.travelTimeRepo.FindByCourseID(ctx, courseID)
			if errors.Is(err, repository.ErrTravelTimeNotFound) {
				return nil
			}
			if err != nil {
				log.Printf("Failed to get travel time for course %d: %v", courseID, err)
				return nil
			}

			minutes, ok := record.DurationFrom(departure)
			if !ok {
				return nil
			}

			mu.Lock()
			durations[courseID] = minutes
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return durations
}
