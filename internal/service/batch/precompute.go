package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/uma-arai/sbcntr-golf-search/internal/common/config"
	"github.com/uma-arai/sbcntr-golf-search/internal/common/utils"
	"github.com/uma-arai/sbcntr-golf-search/internal/directions"
	"github.com/uma-arai/sbcntr-golf-search/internal/model"
	"github.com/uma-arai/sbcntr-golf-search/internal/rakuten"
	"github.com/uma-arai/sbcntr-golf-search/internal/repository"
	"golang.org/x/sync/errgroup"
)

// Discoverer はエリア内のゴルフ場を列挙します
type Discoverer interface {
	Discover(ctx context.Context, regionCode string) iter.Seq2[model.RawCourse, error]
}

// TravelTimeResolver は出発地点からの所要時間を求めます
type TravelTimeResolver interface {
	Resolve(ctx context.Context, departure, destination string) (minutes int, reachable bool, err error)
}

// SFNAPI はStep Functionsへのタスク結果通知を抽象化します
type SFNAPI interface {
	SendTaskSuccess(ctx context.Context, params *sfn.SendTaskSuccessInput, optFns ...func(*sfn.Options)) (*sfn.SendTaskSuccessOutput, error)
}

// PrecomputeBatchService はゴルフ場ごとの所要時間を事前に計算して保存するバッチ処理を担当します
type PrecomputeBatchService struct {
	discoverer     Discoverer
	resolver       TravelTimeResolver
	travelTimeRepo repository.TravelTimeRepository
	regions        []string
	departures     []model.Departure
	sfnClient      SFNAPI
	cfg            *config.Config
	closeStore     func() error
}

// NewPrecomputeBatchService は新しいPrecomputeBatchServiceを作成します
func NewPrecomputeBatchService(ctx context.Context, cfg *config.Config, awsCfg aws.Config, sfnClient SFNAPI) (*PrecomputeBatchService, error) {
	if err := cfg.ValidateRakuten(); err != nil {
		return nil, err
	}
	if err := cfg.ValidateRouting(); err != nil {
		return nil, err
	}

	repo, closeStore, err := repository.OpenTravelTimeStore(ctx, cfg, awsCfg)
	if err != nil {
		return nil, err
	}

	mapsClient, err := directions.NewMapsClient(cfg.Routing.APIKey)
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}

	rakutenClient := rakuten.NewClientFromConfig(cfg.Rakuten, xray.Client(&http.Client{Timeout: cfg.Rakuten.Timeout}))

	s := newPrecomputeBatchService(
		NewCourseDiscoverer(rakutenClient),
		directions.NewResolver(mapsClient, cfg.Routing.Region, cfg.Routing.Timeout),
		repo,
		sfnClient,
		cfg,
	)
	s.closeStore = closeStore

	return s, nil
}

func newPrecomputeBatchService(discoverer Discoverer, resolver TravelTimeResolver, repo repository.TravelTimeRepository, sfnClient SFNAPI, cfg *config.Config) *PrecomputeBatchService {
	return &PrecomputeBatchService{
		discoverer:     discoverer,
		resolver:       resolver,
		travelTimeRepo: repo,
		regions:        model.Regions,
		departures:     model.Departures,
		sfnClient:      sfnClient,
		cfg:            cfg,
	}
}

// Close は終了処理を行います
func (s *PrecomputeBatchService) Close() error {
	if s.closeStore != nil {
		return s.closeStore()
	}
	return nil
}

// Run は所要時間の事前計算バッチ処理を実行します
func (s *PrecomputeBatchService) Run(ctx context.Context) error {
	// X-Rayセグメントの作成
	ctx, seg := xray.BeginSubsegment(ctx, "PrecomputeBatchService.Run")
	defer seg.Close(nil)

	startTime := time.Now()

	summary, err := s.Precompute(ctx)
	if err != nil {
		return utils.GetStackWithError(fmt.Errorf("failed to precompute travel times: %w", err))
	}

	if err := s.sendTaskSuccess(ctx, summary); err != nil {
		return utils.GetStackWithError(fmt.Errorf("failed to send task success: %w", err))
	}

	duration := time.Since(startTime)

	// セグメントにメタデータを追加
	if err := seg.AddMetadata("duration", duration.String()); err != nil {
		log.Printf("Failed to add duration metadata: %v", err)
	}
	if err := seg.AddMetadata("summary", summary); err != nil {
		log.Printf("Failed to add summary metadata: %v", err)
	}

	log.Printf("Precompute batch process completed successfully. Duration: %v, Inserted: %d, AlreadyPresent: %d",
		duration, summary.Inserted, summary.AlreadyPresent)
	return nil
}

// Precompute は全エリアのゴルフ場について、各出発地点からの所要時間を求めて保存します
// 1件のゴルフ場・出発地点の失敗でエリア全体を中断することはありません
func (s *PrecomputeBatchService) Precompute(ctx context.Context) (model.PrecomputeSummary, error) {
	var summary model.PrecomputeSummary

	// 全エリアに対して
	for _, code := range s.regions {
		if err := s.precomputeRegion(ctx, code, &summary); err != nil {
			return summary, err
		}
		summary.Regions++
	}

	return summary, nil
}

func (s *PrecomputeBatchService) precomputeRegion(ctx context.Context, code string, summary *model.PrecomputeSummary) error {
	ctx, seg := xray.BeginSubsegment(ctx, "PrecomputeBatchService.precomputeRegion")
	defer seg.Close(nil)

	if err := seg.AddMetadata("area_code", code); err != nil {
		log.Printf("Failed to add area_code metadata: %v", err)
	}

	// 1. そのエリアのゴルフ場を全て取得
	for course, err := range s.discoverer.Discover(ctx, code) {
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			// 取得できなかったページのみスキップする
			log.Printf("Failed to discover courses in area %s, skipping: %v", code, err)
			summary.PageErrors++
			continue
		}

		summary.CoursesSeen++
		s.precomputeCourse(ctx, course, summary)
	}

	return ctx.Err()
}

func (s *PrecomputeBatchService) precomputeCourse(ctx context.Context, course model.RawCourse, summary *model.PrecomputeSummary) {
	// 既に保存済みのゴルフ場は、一部の出発地点のみであっても再計算しない
	_, err := s.travelTimeRepo.FindByCourseID(ctx, course.GolfCourseID)
	if err == nil {
		summary.AlreadyPresent++
		return
	}
	if !errors.Is(err, repository.ErrTravelTimeNotFound) {
		log.Printf("Failed to check travel time for course %d, continuing: %v", course.GolfCourseID, err)
	}

	// 2. 所要時間: 出発地点 - 取得したゴルフ場
	durations := s.resolveDurations(ctx, course)
	if len(durations) == 0 {
		log.Printf("Course %d (%s) is unreachable from all departures", course.GolfCourseID, course.GolfCourseName)
		summary.Unreachable++
		return
	}

	// 3. DB保存: コースID, 移動時間
	inserted, err := s.travelTimeRepo.PutIfAbsent(ctx, course.GolfCourseID, durations)
	if err != nil {
		log.Printf("Failed to save travel time for course %d: %v", course.GolfCourseID, err)
		summary.StoreErrors++
		return
	}

	if inserted {
		summary.Inserted++
	} else {
		summary.AlreadyPresent++
	}
}

// resolveDurations は全ての出発地点からの所要時間を求めます
// 出発地点ごとに並列に問い合わせます
// ルートがない、または問い合わせに失敗した出発地点は結果に含めません
func (s *PrecomputeBatchService) resolveDurations(ctx context.Context, course model.RawCourse) model.Durations {
	var (
		mu        sync.Mutex
		g         errgroup.Group
		durations = make(model.Durations, len(s.departures))
	)

	for _, departure := range s.departures {
		g.Go(func() error {
			minutes, reachable, err := s.resolver.Resolve(ctx, departure.Name, course.GolfCourseName)
			if err != nil {
				log.Printf("Failed to resolve travel time from %s to %s: %v", departure.Name, course.GolfCourseName, err)
				return nil
			}
			if !reachable {
				log.Printf("No route from %s to %s", departure.Name, course.GolfCourseName)
				return nil
			}

			mu.Lock()
			durations[departure.ID] = minutes
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return durations
}

// sendTaskSuccess は、Step Functionsのタスク成功を通知します
func (s *PrecomputeBatchService) sendTaskSuccess(ctx context.Context, summary model.PrecomputeSummary) error {
	// ローカルの場合はStep Functionsの処理をスキップ
	if config.IsLocal() || s.sfnClient == nil {
		log.Printf("Local environment detected. Skipping Step Functions task success notification")
		return nil
	}

	output, err := json.Marshal(map[string]any{
		"statusCode": http.StatusOK,
		"summary":    summary,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	// タスクトークンを設定から取得
	taskToken := s.cfg.SFN.TaskToken
	if taskToken == "" {
		return fmt.Errorf("SFN_TASK_TOKEN is not set in config")
	}

	_, err = s.sfnClient.SendTaskSuccess(ctx, &sfn.SendTaskSuccessInput{
		TaskToken: aws.String(taskToken),
		Output:    aws.String(string(output)),
	})
	if err != nil {
		return fmt.Errorf("failed to send task success: %w", err)
	}

	log.Printf("Successfully sent task success with output: %s", string(output))
	return nil
}
