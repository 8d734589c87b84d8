package batch

import (
	"context"
	"fmt"
	"iter"
	"log"

	"github.com/uma-arai/sbcntr-golf-search/internal/model"
	"github.com/uma-arai/sbcntr-golf-search/internal/rakuten"
)

// APIの仕様上、ページ番号は100まで
const maxCoursePages = 100

// CourseLister はゴルフ場一覧APIを1ページずつ取得します
type CourseLister interface {
	SearchCourses(ctx context.Context, areaCode string, page int) (rakuten.CoursePage, error)
}

// CourseDiscoverer はエリア内の全てのゴルフ場を列挙します
type CourseDiscoverer struct {
	lister CourseLister
}

// NewCourseDiscoverer は新しいCourseDiscovererを作成します
func NewCourseDiscoverer(lister CourseLister) *CourseDiscoverer {
	return &CourseDiscoverer{lister: lister}
}

// Discover はエリアコードに該当するゴルフ場を1ページ目から順に返します
// ページは必要になった時点で取得し、最後のページまで取得した時点で終了します
// ゴルフ場以外の情報(レッスン情報)は1件ずつ判定して除外します
// 1ページ目の取得に失敗した場合はエラーを返して終了します
// 2ページ目以降の取得に失敗した場合は、そのページのエラーを返して次のページへ進みます
func (d *CourseDiscoverer) Discover(ctx context.Context, regionCode string) iter.Seq2[model.RawCourse, error] {
	return func(yield func(model.RawCourse, error) bool) {
		// 全ページ数は1ページ目の取得後に確定する
		lastPage := 1

		for page := 1; page <= lastPage && page <= maxCoursePages; page++ {
			if err := ctx.Err(); err != nil {
				yield(model.RawCourse{}, err)
				return
			}

			result, err := d.lister.SearchCourses(ctx, regionCode, page)
			if err != nil {
				err = fmt.Errorf("failed to discover courses in area %s (page %d/%d): %w", regionCode, page, lastPage, err)
				if !yield(model.RawCourse{}, err) || page == 1 {
					return
				}
				continue
			}

			for _, course := range result.Courses {
				if course.IsLesson() {
					log.Printf("Skipping non-course entry %d (%s)", course.GolfCourseID, course.GolfCourseName)
					continue
				}

				if !yield(course, nil) {
					return
				}
			}

			// 次のページがなくなるまで取得
			if !result.HasNextPage() {
				return
			}
			lastPage = max(lastPage, result.PageCount)
		}
	}
}
