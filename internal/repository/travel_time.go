package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/uma-arai/sbcntr-golf-search/internal/model"
)

// ErrTravelTimeNotFound はゴルフ場の所要時間が保存されていない場合のエラーです
var ErrTravelTimeNotFound = errors.New("travel time not found")

// TravelTimeRepository はゴルフ場ごとの所要時間の永続化を担当するインターフェースです
// 更新・削除の操作は提供しません（一度保存した所要時間は変更しない）
type TravelTimeRepository interface {
	FindByCourseID(ctx context.Context, courseID int64) (*model.CourseTravelTime, error)
	PutIfAbsent(ctx context.Context, courseID int64, durations model.Durations) (bool, error)
}

// TravelTimeRepositoryImpl はPostgreSQLに所要時間を保存します
type TravelTimeRepositoryImpl struct {
	db *DB
}

// NewTravelTimeRepository は新しいTravelTimeRepositoryImplを作成します
func NewTravelTimeRepository(db *DB) *TravelTimeRepositoryImpl {
	return &TravelTimeRepositoryImpl{db: db}
}

const createTravelTimeTable = `
	CREATE TABLE IF NOT EXISTS golf_course_durations (
		golf_course_id BIGINT PRIMARY KEY,
		durations JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// EnsureSchema は所要時間テーブルが存在しない場合に作成します
func (r *TravelTimeRepositoryImpl) EnsureSchema(ctx context.Context) error {
	ctx, seg := xray.BeginSubsegment(ctx, "TravelTimeRepository.EnsureSchema")
	defer seg.Close(nil)

	if _, err := r.db.ExecContext(ctx, createTravelTimeTable); err != nil {
		seg.Close(err)
		return fmt.Errorf("failed to create golf_course_durations table: %w", err)
	}

	return nil
}

// FindByCourseID はゴルフ場IDから所要時間を取得します
// 保存されていない場合は ErrTravelTimeNotFound を返します
func (r *TravelTimeRepositoryImpl) FindByCourseID(ctx context.Context, courseID int64) (*model.CourseTravelTime, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "TravelTimeRepository.FindByCourseID")
	defer seg.Close(nil)

	query := `
		SELECT
			golf_course_id,
			durations,
			created_at
		FROM golf_course_durations
		WHERE golf_course_id = $1
	`

	var record model.CourseTravelTime
	err := r.db.QueryRowxContext(ctx, query, courseID).StructScan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTravelTimeNotFound
	}
	if err != nil {
		seg.Close(err)
		return nil, fmt.Errorf("failed to get travel time for course %d: %w", courseID, err)
	}

	return &record, nil
}

// PutIfAbsent はゴルフ場の所要時間を保存します
// 既に同じゴルフ場IDのレコードが存在する場合は何もせず false を返します
func (r *TravelTimeRepositoryImpl) PutIfAbsent(ctx context.Context, courseID int64, durations model.Durations) (bool, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "TravelTimeRepository.PutIfAbsent")
	defer seg.Close(nil)

	if err := validateDurations(durations); err != nil {
		seg.Close(err)
		return false, err
	}

	// 主キーの競合時は何もしないため、同じゴルフ場IDへの同時書き込みでも先勝ちとなる
	query := `
		INSERT INTO golf_course_durations (
			golf_course_id,
			durations,
			created_at
		) VALUES ($1, $2, $3)
		ON CONFLICT (golf_course_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, courseID, durations, time.Now())
	if err != nil {
		seg.Close(err)
		return false, fmt.Errorf("failed to insert travel time for course %d: %w", courseID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		seg.Close(err)
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

func validateDurations(durations model.Durations) error {
	if len(durations) == 0 {
		return fmt.Errorf("durations must not be empty")
	}
	return durations.Validate()
}
