package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/uma-arai/sbcntr-golf-search/internal/model"
)

const (
	dynamoKeyAttr       = "golf_course_id"
	dynamoCreatedAtAttr = "created_at"
	// 出発地点ごとの所要時間は duration1, duration2 ... の属性で保持する
	dynamoDurationPrefix = "duration"
)

// DynamoDBAPI はDynamoDBクライアントのうち所要時間の保存に必要な操作です
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoTravelTimeRepository はDynamoDBのテーブルに所要時間を保存します
type DynamoTravelTimeRepository struct {
	client    DynamoDBAPI
	tableName string
}

// NewDynamoTravelTimeRepository は新しいDynamoTravelTimeRepositoryを作成します
func NewDynamoTravelTimeRepository(client DynamoDBAPI, tableName string) *DynamoTravelTimeRepository {
	return &DynamoTravelTimeRepository{
		client:    client,
		tableName: tableName,
	}
}

// FindByCourseID はゴルフ場IDから所要時間を取得します
func (r *DynamoTravelTimeRepository) FindByCourseID(ctx context.Context, courseID int64) (*model.CourseTravelTime, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "DynamoTravelTimeRepository.FindByCourseID")
	defer seg.Close(nil)

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            courseKey(courseID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		seg.Close(err)
		return nil, fmt.Errorf("failed to get travel time for course %d: %w", courseID, err)
	}

	if len(out.Item) == 0 {
		return nil, ErrTravelTimeNotFound
	}

	record, err := itemToTravelTime(out.Item)
	if err != nil {
		seg.Close(err)
		return nil, fmt.Errorf("invalid travel time item for course %d: %w", courseID, err)
	}

	return record, nil
}

// PutIfAbsent はゴルフ場の所要時間を保存します
// 条件付き書き込みにより、既にレコードが存在する場合は false を返します
func (r *DynamoTravelTimeRepository) PutIfAbsent(ctx context.Context, courseID int64, durations model.Durations) (bool, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "DynamoTravelTimeRepository.PutIfAbsent")
	defer seg.Close(nil)

	if err := validateDurations(durations); err != nil {
		seg.Close(err)
		return false, err
	}

	item := courseKey(courseID)
	item[dynamoCreatedAtAttr] = &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)}
	for id, minutes := range durations {
		item[durationAttr(id)] = &types.AttributeValueMemberN{Value: strconv.Itoa(minutes)}
	}

	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": dynamoKeyAttr,
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		seg.Close(err)
		return false, fmt.Errorf("failed to put travel time for course %d: %w", courseID, err)
	}

	return true, nil
}

func courseKey(courseID int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		dynamoKeyAttr: &types.AttributeValueMemberN{Value: strconv.FormatInt(courseID, 10)},
	}
}

func durationAttr(id model.DepartureID) string {
	return dynamoDurationPrefix + strconv.Itoa(int(id))
}

func itemToTravelTime(item map[string]types.AttributeValue) (*model.CourseTravelTime, error) {
	record := &model.CourseTravelTime{Durations: make(model.Durations)}

	for name, av := range item {
		switch {
		case name == dynamoKeyAttr:
			n, ok := av.(*types.AttributeValueMemberN)
			if !ok {
				return nil, fmt.Errorf("unexpected type for %s: %T", name, av)
			}
			id, err := strconv.ParseInt(n.Value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", name, err)
			}
			record.GolfCourseID = id

		case name == dynamoCreatedAtAttr:
			if s, ok := av.(*types.AttributeValueMemberS); ok {
				if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
					record.CreatedAt = t
				}
			}

		case strings.HasPrefix(name, dynamoDurationPrefix):
			departure, err := strconv.Atoi(strings.TrimPrefix(name, dynamoDurationPrefix))
			if err != nil {
				continue
			}
			// 到達不可の出発地点はNULLまたは属性なしで表現される
			n, ok := av.(*types.AttributeValueMemberN)
			if !ok {
				continue
			}
			minutes, err := strconv.Atoi(n.Value)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", name, err)
			}
			record.Durations[model.DepartureID(departure)] = minutes
		}
	}

	return record, nil
}
