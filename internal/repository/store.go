package repository

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/uma-arai/sbcntr-golf-search/internal/common/config"
	"github.com/uma-arai/sbcntr-golf-search/internal/common/database"
)

// OpenTravelTimeStore は設定に応じた所要時間ストアを作成します
// 戻り値の close 関数で接続を閉じます
func OpenTravelTimeStore(ctx context.Context, cfg *config.Config, awsCfg aws.Config) (TravelTimeRepository, func() error, error) {
	switch cfg.Store {
	case config.StoreBackendDynamoDB:
		log.Printf("Using DynamoDB table %s as travel time store", cfg.Dynamo.TableName)
		repo := NewDynamoTravelTimeRepository(dynamodb.NewFromConfig(awsCfg), cfg.Dynamo.TableName)
		return repo, func() error { return nil }, nil

	case config.StoreBackendPostgres, "":
		db, err := database.NewDB(ctx, cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create database connection: %w", err)
		}

		// database.DBをrepository.DBに変換
		repoDb := &DB{DB: db.DB}
		repo := NewTravelTimeRepository(repoDb)
		if err := repo.EnsureSchema(ctx); err != nil {
			repoDb.Close()
			return nil, nil, err
		}

		return repo, repoDb.Close, nil
	}

	return nil, nil, fmt.Errorf("unsupported store backend: %s", cfg.Store)
}
