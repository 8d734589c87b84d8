package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"runtime/debug"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/uma-arai/sbcntr-golf-search/internal/common/config"
	"github.com/uma-arai/sbcntr-golf-search/internal/handler"
	"github.com/uma-arai/sbcntr-golf-search/internal/service/search"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 設定の読み込み
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("Failed to load config: %v\nStack trace:\n%s", err, debug.Stack())
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v\nStack trace:\n%s", err, debug.Stack())
	}

	if err := cfg.LoadSecrets(ctx, ssm.NewFromConfig(awsCfg)); err != nil {
		log.Fatalf("Failed to load secrets: %v\nStack trace:\n%s", err, debug.Stack())
	}

	service, err := search.NewPlanSearchService(ctx, cfg, awsCfg)
	if err != nil {
		log.Fatalf("Failed to create service: %v\nStack trace:\n%s", err, debug.Stack())
	}
	defer service.Close()

	lambda.StartWithOptions(handler.NewLambdaHandler(service), lambda.WithContext(ctx))
}
