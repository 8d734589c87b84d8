package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"runtime/debug"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/uma-arai/sbcntr-golf-search/internal/common/config"
	"github.com/uma-arai/sbcntr-golf-search/internal/handler"
	"github.com/uma-arai/sbcntr-golf-search/internal/service/search"
)

const (
	projectName = "sbcntr-golf-search"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 設定の読み込み
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("Failed to load config: %v\nStack trace:\n%s", err, debug.Stack())
	}

	if cfg.EnableTracing {
		if err := xray.Configure(xray.Config{ServiceVersion: "1.0.0"}); err != nil {
			log.Fatalf("Failed to configure X-Ray: %v", err)
		}
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

	e := echo.New()
	e.HideBanner = true
	e.Use(
		middleware.Recover(),
		echo.WrapMiddleware(func(next http.Handler) http.Handler {
			return xray.Handler(xray.NewFixedSegmentNamer(projectName), next)
		}),
		handler.ErrorLogMiddleware(log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)),
	)

	handler.NewSearchHandler(service).Register(e.Group("/api"))

	if err := run(ctx, e, cfg.HTTPPort); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func run(ctx context.Context, e *echo.Echo, port int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		if err := e.Shutdown(context.Background()); err != nil {
			log.Printf("Failed to shutdown the echo server: %v", err)
		}
	}()

	if err := e.Start(fmt.Sprintf(":%d", port)); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	}

	return nil
}
