package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/uma-arai/sbcntr-golf-search/internal/common/database"
)

// StoreBackend は所要時間ストアの保存先です
type StoreBackend string

const (
	StoreBackendPostgres StoreBackend = "postgres"
	StoreBackendDynamoDB StoreBackend = "dynamodb"
)

// RakutenConfig は楽天GORA APIの設定です
type RakutenConfig struct {
	ApplicationID string
	AffiliateID   string
	Timeout       time.Duration
	RequestPerSec int
}

// RoutingConfig はGoogle Maps Directions APIの設定です
type RoutingConfig struct {
	APIKey  string
	Region  string
	Timeout time.Duration
}

type Config struct {
	DB     database.Config
	Store  StoreBackend
	Dynamo struct {
		TableName string
	}
	Rakuten RakutenConfig
	Routing RoutingConfig
	Search  struct {
		LookupParallelism int
	}
	HTTPPort int
	SFN      struct {
		TaskToken string
	}
	EnableTracing bool
}

// LoadConfig は設定を読み込みます
// プロセス起動時に1度だけ呼び出し、各コンポーネントのコンストラクタに渡します
func LoadConfig(taskToken string) (*Config, error) {
	cfg := &Config{
		DB: database.Config{
			Host:         getEnvOrDefault("DB_HOST", "localhost"),
			Port:         getEnvAsIntOrDefault("DB_PORT", 5432),
			UserName:     getEnvOrDefault("DB_USERNAME", "sbcntrapp"),
			Password:     getEnvOrDefault("DB_PASSWORD", "password"),
			DBName:       getEnvOrDefault("DB_NAME", "sbcntrapp"),
			SSLMode:      os.Getenv("DB_SSL_MODE"),
			MaxOpenConns: getEnvAsIntOrDefault("DB_MAX_OPEN_CONNS", 25),
			PingTimeout:  getEnvAsDurationOrDefault("DB_PING_TIMEOUT", 5*time.Second),
		},
		Store: StoreBackend(strings.ToLower(getEnvOrDefault("STORE_BACKEND", string(StoreBackendPostgres)))),
		Rakuten: RakutenConfig{
			ApplicationID: os.Getenv("RAKUTEN_APPID"),
			AffiliateID:   os.Getenv("RAKUTEN_AFID"),
			Timeout:       getEnvAsDurationOrDefault("RAKUTEN_TIMEOUT", 15*time.Second),
			RequestPerSec: getEnvAsIntOrDefault("RAKUTEN_RPS", 1),
		},
		Routing: RoutingConfig{
			APIKey:  os.Getenv("GOOGLE_MAP_API_KEY"),
			Region:  "jp",
			Timeout: getEnvAsDurationOrDefault("ROUTING_TIMEOUT", 10*time.Second),
		},
		HTTPPort: getEnvAsIntOrDefault("HTTP_PORT", 8080),
		SFN: struct {
			TaskToken string
		}{
			TaskToken: taskToken,
		},
		EnableTracing: false,
	}
	cfg.Dynamo.TableName = getEnvOrDefault("DYNAMODB_TABLE", "SearchInn")
	cfg.Search.LookupParallelism = getEnvAsIntOrDefault("SEARCH_LOOKUP_PARALLELISM", 8)

	switch cfg.Store {
	case StoreBackendPostgres, StoreBackendDynamoDB:
	default:
		return nil, fmt.Errorf("unsupported STORE_BACKEND: %s", cfg.Store)
	}

	// 環境変数[SBCNTR_ENABLE_TRACING]を見てトレースを有効にする。対応しているTracingはAWS_XRAYのみ。
	// 環境変数[AWS_XRAY_SDK_DISABLED]がtrueの場合は必ずトレースを無効にする。
	enableKey := os.Getenv("SBCNTR_ENABLE_TRACING")
	if !sdkDisabled() && (strings.ToLower(enableKey) == "true" || enableKey == "1") {
		os.Setenv("AWS_XRAY_SDK_DISABLED", "FALSE")
		cfg.EnableTracing = true
	} else {
		os.Setenv("AWS_XRAY_SDK_DISABLED", "TRUE")
		cfg.EnableTracing = false
	}

	return cfg, nil
}

// ValidateRakuten は楽天APIの認証情報が設定されているか確認します
func (c *Config) ValidateRakuten() error {
	if c.Rakuten.ApplicationID == "" {
		return fmt.Errorf("RAKUTEN_APPID is required")
	}
	return nil
}

// ValidateRouting はGoogle Maps APIの認証情報が設定されているか確認します
func (c *Config) ValidateRouting() error {
	if c.Routing.APIKey == "" {
		return fmt.Errorf("GOOGLE_MAP_API_KEY is required")
	}
	return nil
}

// IsLocal はローカル環境で実行されているかを返します
func IsLocal() bool {
	return os.Getenv("ENV") == "LOCAL"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Printf("Environment variable %s is not set, using default value", key)
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Environment variable %s has invalid duration %q, using default value", key, value)
	}
	return defaultValue
}

// Check if SDK is disabled
func sdkDisabled() bool {
	disableKey := os.Getenv("AWS_XRAY_SDK_DISABLED")
	return strings.ToLower(disableKey) == "true"
}
