package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type DB struct {
	*sqlx.DB
}

// Config は所要時間ストア(PostgreSQL)への接続設定です
type Config struct {
	Host     string
	Port     int
	UserName string
	Password string
	DBName   string
	// SSLMode が空の場合、localhostでは disable、それ以外では require になります
	SSLMode      string
	MaxOpenConns int
	PingTimeout  time.Duration
}

func (cfg Config) sslMode() string {
	if cfg.SSLMode != "" {
		return cfg.SSLMode
	}
	if cfg.Host == "localhost" || cfg.Host == "127.0.0.1" {
		return "disable"
	}
	return "require"
}

// DSN はPostgreSQLへの接続文字列を返します
func (cfg Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.UserName,
		cfg.Password,
		cfg.DBName,
		cfg.sslMode(),
	)
}

// NewDB はX-Rayでトレースされる接続を作成し、疎通確認を行います
func NewDB(ctx context.Context, cfg Config) (*DB, error) {
	db, err := xray.SQLContext("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database with X-Ray: %w", err)
	}

	// コネクションプールの設定
	maxOpen := max(cfg.MaxOpenConns, 1)
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingTimeout := cfg.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	log.Printf("DB connected successfully (host=%s, dbname=%s)", cfg.Host, cfg.DBName)
	return &DB{sqlx.NewDb(db, "postgres")}, nil
}
