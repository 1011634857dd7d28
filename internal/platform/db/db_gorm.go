// Package db はGORMによるPostgreSQL接続の確立とマイグレーションを提供します。
package db

import (
	"fmt"
	"log"
	"os"
	"time"

	gpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	consadapters "index_backend/internal/feature/constituents/adapters"
	divadapters "index_backend/internal/feature/divisor/adapters"
	levadapters "index_backend/internal/feature/levels/adapters"
	pricesadapters "index_backend/internal/feature/prices/adapters"
)

// Config はデータベース接続設定を保持します。
type Config struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     string
}

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	return Config{
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
	}
}

// BuildDSN は設定からPostgreSQL接続文字列を組み立てます。
// タイムスタンプをUTCで扱うためTimeZone=UTCを固定します。
func BuildDSN(cfg Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
}

// Opener はDSNからgorm.DBを開く関数型です。テストで差し替え可能にします。
type Opener func(dsn string) (*gorm.DB, error)

// ConnectWithRetry は接続に成功するまで一定間隔でリトライします。
// timeoutを超えた場合は最後のエラーを返します。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %v: %w", timeout, err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}
}

func gormOpen(dsn string) (*gorm.DB, error) {
	// TranslateErrorで主キー衝突をgorm.ErrDuplicatedKeyとして受け取る
	return gorm.Open(gpostgres.Open(dsn), &gorm.Config{TranslateError: true})
}

// OpenDB は環境変数の設定でデータベースへ接続し、
// RUN_MIGRATIONS=trueの場合はマイグレーションを実行します。
func OpenDB() *gorm.DB {
	dsn := BuildDSN(LoadConfigFromEnv())

	db, err := ConnectWithRetry(dsn, 60*time.Second, gormOpen)
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		// マイグレーション（価格・銘柄ユニバース・構成銘柄・指数水準・除数）
		if err := db.AutoMigrate(
			&pricesadapters.TickerPriceModel{},
			&pricesadapters.TickerUniverseModel{},
			&consadapters.ConstituentModel{},
			&levadapters.LevelModel{},
			&divadapters.DivisorModel{},
		); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}
