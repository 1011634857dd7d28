// Package redis は水準キャッシュ用のRedisクライアント生成を提供します。
package redis

import (
	"context"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient は環境変数REDIS_HOST/REDIS_PORT/REDIS_PASSWORDから
// クライアントを生成し、Pingで疎通を確認してから返します。
// キャッシュは任意の依存であり、失敗時は呼び出し側がキャッシュなしで続行します。
func NewRedisClient() (*redis.Client, error) {
	addr := os.Getenv("REDIS_HOST") + ":" + os.Getenv("REDIS_PORT")

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		slog.Error("redis ping failed", "address", addr, "error", err)
		return nil, err
	}

	slog.Info("redis cache connected", "address", addr)
	return rdb, nil
}
