// Package ratelimiter は外部API呼び出しの頻度制御を提供します。
package ratelimiter

import (
	"log/slog"
	"sync"
	"time"
)

// RateLimiterInterface は操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	WaitIfNeeded()
}

// RateLimiter は一定間隔あたりの呼び出し回数を上限以下に抑えます。
// 複数ゴルーチンからの併用に対して安全です。
type RateLimiter struct {
	mu        sync.Mutex
	limit     int           // intervalあたりの上限回数
	interval  time.Duration // カウントをリセットする単位
	count     int
	lastReset time.Time
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
	}
}

// WaitIfNeeded は上限に達している場合、次のintervalが始まるまでブロックします。
func (rl *RateLimiter) WaitIfNeeded() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}

	rl.count++
	if rl.count > rl.limit {
		sleep := rl.interval - now.Sub(rl.lastReset)
		if sleep > 0 {
			slog.Info("rate limit reached, waiting", "limit", rl.limit, "sleep", sleep)
			time.Sleep(sleep)
		}
		rl.count = 1
		rl.lastReset = time.Now()
	}
}
