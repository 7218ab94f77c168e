package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// slidingWindow 按 key 记录窗口内的请求时间
type slidingWindow struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	store  map[string][]time.Time
}

func newSlidingWindow(max int, window time.Duration) *slidingWindow {
	return &slidingWindow{max: max, window: window, store: make(map[string][]time.Time)}
}

// allow 记录一次请求，超过上限时返回 false
func (w *slidingWindow) allow(key string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	kept := prune(w.store[key], now.Add(-w.window))
	if len(kept) >= w.max {
		w.store[key] = kept
		return false
	}
	w.store[key] = append(kept, now)
	return true
}

// sweep 清理过期数据
func (w *slidingWindow) sweep(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	cutoff := now.Add(-w.window)
	for key, ts := range w.store {
		kept := prune(ts, cutoff)
		if len(kept) == 0 {
			delete(w.store, key)
		} else {
			w.store[key] = kept
		}
	}
}

// run 按 interval 定期清理，ctx 结束时退出
func (w *slidingWindow) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			w.sweep(now)
		}
	}
}

func prune(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// MutationRateLimit 账本写操作限流中间件
// 每个操作者在 window 内最多 maxMutations 次写入，超过则返回 429。需在 JWTAuth 之后使用，未认证时按 IP 计数。
// 过期记录的清理协程随 ctx 结束退出。
func MutationRateLimit(ctx context.Context, maxMutations int, window time.Duration) gin.HandlerFunc {
	limiter := newSlidingWindow(maxMutations, window)
	go limiter.run(ctx, time.Minute)

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}
		key := "ip:" + c.ClientIP()
		if id := GetCurrentUserID(c); id != 0 {
			key = fmt.Sprintf("user:%d", id)
		}
		if !limiter.allow(key, time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "操作过于频繁，请稍后再试",
			})
			return
		}
		c.Next()
	}
}
