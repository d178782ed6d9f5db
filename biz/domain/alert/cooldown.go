package alert

import (
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/gopkg/util/gopool"
	"github.com/xh-polaris/gopkg/util/log"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"golang.org/x/net/context"

	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/config"
)

const cooldownKeyPrefix = "cooldown:alert:"

// CooldownCache 记录每个用户最近一次告警时间
// 单进程默认用内存实现, 多进程部署可切换为redis实现
type CooldownCache interface {
	// Get 返回用户最近一次告警时间
	Get(ctx context.Context, userId string) (time.Time, bool)

	// Set 记录一次成功告警
	Set(ctx context.Context, userId string, t time.Time)

	// Sweep 清理超过maxAge的条目, 控制内存占用
	Sweep(maxAge time.Duration)
}

// NewCooldownCache 按配置选择实现, 配了redis则冷却状态跨进程/重启保留
func NewCooldownCache(c *config.Config) CooldownCache {
	if c.Redis != nil {
		return NewRedisCooldown(redis.MustNewRedis(*c.Redis), time.Duration(c.Crisis.CooldownMinutes)*time.Minute)
	}
	return NewMemoryCooldown()
}

// MemoryCooldown 进程内冷却表, 进程重启即清空(接受的权衡)
type MemoryCooldown struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewMemoryCooldown() *MemoryCooldown {
	return &MemoryCooldown{
		entries: make(map[string]time.Time),
	}
}

func (m *MemoryCooldown) Get(_ context.Context, userId string) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.entries[userId]
	return t, ok
}

func (m *MemoryCooldown) Set(_ context.Context, userId string, t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[userId] = t
}

func (m *MemoryCooldown) Sweep(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)
	m.mu.Lock()
	defer m.mu.Unlock()
	for userId, t := range m.entries {
		if t.Before(cutoff) {
			delete(m.entries, userId)
		}
	}
}

// RedisCooldown 用带TTL的键存储冷却时间, 过期由redis负责, Sweep为空操作
type RedisCooldown struct {
	rs  *redis.Redis
	ttl time.Duration
}

func NewRedisCooldown(rs *redis.Redis, ttl time.Duration) *RedisCooldown {
	return &RedisCooldown{rs: rs, ttl: ttl}
}

func (r *RedisCooldown) Get(ctx context.Context, userId string) (time.Time, bool) {
	val, err := r.rs.GetCtx(ctx, cooldownKeyPrefix+userId)
	if err != nil || val == "" {
		return time.Time{}, false
	}
	unix, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}

func (r *RedisCooldown) Set(ctx context.Context, userId string, t time.Time) {
	err := r.rs.SetexCtx(ctx, cooldownKeyPrefix+userId, strconv.FormatInt(t.Unix(), 10), int(r.ttl.Seconds()))
	if err != nil {
		log.CtxError(ctx, "[cooldown] redis set failed, err=%v", err)
	}
}

func (r *RedisCooldown) Sweep(time.Duration) {}

// StartCooldownSweeper 周期清理冷却表, 立即执行一次后按interval循环
func StartCooldownSweeper(ctx context.Context, cache CooldownCache, maxAge, interval time.Duration) {
	gopool.CtxGo(ctx, func() {
		cache.Sweep(maxAge)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cache.Sweep(maxAge)
			}
		}
	})
}
