package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"backend/models"

	"github.com/redis/go-redis/v9"
)

// Daily AI-request limits per subscription tier.
var tierQuotas = map[string]int{
	models.TierFree:    2,
	models.TierBasic:   5,
	models.TierPremium: 20,
}

const quotaWindow = 24 * time.Hour

type QuotaResult struct {
	Allowed   bool
	Count     int
	Limit     int
	ResetAt   time.Time
	Remaining int
}

// QuotaStore counts requests per key over a rolling window. Keeping the
// counter out of the user row avoids read-modify-write races under
// concurrent requests.
type QuotaStore interface {
	Take(ctx context.Context, key string, limit int, window time.Duration) (QuotaResult, error)
}

// AIQuotaLimiter gates AI-backed operations (plan create, meal replace).
type AIQuotaLimiter struct {
	store QuotaStore
}

func NewAIQuotaLimiter(store QuotaStore) *AIQuotaLimiter {
	return &AIQuotaLimiter{store: store}
}

func (l *AIQuotaLimiter) Allow(ctx context.Context, userID uint, tier string) (QuotaResult, error) {
	limit, ok := tierQuotas[tier]
	if !ok {
		limit = tierQuotas[models.TierFree]
	}
	key := fmt.Sprintf("quota:ai:%d", userID)
	return l.store.Take(ctx, key, limit, quotaWindow)
}

// LimitMessage is the human-readable 429 body text.
func (l *AIQuotaLimiter) LimitMessage(res QuotaResult) string {
	return fmt.Sprintf("daily AI request limit of %d reached, resets at %s",
		res.Limit, res.ResetAt.UTC().Format(time.RFC3339))
}

// ---------- redis store ----------

type RedisQuotaStore struct {
	client *redis.Client
}

func NewRedisQuotaStore(client *redis.Client) *RedisQuotaStore {
	return &RedisQuotaStore{client: client}
}

func (s *RedisQuotaStore) Take(ctx context.Context, key string, limit int, window time.Duration) (QuotaResult, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return QuotaResult{}, fmt.Errorf("quota incr failed: %w", err)
	}
	if count == 1 {
		// first hit opens the window
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return QuotaResult{}, fmt.Errorf("quota expire failed: %w", err)
		}
	}

	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}

	res := QuotaResult{
		Allowed: count <= int64(limit),
		Count:   int(count),
		Limit:   limit,
		ResetAt: time.Now().Add(ttl),
	}
	if res.Allowed {
		res.Remaining = limit - res.Count
	}
	if !res.Allowed {
		// denied attempts must not consume the window
		_, _ = s.client.Decr(ctx, key).Result()
		res.Count = limit
	}
	return res, nil
}

// ---------- in-memory store ----------

type memQuotaEntry struct {
	count       int
	windowStart time.Time
}

// MemoryQuotaStore backs tests and single-instance deployments without
// redis. The clock is injectable so window expiry is testable.
type MemoryQuotaStore struct {
	mu      sync.Mutex
	entries map[string]*memQuotaEntry
	now     func() time.Time
}

func NewMemoryQuotaStore() *MemoryQuotaStore {
	return &MemoryQuotaStore{
		entries: make(map[string]*memQuotaEntry),
		now:     time.Now,
	}
}

// SetClock overrides the time source. Test hook.
func (s *MemoryQuotaStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *MemoryQuotaStore) Take(ctx context.Context, key string, limit int, window time.Duration) (QuotaResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e := s.entries[key]
	if e == nil || now.Sub(e.windowStart) >= window {
		e = &memQuotaEntry{windowStart: now}
		s.entries[key] = e
	}

	res := QuotaResult{
		Limit:   limit,
		ResetAt: e.windowStart.Add(window),
	}
	if e.count >= limit {
		res.Allowed = false
		res.Count = e.count
		return res, nil
	}

	e.count++
	res.Allowed = true
	res.Count = e.count
	res.Remaining = limit - e.count
	return res, nil
}
