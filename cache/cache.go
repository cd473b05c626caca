// Package cache 提供带容量上限与 TTL 的泛型缓存
//
// 底层使用 hashicorp/golang-lru 的 expirable LRU，本包补充命名、命中统计
// 以及读穿场景需要的 SetIfAbsent。
package cache

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Config 缓存配置
type Config struct {
	// Name 缓存名称（用于日志和统计）
	Name string

	// MaxSize 最大缓存条目数，0 表示无限制
	MaxSize int

	// TTL 条目自写入起的存活时间，0 表示永不过期
	TTL time.Duration
}

// Stats 缓存统计信息
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

// Cache 并发安全的泛型 LRU 缓存
//
//	c := cache.New[int64, *item.Item](cache.Config{Name: "items", MaxSize: 1000, TTL: time.Minute})
//	c.Set(id, it)
//	if v, ok := c.Get(id); ok { ... }
type Cache[K comparable, V any] struct {
	name    string
	maxSize int
	lru     *expirable.LRU[K, V]

	// 写操作串行化，保证 SetIfAbsent 的检查与写入原子
	mu sync.Mutex

	hits   atomic.Int64
	misses atomic.Int64
}

// New 创建缓存实例
func New[K comparable, V any](config Config) *Cache[K, V] {
	if config.Name == "" {
		config.Name = "unnamed"
	}
	return &Cache[K, V]{
		name:    config.Name,
		maxSize: config.MaxSize,
		lru:     expirable.NewLRU[K, V](config.MaxSize, nil, config.TTL),
	}
}

// Get 获取未过期的缓存值
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Set 写入或覆盖缓存值，超过容量时淘汰最久未使用的条目
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, value)
}

// SetIfAbsent 仅在 key 不存在时写入，返回是否写入
//
// 读穿加载时使用：避免慢读把并发写入的新值覆盖成旧值。
func (c *Cache[K, V]) SetIfAbsent(key K, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lru.Contains(key) {
		return false
	}
	c.lru.Add(key, value)
	return true
}

// Delete 删除缓存条目，返回是否存在
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Remove(key)
}

// Size 当前条目数（可能包含尚未清理的过期条目）
func (c *Cache[K, V]) Size() int {
	return c.lru.Len()
}

// Stats 获取统计信息副本
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   c.lru.Len(),
	}
}

// HitRate 命中率，无访问时为 0
func (c *Cache[K, V]) HitRate() float64 {
	hits, misses := c.hits.Load(), c.misses.Load()
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

// Name 缓存名称
func (c *Cache[K, V]) Name() string { return c.name }

func (c *Cache[K, V]) String() string {
	s := c.Stats()
	return fmt.Sprintf("Cache[%s]: size=%d/%d, hits=%d, misses=%d, hit_rate=%.2f%%",
		c.name, s.Size, c.maxSize, s.Hits, s.Misses, c.HitRate()*100)
}
