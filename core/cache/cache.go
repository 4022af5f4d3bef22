package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a thread-safe TTL cache with tag invalidation. When a Redis client is attached,
// values written through Remember live there as JSON so every instance shares them.
type Cache struct {
	m sync.Map
	// tagIndex maps tag to a *sync.Map of keys
	tagIndex sync.Map
	redis    redis.Cmdable
	prefix   string
}

var (
	once     sync.Once
	instance *Cache
)

// GetInstance returns the process-wide memory-only cache.
func GetInstance() *Cache {
	once.Do(func() {
		instance = NewCache(nil)
	})
	return instance
}

// NewCache creates a cache; rdb may be nil.
func NewCache(rdb redis.Cmdable) *Cache {
	return &Cache{redis: rdb, prefix: "cache:"}
}

// WithRedis attaches a Redis tier. Call before the cache is shared.
func (c *Cache) WithRedis(rdb redis.Cmdable) *Cache {
	c.redis = rdb
	return c
}

type cacheItem struct {
	Value     interface{}
	ExpiresAt int64 // unix nanoseconds; 0 never expires
}

// Set stores value under key. ttl 0 means no expiration.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration, tags ...string) {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}
	c.m.Store(key, cacheItem{Value: value, ExpiresAt: expiresAt})
	if len(tags) > 0 {
		c.TagKey(key, tags)
	}
}

// Get returns the value for key if present and not expired.
func (c *Cache) Get(key string) (interface{}, bool) {
	v, ok := c.m.Load(key)
	if !ok {
		return nil, false
	}
	item := v.(cacheItem)
	if item.ExpiresAt > 0 && time.Now().UnixNano() > item.ExpiresAt {
		c.m.Delete(key)
		return nil, false
	}
	return item.Value, true
}

func (c *Cache) GetOrDefault(key string, def interface{}) interface{} {
	if v, ok := c.Get(key); ok {
		return v
	}
	return def
}

// Delete removes keys from memory and Redis.
func (c *Cache) Delete(keys ...string) {
	for _, key := range keys {
		c.m.Delete(key)
	}
	if c.redis != nil && len(keys) > 0 {
		full := make([]string, len(keys))
		for i, k := range keys {
			full[i] = c.prefix + k
		}
		_ = c.redis.Del(context.Background(), full...).Err()
	}
}

// Key joins parts into a composite key.
func Key(parts ...interface{}) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprintf("%v", p)
	}
	return strings.Join(s, "|")
}

// TagKey assigns tags to key.
func (c *Cache) TagKey(key string, tags []string) {
	for _, tag := range tags {
		val, _ := c.tagIndex.LoadOrStore(tag, &sync.Map{})
		val.(*sync.Map).Store(key, struct{}{})
	}
}

// GetKeysByTag returns the keys currently assigned to tag.
func (c *Cache) GetKeysByTag(tag string) []string {
	var keys []string
	if val, ok := c.tagIndex.Load(tag); ok {
		val.(*sync.Map).Range(func(key, _ interface{}) bool {
			keys = append(keys, key.(string))
			return true
		})
	}
	return keys
}

// DeleteByTag deletes every entry assigned to one of tags, locally and in Redis.
func (c *Cache) DeleteByTag(ctx context.Context, tags ...string) {
	for _, tag := range tags {
		if val, ok := c.tagIndex.LoadAndDelete(tag); ok {
			val.(*sync.Map).Range(func(key, _ interface{}) bool {
				c.m.Delete(key)
				return true
			})
		}
		if c.redis != nil {
			setKey := c.prefix + "tag:" + tag
			members, err := c.redis.SMembers(ctx, setKey).Result()
			if err == nil && len(members) > 0 {
				_ = c.redis.Del(ctx, members...).Err()
			}
			_ = c.redis.Del(ctx, setKey).Err()
		}
	}
}

// Remember returns the cached value for key, loading and storing it on a miss.
// With Redis attached the shared Redis tier is the only one read, so DeleteByTag on any
// instance invalidates all of them; the memory tier is used only when Redis fails.
func Remember[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, tags []string, load func() (T, error)) (T, error) {
	if c.redis != nil {
		raw, err := c.redis.Get(ctx, c.prefix+key).Bytes()
		if err == nil {
			var t T
			if json.Unmarshal(raw, &t) == nil {
				return t, nil
			}
		}
		if err == nil || errors.Is(err, redis.Nil) {
			t, err := load()
			if err != nil {
				return t, err
			}
			c.store(ctx, key, t, ttl, tags)
			return t, nil
		}
	}
	if v, ok := c.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	t, err := load()
	if err != nil {
		return t, err
	}
	c.Set(key, t, ttl, tags...)
	return t, nil
}

// store writes t to Redis and records key under each tag set.
func (c *Cache) store(ctx context.Context, key string, t interface{}, ttl time.Duration, tags []string) {
	raw, err := json.Marshal(t)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		return
	}
	for _, tag := range tags {
		_ = c.redis.SAdd(ctx, c.prefix+"tag:"+tag, c.prefix+key).Err()
	}
}
