// Package lock serializes work on a key inside the process and, with Redis, across instances.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"

	"warehouse.GO/config"
	"warehouse.GO/core/apperror"
)

// keyedMutex is a one-slot channel so waiting for it can observe ctx.
type keyedMutex struct {
	ch   chan struct{}
	refs int
}

// Locker hands out per-key locks.
type Locker struct {
	mu     sync.Mutex
	local  map[string]*keyedMutex
	redis  *redislock.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// New returns a Locker. client may be nil, in which case only the in-process lock is taken.
func New(client *redislock.Client, ttl time.Duration, logger *logrus.Logger) *Locker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Locker{local: make(map[string]*keyedMutex), redis: client, ttl: ttl, logger: logger}
}

// Acquire blocks until key is held or ctx is done and returns the release function.
// A Redis lock that stays busy past the retry window yields a CONFLICT error.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	m := l.ref(key)
	select {
	case m.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, m)
		return nil, ctx.Err()
	}
	unlockLocal := func() {
		<-m.ch
		l.unref(key, m)
	}
	if l.redis == nil {
		return unlockLocal, nil
	}
	lk, err := l.redis.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), int(l.ttl/(50*time.Millisecond))),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		unlockLocal()
		return nil, apperror.Conflict("Stock is being updated by another request, please retry")
	}
	if err != nil {
		l.logger.WithError(err).WithField("key", key).Warn("lock: redis unavailable, using local lock only")
		return unlockLocal, nil
	}
	return func() {
		if err := lk.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.WithError(err).WithField("key", key).Warn("lock: release failed")
		}
		unlockLocal()
	}, nil
}

func (l *Locker) ref(key string) *keyedMutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.local[key]
	if !ok {
		m = &keyedMutex{ch: make(chan struct{}, 1)}
		l.local[key] = m
	}
	m.refs++
	return m
}

func (l *Locker) unref(key string, m *keyedMutex) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m.refs--
	if m.refs == 0 {
		delete(l.local, key)
	}
}

var (
	defaultOnce   sync.Once
	defaultLocker *Locker
)

// Default returns the process-wide Locker, Redis-backed when config.RedisClient is set.
// Every stock writer in the process must share it.
func Default() *Locker {
	defaultOnce.Do(func() {
		var client *redislock.Client
		if config.RedisClient != nil {
			client = redislock.New(config.RedisClient)
		}
		defaultLocker = New(client, config.GetConfig().StockLockTTL, config.GetLogger())
	})
	return defaultLocker
}
