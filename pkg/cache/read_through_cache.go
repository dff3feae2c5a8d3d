package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"
)

// ReadThroughCache memoizes derived values (such as assembled conversation
// trees) under string keys with a TTL. Eviction is based on LRU and LFU
// policies. Safe for concurrent use.
type ReadThroughCache[ValueType any] interface {
	Get(key string) (ValueType, error)
	Put(key string, value ValueType) error
}

type ReadThroughCacheImpl[ValueType any] struct {
	cache  *ristretto.Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewReadThroughCacheImpl[ValueType any](
	cache *ristretto.Cache,
	ttl time.Duration,
	logger *zap.Logger,
) *ReadThroughCacheImpl[ValueType] {
	return &ReadThroughCacheImpl[ValueType]{
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

func (rtc *ReadThroughCacheImpl[ValueType]) Get(key string) (ValueType, error) {
	var zero ValueType
	value, found := rtc.cache.Get(key)
	if !found {
		return zero, ErrKeyNotFound
	}
	typedValue, ok := value.(ValueType)
	if !ok {
		return zero, fmt.Errorf("value not of expected type %T returned from cache when getting", value)
	}
	return typedValue, nil
}

func (rtc *ReadThroughCacheImpl[ValueType]) Put(key string, value ValueType) error {
	set := rtc.cache.SetWithTTL(key, value, 1, rtc.ttl)
	if !set {
		rtc.logger.Warn("Failed to set value in cache", zap.String("key", key))
		return ErrSetFailed
	}
	return nil
}

// Wait blocks until pending writes are visible. Used by tests.
func (rtc *ReadThroughCacheImpl[ValueType]) Wait() {
	rtc.cache.Wait()
}

var (
	ErrKeyNotFound = errors.New("key not found within the cache")
	ErrSetFailed   = errors.New("failed to set value in cache")
)
