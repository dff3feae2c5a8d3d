package cache

import (
	"testing"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type view struct {
	ConversationID string
	SpanCount      int
}

func TestReadThroughCacheImpl_Get(t *testing.T) {
	t.Run("Returns error if key is not found", func(t *testing.T) {
		rtc := getNewReadThroughCacheImpl(time.Minute)
		_, err := rtc.Get("key")
		if err == nil {
			t.Error("Expected error, got nil")
		}
		assert.Equal(t, ErrKeyNotFound, err)
	})

	t.Run("Returns value if key is found", func(t *testing.T) {
		rtc := getNewReadThroughCacheImpl(time.Minute)
		value := view{ConversationID: "conv-1", SpanCount: 4}
		err := rtc.Put("conv-1|24h", value)
		assert.Nil(t, err)
		rtc.Wait()
		res, err := rtc.Get("conv-1|24h")
		assert.Nil(t, err)
		assert.Equal(t, value, res)
	})
}

func TestReadThroughCacheImpl_Put(t *testing.T) {
	t.Run("Overwrites an existing key", func(t *testing.T) {
		rtc := getNewReadThroughCacheImpl(time.Minute)
		err := rtc.Put("key", view{ConversationID: "conv-1", SpanCount: 1})
		assert.Nil(t, err)
		rtc.Wait()
		updated := view{ConversationID: "conv-1", SpanCount: 9}
		err = rtc.Put("key", updated)
		assert.Nil(t, err)
		rtc.Wait()
		res, err := rtc.Get("key")
		assert.Nil(t, err)
		assert.Equal(t, updated, res)
	})

	t.Run("Entries expire after the TTL", func(t *testing.T) {
		rtc := getNewReadThroughCacheImpl(10 * time.Millisecond)
		err := rtc.Put("key", view{ConversationID: "conv-1"})
		assert.Nil(t, err)
		rtc.Wait()
		time.Sleep(50 * time.Millisecond)
		_, err = rtc.Get("key")
		assert.Equal(t, ErrKeyNotFound, err)
	})
}

func getNewReadThroughCacheImpl(ttl time.Duration) *ReadThroughCacheImpl[view] {
	cache, _ := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1 << 12,
		MaxCost:     1 << 10,
		BufferItems: 64,
	})
	return NewReadThroughCacheImpl[view](cache, ttl, zap.NewNop())
}
