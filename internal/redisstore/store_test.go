package redisstore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/mesh-intelligence/shelf/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envTestAddr names the Redis server used by these tests. They are skipped
// when it is unset.
const envTestAddr = "SHELF_TEST_REDIS_ADDR"

func connect(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv(envTestAddr)
	if addr == "" {
		t.Skipf("%s not set", envTestAddr)
	}
	prefix := fmt.Sprintf("shelf-test-%d:", time.Now().UnixNano())
	s, err := Connect(context.Background(), types.RedisConfig{Addr: addr, Prefix: prefix})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := s.Keys(ctx)
		for _, k := range keys {
			s.Delete(ctx, k)
		}
		s.Close()
	})
	return s
}

func TestConnectRequiresAddr(t *testing.T) {
	_, err := Connect(context.Background(), types.RedisConfig{})
	assert.ErrorIs(t, err, types.ErrRedisAddrEmpty)
}

func TestNewDefaultsPrefix(t *testing.T) {
	s := New(nil, "")
	assert.Equal(t, types.DefaultRedisPrefix, s.Prefix())
	assert.Equal(t, "shelf:news", s.redisKey("news"))
}

func TestGetMissingKey(t *testing.T) {
	s := connect(t)
	_, err := s.Get(context.Background(), "news")
	assert.ErrorIs(t, err, types.ErrKeyNotFound)
}

func TestPutGetKeys(t *testing.T) {
	s := connect(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "news", []byte(`[{"id":1}]`)))
	require.NoError(t, s.Put(ctx, "faqs", []byte(`[]`)))

	got, err := s.Get(ctx, "news")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(got))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"faqs", "news"}, keys)

	require.NoError(t, s.Delete(ctx, "faqs"))
	_, err = s.Get(ctx, "faqs")
	assert.ErrorIs(t, err, types.ErrKeyNotFound)
}

func TestPrefixIsolation(t *testing.T) {
	a := connect(t)
	b := connect(t)
	ctx := context.Background()

	require.NoError(t, a.Put(ctx, "trash", []byte(`[{"id":1}]`)))
	_, err := b.Get(ctx, "trash")
	assert.ErrorIs(t, err, types.ErrKeyNotFound)
}
