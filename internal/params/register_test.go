package params

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := NewMemoryRegister(3)
	v, err := r.ReadStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	require.NoError(t, r.WriteStatus(ctx, 12))
	assert.Equal(t, 12, r.Value())

	boom := errors.New("boom")
	r.ReadErr = boom
	_, err = r.ReadStatus(ctx)
	assert.ErrorIs(t, err, boom)

	r.WriteErr = boom
	assert.ErrorIs(t, r.WriteStatus(ctx, 1), boom)
	assert.Equal(t, 12, r.Value(), "failed write must not change the value")

	r.Set(5)
	assert.Equal(t, 5, r.Value())

	require.NoError(t, r.Close())
	r.ReadErr, r.WriteErr = nil, nil
	_, err = r.ReadStatus(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, r.WriteStatus(ctx, 1), ErrClosed)
}

func TestNewRedisRegisterBadURL(t *testing.T) {
	t.Parallel()
	_, err := NewRedisRegister(context.Background(), "not-a-url", StatusKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis url")
}

func TestRedisRegisterRoundtrip(t *testing.T) {
	url := os.Getenv("CEM_TEST_REDIS_URL")
	if url == "" {
		t.Skip("CEM_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	key := "cem-test-" + t.Name()

	r, err := NewRedisRegister(ctx, url, key)
	require.NoError(t, err)
	defer r.Close()
	defer r.client.Del(ctx, key)

	v, err := r.ReadStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, v, "missing key reads as 0")

	require.NoError(t, r.WriteStatus(ctx, 15))
	v, err = r.ReadStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, v)
}

// silentServer accepts TCP connections and never writes a byte back.
func silentServer(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var mu sync.Mutex
	var conns []net.Conn
	go func() {
		for {
			c, err := lis.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		lis.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			c.Close()
		}
	})
	return lis.Addr().String()
}

func TestRedisOptionsBoundEveryCall(t *testing.T) {
	t.Parallel()
	opts, err := RedisOptions("redis://localhost:6379/0")
	require.NoError(t, err)
	assert.Equal(t, RedisTimeout, opts.DialTimeout)
	assert.Equal(t, RedisTimeout, opts.ReadTimeout)
	assert.Equal(t, RedisTimeout, opts.WriteTimeout)
	assert.Equal(t, -1, opts.MaxRetries)
}

func TestRedisRegisterStalledServerFailsFast(t *testing.T) {
	t.Parallel()
	opts, err := RedisOptions("redis://" + silentServer(t) + "/0")
	require.NoError(t, err)
	r := NewRedisRegisterWithClient(redis.NewClient(opts), StatusKey)
	defer r.Close()

	ctx := context.Background()
	start := time.Now()
	_, readErr := r.ReadStatus(ctx)
	writeErr := r.WriteStatus(ctx, 8)
	elapsed := time.Since(start)

	assert.Error(t, readErr)
	assert.Error(t, writeErr)
	assert.Less(t, elapsed, time.Second, "a stalled server must not hold the caller")
}

func TestNewRedisRegisterStalledServer(t *testing.T) {
	t.Parallel()
	start := time.Now()
	_, err := NewRedisRegister(context.Background(), "redis://"+silentServer(t)+"/0", StatusKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping redis")
	assert.Less(t, time.Since(start), time.Second)
}
