package reconcile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewCachedResolver_ZeroTTL(t *testing.T) {
	next := new(mockResolver)
	assert.Same(t, next, NewCachedResolver(next, 0))
}

func TestCachedResolver_TTL(t *testing.T) {
	next := new(mockResolver)
	next.On("Resolve", mock.Anything, "usr_1").Return("alice", nil).Twice()

	r := NewCachedResolver(next, time.Minute).(*CachedResolver)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		name, err := r.Resolve(context.Background(), "usr_1")
		require.NoError(t, err)
		assert.Equal(t, "alice", name)
	}
	next.AssertNumberOfCalls(t, "Resolve", 1)

	clock = clock.Add(2 * time.Minute)
	_, err := r.Resolve(context.Background(), "usr_1")
	require.NoError(t, err)
	next.AssertNumberOfCalls(t, "Resolve", 2)
	assert.Equal(t, 1, r.Len())
}

func TestCachedResolver_FailuresNotCached(t *testing.T) {
	next := new(mockResolver)
	next.On("Resolve", mock.Anything, "usr_1").Return("", errors.New("boom")).Once()
	next.On("Resolve", mock.Anything, "usr_1").Return("alice", nil).Once()

	r := NewCachedResolver(next, time.Minute)

	_, err := r.Resolve(context.Background(), "usr_1")
	assert.Error(t, err)

	name, err := r.Resolve(context.Background(), "usr_1")
	require.NoError(t, err)
	assert.Equal(t, "alice", name)
	next.AssertExpectations(t)
}

func TestCachedResolver_Invalidate(t *testing.T) {
	next := new(mockResolver)
	next.On("Resolve", mock.Anything, "usr_1").Return("alice", nil)

	r := NewCachedResolver(next, time.Hour).(*CachedResolver)
	_, _ = r.Resolve(context.Background(), "usr_1")
	r.Invalidate()
	assert.Equal(t, 0, r.Len())

	_, _ = r.Resolve(context.Background(), "usr_1")
	next.AssertNumberOfCalls(t, "Resolve", 2)
}

func TestCachedResolver_Singleflight(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})

	next := ResolverFunc(func(ctx context.Context, key string) (string, error) {
		calls.Add(1)
		<-release
		return "alice", nil
	})
	r := NewCachedResolver(next, time.Minute)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = r.Resolve(context.Background(), "usr_1")
		}(i)
	}

	// Give the goroutines time to pile up behind the first call
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, name := range results {
		assert.Equal(t, "alice", name)
	}
	assert.LessOrEqual(t, calls.Load(), int32(2))
}
