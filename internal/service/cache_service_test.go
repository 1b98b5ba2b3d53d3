package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/saju-admin-api/pkg/errors"
)

type cacheRepoStub struct {
	mu          sync.Mutex
	values      map[string]int
	lastTTL     time.Duration
	getErr      error
	setErr      error
	invalidated []string
}

func (c *cacheRepoStub) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return c.getErr
	}
	v, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*(dest.(*int)) = v
	return nil
}

func (c *cacheRepoStub) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.values[key] = value.(int)
	c.lastTTL = ttl
	return nil
}

func (c *cacheRepoStub) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, pattern)
	c.values = map[string]int{}
	return nil
}

func constant(v int, calls *int32) func(context.Context) (int, error) {
	return func(context.Context) (int, error) {
		atomic.AddInt32(calls, 1)
		return v, nil
	}
}

func TestReadThroughCachesAndRecordsMetrics(t *testing.T) {
	repo := &cacheRepoStub{values: map[string]int{}}
	metrics := NewMetricsService()
	svc := NewCacheService(repo, metrics, 0, nil, true)
	ctx := context.Background()
	var calls int32

	got, err := readThrough(ctx, svc, "k", 0, constant(7, &calls))
	require.NoError(t, err)
	require.Equal(t, 7, got)
	require.Equal(t, time.Minute, repo.lastTTL)

	got, err = readThrough(ctx, svc, "k", 0, constant(8, &calls))
	require.NoError(t, err)
	require.Equal(t, 7, got)
	require.EqualValues(t, 1, calls)

	require.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("hit")))
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("miss")))
}

func TestReadThroughCollapsesConcurrentFills(t *testing.T) {
	repo := &cacheRepoStub{values: map[string]int{}}
	svc := NewCacheService(repo, nil, time.Second, nil, true)
	release := make(chan struct{})
	var calls int32
	fill := func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 3, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = readThrough(context.Background(), svc, "page", 0, fill)
		}(i)
	}
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.EqualValues(t, 1, calls)
	require.Equal(t, []int{3, 3, 3, 3, 3}, results)
}

func TestInvalidateFencesInFlightFill(t *testing.T) {
	repo := &cacheRepoStub{values: map[string]int{}}
	svc := NewCacheService(repo, nil, time.Second, nil, true)
	ctx := context.Background()

	got, err := readThrough(ctx, svc, "k", 0, func(ctx context.Context) (int, error) {
		svc.Invalidate(ctx, "*")
		return 1, nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, got)
	require.Equal(t, []string{"*"}, repo.invalidated)
	require.Empty(t, repo.values)
}

func TestReadThroughDegradesOnBackendErrors(t *testing.T) {
	repo := &cacheRepoStub{values: map[string]int{}, getErr: errors.New("redis down"), setErr: errors.New("redis down")}
	svc := NewCacheService(repo, nil, time.Second, nil, true)
	var calls int32

	got, err := readThrough(context.Background(), svc, "k", 0, constant(2, &calls))
	require.NoError(t, err)
	require.Equal(t, 2, got)
	require.Empty(t, repo.values)

	boom := errors.New("db down")
	_, err = readThrough(context.Background(), svc, "k", 0, func(context.Context) (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := &cacheRepoStub{values: map[string]int{"k": 1}}
	svc := NewCacheService(repo, nil, time.Second, nil, false)
	var calls int32

	require.False(t, svc.Enabled())
	got, err := readThrough(context.Background(), svc, "k", 0, constant(5, &calls))
	require.NoError(t, err)
	require.Equal(t, 5, got)
	svc.Invalidate(context.Background(), "*")
	require.Empty(t, repo.invalidated)

	var nilSvc *CacheService
	require.False(t, nilSvc.Enabled())
	got, err = readThrough(context.Background(), nilSvc, "k", 0, constant(6, &calls))
	require.NoError(t, err)
	require.Equal(t, 6, got)
	nilSvc.Invalidate(context.Background(), "*")
}
