package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/saju-admin-api/internal/models"
	appErrors "github.com/noah-isme/saju-admin-api/pkg/errors"
)

func newCacheRepo(t *testing.T, namespace string) (*CacheRepository, *miniredis.Miniredis) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheRepository(client, namespace), srv
}

func TestCacheRepositoryRoundTrip(t *testing.T) {
	repo, srv := newCacheRepo(t, "saju:")
	ctx := context.Background()

	page := models.NewPagination(1, 20, 3)
	require.NoError(t, repo.Set(ctx, "suggestions:list:a", page, time.Minute))
	require.True(t, srv.Exists("saju:suggestions:list:a"))

	var got models.Pagination
	require.NoError(t, repo.Get(ctx, "suggestions:list:a", &got))
	require.Equal(t, page, got)

	srv.FastForward(2 * time.Minute)
	err := repo.Get(ctx, "suggestions:list:a", &got)
	require.ErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestCacheRepositoryDeleteByPatternStaysInNamespace(t *testing.T) {
	repo, srv := newCacheRepo(t, "saju")
	ctx := context.Background()

	for i := 0; i < 150; i++ {
		require.NoError(t, repo.Set(ctx, fmt.Sprintf("suggestions:list:%d", i), i, time.Minute))
	}
	require.NoError(t, repo.Set(ctx, "other:key", 3, time.Minute))
	require.NoError(t, srv.Set("suggestions:list:foreign", "x"))

	require.NoError(t, repo.DeleteByPattern(ctx, "suggestions:list:*"))
	require.False(t, srv.Exists("saju:suggestions:list:0"))
	require.False(t, srv.Exists("saju:suggestions:list:149"))
	require.True(t, srv.Exists("saju:other:key"))
	require.True(t, srv.Exists("suggestions:list:foreign"))
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "")
	var dest int
	require.ErrorIs(t, repo.Get(context.Background(), "k", &dest), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Set(context.Background(), "k", 1, time.Minute))
	require.NoError(t, repo.DeleteByPattern(context.Background(), "*"))
}
