package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	restaurantRes "github.com/Alturino/eats/restaurant/pkg/response"
	"github.com/Alturino/eats/search/pkg/request"
)

type contextSearchProvider struct {
	result restaurantRes.SearchResult
}

func (s contextSearchProvider) SearchRestaurants(
	c context.Context,
	_ string,
	_ request.SearchState,
) (restaurantRes.SearchResult, error) {
	if err := c.Err(); err != nil {
		return restaurantRes.SearchResult{}, err
	}
	return s.result, nil
}

func TestSearchCacheKey(t *testing.T) {
	state := request.SearchState{
		SearchQuery:      "pizza",
		Page:             1,
		SelectedCuisines: []string{"thai", "italian"},
		SortOption:       request.SortBestMatch,
	}
	reordered := state
	reordered.SelectedCuisines = []string{"italian", "thai"}
	nextPage := state
	nextPage.Page = 2

	assert.Equal(t, SearchCacheKey("London", state), SearchCacheKey("london", reordered),
		"cuisine order and city case should not change the key")
	assert.NotEqual(t, SearchCacheKey("London", state), SearchCacheKey("London", nextPage))
	assert.NotEqual(t, SearchCacheKey("London", state), SearchCacheKey("Paris", state))
}

func TestCachedSearchProvider(t *testing.T) {
	t.Run("given repeated query should call upstream once", func(t *testing.T) {
		c := testContext()
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()

		next := &stubSearchProvider{result: searchResult("R1", "R2")}
		provider := NewCachedSearchProvider(next, client, time.Minute)
		state := request.DefaultSearchState()

		first, err := provider.SearchRestaurants(c, "London", state)
		require.NoError(t, err)
		second, err := provider.SearchRestaurants(c, "London", state)
		require.NoError(t, err)

		assert.Equal(t, first.Pagination, second.Pagination)
		require.Len(t, second.Data, len(first.Data))
		for i := range first.Data {
			assert.Equal(t, first.Data[i].ID, second.Data[i].ID)
		}
		assert.Equal(t, 1, next.callCount(), "second query should be served from cache")
		assert.True(t, mr.Exists(SearchCacheKey("London", state)))

		mr.FastForward(2 * time.Minute)
		_, err = provider.SearchRestaurants(c, "London", state)
		require.NoError(t, err)
		assert.Equal(t, 2, next.callCount(), "expired entry should be refetched")
	})

	t.Run("given upstream failure should not cache", func(t *testing.T) {
		c := testContext()
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()

		errTransport := errors.New("connection refused")
		next := &stubSearchProvider{err: errTransport}
		provider := NewCachedSearchProvider(next, client, time.Minute)
		state := request.DefaultSearchState()

		_, err := provider.SearchRestaurants(c, "London", state)
		assert.ErrorIs(t, err, errTransport)
		assert.False(t, mr.Exists(SearchCacheKey("London", state)))
	})

	t.Run("given redis down should still search", func(t *testing.T) {
		c := testContext()
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()
		mr.SetError("server down")

		next := &stubSearchProvider{result: searchResult("R1")}
		provider := NewCachedSearchProvider(next, client, time.Minute)

		result, err := provider.SearchRestaurants(c, "London", request.DefaultSearchState())
		require.NoError(t, err)
		assert.Len(t, result.Data, 1)
	})

	t.Run("given cancelled caller should still fetch and cache", func(t *testing.T) {
		c, cancel := context.WithCancel(testContext())
		cancel()
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()

		provider := NewCachedSearchProvider(contextSearchProvider{result: searchResult("R1")}, client, time.Minute)
		state := request.DefaultSearchState()

		result, err := provider.SearchRestaurants(c, "London", state)
		require.NoError(t, err)
		assert.Len(t, result.Data, 1)
		assert.True(t, mr.Exists(SearchCacheKey("London", state)), "shared fetch should still be cached")
	})
}
