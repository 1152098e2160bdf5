package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Alturino/eats/internal/log"
	"github.com/Alturino/eats/internal/metric"
	restaurantRes "github.com/Alturino/eats/restaurant/pkg/response"
	"github.com/Alturino/eats/search/pkg/request"
)

const KeySearchResults = "search:%s:%016x"

// CachedSearchProvider serves repeated queries from redis and collapses
// identical concurrent queries into one upstream call.
type CachedSearchProvider struct {
	next  SearchProvider
	cache *redis.Client
	ttl   time.Duration
	group singleflight.Group
}

func NewCachedSearchProvider(
	next SearchProvider,
	cache *redis.Client,
	ttl time.Duration,
) *CachedSearchProvider {
	return &CachedSearchProvider{next: next, cache: cache, ttl: ttl}
}

func SearchCacheKey(city string, state request.SearchState) string {
	cuisines := slices.Clone(state.SelectedCuisines)
	slices.Sort(cuisines)
	h := xxhash.New()
	for _, part := range []string{
		state.SearchQuery,
		strconv.Itoa(state.Page),
		strings.Join(cuisines, ","),
		string(state.SortOption),
	} {
		_, _ = h.WriteString(part)
		_, _ = h.WriteString("\x00")
	}
	return fmt.Sprintf(KeySearchResults, strings.ToLower(city), h.Sum64())
}

func (p *CachedSearchProvider) SearchRestaurants(
	c context.Context,
	city string,
	state request.SearchState,
) (restaurantRes.SearchResult, error) {
	cacheKey := SearchCacheKey(city, state)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CachedSearchProvider SearchRestaurants").
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding search results in cache").Logger()
	jsonCache, err := p.cache.Get(c, cacheKey).Result()
	switch {
	case err == nil:
		result := restaurantRes.SearchResult{}
		if err := json.Unmarshal([]byte(jsonCache), &result); err == nil {
			logger.Trace().Msg("found search results in cache")
			metric.SearchFetches.WithLabelValues(metric.OutcomeCached).Inc()
			return result, nil
		}
		logger.Warn().Msg("discarding unreadable search results cache entry")
	case errors.Is(err, redis.Nil):
		logger.Trace().Msg("search results not found in cache")
	default:
		err = fmt.Errorf("failed finding search results in cache with error=%w", err)
		logger.Warn().Err(err).Msg(err.Error())
	}

	// shared by every caller collapsed into this fetch
	shared := context.WithoutCancel(c)
	v, err, _ := p.group.Do(cacheKey, func() (interface{}, error) {
		result, err := p.next.SearchRestaurants(shared, city, state)
		if err != nil {
			return restaurantRes.SearchResult{}, err
		}

		value, err := json.Marshal(result)
		if err == nil {
			err = p.cache.Set(shared, cacheKey, value, p.ttl).Err()
		}
		if err != nil {
			err = fmt.Errorf("failed inserting search results to cache with error=%w", err)
			logger.Warn().Err(err).Msg(err.Error())
		}
		return result, nil
	})
	if err != nil {
		return restaurantRes.SearchResult{}, err
	}
	return v.(restaurantRes.SearchResult), nil
}
