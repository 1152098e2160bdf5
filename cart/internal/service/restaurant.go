package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	inErrors "github.com/Alturino/eats/internal/errors"
	"github.com/Alturino/eats/internal/log"
	"github.com/Alturino/eats/internal/otel"
	"github.com/Alturino/eats/internal/validate"
	restaurantRes "github.com/Alturino/eats/restaurant/pkg/response"
)

const KeyRestaurant = "restaurant:%s"

type RestaurantProvider interface {
	GetRestaurant(c context.Context, restaurantID string) (restaurantRes.Restaurant, error)
}

// RestaurantService reads restaurants through a redis cache. A nil cache
// disables caching.
type RestaurantService struct {
	provider RestaurantProvider
	cache    *redis.Client
	ttl      time.Duration
	group    *singleflight.Group
}

func NewRestaurantService(
	provider RestaurantProvider,
	cache *redis.Client,
	ttl time.Duration,
) RestaurantService {
	return RestaurantService{provider: provider, cache: cache, ttl: ttl, group: &singleflight.Group{}}
}

func (svc RestaurantService) FindRestaurantById(
	c context.Context,
	restaurantID string,
) (restaurantRes.Restaurant, error) {
	c, span := otel.Tracer.Start(c, "RestaurantService FindRestaurantById")
	defer span.End()

	cacheKey := fmt.Sprintf(KeyRestaurant, restaurantID)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RestaurantService FindRestaurantById").
		Str(log.KeyRestaurantID, restaurantID).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	if svc.cache != nil {
		logger = logger.With().Str(log.KeyProcess, "finding restaurant in cache").Logger()
		logger.Trace().Msg("finding restaurant in cache")
		jsonCache, err := svc.cache.Get(c, cacheKey).Result()
		switch {
		case err == nil:
			restaurant := restaurantRes.Restaurant{}
			if err := json.Unmarshal([]byte(jsonCache), &restaurant); err == nil {
				logger.Trace().Msg("found restaurant in cache")
				return restaurant, nil
			}
			logger.Warn().Msg("discarding unreadable restaurant cache entry")
		case errors.Is(err, redis.Nil):
			logger.Trace().Msg("restaurant not found in cache")
		default:
			err = fmt.Errorf("failed finding restaurant in cache with error=%w", err)
			logger.Warn().Err(err).Msg(err.Error())
		}
	}

	logger = logger.With().Str(log.KeyProcess, "fetching restaurant").Logger()
	logger.Trace().Msg("fetching restaurant")
	c = logger.WithContext(c)
	shared := context.WithoutCancel(c)
	v, err, _ := svc.group.Do(restaurantID, func() (interface{}, error) {
		return svc.provider.GetRestaurant(shared, restaurantID)
	})
	if err != nil {
		err = fmt.Errorf("failed fetching restaurantId=%s with error=%w", restaurantID, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return restaurantRes.Restaurant{}, err
	}
	restaurant := v.(restaurantRes.Restaurant)
	logger.Debug().Msg("fetched restaurant")

	logger = logger.With().Str(log.KeyProcess, "validating restaurant").Logger()
	if err := validate.Get().StructCtx(c, restaurant); err != nil {
		err = fmt.Errorf(
			"failed validating restaurantId=%s with error=%w: %w",
			restaurantID,
			inErrors.ErrUpstream,
			err,
		)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return restaurantRes.Restaurant{}, err
	}

	if svc.cache != nil {
		logger = logger.With().Str(log.KeyProcess, "inserting restaurant to cache").Logger()
		value, err := json.Marshal(restaurant)
		if err == nil {
			err = svc.cache.Set(c, cacheKey, value, svc.ttl).Err()
		}
		if err != nil {
			err = fmt.Errorf("failed inserting restaurant to cache with error=%w", err)
			logger.Warn().Err(err).Msg(err.Error())
		}
	}

	return restaurant, nil
}
