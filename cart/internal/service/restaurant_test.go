package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/Alturino/eats/internal/errors"
	restaurantRes "github.com/Alturino/eats/restaurant/pkg/response"
)

type stubRestaurantProvider struct {
	calls      atomic.Int32
	restaurant restaurantRes.Restaurant
	err        error
}

func (s *stubRestaurantProvider) GetRestaurant(
	_ context.Context,
	_ string,
) (restaurantRes.Restaurant, error) {
	s.calls.Add(1)
	return s.restaurant, s.err
}

type contextRestaurantProvider struct {
	restaurant restaurantRes.Restaurant
}

func (s contextRestaurantProvider) GetRestaurant(
	c context.Context,
	_ string,
) (restaurantRes.Restaurant, error) {
	if err := c.Err(); err != nil {
		return restaurantRes.Restaurant{}, err
	}
	return s.restaurant, nil
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func restaurantFixture() restaurantRes.Restaurant {
	return restaurantRes.Restaurant{
		ID:             "R1",
		RestaurantName: "Luigi's",
		City:           "London",
		Country:        "UK",
		DeliveryPrice:  decimal.NewFromInt(3),
		Cuisines:       []string{"italian"},
		MenuItems:      []restaurantRes.MenuItem{menuItem("a", "Pizza", 10)},
	}
}

func TestFindRestaurantById(t *testing.T) {
	t.Run("given cold cache should fetch once and serve from cache after", func(t *testing.T) {
		c := testContext()
		mr, client := newMiniredis(t)
		provider := &stubRestaurantProvider{restaurant: restaurantFixture()}
		svc := NewRestaurantService(provider, client, time.Minute)

		first, err := svc.FindRestaurantById(c, "R1")
		require.NoError(t, err)
		assert.Equal(t, "R1", first.ID)
		assert.True(t, mr.Exists(fmt.Sprintf(KeyRestaurant, "R1")), "restaurant should be cached")

		second, err := svc.FindRestaurantById(c, "R1")
		require.NoError(t, err)
		assert.Equal(t, first.RestaurantName, second.RestaurantName)
		assert.EqualValues(t, 1, provider.calls.Load(), "provider should be called once")
	})

	t.Run("given unreadable cache entry should refetch", func(t *testing.T) {
		c := testContext()
		mr, client := newMiniredis(t)
		require.NoError(t, mr.Set(fmt.Sprintf(KeyRestaurant, "R1"), "{broken"))
		provider := &stubRestaurantProvider{restaurant: restaurantFixture()}
		svc := NewRestaurantService(provider, client, time.Minute)

		restaurant, err := svc.FindRestaurantById(c, "R1")
		require.NoError(t, err)
		assert.Equal(t, "R1", restaurant.ID)
		assert.EqualValues(t, 1, provider.calls.Load())
	})

	t.Run("given nil cache should always fetch", func(t *testing.T) {
		c := testContext()
		provider := &stubRestaurantProvider{restaurant: restaurantFixture()}
		svc := NewRestaurantService(provider, nil, time.Minute)

		for range 2 {
			_, err := svc.FindRestaurantById(c, "R1")
			require.NoError(t, err)
		}
		assert.EqualValues(t, 2, provider.calls.Load())
	})

	t.Run("given cancelled caller should not cancel the shared fetch", func(t *testing.T) {
		c, cancel := context.WithCancel(testContext())
		cancel()
		svc := NewRestaurantService(contextRestaurantProvider{restaurant: restaurantFixture()}, nil, time.Minute)

		restaurant, err := svc.FindRestaurantById(c, "R1")
		require.NoError(t, err)
		assert.Equal(t, "R1", restaurant.ID)
	})

	tests := []struct {
		name        string
		provider    *stubRestaurantProvider
		expectedErr error
	}{
		{
			name:        "given provider failure should propagate it",
			provider:    &stubRestaurantProvider{err: inErrors.ErrRestaurantNotFound},
			expectedErr: inErrors.ErrRestaurantNotFound,
		},
		{
			name: "given restaurant with negative price should reject it",
			provider: &stubRestaurantProvider{restaurant: func() restaurantRes.Restaurant {
				r := restaurantFixture()
				r.MenuItems[0].Price = decimal.NewFromInt(-1)
				return r
			}()},
			expectedErr: inErrors.ErrUpstream,
		},
		{
			name: "given menu item without id should reject it",
			provider: &stubRestaurantProvider{restaurant: func() restaurantRes.Restaurant {
				r := restaurantFixture()
				r.MenuItems[0].ID = ""
				return r
			}()},
			expectedErr: inErrors.ErrUpstream,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testContext()
			mr, client := newMiniredis(t)
			svc := NewRestaurantService(tt.provider, client, time.Minute)

			_, err := svc.FindRestaurantById(c, "R1")
			assert.True(t, errors.Is(err, tt.expectedErr), "error should be equal to expected")
			assert.False(t, mr.Exists(fmt.Sprintf(KeyRestaurant, "R1")), "failure should not be cached")
		})
	}
}
