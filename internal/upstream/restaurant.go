package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker/v2"

	"github.com/Alturino/eats/internal/config"
	inErrors "github.com/Alturino/eats/internal/errors"
	"github.com/Alturino/eats/restaurant/pkg/response"
)

type RestaurantClient struct {
	client  *Client
	breaker *gobreaker.CircuitBreaker[response.Restaurant]
}

func NewRestaurantClient(client *Client, cfg config.Breaker) *RestaurantClient {
	return &RestaurantClient{
		client:  client,
		breaker: newBreaker[response.Restaurant]("upstream-restaurant", cfg),
	}
}

func (rc *RestaurantClient) GetRestaurant(
	c context.Context,
	restaurantID string,
) (response.Restaurant, error) {
	restaurant, err := rc.breaker.Execute(func() (response.Restaurant, error) {
		restaurant := response.Restaurant{}
		err := rc.client.do(
			c,
			"getRestaurant",
			http.MethodGet,
			fmt.Sprintf(PathRestaurant, url.PathEscape(restaurantID)),
			nil,
			nil,
			&restaurant,
		)
		return restaurant, err
	})
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return response.Restaurant{}, fmt.Errorf("restaurantId=%s with error=%w", restaurantID, inErrors.ErrRestaurantNotFound)
	}
	if err != nil {
		return response.Restaurant{}, err
	}
	return restaurant, nil
}
