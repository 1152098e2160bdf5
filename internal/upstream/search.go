package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker/v2"

	"github.com/Alturino/eats/internal/config"
	"github.com/Alturino/eats/restaurant/pkg/response"
	"github.com/Alturino/eats/search/pkg/request"
)

type SearchClient struct {
	client  *Client
	breaker *gobreaker.CircuitBreaker[response.SearchResult]
}

func NewSearchClient(client *Client, cfg config.Breaker) *SearchClient {
	return &SearchClient{
		client:  client,
		breaker: newBreaker[response.SearchResult]("upstream-search", cfg),
	}
}

func SearchParams(state request.SearchState) url.Values {
	params := url.Values{}
	params.Set("searchQuery", state.SearchQuery)
	params.Set("page", strconv.Itoa(state.Page))
	params.Set("selectedCuisines", strings.Join(state.SelectedCuisines, ","))
	params.Set("sortOption", string(state.SortOption))
	return params
}

func (sc *SearchClient) SearchRestaurants(
	c context.Context,
	city string,
	state request.SearchState,
) (response.SearchResult, error) {
	return sc.breaker.Execute(func() (response.SearchResult, error) {
		result := response.SearchResult{}
		err := sc.client.do(
			c,
			"searchRestaurants",
			http.MethodGet,
			fmt.Sprintf(PathSearch, url.PathEscape(city)),
			SearchParams(state),
			nil,
			&result,
		)
		if result.Data == nil {
			result.Data = []response.Restaurant{}
		}
		return result, err
	})
}
