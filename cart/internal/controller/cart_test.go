package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/eats/cart/internal/service"
	"github.com/Alturino/eats/cart/internal/storage"
	"github.com/Alturino/eats/cart/pkg/request"
	"github.com/Alturino/eats/cart/pkg/response"
	inErrors "github.com/Alturino/eats/internal/errors"
	"github.com/Alturino/eats/internal/log"
	restaurantRes "github.com/Alturino/eats/restaurant/pkg/response"
)

type stubRestaurantProvider struct{}

func (stubRestaurantProvider) GetRestaurant(
	_ context.Context,
	restaurantID string,
) (restaurantRes.Restaurant, error) {
	if restaurantID != "R1" {
		return restaurantRes.Restaurant{}, inErrors.ErrRestaurantNotFound
	}
	return restaurantRes.Restaurant{
		ID:            "R1",
		DeliveryPrice: decimal.NewFromInt(5),
		MenuItems: []restaurantRes.MenuItem{
			{ID: "a", Name: "Pizza", Price: decimal.NewFromInt(10)},
			{ID: "b", Name: "Soda", Price: decimal.NewFromInt(2)},
		},
	}, nil
}

type stubCheckoutProvider struct {
	requests []request.CheckoutSession
}

func (s *stubCheckoutProvider) CreateCheckoutSession(
	_ context.Context,
	req request.CheckoutSession,
) (response.CheckoutSession, error) {
	s.requests = append(s.requests, req)
	return response.CheckoutSession{URL: "https://pay.example.com/s/1"}, nil
}

type envelope struct {
	Status     string                     `json:"status"`
	StatusCode int                        `json:"statusCode"`
	Message    string                     `json:"message"`
	Data       map[string]json.RawMessage `json:"data"`
}

func newRouter(checkout *stubCheckoutProvider) http.Handler {
	stores := map[string]*storage.MemoryStore{}
	return newRouterWithStores(checkout, func(sessionID string) storage.Store {
		if _, ok := stores[sessionID]; !ok {
			stores[sessionID] = storage.NewMemoryStore()
		}
		return stores[sessionID]
	})
}

func newRouterWithStores(checkout *stubCheckoutProvider, newStore StoreFactory) http.Handler {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano})
	router := mux.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := r.Header.Get("X-Test-Session")
			c := log.AttachSessionIDToContext(logger.WithContext(r.Context()), sessionID)
			next.ServeHTTP(w, r.WithContext(c))
		})
	})
	AttachCartController(
		router,
		service.NewRestaurantService(stubRestaurantProvider{}, nil, time.Minute),
		service.NewCheckoutService(checkout),
		newStore,
	)
	return router
}

func call(t *testing.T, router http.Handler, session string, method string, path string, body interface{}) envelope {
	t.Helper()
	var reader bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reader).Encode(body))
	}
	req := httptest.NewRequest(method, path, &reader)
	req.Header.Set("X-Test-Session", session)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	res := envelope{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, rec.Code, res.StatusCode, "envelope status code should match http status")
	return res
}

func cartItems(t *testing.T, res envelope) []response.CartItem {
	t.Helper()
	if raw, ok := res.Data["cartItems"]; ok {
		items := []response.CartItem{}
		require.NoError(t, json.Unmarshal(raw, &items))
		return items
	}
	summary := response.OrderSummary{}
	require.NoError(t, json.Unmarshal(res.Data["cart"], &summary))
	return summary.CartItems
}

func TestCartController(t *testing.T) {
	checkout := &stubCheckoutProvider{}
	router := newRouter(checkout)
	details := request.DeliveryDetails{
		Name:         "Jane",
		Email:        "jane@example.com",
		AddressLine1: "1 Main St",
		City:         "London",
	}

	res := call(t, router, "s1", http.MethodPost, "/restaurants/R1/checkout", details)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, "empty cart should not check out")

	res = call(t, router, "s1", http.MethodPost, "/restaurants/R1/cart/items", request.AddCartItem{MenuItemID: "a"})
	require.Equal(t, http.StatusOK, res.StatusCode, res.Message)
	res = call(t, router, "s1", http.MethodPost, "/restaurants/R1/cart/items", request.AddCartItem{MenuItemID: "a"})
	require.Equal(t, http.StatusOK, res.StatusCode, res.Message)
	res = call(t, router, "s1", http.MethodPost, "/restaurants/R1/cart/items", request.AddCartItem{MenuItemID: "b"})
	require.Equal(t, http.StatusOK, res.StatusCode, res.Message)

	summary := response.OrderSummary{}
	require.NoError(t, json.Unmarshal(res.Data["cart"], &summary))
	assert.True(t, summary.Total.Equal(decimal.NewFromInt(27)), "total should include delivery")

	res = call(t, router, "s1", http.MethodPost, "/restaurants/R1/cart/items", request.AddCartItem{MenuItemID: "z"})
	assert.Equal(t, http.StatusNotFound, res.StatusCode, "unknown menu item should be not found")

	res = call(t, router, "s1", http.MethodPost, "/restaurants/R1/cart/items", request.AddCartItem{})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, "missing menu item id should be rejected")

	res = call(t, router, "s2", http.MethodGet, "/restaurants/R1/cart", nil)
	assert.Empty(t, cartItems(t, res), "other session should have its own cart")

	res = call(t, router, "s1", http.MethodGet, "/restaurants/R1", nil)
	require.Equal(t, http.StatusOK, res.StatusCode, res.Message)
	items := cartItems(t, res)
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Quantity)

	res = call(t, router, "s1", http.MethodPost, "/restaurants/R1/checkout", details)
	require.Equal(t, http.StatusOK, res.StatusCode, res.Message)
	assert.JSONEq(t, `"https://pay.example.com/s/1"`, string(res.Data["url"]))
	require.Len(t, checkout.requests, 1)
	assert.Equal(t, []request.CheckoutCartItem{
		{MenuItemID: "a", Name: "Pizza", Quantity: "2"},
		{MenuItemID: "b", Name: "Soda", Quantity: "1"},
	}, checkout.requests[0].CartItems)

	res = call(t, router, "s1", http.MethodDelete, "/restaurants/R1/cart/items/a", nil)
	require.Equal(t, http.StatusOK, res.StatusCode, res.Message)
	items = cartItems(t, res)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].ID)

	res = call(t, router, "s1", http.MethodGet, "/restaurants/R9", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode, "unknown restaurant should be not found")

	res = call(t, router, "s1", http.MethodPost, "/restaurants/R1/checkout", request.DeliveryDetails{Name: "Jane"})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, "incomplete delivery details should be rejected")
}

func TestConcurrentAddCartItem(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	router := newRouterWithStores(&stubCheckoutProvider{}, func(sessionID string) storage.Store {
		return storage.NewRedisStore(client, sessionID, time.Minute)
	})

	const adds = 20
	body, err := json.Marshal(request.AddCartItem{MenuItemID: "a"})
	require.NoError(t, err)

	wg := sync.WaitGroup{}
	for range adds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/restaurants/R1/cart/items", bytes.NewReader(body))
			req.Header.Set("X-Test-Session", "s1")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		}()
	}
	wg.Wait()

	res := call(t, router, "s1", http.MethodGet, "/restaurants/R1/cart", nil)
	items := cartItems(t, res)
	require.Len(t, items, 1)
	assert.Equal(t, adds, items[0].Quantity, "every concurrent add should be counted")
}
