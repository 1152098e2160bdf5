package cmd

import (
	"context"
	"sync"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/eats/cart/internal/controller"
	"github.com/Alturino/eats/cart/internal/service"
	"github.com/Alturino/eats/cart/internal/storage"
	"github.com/Alturino/eats/internal/log"
	"github.com/Alturino/eats/internal/server"
	"github.com/Alturino/eats/internal/upstream"
)

// AttachRestaurantPage wires the restaurant detail page: menu, cart and checkout.
func AttachRestaurantPage(
	c context.Context,
	router *mux.Router,
	deps server.Dependencies,
	_ *sync.WaitGroup,
) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main AttachRestaurantPage").
		Str(log.KeyProcess, "initializing restaurant page").
		Logger()

	logger.Info().Msg("initializing restaurant page")
	cfg := deps.Config
	restaurantService := service.NewRestaurantService(
		upstream.NewRestaurantClient(deps.Upstream, cfg.Breaker),
		deps.Cache,
		cfg.Cache.TTL,
	)
	checkoutService := service.NewCheckoutService(
		upstream.NewCheckoutClient(deps.Upstream, cfg.Breaker),
	)
	newStore := func(sessionID string) storage.Store {
		return storage.NewRedisStore(deps.Cache, sessionID, cfg.Session.TTL)
	}
	controller.AttachCartController(router, restaurantService, checkoutService, newStore)
	logger.Info().Msg("initialized restaurant page")
}
