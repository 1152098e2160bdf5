package cmd

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/eats/internal/log"
	"github.com/Alturino/eats/internal/server"
	"github.com/Alturino/eats/internal/upstream"
	"github.com/Alturino/eats/search/internal/controller"
	"github.com/Alturino/eats/search/internal/service"
)

// AttachSearchPage wires the search page and starts sweeping idle engines.
func AttachSearchPage(
	c context.Context,
	router *mux.Router,
	deps server.Dependencies,
	wg *sync.WaitGroup,
) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main AttachSearchPage").
		Str(log.KeyProcess, "initializing search page").
		Logger()

	logger.Info().Msg("initializing search page")
	cfg := deps.Config
	provider := service.NewCachedSearchProvider(
		upstream.NewSearchClient(deps.Upstream, cfg.Breaker),
		deps.Cache,
		cfg.Cache.TTL,
	)
	registry := service.NewRegistry(provider, cfg.Session.TTL)
	controller.AttachSearchController(router, registry)

	wg.Add(1)
	go registry.StartSweeper(logger.WithContext(c), max(cfg.Session.TTL/2, time.Minute), wg)
	logger.Info().Msg("initialized search page")
}
