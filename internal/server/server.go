package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/Alturino/eats/internal/config"
	inErrors "github.com/Alturino/eats/internal/errors"
	inHttp "github.com/Alturino/eats/internal/http"
	"github.com/Alturino/eats/internal/infra"
	"github.com/Alturino/eats/internal/log"
	"github.com/Alturino/eats/internal/middleware"
	"github.com/Alturino/eats/internal/otel"
	"github.com/Alturino/eats/internal/upstream"
)

// Dependencies are the shared clients every page is built from.
type Dependencies struct {
	Config   *config.Config
	Cache    *redis.Client
	Upstream *upstream.Client
}

// Attach registers a page on router. Background workers started by Attach must
// call wg.Done when c is cancelled.
type Attach func(c context.Context, router *mux.Router, deps Dependencies, wg *sync.WaitGroup)

func NewRouter(cfg *config.Config, appName string) *mux.Router {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		inHttp.WriteSuccess(r.Context(), w, "healthy", map[string]interface{}{})
	}).Methods(http.MethodGet)

	pages := router.NewRoute().Subrouter()
	pages.Use(
		otelmux.Middleware(appName),
		middleware.Logging,
		middleware.RecoverPanic,
		middleware.Session(cfg.Session),
	)
	return pages
}

func Run(c context.Context, appName string, attachers ...Attach) {
	c, span := otel.Tracer.Start(c, "main Run")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, appName).
		Str(log.KeyTag, "main Run").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "init config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, appName)
	logger = logger.With().Any(log.KeyConfig, cfg).Logger()
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	otelShutdowns, err := otel.InitOtelSdk(c, appName, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		if err := otel.ShutdownOtel(context.Background(), otelShutdowns); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	c = logger.WithContext(c)
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer func() {
		logger.Info().Msg("shutting down cache")
		if err := cache.Close(); err != nil {
			err = fmt.Errorf("failed shutting down cache with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown cache")
	}()
	logger.Info().Msg("initialized cache")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	deps := Dependencies{Config: cfg, Cache: cache, Upstream: upstream.NewClient(cfg.Upstream)}
	workerCtx, stopWorkers := context.WithCancel(c)
	wg := &sync.WaitGroup{}
	router := NewRouter(cfg, appName)
	for _, attach := range attachers {
		attach(workerCtx, router, deps, wg)
	}
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	httpServer := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	logger.Info().Msg("initialized server")

	go func() {
		logger := logger.With().Str(log.KeyProcess, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("error=%w occured while server is running", err)
			logger.Error().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("stopped listening request")
	}()

	<-c.Done()
	logger = logger.With().Str(log.KeyProcess, "shutting down http server").Logger()
	logger.Info().Msg("received interuption signal shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		err = fmt.Errorf("failed shutting down http server with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
	}
	stopWorkers()
	wg.Wait()
	logger.Info().Msg("shutdown http server")
}
