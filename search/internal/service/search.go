package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	inErrors "github.com/Alturino/eats/internal/errors"
	"github.com/Alturino/eats/internal/log"
	"github.com/Alturino/eats/internal/metric"
	"github.com/Alturino/eats/internal/otel"
	restaurantRes "github.com/Alturino/eats/restaurant/pkg/response"
	"github.com/Alturino/eats/search/pkg/request"
	"github.com/Alturino/eats/search/pkg/response"
)

type SearchProvider interface {
	SearchRestaurants(
		c context.Context,
		city string,
		state request.SearchState,
	) (restaurantRes.SearchResult, error)
}

// SearchEngine owns the query state of one search page for one city. Every
// dispatched action bumps the generation; a fetch whose generation is no longer
// current is discarded.
type SearchEngine struct {
	mu         sync.Mutex
	city       string
	state      request.SearchState
	generation uint64
	inFlight   int
	result     *restaurantRes.SearchResult
	provider   SearchProvider
}

func NewSearchEngine(city string, provider SearchProvider) *SearchEngine {
	return &SearchEngine{
		city:     city,
		state:    request.DefaultSearchState(),
		provider: provider,
	}
}

func (e *SearchEngine) City() string {
	return e.city
}

func (e *SearchEngine) State() request.SearchState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneState(e.state)
}

func (e *SearchEngine) Dispatch(c context.Context, action Action) request.SearchState {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = Reduce(e.state, action)
	e.generation++
	e.result = nil

	zerolog.Ctx(c).
		Debug().
		Str(log.KeyTag, "SearchEngine Dispatch").
		Str(log.KeyCity, e.city).
		Str(log.KeySearchAction, action.Name()).
		Uint64(log.KeySearchGeneration, e.generation).
		Any(log.KeySearchState, e.state).
		Msg("dispatched search action")

	return cloneState(e.state)
}

// Fetch queries the provider with the current state. Provider failures are
// returned unchanged apart from wrapping; a response overtaken by a newer
// dispatch yields ErrStaleResponse and leaves the engine untouched.
func (e *SearchEngine) Fetch(c context.Context) (response.SearchView, error) {
	e.mu.Lock()
	if e.city == "" {
		defer e.mu.Unlock()
		return e.viewLocked(), nil
	}
	city := e.city
	state := cloneState(e.state)
	generation := e.generation
	e.inFlight++
	e.mu.Unlock()

	c, span := otel.Tracer.Start(
		c,
		"SearchEngine Fetch",
		trace.WithAttributes(
			attribute.String(log.KeyCity, city),
			attribute.Int64(log.KeySearchGeneration, int64(generation)),
		),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SearchEngine Fetch").
		Str(log.KeyCity, city).
		Uint64(log.KeySearchGeneration, generation).
		Any(log.KeySearchState, state).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "searching restaurants").Logger()
	logger.Info().Msg("searching restaurants")
	c = logger.WithContext(c)
	result, err := e.provider.SearchRestaurants(c, city, state)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inFlight--

	if generation != e.generation {
		err = fmt.Errorf(
			"discarding generation=%d current=%d with error=%w",
			generation,
			e.generation,
			inErrors.ErrStaleResponse,
		)
		logger.Info().Err(err).Msg(err.Error())
		metric.SearchFetches.WithLabelValues(metric.OutcomeStale).Inc()
		return e.viewLocked(), err
	}
	if err != nil {
		err = fmt.Errorf("failed searching restaurants in city=%s with error=%w", city, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		metric.SearchFetches.WithLabelValues(metric.OutcomeFailed).Inc()
		return e.viewLocked(), err
	}
	e.result = &result
	logger.Info().
		Int(log.KeySearchResultsTotal, result.Pagination.Total).
		Msg("searched restaurants")
	metric.SearchFetches.WithLabelValues(metric.OutcomeSuccess).Inc()

	return e.viewLocked(), nil
}

func (e *SearchEngine) View() response.SearchView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

func (e *SearchEngine) viewLocked() response.SearchView {
	return response.SearchView{
		City:       e.city,
		State:      cloneState(e.state),
		ViewState:  ResolveViewState(e.inFlight > 0, e.city, e.result),
		Generation: e.generation,
		Results:    e.result,
	}
}

// ResolveViewState picks what the search page shows: loading wins, then no
// results when the city is missing or the page is empty.
func ResolveViewState(
	loading bool,
	city string,
	result *restaurantRes.SearchResult,
) response.ViewState {
	switch {
	case loading:
		return response.ViewLoading
	case city == "", result == nil, len(result.Data) == 0:
		return response.ViewNoResults
	default:
		return response.ViewPopulated
	}
}

func cloneState(s request.SearchState) request.SearchState {
	s.SelectedCuisines = append([]string{}, s.SelectedCuisines...)
	return s
}
