package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/eats/internal/constants"
	inErrors "github.com/Alturino/eats/internal/errors"
	inHttp "github.com/Alturino/eats/internal/http"
	"github.com/Alturino/eats/internal/log"
	"github.com/Alturino/eats/internal/otel"
	"github.com/Alturino/eats/internal/validate"
	"github.com/Alturino/eats/search/internal/service"
	"github.com/Alturino/eats/search/pkg/request"
)

// pageKey scopes a search engine to one page of the browsing session. Tabs that
// send no page id share the session's engine.
func pageKey(c context.Context, r *http.Request) string {
	sessionID := log.SessionIDFromContext(c)
	if pageID := strings.TrimSpace(r.Header.Get(constants.HeaderPageID)); pageID != "" {
		return sessionID + "/" + pageID
	}
	return sessionID
}

type SearchController struct {
	registry *service.Registry
}

func AttachSearchController(mux *mux.Router, registry *service.Registry) {
	controller := SearchController{registry: registry}

	router := mux.PathPrefix("/search/{city}").Subrouter()
	router.HandleFunc("", controller.Search).Methods(http.MethodGet)
	router.HandleFunc("/query", controller.SetSearchQuery).Methods(http.MethodPut)
	router.HandleFunc("/query", controller.ResetSearch).Methods(http.MethodDelete)
	router.HandleFunc("/sort", controller.SetSortOption).Methods(http.MethodPut)
	router.HandleFunc("/cuisines", controller.SetSelectedCuisines).Methods(http.MethodPut)
	router.HandleFunc("/page", controller.SetPage).Methods(http.MethodPut)
}

// Search returns the current view of the session's search page, fetching when
// nothing has been fetched since the last change.
func (ctrl SearchController) Search(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(mux.Vars(r)["city"])
	c, span := otel.Tracer.Start(
		r.Context(),
		"SearchController Search",
		trace.WithAttributes(attribute.String(log.KeyCity, city)),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SearchController Search").
		Str(log.KeyCity, city).
		Logger()

	if city == "" {
		err := inErrors.ErrCityRequired
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	engine := ctrl.registry.Enter(pageKey(c, r), city)
	view := engine.View()
	if view.Results != nil {
		logger.Debug().Msg("returning fetched search view")
		inHttp.WriteSuccess(c, w, fmt.Sprintf("searched restaurants in city=%s", city), map[string]interface{}{
			"search": view,
		})
		return
	}

	logger = logger.With().Str(log.KeyProcess, "fetching search results").Logger()
	logger.Info().Msg("fetching search results")
	c = logger.WithContext(c)
	view, err := engine.Fetch(c)
	if err != nil {
		err = fmt.Errorf("failed fetching search results with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Str("viewState", string(view.ViewState)).Msg("fetched search results")

	inHttp.WriteSuccess(c, w, fmt.Sprintf("searched restaurants in city=%s", city), map[string]interface{}{
		"search": view,
	})
}

func (ctrl SearchController) SetSearchQuery(w http.ResponseWriter, r *http.Request) {
	reqBody := request.SetSearchQuery{}
	ctrl.dispatch(w, r, "SearchController SetSearchQuery", &reqBody, func() service.Action {
		return service.SetQuery{Query: reqBody.SearchQuery}
	})
}

func (ctrl SearchController) ResetSearch(w http.ResponseWriter, r *http.Request) {
	ctrl.dispatch(w, r, "SearchController ResetSearch", nil, func() service.Action {
		return service.Reset{}
	})
}

func (ctrl SearchController) SetSortOption(w http.ResponseWriter, r *http.Request) {
	reqBody := request.SetSortOption{}
	ctrl.dispatch(w, r, "SearchController SetSortOption", &reqBody, func() service.Action {
		return service.SetSort{Option: request.SortOption(reqBody.SortOption)}
	})
}

func (ctrl SearchController) SetSelectedCuisines(w http.ResponseWriter, r *http.Request) {
	reqBody := request.SetSelectedCuisines{}
	ctrl.dispatch(w, r, "SearchController SetSelectedCuisines", &reqBody, func() service.Action {
		return service.SetCuisines{Cuisines: reqBody.SelectedCuisines}
	})
}

func (ctrl SearchController) SetPage(w http.ResponseWriter, r *http.Request) {
	reqBody := request.SetPage{}
	ctrl.dispatch(w, r, "SearchController SetPage", &reqBody, func() service.Action {
		return service.SetPage{Page: reqBody.Page}
	})
}

// dispatch decodes and validates reqBody when given, applies the action built
// from it to the session's engine and fetches the new page of results.
func (ctrl SearchController) dispatch(
	w http.ResponseWriter,
	r *http.Request,
	tag string,
	reqBody interface{},
	action func() service.Action,
) {
	city := strings.TrimSpace(mux.Vars(r)["city"])
	c, span := otel.Tracer.Start(
		r.Context(),
		tag,
		trace.WithAttributes(attribute.String(log.KeyCity, city)),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, tag).
		Str(log.KeyCity, city).
		Logger()

	if city == "" {
		err := inErrors.ErrCityRequired
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	if reqBody != nil {
		logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
		logger.Info().Msg("decoding request body")
		if err := json.NewDecoder(r.Body).Decode(reqBody); err != nil {
			err = fmt.Errorf("failed decoding request body with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteFailed(c, w, http.StatusBadRequest, err)
			return
		}
		logger = logger.With().Any(log.KeyRequestBody, reqBody).Logger()
		logger.Info().Msg("decoded request body")

		logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
		logger.Info().Msg("validating request body")
		if err := validate.Get().StructCtx(c, reqBody); err != nil {
			err = fmt.Errorf("failed validating request body with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteFailed(c, w, http.StatusBadRequest, err)
			return
		}
		logger.Info().Msg("validated request body")
	}

	logger = logger.With().Str(log.KeyProcess, "dispatching search action").Logger()
	c = logger.WithContext(c)
	engine := ctrl.registry.Enter(pageKey(c, r), city)
	state := engine.Dispatch(c, action())
	logger.Info().Any(log.KeySearchState, state).Msg("dispatched search action")

	logger = logger.With().Str(log.KeyProcess, "fetching search results").Logger()
	logger.Info().Msg("fetching search results")
	c = logger.WithContext(c)
	view, err := engine.Fetch(c)
	if err != nil {
		err = fmt.Errorf("failed fetching search results with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Str("viewState", string(view.ViewState)).Msg("fetched search results")

	inHttp.WriteSuccess(c, w, fmt.Sprintf("searched restaurants in city=%s", city), map[string]interface{}{
		"search": view,
	})
}
