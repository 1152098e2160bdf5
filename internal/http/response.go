package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/Alturino/eats/internal/constants"
	inErrors "github.com/Alturino/eats/internal/errors"
	"github.com/Alturino/eats/internal/log"
	"github.com/Alturino/eats/internal/otel"
)

func WriteJsonResponse(
	c context.Context,
	w http.ResponseWriter,
	header map[string]string,
	body map[string]interface{},
) {
	c, span := otel.Tracer.Start(c, "WriteJsonResponse")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "WriteJsonResponse").Logger()

	w.Header().Set(constants.HeaderContentType, constants.ValueJson)
	for k, v := range header {
		w.Header().Add(k, v)
	}

	if v, ok := body["statusCode"].(int); ok {
		w.WriteHeader(v)
	}

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
}

func WriteFailed(c context.Context, w http.ResponseWriter, statusCode int, err error) {
	WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "failed",
		"statusCode": statusCode,
		"message":    err.Error(),
	})
}

func WriteSuccess(
	c context.Context,
	w http.ResponseWriter,
	message string,
	data map[string]interface{},
) {
	WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    message,
		"data":       data,
	})
}

// StatusCode maps domain errors onto the http status the pages answer with.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, inErrors.ErrRestaurantNotFound),
		errors.Is(err, inErrors.ErrMenuItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, inErrors.ErrEmptyCart),
		errors.Is(err, inErrors.ErrInvalidSortOption),
		errors.Is(err, inErrors.ErrCityRequired):
		return http.StatusBadRequest
	case errors.Is(err, inErrors.ErrRestaurantNotLoaded),
		errors.Is(err, inErrors.ErrStaleResponse):
		return http.StatusConflict
	case errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests):
		return http.StatusServiceUnavailable
	case errors.Is(err, inErrors.ErrEmptyRedirect),
		errors.Is(err, inErrors.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func WriteError(c context.Context, w http.ResponseWriter, err error) {
	WriteFailed(c, w, StatusCode(err), err)
}
