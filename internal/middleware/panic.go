package middleware

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/eats/internal/errors"
	inHttp "github.com/Alturino/eats/internal/http"
	"github.com/Alturino/eats/internal/otel"
)

func RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, span := otel.Tracer.Start(r.Context(), "middleware RecoverPanic")
		defer span.End()

		logger := zerolog.Ctx(c).With().Logger()
		defer func() {
			if rec := recover(); rec != nil {
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				logger.Error().Err(err).Stack().Msg("recovered from panic")
				inErrors.HandleError(err, span)
				inHttp.WriteFailed(c, w, http.StatusInternalServerError, fmt.Errorf("internal server error"))
			}
		}()

		next.ServeHTTP(w, r.WithContext(c))
	})
}
