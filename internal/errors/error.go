package errors

import (
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrRestaurantNotLoaded = errors.New("restaurant is not loaded")
	ErrRestaurantNotFound  = errors.New("restaurant not found")
	ErrMenuItemNotFound    = errors.New("menu item not found")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrEmptyRedirect       = errors.New("checkout session returned empty redirect url")
	ErrStaleResponse       = errors.New("search response superseded by a newer query")
	ErrInvalidSortOption   = errors.New("invalid sort option")
	ErrUpstream            = errors.New("upstream request failed")
	ErrSessionInvalid      = errors.New("invalid session")
	ErrCityRequired        = errors.New("city is required")
)

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
