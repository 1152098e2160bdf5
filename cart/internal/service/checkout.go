package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/eats/cart/pkg/request"
	"github.com/Alturino/eats/cart/pkg/response"
	inErrors "github.com/Alturino/eats/internal/errors"
	"github.com/Alturino/eats/internal/log"
	"github.com/Alturino/eats/internal/metric"
	"github.com/Alturino/eats/internal/otel"
	restaurantRes "github.com/Alturino/eats/restaurant/pkg/response"
)

type CheckoutSessionProvider interface {
	CreateCheckoutSession(
		c context.Context,
		req request.CheckoutSession,
	) (response.CheckoutSession, error)
}

type CheckoutService struct {
	provider CheckoutSessionProvider
}

func NewCheckoutService(provider CheckoutSessionProvider) CheckoutService {
	return CheckoutService{provider: provider}
}

// Compose builds the checkout-session request from the cart. It refuses to run
// without a loaded restaurant.
func (svc CheckoutService) Compose(
	items []response.CartItem,
	restaurant *restaurantRes.Restaurant,
	details request.DeliveryDetails,
) (request.CheckoutSession, error) {
	if restaurant == nil || restaurant.ID == "" {
		return request.CheckoutSession{}, inErrors.ErrRestaurantNotLoaded
	}

	cartItems := make([]request.CheckoutCartItem, len(items))
	for i, item := range items {
		cartItems[i] = request.CheckoutCartItem{
			MenuItemID: item.ID,
			Name:       item.Name,
			Quantity:   strconv.Itoa(item.Quantity),
		}
	}

	return request.CheckoutSession{
		CartItems:       cartItems,
		RestaurantID:    restaurant.ID,
		DeliveryDetails: details,
	}, nil
}

// Submit asks the provider for a checkout session exactly once. A failed
// attempt is returned to the caller and never retried, since a second call
// could open a second payment session.
func (svc CheckoutService) Submit(
	c context.Context,
	req request.CheckoutSession,
) (response.CheckoutSession, error) {
	c, span := otel.Tracer.Start(
		c,
		"CheckoutService Submit",
		trace.WithAttributes(
			attribute.String(log.KeyRestaurantID, req.RestaurantID),
			attribute.Int(log.KeyCartItemsCount, len(req.CartItems)),
		),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService Submit").
		Str(log.KeyRestaurantID, req.RestaurantID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "creating checkout session").Logger()
	logger.Info().Msg("creating checkout session")
	span.AddEvent("creating checkout session")
	c = logger.WithContext(c)
	session, err := svc.provider.CreateCheckoutSession(c, req)
	if err != nil {
		err = fmt.Errorf("failed creating checkout session with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		metric.CheckoutSessions.WithLabelValues(metric.OutcomeFailed).Inc()
		return response.CheckoutSession{}, err
	}
	if session.URL == "" {
		err = fmt.Errorf("failed creating checkout session with error=%w", inErrors.ErrEmptyRedirect)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		metric.CheckoutSessions.WithLabelValues(metric.OutcomeFailed).Inc()
		return response.CheckoutSession{}, err
	}
	span.AddEvent("created checkout session")
	logger.Info().Msg("created checkout session")
	metric.CheckoutSessions.WithLabelValues(metric.OutcomeSuccess).Inc()

	return session, nil
}
