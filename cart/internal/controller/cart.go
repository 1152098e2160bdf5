package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/eats/cart/internal/service"
	"github.com/Alturino/eats/cart/internal/storage"
	"github.com/Alturino/eats/cart/pkg/request"
	inErrors "github.com/Alturino/eats/internal/errors"
	inHttp "github.com/Alturino/eats/internal/http"
	"github.com/Alturino/eats/internal/log"
	"github.com/Alturino/eats/internal/otel"
	"github.com/Alturino/eats/internal/validate"
	restaurantRes "github.com/Alturino/eats/restaurant/pkg/response"
)

// StoreFactory returns the slot store of one browsing session.
type StoreFactory func(sessionID string) storage.Store

type CartController struct {
	restaurantService service.RestaurantService
	checkoutService   service.CheckoutService
	newStore          StoreFactory
	locks             *slotLocks
}

func AttachCartController(
	mux *mux.Router,
	restaurantService service.RestaurantService,
	checkoutService service.CheckoutService,
	newStore StoreFactory,
) {
	controller := CartController{
		restaurantService: restaurantService,
		checkoutService:   checkoutService,
		newStore:          newStore,
		locks:             newSlotLocks(),
	}

	router := mux.PathPrefix("/restaurants/{restaurantId}").Subrouter()
	router.HandleFunc("", controller.FindRestaurantById).Methods(http.MethodGet)
	router.HandleFunc("/cart", controller.FindCart).Methods(http.MethodGet)
	router.HandleFunc("/cart/items", controller.AddCartItem).Methods(http.MethodPost)
	router.HandleFunc("/cart/items/{menuItemId}", controller.RemoveCartItem).
		Methods(http.MethodDelete)
	router.HandleFunc("/checkout", controller.Checkout).Methods(http.MethodPost)
}

// lockCart holds the session's slot for restaurantID until the returned func is called.
func (ctrl CartController) lockCart(c context.Context, restaurantID string) func() {
	return ctrl.locks.lock(slotKey(log.SessionIDFromContext(c), restaurantID))
}

func (ctrl CartController) cart(c context.Context, restaurantID string) *service.CartService {
	store := ctrl.newStore(log.SessionIDFromContext(c))
	return service.NewCartService(c, store, restaurantID)
}

func (ctrl CartController) FindRestaurantById(w http.ResponseWriter, r *http.Request) {
	pathValues := mux.Vars(r)
	restaurantID := pathValues["restaurantId"]
	c, span := otel.Tracer.Start(
		r.Context(),
		"CartController FindRestaurantById",
		trace.WithAttributes(attribute.String(log.KeyRestaurantID, restaurantID)),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController FindRestaurantById").
		Any(log.KeyPathValues, pathValues).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding restaurant").Logger()
	logger.Info().Msg("finding restaurant")
	c = logger.WithContext(c)
	restaurant, err := ctrl.restaurantService.FindRestaurantById(c, restaurantID)
	if err != nil {
		err = fmt.Errorf("failed finding restaurantId=%s with error=%w", restaurantID, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Msg("found restaurant")

	logger = logger.With().Str(log.KeyProcess, "hydrating cart").Logger()
	c = logger.WithContext(c)
	items := ctrl.cart(c, restaurantID).Items()
	logger.Info().Int(log.KeyCartItemsCount, len(items)).Msg("hydrated cart")

	inHttp.WriteSuccess(c, w, fmt.Sprintf("found restaurantId=%s", restaurantID), map[string]interface{}{
		"restaurant": restaurant,
		"cart":       service.Summary(items, restaurant.DeliveryPrice),
	})
}

func (ctrl CartController) FindCart(w http.ResponseWriter, r *http.Request) {
	restaurantID := mux.Vars(r)["restaurantId"]
	c, span := otel.Tracer.Start(
		r.Context(),
		"CartController FindCart",
		trace.WithAttributes(attribute.String(log.KeyRestaurantID, restaurantID)),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController FindCart").
		Str(log.KeyRestaurantID, restaurantID).
		Str(log.KeyProcess, "hydrating cart").
		Logger()

	logger.Info().Msg("hydrating cart")
	c = logger.WithContext(c)
	items := ctrl.cart(c, restaurantID).Items()
	logger.Info().Int(log.KeyCartItemsCount, len(items)).Msg("hydrated cart")

	inHttp.WriteSuccess(c, w, fmt.Sprintf("found cart of restaurantId=%s", restaurantID), map[string]interface{}{
		"cartItems": items,
	})
}

func (ctrl CartController) AddCartItem(w http.ResponseWriter, r *http.Request) {
	restaurantID := mux.Vars(r)["restaurantId"]
	c, span := otel.Tracer.Start(
		r.Context(),
		"CartController AddCartItem",
		trace.WithAttributes(attribute.String(log.KeyRestaurantID, restaurantID)),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController AddCartItem").
		Str(log.KeyRestaurantID, restaurantID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.AddCartItem{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
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

	logger = logger.With().Str(log.KeyProcess, "finding restaurant").Logger()
	logger.Info().Msg("finding restaurant")
	c = logger.WithContext(c)
	restaurant, err := ctrl.restaurantService.FindRestaurantById(c, restaurantID)
	if err != nil {
		err = fmt.Errorf("failed finding restaurantId=%s with error=%w", restaurantID, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Msg("found restaurant")

	logger = logger.With().
		Str(log.KeyProcess, "finding menu item").
		Str(log.KeyMenuItemID, reqBody.MenuItemID).
		Logger()
	menuItem, ok := restaurant.MenuItem(reqBody.MenuItemID)
	if !ok {
		err := fmt.Errorf("menuItemId=%s with error=%w", reqBody.MenuItemID, inErrors.ErrMenuItemNotFound)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Msg("found menu item")

	logger = logger.With().Str(log.KeyProcess, "adding cart item").Logger()
	logger.Info().Msg("adding cart item")
	c = logger.WithContext(c)
	unlock := ctrl.lockCart(c, restaurantID)
	items, err := ctrl.cart(c, restaurantID).AddItem(c, menuItem)
	unlock()
	if err != nil {
		err = fmt.Errorf("failed adding cart item with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Int(log.KeyCartItemsCount, len(items)).Msg("added cart item")

	inHttp.WriteSuccess(c, w, fmt.Sprintf("added menuItemId=%s", menuItem.ID), map[string]interface{}{
		"cart": service.Summary(items, restaurant.DeliveryPrice),
	})
}

func (ctrl CartController) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	pathValues := mux.Vars(r)
	restaurantID := pathValues["restaurantId"]
	menuItemID := pathValues["menuItemId"]
	c, span := otel.Tracer.Start(
		r.Context(),
		"CartController RemoveCartItem",
		trace.WithAttributes(
			attribute.String(log.KeyRestaurantID, restaurantID),
			attribute.String(log.KeyMenuItemID, menuItemID),
		),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController RemoveCartItem").
		Any(log.KeyPathValues, pathValues).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "removing cart item").Logger()
	logger.Info().Msg("removing cart item")
	c = logger.WithContext(c)
	unlock := ctrl.lockCart(c, restaurantID)
	items, err := ctrl.cart(c, restaurantID).RemoveItem(c, menuItemID)
	unlock()
	if err != nil {
		err = fmt.Errorf("failed removing cart item with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Int(log.KeyCartItemsCount, len(items)).Msg("removed cart item")

	inHttp.WriteSuccess(c, w, fmt.Sprintf("removed menuItemId=%s", menuItemID), map[string]interface{}{
		"cartItems": items,
	})
}

func (ctrl CartController) Checkout(w http.ResponseWriter, r *http.Request) {
	restaurantID := mux.Vars(r)["restaurantId"]
	c, span := otel.Tracer.Start(
		r.Context(),
		"CartController Checkout",
		trace.WithAttributes(attribute.String(log.KeyRestaurantID, restaurantID)),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController Checkout").
		Str(log.KeyRestaurantID, restaurantID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	details := request.DeliveryDetails{}
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Info().Msg("validating request body")
	if err := validate.Get().StructCtx(c, details); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "hydrating cart").Logger()
	logger.Info().Msg("hydrating cart")
	c = logger.WithContext(c)
	items := ctrl.cart(c, restaurantID).Items()
	if len(items) == 0 {
		err := fmt.Errorf("restaurantId=%s with error=%w", restaurantID, inErrors.ErrEmptyCart)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Int(log.KeyCartItemsCount, len(items)).Msg("hydrated cart")

	logger = logger.With().Str(log.KeyProcess, "finding restaurant").Logger()
	logger.Info().Msg("finding restaurant")
	c = logger.WithContext(c)
	var restaurant *restaurantRes.Restaurant
	if found, err := ctrl.restaurantService.FindRestaurantById(c, restaurantID); err == nil {
		restaurant = &found
	} else if !errors.Is(err, inErrors.ErrRestaurantNotFound) {
		err = fmt.Errorf("failed finding restaurantId=%s with error=%w", restaurantID, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "composing checkout session").Logger()
	logger.Info().Msg("composing checkout session")
	checkoutRequest, err := ctrl.checkoutService.Compose(items, restaurant, details)
	if err != nil {
		err = fmt.Errorf("failed composing checkout session with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger = logger.With().Any(log.KeyCheckoutRequest, checkoutRequest).Logger()
	logger.Info().Msg("composed checkout session")

	logger = logger.With().Str(log.KeyProcess, "submitting checkout session").Logger()
	logger.Info().Msg("submitting checkout session")
	c = logger.WithContext(c)
	session, err := ctrl.checkoutService.Submit(c, checkoutRequest)
	if err != nil {
		err = fmt.Errorf("failed submitting checkout session with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Msg("submitted checkout session")

	inHttp.WriteSuccess(c, w, "created checkout session", map[string]interface{}{
		"url": session.URL,
	})
}
