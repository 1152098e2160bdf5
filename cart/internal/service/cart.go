package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/eats/cart/internal/storage"
	"github.com/Alturino/eats/cart/pkg/response"
	inErrors "github.com/Alturino/eats/internal/errors"
	"github.com/Alturino/eats/internal/log"
	"github.com/Alturino/eats/internal/metric"
	"github.com/Alturino/eats/internal/otel"
	restaurantRes "github.com/Alturino/eats/restaurant/pkg/response"
)

// CartService holds the cart of one restaurant for one browsing session.
// It is not safe for concurrent use; callers serialize access per session.
type CartService struct {
	store        storage.Store
	restaurantID string
	items        []response.CartItem
}

func NewCartService(c context.Context, store storage.Store, restaurantID string) *CartService {
	return &CartService{
		store:        store,
		restaurantID: restaurantID,
		items:        Hydrate(c, store, restaurantID),
	}
}

// Hydrate reads the persisted cart of restaurantID. Missing, unreadable or
// malformed slots yield an empty cart.
func Hydrate(c context.Context, store storage.Store, restaurantID string) []response.CartItem {
	c, span := otel.Tracer.Start(c, "CartService Hydrate")
	defer span.End()

	key := storage.CartKey(restaurantID)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Hydrate").
		Str(log.KeyRestaurantID, restaurantID).
		Str(log.KeyStorageKey, key).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "reading cart from storage").Logger()
	logger.Trace().Msg("reading cart from storage")
	value, found, err := store.Get(c, key)
	if err != nil {
		err = fmt.Errorf("failed reading cart from storage with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		metric.CartHydrations.WithLabelValues("error").Inc()
		return []response.CartItem{}
	}
	if !found {
		logger.Trace().Msg("cart not found in storage")
		metric.CartHydrations.WithLabelValues("missing").Inc()
		return []response.CartItem{}
	}
	logger.Trace().Msg("read cart from storage")

	logger = logger.With().Str(log.KeyProcess, "unmarshaling cart").Logger()
	items := []response.CartItem{}
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		err = fmt.Errorf("failed unmarshaling cart with error=%w", err)
		logger.Warn().Err(err).Msg(err.Error())
		metric.CartHydrations.WithLabelValues("malformed").Inc()
		return []response.CartItem{}
	}
	if !wellFormed(items) {
		logger.Warn().Msg("discarding cart with duplicate ids or non positive quantities")
		metric.CartHydrations.WithLabelValues("malformed").Inc()
		return []response.CartItem{}
	}
	if items == nil {
		items = []response.CartItem{}
	}
	logger.Debug().Int(log.KeyCartItemsCount, len(items)).Msg("hydrated cart")
	metric.CartHydrations.WithLabelValues("found").Inc()

	return items
}

func wellFormed(items []response.CartItem) bool {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ID == "" || item.Quantity < 1 || item.Price.IsNegative() {
			return false
		}
		if _, ok := seen[item.ID]; ok {
			return false
		}
		seen[item.ID] = struct{}{}
	}
	return true
}

func (s *CartService) RestaurantID() string {
	return s.restaurantID
}

func (s *CartService) Items() []response.CartItem {
	items := make([]response.CartItem, len(s.items))
	copy(items, s.items)
	return items
}

// AddItem increments the quantity of an item already in the cart, otherwise
// appends it with quantity 1. Name and price of an existing line never change.
// The returned error only reports a failed write; the cart is updated regardless.
func (s *CartService) AddItem(
	c context.Context,
	menuItem restaurantRes.MenuItem,
) ([]response.CartItem, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyRestaurantID, s.restaurantID).
		Str(log.KeyMenuItemID, menuItem.ID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "merging cart item").Logger()
	logger.Trace().Msg("merging cart item")
	updated := make([]response.CartItem, 0, len(s.items)+1)
	merged := false
	for _, item := range s.items {
		if item.ID == menuItem.ID {
			item.Quantity++
			merged = true
		}
		updated = append(updated, item)
	}
	if !merged {
		updated = append(updated, response.CartItem{
			ID:       menuItem.ID,
			Name:     menuItem.Name,
			Price:    menuItem.Price,
			Quantity: 1,
		})
	}
	s.items = updated
	logger.Debug().Bool("merged", merged).Msg("merged cart item")

	c = logger.WithContext(c)
	if err := s.persist(c); err != nil {
		err = fmt.Errorf("failed adding menuItemId=%s with error=%w", menuItem.ID, err)
		inErrors.HandleError(err, span)
		metric.CartMutations.WithLabelValues("add", metric.OutcomeFailed).Inc()
		return s.Items(), err
	}
	metric.CartMutations.WithLabelValues("add", metric.OutcomeSuccess).Inc()

	return s.Items(), nil
}

// RemoveItem drops the line with menuItemID. Removing an absent id is a no-op.
func (s *CartService) RemoveItem(
	c context.Context,
	menuItemID string,
) ([]response.CartItem, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeyRestaurantID, s.restaurantID).
		Str(log.KeyMenuItemID, menuItemID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "removing cart item").Logger()
	logger.Trace().Msg("removing cart item")
	updated := make([]response.CartItem, 0, len(s.items))
	for _, item := range s.items {
		if item.ID == menuItemID {
			continue
		}
		updated = append(updated, item)
	}
	s.items = updated
	logger.Debug().Int(log.KeyCartItemsCount, len(updated)).Msg("removed cart item")

	c = logger.WithContext(c)
	if err := s.persist(c); err != nil {
		err = fmt.Errorf("failed removing menuItemId=%s with error=%w", menuItemID, err)
		inErrors.HandleError(err, span)
		metric.CartMutations.WithLabelValues("remove", metric.OutcomeFailed).Inc()
		return s.Items(), err
	}
	metric.CartMutations.WithLabelValues("remove", metric.OutcomeSuccess).Inc()

	return s.Items(), nil
}

func (s *CartService) persist(c context.Context) error {
	key := storage.CartKey(s.restaurantID)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyProcess, "persisting cart").
		Str(log.KeyStorageKey, key).
		Logger()

	logger.Trace().Msg("marshaling cart")
	value, err := json.Marshal(s.items)
	if err != nil {
		err = fmt.Errorf("failed marshaling cart with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	logger.Trace().Msg("writing cart to storage")
	if err := s.store.Set(c, key, string(value)); err != nil {
		err = fmt.Errorf("failed writing cart to storage with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().Msg("wrote cart to storage")

	return nil
}

// Summary totals the cart the way the order summary panel shows it.
func Summary(items []response.CartItem, deliveryPrice decimal.Decimal) response.OrderSummary {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return response.OrderSummary{
		CartItems:     items,
		Subtotal:      subtotal,
		DeliveryPrice: deliveryPrice,
		Total:         subtotal.Add(deliveryPrice),
	}
}
