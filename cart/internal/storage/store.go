package storage

import (
	"context"
	"fmt"
)

const KeyCartItems = "cartItems-%s"

// Store is a key-value text store scoped to one browsing session.
// Get reports found=false when the key is absent; Set overwrites.
type Store interface {
	Get(c context.Context, key string) (value string, found bool, err error)
	Set(c context.Context, key string, value string) error
}

func CartKey(restaurantID string) string {
	return fmt.Sprintf(KeyCartItems, restaurantID)
}
