package request

type AddCartItem struct {
	MenuItemID string `validate:"required" json:"menuItemId"`
}

type DeliveryDetails struct {
	Name         string `validate:"required"       json:"name"`
	Email        string `validate:"required,email" json:"email"`
	AddressLine1 string `validate:"required"       json:"addressLine1"`
	City         string `validate:"required"       json:"city"`
}

// CheckoutCartItem carries quantity as a numeral string; the checkout-session
// endpoint reads it that way.
type CheckoutCartItem struct {
	MenuItemID string `json:"menuItemId"`
	Name       string `json:"name"`
	Quantity   string `json:"quantity"`
}

type CheckoutSession struct {
	CartItems       []CheckoutCartItem `json:"cartItems"`
	RestaurantID    string             `json:"restaurantId"`
	DeliveryDetails DeliveryDetails    `json:"deliveryDetails"`
}
