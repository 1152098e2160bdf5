package response

import (
	"github.com/shopspring/decimal"
)

type CartItem struct {
	ID       string          `json:"_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type OrderSummary struct {
	CartItems     []CartItem      `json:"cartItems"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DeliveryPrice decimal.Decimal `json:"deliveryPrice"`
	Total         decimal.Decimal `json:"total"`
}

type CheckoutSession struct {
	URL string `json:"url"`
}
