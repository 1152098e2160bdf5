package response

import (
	"time"

	"github.com/shopspring/decimal"
)

type MenuItem struct {
	ID    string          `json:"_id"   validate:"required"`
	Name  string          `json:"name"  validate:"required"`
	Price decimal.Decimal `json:"price" validate:"price"`
}

type Restaurant struct {
	ID                    string          `json:"_id"                   validate:"required"`
	User                  string          `json:"user,omitempty"`
	RestaurantName        string          `json:"restaurantName"`
	City                  string          `json:"city"`
	Country               string          `json:"country"`
	DeliveryPrice         decimal.Decimal `json:"deliveryPrice"         validate:"price"`
	EstimatedDeliveryTime int             `json:"estimatedDeliveryTime"`
	Cuisines              []string        `json:"cuisines"`
	MenuItems             []MenuItem      `json:"menuItems"             validate:"dive"`
	ImageURL              string          `json:"imageUrl"`
	LastUpdated           time.Time       `json:"lastUpdated"`
}

func (r Restaurant) MenuItem(id string) (MenuItem, bool) {
	for _, item := range r.MenuItems {
		if item.ID == id {
			return item, true
		}
	}
	return MenuItem{}, false
}

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

type SearchResult struct {
	Data       []Restaurant `json:"data"`
	Pagination Pagination   `json:"pagination"`
}
