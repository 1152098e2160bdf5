package validate

import (
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Alturino/eats/search/pkg/request"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Get returns the shared validator with the price and sort_option tags registered.
func Get() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		_ = validate.RegisterValidation("price", ValidatePrice)
		_ = validate.RegisterValidation("sort_option", ValidateSortOption)
	})
	return validate
}

func ValidateSortOption(fl validator.FieldLevel) bool {
	_, err := request.ParseSortOption(fl.Field().String())
	return err == nil
}

// ValidatePrice accepts non-negative prices.
func ValidatePrice(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return false
		}
		return !d.IsNegative()
	case float64:
		return v >= 0
	default:
		return false
	}
}

func decimalValue(v reflect.Value) interface{} {
	d, ok := v.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	return d.String()
}
