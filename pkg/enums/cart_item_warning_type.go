package enums

import "fmt"

// CartItemWarningType enumerates warning reasons returned with cart items.
type CartItemWarningType string

const (
	CartItemWarningTypeClampedToStock CartItemWarningType = "clamped_to_stock"
	CartItemWarningTypePriceChanged   CartItemWarningType = "price_changed"
	CartItemWarningTypeNotAvailable   CartItemWarningType = "not_available"
)

var validCartItemWarningTypes = []CartItemWarningType{
	CartItemWarningTypeClampedToStock,
	CartItemWarningTypePriceChanged,
	CartItemWarningTypeNotAvailable,
}

// String implements fmt.Stringer.
func (c CartItemWarningType) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c CartItemWarningType) IsValid() bool {
	for _, candidate := range validCartItemWarningTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartItemWarningType converts raw input into a CartItemWarningType.
func ParseCartItemWarningType(value string) (CartItemWarningType, error) {
	for _, candidate := range validCartItemWarningTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart item warning type %q", value)
}
