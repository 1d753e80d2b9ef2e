package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jvacosta/dailyfish-backend/pkg/db/models"
	"github.com/jvacosta/dailyfish-backend/pkg/enums"
)

// ItemWarning flags a divergence between a cart line and the live listing.
type ItemWarning struct {
	ProductID uuid.UUID                 `json:"productId"`
	Type      enums.CartItemWarningType `json:"type"`
	Message   string                    `json:"message"`
}

// CartItemView is the read model for one cart line.
type CartItemView struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"productId"`
	ProductName       string          `json:"productName"`
	QuantityKg        decimal.Decimal `json:"quantityKg"`
	UnitPriceSnapshot decimal.Decimal `json:"unitPriceSnapshot"`
	CurrentPrice      decimal.Decimal `json:"currentPricePerKilo"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	ImageURL          *string         `json:"imageUrl,omitempty"`
	Warnings          []ItemWarning   `json:"warnings,omitempty"`
}

// CartView is the read model for the buyer's active cart.
type CartView struct {
	ID          uuid.UUID       `json:"id"`
	BuyerID     uuid.UUID       `json:"buyerId"`
	Items       []CartItemView  `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewCartView builds the read model, flagging lines whose product changed
// underneath the snapshot. Items must be loaded with their products.
func NewCartView(cart *models.Cart) *CartView {
	view := &CartView{
		ID:          cart.ID,
		BuyerID:     cart.BuyerID,
		Items:       make([]CartItemView, 0, len(cart.Items)),
		TotalAmount: decimal.Zero,
		UpdatedAt:   cart.UpdatedAt,
	}

	for i := range cart.Items {
		item := &cart.Items[i]
		line := CartItemView{
			ID:                item.ID,
			ProductID:         item.ProductID,
			QuantityKg:        item.QuantityKg,
			UnitPriceSnapshot: item.UnitPriceSnapshot,
			Subtotal:          item.UnitPriceSnapshot.Mul(item.QuantityKg),
		}

		if product := item.Product; product != nil {
			line.ProductName = product.Name
			line.CurrentPrice = product.PricePerKilo
			line.ImageURL = product.ImageURL
			line.Warnings = itemWarnings(item, product)
		}

		view.TotalAmount = view.TotalAmount.Add(line.Subtotal)
		view.Items = append(view.Items, line)
	}

	return view
}

func itemWarnings(item *models.CartItem, product *models.Product) []ItemWarning {
	var warnings []ItemWarning

	if !product.IsActive || product.StockKg.LessThanOrEqual(decimal.Zero) {
		warnings = append(warnings, ItemWarning{
			ProductID: product.ID,
			Type:      enums.CartItemWarningTypeNotAvailable,
			Message:   "product is no longer available",
		})
		return warnings
	}
	if !item.UnitPriceSnapshot.Equal(product.PricePerKilo) {
		warnings = append(warnings, ItemWarning{
			ProductID: product.ID,
			Type:      enums.CartItemWarningTypePriceChanged,
			Message:   "price changed since the item was added",
		})
	}
	if item.QuantityKg.GreaterThan(product.StockKg) {
		warnings = append(warnings, ItemWarning{
			ProductID: product.ID,
			Type:      enums.CartItemWarningTypeClampedToStock,
			Message:   "requested quantity exceeds available stock",
		})
	}
	return warnings
}
