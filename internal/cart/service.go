package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jvacosta/dailyfish-backend/pkg/db"
	"github.com/jvacosta/dailyfish-backend/pkg/db/models"
	"github.com/jvacosta/dailyfish-backend/pkg/enums"
	pkgerrors "github.com/jvacosta/dailyfish-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes cart operations for a buyer.
type Service interface {
	GetCart(ctx context.Context, buyerID uuid.UUID) (*CartView, error)
	AddItem(ctx context.Context, buyerID uuid.UUID, input AddItemInput) (*CartView, error)
	UpdateItemQuantity(ctx context.Context, buyerID, itemID uuid.UUID, quantityKg decimal.Decimal) (*CartView, error)
	RemoveItem(ctx context.Context, buyerID, itemID uuid.UUID) (*CartView, error)
	Clear(ctx context.Context, buyerID uuid.UUID) (*CartView, error)
}

// AddItemInput captures the payload for adding a product to the cart.
type AddItemInput struct {
	ProductID  uuid.UUID
	QuantityKg decimal.Decimal
}

type service struct {
	repo     Repository
	tx       txRunner
	products productLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo Repository, tx txRunner, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, tx: tx, products: products}, nil
}

// GetCart returns the buyer's active cart. A buyer with no cart yet gets an
// empty view rather than a not-found error.
func (s *service) GetCart(ctx context.Context, buyerID uuid.UUID) (*CartView, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}

	cart, err := s.repo.FindActiveByBuyer(ctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return emptyView(buyerID), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return NewCartView(cart), nil
}

// AddItem puts a product into the buyer's active cart, creating the cart on
// first use. A new line must fit within available stock; adding a product
// already in the cart increases its quantity, clamped to stock. The stored
// unit price is refreshed to the live price either way.
func (s *service) AddItem(ctx context.Context, buyerID uuid.UUID, input AddItemInput) (*CartView, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if !input.QuantityKg.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.products.FindProductByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive || product.Status == enums.ProductStatusOutOfStock {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product is not available")
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := s.ensureActiveCart(ctx, txRepo, buyerID)
		if err != nil {
			return err
		}

		item, err := txRepo.FindItem(ctx, cart.ID, product.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if item != nil {
			item.QuantityKg = clampToStock(item.QuantityKg.Add(input.QuantityKg), product.StockKg)
			item.UnitPriceSnapshot = product.PricePerKilo
			_, err = txRepo.UpdateItem(ctx, item)
			return err
		}

		if input.QuantityKg.GreaterThan(product.StockKg) {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "requested quantity exceeds available stock").
				WithDetails(map[string]any{
					"product_id":   product.ID,
					"product_name": product.Name,
					"requested_kg": input.QuantityKg,
					"available_kg": product.StockKg,
				})
		}

		_, err = txRepo.CreateItem(ctx, &models.CartItem{
			CartID:            cart.ID,
			ProductID:         product.ID,
			QuantityKg:        input.QuantityKg,
			UnitPriceSnapshot: product.PricePerKilo,
		})
		return err
	}); err != nil {
		return nil, wrapCartWriteError(err)
	}

	return s.GetCart(ctx, buyerID)
}

// UpdateItemQuantity replaces the quantity on a cart line, clamped to
// available stock, and refreshes the price snapshot to the live price.
// A non-positive quantity removes the line instead.
func (s *service) UpdateItemQuantity(ctx context.Context, buyerID, itemID uuid.UUID, quantityKg decimal.Decimal) (*CartView, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if !quantityKg.IsPositive() {
		return s.RemoveItem(ctx, buyerID, itemID)
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		_, item, err := s.findOwnedItem(ctx, txRepo, buyerID, itemID)
		if err != nil {
			return err
		}

		stock := quantityKg
		if item.Product != nil {
			stock = item.Product.StockKg
			item.UnitPriceSnapshot = item.Product.PricePerKilo
		}
		item.QuantityKg = clampToStock(quantityKg, stock)
		item.Product = nil

		_, err = txRepo.UpdateItem(ctx, item)
		return err
	}); err != nil {
		return nil, wrapCartWriteError(err)
	}

	return s.GetCart(ctx, buyerID)
}

// RemoveItem drops a line from the buyer's active cart.
func (s *service) RemoveItem(ctx context.Context, buyerID, itemID uuid.UUID) (*CartView, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, _, err := s.findOwnedItem(ctx, txRepo, buyerID, itemID)
		if err != nil {
			return err
		}
		return txRepo.DeleteItem(ctx, cart.ID, itemID)
	}); err != nil {
		return nil, wrapCartWriteError(err)
	}

	return s.GetCart(ctx, buyerID)
}

// Clear removes every line from the buyer's active cart.
func (s *service) Clear(ctx context.Context, buyerID uuid.UUID) (*CartView, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}

	cart, err := s.repo.FindActiveByBuyer(ctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return emptyView(buyerID), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	if err := s.repo.ClearItems(ctx, cart.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return s.GetCart(ctx, buyerID)
}

// ensureActiveCart finds or creates the buyer's active cart. A concurrent
// create losing the race against the partial unique index falls back to
// fetching the winner's row.
func (s *service) ensureActiveCart(ctx context.Context, repo Repository, buyerID uuid.UUID) (*models.Cart, error) {
	cart, err := repo.FindActiveByBuyer(ctx, buyerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created, err := repo.CreateCart(ctx, &models.Cart{BuyerID: buyerID})
	if err != nil {
		if db.IsUniqueViolation(err, "idx_carts_one_active_per_buyer") {
			return repo.FindActiveByBuyer(ctx, buyerID)
		}
		return nil, err
	}
	return created, nil
}

func (s *service) findOwnedItem(ctx context.Context, repo Repository, buyerID, itemID uuid.UUID) (*models.Cart, *models.CartItem, error) {
	cart, err := repo.FindActiveByBuyer(ctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			return cart, &cart.Items[i], nil
		}
	}
	return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
}

func clampToStock(quantityKg, stockKg decimal.Decimal) decimal.Decimal {
	if quantityKg.GreaterThan(stockKg) {
		return stockKg
	}
	return quantityKg
}

func wrapCartWriteError(err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
}

func emptyView(buyerID uuid.UUID) *CartView {
	return &CartView{
		BuyerID:     buyerID,
		Items:       []CartItemView{},
		TotalAmount: decimal.Zero,
	}
}
