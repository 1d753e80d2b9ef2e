package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jvacosta/dailyfish-backend/pkg/db/models"
	"github.com/jvacosta/dailyfish-backend/pkg/enums"
	pkgerrors "github.com/jvacosta/dailyfish-backend/pkg/errors"
)

type stubCartRepo struct {
	cart    *models.Cart
	findErr error

	createdItem *models.CartItem
	updatedItem *models.CartItem
	deletedItem uuid.UUID
	cleared     bool
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCartRepo) FindActiveByBuyer(ctx context.Context, buyerID uuid.UUID) (*models.Cart, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.cart, nil
}

func (s *stubCartRepo) CreateCart(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	cart.ID = uuid.New()
	cart.IsActive = true
	s.cart = cart
	s.findErr = nil
	return cart, nil
}

func (s *stubCartRepo) FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	if s.cart == nil {
		return nil, gorm.ErrRecordNotFound
	}
	for i := range s.cart.Items {
		if s.cart.Items[i].ProductID == productID {
			return &s.cart.Items[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	item.ID = uuid.New()
	s.createdItem = item
	s.cart.Items = append(s.cart.Items, *item)
	return item, nil
}

func (s *stubCartRepo) UpdateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	s.updatedItem = item
	for i := range s.cart.Items {
		if s.cart.Items[i].ID == item.ID {
			s.cart.Items[i] = *item
		}
	}
	return item, nil
}

func (s *stubCartRepo) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	s.deletedItem = itemID
	kept := s.cart.Items[:0]
	for _, item := range s.cart.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	s.cart.Items = kept
	return nil
}

func (s *stubCartRepo) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	s.cleared = true
	s.cart.Items = nil
	return nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubProductLoader struct {
	product *models.Product
	err     error
}

func (s *stubProductLoader) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.product, nil
}

func newTestService(t *testing.T, repo Repository, products productLoader) Service {
	t.Helper()
	svc, err := NewService(repo, stubTx{}, products)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func availableProduct(stockKg int64) *models.Product {
	return &models.Product{
		ID:           uuid.New(),
		Name:         "Maya-maya",
		PricePerKilo: decimal.NewFromInt(380),
		StockKg:      decimal.NewFromInt(stockKg),
		Status:       enums.ProductStatusActive,
		IsActive:     true,
	}
}

func TestGetCartReturnsEmptyViewWhenMissing(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	repo := &stubCartRepo{findErr: gorm.ErrRecordNotFound}
	svc := newTestService(t, repo, &stubProductLoader{})

	view, err := svc.GetCart(context.Background(), buyerID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(view.Items))
	}
	if !view.TotalAmount.IsZero() {
		t.Fatalf("expected zero total, got %s", view.TotalAmount)
	}
}

func TestAddItemCreatesCartOnFirstUse(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	product := availableProduct(20)
	repo := &stubCartRepo{findErr: gorm.ErrRecordNotFound}
	svc := newTestService(t, repo, &stubProductLoader{product: product})

	view, err := svc.AddItem(context.Background(), buyerID, AddItemInput{
		ProductID:  product.ID,
		QuantityKg: decimal.NewFromInt(2),
	})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if repo.cart == nil || repo.cart.BuyerID != buyerID {
		t.Fatal("expected a cart to be created for the buyer")
	}
	if repo.createdItem == nil {
		t.Fatal("expected a cart item to be created")
	}
	if !repo.createdItem.UnitPriceSnapshot.Equal(product.PricePerKilo) {
		t.Fatalf("snapshot price mismatch: %s", repo.createdItem.UnitPriceSnapshot)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected 1 item in view, got %d", len(view.Items))
	}
}

func TestAddItemMergesExistingLine(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	product := availableProduct(20)
	cart := &models.Cart{
		ID:      uuid.New(),
		BuyerID: buyerID,
		Items: []models.CartItem{{
			ID:                uuid.New(),
			ProductID:         product.ID,
			Product:           product,
			QuantityKg:        decimal.NewFromInt(3),
			UnitPriceSnapshot: decimal.NewFromInt(350),
		}},
	}
	cart.Items[0].CartID = cart.ID
	repo := &stubCartRepo{cart: cart}
	svc := newTestService(t, repo, &stubProductLoader{product: product})

	_, err := svc.AddItem(context.Background(), buyerID, AddItemInput{
		ProductID:  product.ID,
		QuantityKg: decimal.NewFromInt(2),
	})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if repo.updatedItem == nil {
		t.Fatal("expected existing line to be updated")
	}
	if !repo.updatedItem.QuantityKg.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected merged quantity 5, got %s", repo.updatedItem.QuantityKg)
	}
	if !repo.updatedItem.UnitPriceSnapshot.Equal(product.PricePerKilo) {
		t.Fatalf("expected snapshot refreshed to %s, got %s", product.PricePerKilo, repo.updatedItem.UnitPriceSnapshot)
	}
}

func TestAddItemNewLineExceedingStockFails(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	product := availableProduct(5)
	repo := &stubCartRepo{findErr: gorm.ErrRecordNotFound}
	svc := newTestService(t, repo, &stubProductLoader{product: product})

	_, err := svc.AddItem(context.Background(), buyerID, AddItemInput{
		ProductID:  product.ID,
		QuantityKg: decimal.NewFromInt(8),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	if repo.createdItem != nil {
		t.Fatal("expected no cart line to be created")
	}
}

func TestAddItemMergeClampsToStock(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	product := availableProduct(4)
	cart := &models.Cart{
		ID:      uuid.New(),
		BuyerID: buyerID,
		Items: []models.CartItem{{
			ID:                uuid.New(),
			ProductID:         product.ID,
			Product:           product,
			QuantityKg:        decimal.NewFromInt(3),
			UnitPriceSnapshot: product.PricePerKilo,
		}},
	}
	repo := &stubCartRepo{cart: cart}
	svc := newTestService(t, repo, &stubProductLoader{product: product})

	_, err := svc.AddItem(context.Background(), buyerID, AddItemInput{
		ProductID:  product.ID,
		QuantityKg: decimal.NewFromInt(20),
	})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if repo.updatedItem == nil {
		t.Fatal("expected existing line to be updated")
	}
	if !repo.updatedItem.QuantityKg.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("expected merged quantity clamped to 4, got %s", repo.updatedItem.QuantityKg)
	}
}

func TestAddItemRejectsUnavailableProduct(t *testing.T) {
	t.Parallel()

	product := availableProduct(0)
	product.Status = enums.ProductStatusOutOfStock
	svc := newTestService(t, &stubCartRepo{}, &stubProductLoader{product: product})

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{
		ProductID:  product.ID,
		QuantityKg: decimal.NewFromInt(1),
	})
	if err == nil {
		t.Fatal("expected error for out of stock product")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubCartRepo{}, &stubProductLoader{err: gorm.ErrRecordNotFound})

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{
		ProductID:  uuid.New(),
		QuantityKg: decimal.NewFromInt(1),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubCartRepo{}, &stubProductLoader{})

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{
		ProductID:  uuid.New(),
		QuantityKg: decimal.Zero,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestUpdateItemQuantityRefreshesSnapshot(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	product := availableProduct(20)
	itemID := uuid.New()
	cart := &models.Cart{
		ID:      uuid.New(),
		BuyerID: buyerID,
		Items: []models.CartItem{{
			ID:                itemID,
			ProductID:         product.ID,
			Product:           product,
			QuantityKg:        decimal.NewFromInt(3),
			UnitPriceSnapshot: decimal.NewFromInt(300),
		}},
	}
	repo := &stubCartRepo{cart: cart}
	svc := newTestService(t, repo, &stubProductLoader{product: product})

	_, err := svc.UpdateItemQuantity(context.Background(), buyerID, itemID, decimal.NewFromInt(2))
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if !repo.updatedItem.QuantityKg.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected quantity 2, got %s", repo.updatedItem.QuantityKg)
	}
	// The stale 300 snapshot must be replaced with the live 380 price.
	if !repo.updatedItem.UnitPriceSnapshot.Equal(product.PricePerKilo) {
		t.Fatalf("expected snapshot %s, got %s", product.PricePerKilo, repo.updatedItem.UnitPriceSnapshot)
	}
}

func TestUpdateItemQuantityClampsToStock(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	product := availableProduct(20)
	itemID := uuid.New()
	cart := &models.Cart{
		ID:      uuid.New(),
		BuyerID: buyerID,
		Items: []models.CartItem{{
			ID:                itemID,
			ProductID:         product.ID,
			Product:           product,
			QuantityKg:        decimal.NewFromInt(3),
			UnitPriceSnapshot: product.PricePerKilo,
		}},
	}
	repo := &stubCartRepo{cart: cart}
	svc := newTestService(t, repo, &stubProductLoader{product: product})

	_, err := svc.UpdateItemQuantity(context.Background(), buyerID, itemID, decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if !repo.updatedItem.QuantityKg.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected quantity clamped to 20, got %s", repo.updatedItem.QuantityKg)
	}
}

func TestUpdateItemQuantityZeroRemovesLine(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	itemID := uuid.New()
	cart := &models.Cart{
		ID:      uuid.New(),
		BuyerID: buyerID,
		Items: []models.CartItem{{
			ID:                itemID,
			ProductID:         uuid.New(),
			QuantityKg:        decimal.NewFromInt(2),
			UnitPriceSnapshot: decimal.NewFromInt(200),
		}},
	}
	repo := &stubCartRepo{cart: cart}
	svc := newTestService(t, repo, &stubProductLoader{})

	view, err := svc.UpdateItemQuantity(context.Background(), buyerID, itemID, decimal.Zero)
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if repo.deletedItem != itemID {
		t.Fatal("expected the line to be removed")
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(view.Items))
	}
}

func TestUpdateItemQuantityUnknownItem(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	repo := &stubCartRepo{cart: &models.Cart{ID: uuid.New(), BuyerID: buyerID}}
	svc := newTestService(t, repo, &stubProductLoader{})

	_, err := svc.UpdateItemQuantity(context.Background(), buyerID, uuid.New(), decimal.NewFromInt(2))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestRemoveItem(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	itemID := uuid.New()
	cart := &models.Cart{
		ID:      uuid.New(),
		BuyerID: buyerID,
		Items: []models.CartItem{{
			ID:                itemID,
			ProductID:         uuid.New(),
			QuantityKg:        decimal.NewFromInt(2),
			UnitPriceSnapshot: decimal.NewFromInt(200),
		}},
	}
	repo := &stubCartRepo{cart: cart}
	svc := newTestService(t, repo, &stubProductLoader{})

	view, err := svc.RemoveItem(context.Background(), buyerID, itemID)
	if err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if repo.deletedItem != itemID {
		t.Fatal("expected item to be deleted")
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(view.Items))
	}
}

func TestViewFlagsPriceChangeAndStock(t *testing.T) {
	t.Parallel()

	product := availableProduct(2)
	cart := &models.Cart{
		ID:      uuid.New(),
		BuyerID: uuid.New(),
		Items: []models.CartItem{{
			ID:                uuid.New(),
			ProductID:         product.ID,
			Product:           product,
			QuantityKg:        decimal.NewFromInt(5),
			UnitPriceSnapshot: decimal.NewFromInt(300),
		}},
	}

	view := NewCartView(cart)
	if len(view.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(view.Items))
	}

	types := map[enums.CartItemWarningType]bool{}
	for _, warning := range view.Items[0].Warnings {
		types[warning.Type] = true
	}
	if !types[enums.CartItemWarningTypePriceChanged] {
		t.Fatal("expected price change warning")
	}
	if !types[enums.CartItemWarningTypeClampedToStock] {
		t.Fatal("expected stock warning")
	}
	if !view.TotalAmount.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("expected total 1500, got %s", view.TotalAmount)
	}
}

func TestViewFlagsUnavailableProduct(t *testing.T) {
	t.Parallel()

	product := availableProduct(10)
	product.IsActive = false
	cart := &models.Cart{
		ID:      uuid.New(),
		BuyerID: uuid.New(),
		Items: []models.CartItem{{
			ID:                uuid.New(),
			ProductID:         product.ID,
			Product:           product,
			QuantityKg:        decimal.NewFromInt(1),
			UnitPriceSnapshot: product.PricePerKilo,
		}},
	}

	view := NewCartView(cart)
	warnings := view.Items[0].Warnings
	if len(warnings) != 1 || warnings[0].Type != enums.CartItemWarningTypeNotAvailable {
		t.Fatalf("expected a single not_available warning, got %+v", warnings)
	}
}
