package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jvacosta/dailyfish-backend/internal/catalog"
	"github.com/jvacosta/dailyfish-backend/pkg/db/models"
	"github.com/jvacosta/dailyfish-backend/pkg/enums"
	pkgerrors "github.com/jvacosta/dailyfish-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines order reads and lifecycle operations.
type Service interface {
	GetOrder(ctx context.Context, buyerID, orderID uuid.UUID) (*OrderDTO, error)
	GetOrderForStaff(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	ListMine(ctx context.Context, buyerID uuid.UUID, input ListOrdersInput) (*OrderList, error)
	ListAll(ctx context.Context, input ListOrdersInput) (*OrderList, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (*OrderDTO, error)
	CancelByBuyer(ctx context.Context, buyerID, orderID uuid.UUID) (*OrderDTO, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	products catalog.Repository
	now      func() time.Time
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, tx txRunner, products catalog.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		products: products,
		now:      time.Now,
	}, nil
}

// GetOrder returns the order when it belongs to the buyer.
func (s *service) GetOrder(ctx context.Context, buyerID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return NewOrderDTO(order), nil
}

// GetOrderForStaff returns any order without an ownership check.
func (s *service) GetOrderForStaff(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(order), nil
}

func (s *service) ListMine(ctx context.Context, buyerID uuid.UUID, input ListOrdersInput) (*OrderList, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	list, err := s.repo.ListByBuyer(ctx, buyerID, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) ListAll(ctx context.Context, input ListOrdersInput) (*OrderList, error) {
	list, err := s.repo.ListAll(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

// UpdateStatus moves an order along the fulfilment path. Moving to cancelled
// returns the order's quantities to product stock.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (*OrderDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if target == enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders cannot return to pending")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.loadOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if !CanTransition(order.Status, target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, target))
		}

		if target == enums.OrderStatusCancelled {
			if err := s.restock(ctx, tx, order); err != nil {
				return err
			}
		}

		if err := repo.UpdateStatus(ctx, order.ID, target, s.now().UTC()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrderForStaff(ctx, orderID)
}

// CancelByBuyer cancels the buyer's own order. Only pending orders can be
// cancelled by the buyer; later stages require staff.
func (s *service) CancelByBuyer(ctx context.Context, buyerID, orderID uuid.UUID) (*OrderDTO, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.loadOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if order.BuyerID != buyerID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can be cancelled")
		}

		if err := s.restock(ctx, tx, order); err != nil {
			return err
		}
		if err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled, s.now().UTC()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, buyerID, orderID)
}

// restock returns every order line's quantity to product stock under row
// locks and rederives each listing status.
func (s *service) restock(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if len(order.Items) == 0 {
		return nil
	}

	productRepo := s.products.WithTx(tx)

	ids := make([]uuid.UUID, 0, len(order.Items))
	quantities := make(map[uuid.UUID]models.OrderItem, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
		quantities[item.ProductID] = item
	}

	products, err := productRepo.FindProductsForUpdate(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock products for restock")
	}

	for i := range products {
		product := &products[i]
		item, ok := quantities[product.ID]
		if !ok {
			continue
		}
		product.StockKg = product.StockKg.Add(item.QuantityKg)
		product.Status = catalog.ComputeStatus(product.StockKg, product.LowStockThreshold)
		if err := productRepo.SaveProductStock(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock product")
		}
	}
	return nil
}

func (s *service) loadOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}
