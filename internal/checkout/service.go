package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/jvacosta/dailyfish-backend/internal/cart"
	"github.com/jvacosta/dailyfish-backend/internal/catalog"
	"github.com/jvacosta/dailyfish-backend/internal/orders"
	"github.com/jvacosta/dailyfish-backend/pkg/config"
	"github.com/jvacosta/dailyfish-backend/pkg/db"
	"github.com/jvacosta/dailyfish-backend/pkg/db/models"
	"github.com/jvacosta/dailyfish-backend/pkg/enums"
	pkgerrors "github.com/jvacosta/dailyfish-backend/pkg/errors"
	"github.com/jvacosta/dailyfish-backend/pkg/logger"
	"github.com/jvacosta/dailyfish-backend/pkg/metrics"
)

const orderNumberIndex = "idx_orders_order_number"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type buyerLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service converts the buyer's active cart into an order.
type Service interface {
	Execute(ctx context.Context, buyerID uuid.UUID, input CheckoutInput) (*orders.OrderDTO, error)
}

// CheckoutInput captures the payload required to place an order. A blank
// DeliveryAddress falls back to the buyer's saved profile address.
type CheckoutInput struct {
	PaymentMethod   enums.PaymentMethod
	DeliveryAddress string
	ContactNumber   string
	Notes           *string
}

// StockShortage describes one cart line that could not be fulfilled.
type StockShortage struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	RequestedKg decimal.Decimal `json:"requestedKg"`
	AvailableKg decimal.Decimal `json:"availableKg"`
}

type service struct {
	tx          txRunner
	cartRepo    cart.Repository
	ordersRepo  orders.Repository
	productRepo catalog.Repository
	users       buyerLoader
	cfg         config.CheckoutConfig
	logg        *logger.Logger
	metrics     *metrics.CheckoutMetrics
	now         func() time.Time
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	cartRepo cart.Repository,
	ordersRepo orders.Repository,
	productRepo catalog.Repository,
	users buyerLoader,
	cfg config.CheckoutConfig,
	logg *logger.Logger,
	checkoutMetrics *metrics.CheckoutMetrics,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.OrderNumberPrefix == "" {
		cfg.OrderNumberPrefix = "ORD"
	}
	if cfg.OrderNumberMaxAttempts <= 0 {
		cfg.OrderNumberMaxAttempts = 5
	}
	return &service{
		tx:          tx,
		cartRepo:    cartRepo,
		ordersRepo:  ordersRepo,
		productRepo: productRepo,
		users:       users,
		cfg:         cfg,
		logg:        logg,
		metrics:     checkoutMetrics,
		now:         time.Now,
	}, nil
}

// Execute atomically turns the buyer's active cart into a pending order:
// stock is revalidated under row locks, prices and names are frozen into
// order lines, stock is decremented, and the cart is emptied. Nothing is
// written when any line has insufficient stock.
func (s *service) Execute(ctx context.Context, buyerID uuid.UUID, input CheckoutInput) (*orders.OrderDTO, error) {
	started := s.now()

	dto, err := s.execute(ctx, buyerID, input)

	elapsed := s.now().Sub(started)
	if err != nil {
		reason := "internal"
		if typed := pkgerrors.As(err); typed != nil {
			reason = strings.ToLower(string(typed.Code()))
		}
		s.metrics.ObserveDuration("failure", elapsed)
		s.metrics.IncFailure(reason)
		return nil, err
	}

	s.metrics.ObserveDuration("success", elapsed)
	s.metrics.IncOrderCreated()
	return dto, nil
}

func (s *service) execute(ctx context.Context, buyerID uuid.UUID, input CheckoutInput) (*orders.OrderDTO, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	contact := strings.TrimSpace(input.ContactNumber)
	if !validContactNumber(contact) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact number must be 10 to 15 digits")
	}
	address, err := s.resolveDeliveryAddress(ctx, buyerID, input.DeliveryAddress)
	if err != nil {
		return nil, err
	}
	// The order snapshots the address with the contact number as its own
	// line, so later profile edits never touch historical orders.
	input.DeliveryAddress = address + "\n" + contact

	// Order numbers collide only on the random suffix, so a fresh number on
	// each attempt is enough. The unique index is the arbiter.
	backoff := retry.WithMaxRetries(uint64(s.cfg.OrderNumberMaxAttempts-1), retry.NewConstant(time.Millisecond))

	var orderID uuid.UUID
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		orderNumber := GenerateOrderNumber(s.cfg.OrderNumberPrefix, s.now())

		txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			id, err := s.placeOrder(ctx, tx, buyerID, orderNumber, input)
			if err != nil {
				return err
			}
			orderID = id
			return nil
		})
		if txErr != nil && db.IsUniqueViolation(txErr, orderNumberIndex) {
			return retry.RetryableError(txErr)
		}
		return txErr
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkout failed")
	}

	order, err := s.ordersRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load created order")
	}
	return orders.NewOrderDTO(order), nil
}

func (s *service) placeOrder(ctx context.Context, tx *gorm.DB, buyerID uuid.UUID, orderNumber string, input CheckoutInput) (uuid.UUID, error) {
	cartRepo := s.cartRepo.WithTx(tx)
	ordersRepo := s.ordersRepo.WithTx(tx)
	productRepo := s.productRepo.WithTx(tx)

	record, err := cartRepo.FindActiveByBuyer(ctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		return uuid.Nil, err
	}
	if len(record.Items) == 0 {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	productIDs := make([]uuid.UUID, 0, len(record.Items))
	for _, item := range record.Items {
		productIDs = append(productIDs, item.ProductID)
	}

	locked, err := productRepo.FindProductsForUpdate(ctx, productIDs)
	if err != nil {
		return uuid.Nil, err
	}
	productsByID := make(map[uuid.UUID]*models.Product, len(locked))
	for i := range locked {
		productsByID[locked[i].ID] = &locked[i]
	}

	shortages, verr := validateStock(record.Items, productsByID)
	if len(shortages) > 0 {
		typed := pkgerrors.Wrap(pkgerrors.CodeInsufficientStock, verr, "insufficient stock for checkout")
		return uuid.Nil, typed.WithDetails(map[string]any{"items": shortages})
	}

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(record.Items))
	for _, line := range record.Items {
		product := productsByID[line.ProductID]
		subtotal := product.PricePerKilo.Mul(line.QuantityKg)
		total = total.Add(subtotal)
		items = append(items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			QuantityKg:  line.QuantityKg,
			UnitPrice:   product.PricePerKilo,
			Subtotal:    subtotal,
		})
	}

	order, err := ordersRepo.Create(ctx, &models.Order{
		OrderNumber:     orderNumber,
		BuyerID:         buyerID,
		Status:          enums.OrderStatusPending,
		PaymentMethod:   input.PaymentMethod,
		DeliveryAddress: input.DeliveryAddress,
		Notes:           input.Notes,
		TotalAmount:     total,
	})
	if err != nil {
		return uuid.Nil, err
	}

	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := ordersRepo.CreateItems(ctx, items); err != nil {
		return uuid.Nil, err
	}

	for _, line := range record.Items {
		product := productsByID[line.ProductID]
		remaining := product.StockKg.Sub(line.QuantityKg)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}

		product.StockKg = remaining
		product.Status = catalog.ComputeStatus(remaining, product.LowStockThreshold)
		if err := productRepo.SaveProductStock(ctx, product); err != nil {
			return uuid.Nil, err
		}

		// Fires for every commit that leaves the product at or below its
		// threshold, not just the crossing one.
		if product.Status != enums.ProductStatusActive {
			lctx := s.logg.WithFields(ctx, map[string]any{
				"product_id":   product.ID.String(),
				"product_name": product.Name,
				"stock_kg":     product.StockKg.String(),
				"status":       product.Status.String(),
			})
			s.logg.Warn(lctx, "product stock low after checkout")
			s.metrics.IncLowStockSignal()
		}
	}

	if err := cartRepo.ClearItems(ctx, record.ID); err != nil {
		return uuid.Nil, err
	}

	return order.ID, nil
}

// resolveDeliveryAddress prefers the payload address and falls back to the
// buyer's saved profile address when the payload is blank.
func (s *service) resolveDeliveryAddress(ctx context.Context, buyerID uuid.UUID, supplied string) (string, error) {
	address := strings.TrimSpace(supplied)
	if address != "" {
		return address, nil
	}

	buyer, err := s.users.FindByID(ctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer profile")
	}
	if buyer.Address != nil {
		address = strings.TrimSpace(*buyer.Address)
	}
	if address == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required")
	}
	return address, nil
}

func validContactNumber(s string) bool {
	if len(s) < 10 || len(s) > 15 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validateStock(lines []models.CartItem, productsByID map[uuid.UUID]*models.Product) ([]StockShortage, error) {
	var shortages []StockShortage
	var verr error

	for _, line := range lines {
		product, ok := productsByID[line.ProductID]
		if !ok || !product.IsActive {
			name := ""
			if ok {
				name = product.Name
			}
			shortages = append(shortages, StockShortage{
				ProductID:   line.ProductID,
				ProductName: name,
				RequestedKg: line.QuantityKg,
				AvailableKg: decimal.Zero,
			})
			verr = multierr.Append(verr, fmt.Errorf("product %s is no longer available", line.ProductID))
			continue
		}
		if product.StockKg.LessThan(line.QuantityKg) {
			shortages = append(shortages, StockShortage{
				ProductID:   product.ID,
				ProductName: product.Name,
				RequestedKg: line.QuantityKg,
				AvailableKg: product.StockKg,
			})
			verr = multierr.Append(verr, fmt.Errorf("product %s has %s kg, requested %s kg",
				product.ID, product.StockKg, line.QuantityKg))
		}
	}
	return shortages, verr
}
