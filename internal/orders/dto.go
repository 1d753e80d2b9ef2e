package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jvacosta/dailyfish-backend/pkg/db/models"
	"github.com/jvacosta/dailyfish-backend/pkg/enums"
	"github.com/jvacosta/dailyfish-backend/pkg/pagination"
)

// OrderItemDTO exposes one frozen order line.
type OrderItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	QuantityKg  decimal.Decimal `json:"quantityKg"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderDTO exposes an order with its frozen lines.
type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	BuyerID         uuid.UUID           `json:"buyerId"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentMethod   enums.PaymentMethod `json:"paymentMethod"`
	DeliveryAddress string              `json:"deliveryAddress"`
	Notes           *string             `json:"notes,omitempty"`
	TotalAmount     decimal.Decimal     `json:"totalAmount"`
	Items           []OrderItemDTO      `json:"items"`
	HasFeedback     bool                `json:"hasFeedback"`
	ConfirmedAt     *time.Time          `json:"confirmedAt,omitempty"`
	CompletedAt     *time.Time          `json:"completedAt,omitempty"`
	CancelledAt     *time.Time          `json:"cancelledAt,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
}

// OrderFilters describe the inputs supported by the order lists.
type OrderFilters struct {
	Status   *enums.OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// ListOrdersInput bundles filters with cursor pagination.
type ListOrdersInput struct {
	Filters    OrderFilters
	Pagination pagination.Params
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// NewOrderDTO maps the persisted order to its read model.
func NewOrderDTO(order *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		BuyerID:         order.BuyerID,
		Status:          order.Status,
		PaymentMethod:   order.PaymentMethod,
		DeliveryAddress: order.DeliveryAddress,
		Notes:           order.Notes,
		TotalAmount:     order.TotalAmount,
		Items:           make([]OrderItemDTO, 0, len(order.Items)),
		HasFeedback:     order.Feedback != nil,
		ConfirmedAt:     order.ConfirmedAt,
		CompletedAt:     order.CompletedAt,
		CancelledAt:     order.CancelledAt,
		CreatedAt:       order.CreatedAt,
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			QuantityKg:  item.QuantityKg,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}
	return dto
}
