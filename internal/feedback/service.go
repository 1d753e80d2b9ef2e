package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jvacosta/dailyfish-backend/internal/messages"
	"github.com/jvacosta/dailyfish-backend/pkg/db"
	dbmodels "github.com/jvacosta/dailyfish-backend/pkg/db/models"
	"github.com/jvacosta/dailyfish-backend/pkg/enums"
	pkgerrors "github.com/jvacosta/dailyfish-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type orderLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*dbmodels.Order, error)
}

type threadOpener interface {
	CreateInTx(ctx context.Context, tx *gorm.DB, senderID uuid.UUID, input messages.CreateMessageInput) (*messages.MessageDTO, error)
}

// FeedbackDTO exposes one order review.
type FeedbackDTO struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"orderId"`
	BuyerID   uuid.UUID `json:"buyerId"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateFeedbackInput captures the writable feedback fields.
type CreateFeedbackInput struct {
	OrderID uuid.UUID
	Rating  int
	Comment *string
}

// Service exposes feedback operations.
type Service interface {
	Create(ctx context.Context, buyerID uuid.UUID, input CreateFeedbackInput) (*FeedbackDTO, error)
	GetByOrder(ctx context.Context, buyerID, orderID uuid.UUID) (*FeedbackDTO, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	orders  orderLoader
	threads threadOpener
}

// NewService builds the feedback service.
func NewService(repo Repository, tx txRunner, orders orderLoader, threads threadOpener) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("feedback repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order loader required")
	}
	if threads == nil {
		return nil, fmt.Errorf("thread opener required")
	}
	return &service{repo: repo, tx: tx, orders: orders, threads: threads}, nil
}

// Create records the buyer's single review for a completed order and opens a
// message thread tied to the order, both in one transaction.
func (s *service) Create(ctx context.Context, buyerID uuid.UUID, input CreateFeedbackInput) (*FeedbackDTO, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	order, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.Status != enums.OrderStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotPurchased, "feedback requires a completed order")
	}
	if order.Feedback != nil {
		return nil, pkgerrors.New(pkgerrors.CodeDuplicateFeedback, "order already has feedback")
	}

	var created *dbmodels.OrderFeedback
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		created, err = repo.Create(ctx, &dbmodels.OrderFeedback{
			OrderID: order.ID,
			BuyerID: buyerID,
			Rating:  input.Rating,
			Comment: input.Comment,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "idx_order_feedbacks_order_id") {
				return pkgerrors.New(pkgerrors.CodeDuplicateFeedback, "order already has feedback")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create feedback")
		}

		_, err = s.threads.CreateInTx(ctx, tx, buyerID, messages.CreateMessageInput{
			OrderID: &order.ID,
			Type:    enums.MessageTypeFreshness,
			Subject: fmt.Sprintf("Feedback on order %s", order.OrderNumber),
			Body:    feedbackBody(input.Rating, input.Comment),
		})
		return err
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record feedback")
	}

	return newFeedbackDTO(created), nil
}

// GetByOrder returns the buyer's feedback for one of their orders.
func (s *service) GetByOrder(ctx context.Context, buyerID, orderID uuid.UUID) (*FeedbackDTO, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	feedback, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "feedback not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load feedback")
	}
	if feedback.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "feedback not found")
	}
	return newFeedbackDTO(feedback), nil
}

func newFeedbackDTO(feedback *dbmodels.OrderFeedback) *FeedbackDTO {
	return &FeedbackDTO{
		ID:        feedback.ID,
		OrderID:   feedback.OrderID,
		BuyerID:   feedback.BuyerID,
		Rating:    feedback.Rating,
		Comment:   feedback.Comment,
		CreatedAt: feedback.CreatedAt,
	}
}

func feedbackBody(rating int, comment *string) string {
	body := fmt.Sprintf("Rated %d out of 5.", rating)
	if comment != nil && strings.TrimSpace(*comment) != "" {
		body = body + " " + strings.TrimSpace(*comment)
	}
	return body
}
