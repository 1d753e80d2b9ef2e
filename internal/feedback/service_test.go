package feedback

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jvacosta/dailyfish-backend/internal/messages"
	dbmodels "github.com/jvacosta/dailyfish-backend/pkg/db/models"
	"github.com/jvacosta/dailyfish-backend/pkg/enums"
	pkgerrors "github.com/jvacosta/dailyfish-backend/pkg/errors"
)

type stubFeedbackRepo struct {
	created   *dbmodels.OrderFeedback
	createErr error
	existing  *dbmodels.OrderFeedback
}

func (s *stubFeedbackRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubFeedbackRepo) Create(ctx context.Context, feedback *dbmodels.OrderFeedback) (*dbmodels.OrderFeedback, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	feedback.ID = uuid.New()
	s.created = feedback
	return feedback, nil
}

func (s *stubFeedbackRepo) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*dbmodels.OrderFeedback, error) {
	if s.existing == nil || s.existing.OrderID != orderID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.existing, nil
}

type stubOrderLoader struct {
	order *dbmodels.Order
}

func (s *stubOrderLoader) FindByID(ctx context.Context, id uuid.UUID) (*dbmodels.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

type stubThreadOpener struct {
	opened *messages.CreateMessageInput
}

func (s *stubThreadOpener) CreateInTx(ctx context.Context, tx *gorm.DB, senderID uuid.UUID, input messages.CreateMessageInput) (*messages.MessageDTO, error) {
	s.opened = &input
	return &messages.MessageDTO{ID: uuid.New(), SenderID: senderID}, nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func completedOrder(buyerID uuid.UUID) *dbmodels.Order {
	return &dbmodels.Order{
		ID:          uuid.New(),
		OrderNumber: "ORD-20260420-11AA22BB",
		BuyerID:     buyerID,
		Status:      enums.OrderStatusCompleted,
	}
}

func newTestService(t *testing.T, repo Repository, orders orderLoader, threads threadOpener) Service {
	t.Helper()
	svc, err := NewService(repo, stubTx{}, orders, threads)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateFeedbackOpensThread(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	order := completedOrder(buyerID)
	repo := &stubFeedbackRepo{}
	threads := &stubThreadOpener{}
	svc := newTestService(t, repo, &stubOrderLoader{order: order}, threads)

	comment := "Very fresh, fast delivery."
	dto, err := svc.Create(context.Background(), buyerID, CreateFeedbackInput{
		OrderID: order.ID,
		Rating:  5,
		Comment: &comment,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Rating != 5 {
		t.Fatalf("expected rating 5, got %d", dto.Rating)
	}
	if threads.opened == nil {
		t.Fatal("expected a message thread to be opened")
	}
	if threads.opened.OrderID == nil || *threads.opened.OrderID != order.ID {
		t.Fatal("expected thread tied to the order")
	}
}

func TestCreateFeedbackRequiresCompletedOrder(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	order := completedOrder(buyerID)
	order.Status = enums.OrderStatusOutForDelivery
	svc := newTestService(t, &stubFeedbackRepo{}, &stubOrderLoader{order: order}, &stubThreadOpener{})

	_, err := svc.Create(context.Background(), buyerID, CreateFeedbackInput{OrderID: order.ID, Rating: 4})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotPurchased {
		t.Fatalf("expected not purchased error, got %v", err)
	}
}

func TestCreateFeedbackRejectsDuplicate(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	order := completedOrder(buyerID)
	order.Feedback = &dbmodels.OrderFeedback{ID: uuid.New(), OrderID: order.ID, BuyerID: buyerID, Rating: 4}
	svc := newTestService(t, &stubFeedbackRepo{}, &stubOrderLoader{order: order}, &stubThreadOpener{})

	_, err := svc.Create(context.Background(), buyerID, CreateFeedbackInput{OrderID: order.ID, Rating: 3})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDuplicateFeedback {
		t.Fatalf("expected duplicate feedback error, got %v", err)
	}
}

func TestCreateFeedbackDuplicateRace(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	order := completedOrder(buyerID)
	repo := &stubFeedbackRepo{
		createErr: errorUniqueViolation(),
	}
	svc := newTestService(t, repo, &stubOrderLoader{order: order}, &stubThreadOpener{})

	_, err := svc.Create(context.Background(), buyerID, CreateFeedbackInput{OrderID: order.ID, Rating: 3})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDuplicateFeedback {
		t.Fatalf("expected duplicate feedback error, got %v", err)
	}
}

func TestCreateFeedbackValidatesRating(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubFeedbackRepo{}, &stubOrderLoader{}, &stubThreadOpener{})

	for _, rating := range []int{0, -1, 6} {
		_, err := svc.Create(context.Background(), uuid.New(), CreateFeedbackInput{OrderID: uuid.New(), Rating: rating})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for rating %d, got %v", rating, err)
		}
	}
}

func TestCreateFeedbackForeignOrder(t *testing.T) {
	t.Parallel()

	order := completedOrder(uuid.New())
	svc := newTestService(t, &stubFeedbackRepo{}, &stubOrderLoader{order: order}, &stubThreadOpener{})

	_, err := svc.Create(context.Background(), uuid.New(), CreateFeedbackInput{OrderID: order.ID, Rating: 4})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func errorUniqueViolation() error {
	return &uniqueViolationError{}
}

type uniqueViolationError struct{}

func (*uniqueViolationError) Error() string {
	return `duplicate key value violates unique constraint "idx_order_feedbacks_order_id"`
}
