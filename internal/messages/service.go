package messages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jvacosta/dailyfish-backend/pkg/db/models"
	"github.com/jvacosta/dailyfish-backend/pkg/enums"
	pkgerrors "github.com/jvacosta/dailyfish-backend/pkg/errors"
)

// Service exposes message thread operations.
type Service interface {
	Create(ctx context.Context, senderID uuid.UUID, input CreateMessageInput) (*MessageDTO, error)
	CreateInTx(ctx context.Context, tx *gorm.DB, senderID uuid.UUID, input CreateMessageInput) (*MessageDTO, error)
	ListMine(ctx context.Context, senderID uuid.UUID, input ListMessagesInput) (*MessageList, error)
	ListAll(ctx context.Context, input ListMessagesInput) (*MessageList, error)
	MarkRead(ctx context.Context, id uuid.UUID) (*MessageDTO, error)
}

// CreateMessageInput captures the writable message fields.
type CreateMessageInput struct {
	OrderID *uuid.UUID
	Type    enums.MessageType
	Subject string
	Body    string
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the messages service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("messages repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, senderID uuid.UUID, input CreateMessageInput) (*MessageDTO, error) {
	return s.CreateInTx(ctx, nil, senderID, input)
}

// CreateInTx writes the message inside the caller's transaction when one is
// provided, so threads opened by other workflows commit atomically with them.
func (s *service) CreateInTx(ctx context.Context, tx *gorm.DB, senderID uuid.UUID, input CreateMessageInput) (*MessageDTO, error) {
	if senderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sender id is required")
	}
	messageType := input.Type
	if messageType == "" {
		messageType = enums.MessageTypeGeneral
	}
	if !messageType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid message type")
	}
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject is required")
	}
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "body is required")
	}

	repo := s.repo
	if tx != nil {
		repo = s.repo.WithTx(tx)
	}

	created, err := repo.Create(ctx, &models.Message{
		SenderID: senderID,
		OrderID:  input.OrderID,
		Type:     messageType,
		Subject:  subject,
		Body:     body,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create message")
	}
	return NewMessageDTO(created), nil
}

func (s *service) ListMine(ctx context.Context, senderID uuid.UUID, input ListMessagesInput) (*MessageList, error) {
	if senderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sender id is required")
	}
	list, err := s.repo.ListBySender(ctx, senderID, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}
	return list, nil
}

func (s *service) ListAll(ctx context.Context, input ListMessagesInput) (*MessageList, error) {
	list, err := s.repo.ListAll(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}
	return list, nil
}

// MarkRead flags the message as handled by staff. Marking an already-read
// message is a no-op.
func (s *service) MarkRead(ctx context.Context, id uuid.UUID) (*MessageDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message id is required")
	}

	message, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "message not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load message")
	}

	if !message.IsRead {
		if err := s.repo.MarkRead(ctx, id, s.now().UTC()); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark message read")
		}
		message, err = s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload message")
		}
	}
	return NewMessageDTO(message), nil
}
