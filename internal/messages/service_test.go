package messages

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jvacosta/dailyfish-backend/pkg/db/models"
	"github.com/jvacosta/dailyfish-backend/pkg/enums"
	pkgerrors "github.com/jvacosta/dailyfish-backend/pkg/errors"
)

type stubMessagesRepo struct {
	messages map[uuid.UUID]*models.Message
	created  *models.Message
	readAt   *time.Time
}

func newStubMessagesRepo() *stubMessagesRepo {
	return &stubMessagesRepo{messages: map[uuid.UUID]*models.Message{}}
}

func (s *stubMessagesRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubMessagesRepo) Create(ctx context.Context, message *models.Message) (*models.Message, error) {
	message.ID = uuid.New()
	message.CreatedAt = time.Now()
	s.created = message
	s.messages[message.ID] = message
	return message, nil
}

func (s *stubMessagesRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	message, ok := s.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return message, nil
}

func (s *stubMessagesRepo) ListBySender(ctx context.Context, senderID uuid.UUID, input ListMessagesInput) (*MessageList, error) {
	out := []MessageDTO{}
	for _, message := range s.messages {
		if message.SenderID == senderID {
			out = append(out, *NewMessageDTO(message))
		}
	}
	return &MessageList{Messages: out}, nil
}

func (s *stubMessagesRepo) ListAll(ctx context.Context, input ListMessagesInput) (*MessageList, error) {
	out := []MessageDTO{}
	for _, message := range s.messages {
		out = append(out, *NewMessageDTO(message))
	}
	return &MessageList{Messages: out}, nil
}

func (s *stubMessagesRepo) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error {
	if message, ok := s.messages[id]; ok {
		message.IsRead = true
		message.ReadAt = &at
	}
	s.readAt = &at
	return nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateDefaultsToGeneralType(t *testing.T) {
	t.Parallel()

	repo := newStubMessagesRepo()
	svc := newTestService(t, repo)

	dto, err := svc.Create(context.Background(), uuid.New(), CreateMessageInput{
		Subject: "Where is my order?",
		Body:    "It has been two days.",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Type != enums.MessageTypeGeneral {
		t.Fatalf("expected general type, got %s", dto.Type)
	}
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubMessagesRepo())

	cases := []struct {
		name  string
		input CreateMessageInput
	}{
		{"missing subject", CreateMessageInput{Body: "hello"}},
		{"missing body", CreateMessageInput{Subject: "hello"}},
		{"bad type", CreateMessageInput{Type: "spam", Subject: "a", Body: "b"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), uuid.New(), tc.input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestMarkRead(t *testing.T) {
	t.Parallel()

	repo := newStubMessagesRepo()
	svc := newTestService(t, repo)

	dto, err := svc.Create(context.Background(), uuid.New(), CreateMessageInput{
		Type:    enums.MessageTypeDelivery,
		Subject: "Late delivery",
		Body:    "Order arrived warm.",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	read, err := svc.MarkRead(context.Background(), dto.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !read.IsRead || read.ReadAt == nil {
		t.Fatal("expected message to be marked read")
	}

	firstReadAt := *read.ReadAt
	again, err := svc.MarkRead(context.Background(), dto.ID)
	if err != nil {
		t.Fatalf("mark read twice: %v", err)
	}
	if !again.ReadAt.Equal(firstReadAt) {
		t.Fatal("expected second mark read to be a no-op")
	}
}

func TestMarkReadUnknownMessage(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubMessagesRepo())

	_, err := svc.MarkRead(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
