package messages

import (
	"time"

	"github.com/google/uuid"

	"github.com/jvacosta/dailyfish-backend/pkg/db/models"
	"github.com/jvacosta/dailyfish-backend/pkg/enums"
	"github.com/jvacosta/dailyfish-backend/pkg/pagination"
)

// MessageDTO exposes a message thread entry.
type MessageDTO struct {
	ID        uuid.UUID         `json:"id"`
	SenderID  uuid.UUID         `json:"senderId"`
	OrderID   *uuid.UUID        `json:"orderId,omitempty"`
	Type      enums.MessageType `json:"type"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	IsRead    bool              `json:"isRead"`
	ReadAt    *time.Time        `json:"readAt,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// MessageFilters describe the inputs supported by the message lists.
type MessageFilters struct {
	Type    *enums.MessageType
	Unread  *bool
	OrderID *uuid.UUID
}

// ListMessagesInput bundles filters with cursor pagination.
type ListMessagesInput struct {
	Filters    MessageFilters
	Pagination pagination.Params
}

// MessageList wraps the paginated messages plus the next page cursor.
type MessageList struct {
	Messages   []MessageDTO `json:"messages"`
	NextCursor string       `json:"nextCursor,omitempty"`
}

// NewMessageDTO maps the persisted message to its read model.
func NewMessageDTO(message *models.Message) *MessageDTO {
	return &MessageDTO{
		ID:        message.ID,
		SenderID:  message.SenderID,
		OrderID:   message.OrderID,
		Type:      message.Type,
		Subject:   message.Subject,
		Body:      message.Body,
		IsRead:    message.IsRead,
		ReadAt:    message.ReadAt,
		CreatedAt: message.CreatedAt,
	}
}
