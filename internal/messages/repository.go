package messages

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jvacosta/dailyfish-backend/pkg/db/models"
	"github.com/jvacosta/dailyfish-backend/pkg/pagination"
)

// Repository encapsulates message persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, message *models.Message) (*models.Message, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Message, error)
	ListBySender(ctx context.Context, senderID uuid.UUID, input ListMessagesInput) (*MessageList, error)
	ListAll(ctx context.Context, input ListMessagesInput) (*MessageList, error)
	MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a messages repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, message *models.Message) (*models.Message, error) {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *repository) ListBySender(ctx context.Context, senderID uuid.UUID, input ListMessagesInput) (*MessageList, error) {
	return r.list(ctx, input, func(qb *gorm.DB) *gorm.DB {
		return qb.Where("sender_id = ?", senderID)
	})
}

func (r *repository) ListAll(ctx context.Context, input ListMessagesInput) (*MessageList, error) {
	return r.list(ctx, input, nil)
}

func (r *repository) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_read": true,
			"read_at": at,
		}).Error
}

func (r *repository) list(ctx context.Context, input ListMessagesInput, scope func(*gorm.DB) *gorm.DB) (*MessageList, error) {
	pageSize := pagination.NormalizeLimit(input.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(input.Pagination.Limit)

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).Model(&models.Message{})
	if scope != nil {
		qb = scope(qb)
	}

	filter := input.Filters
	if filter.Type != nil {
		qb = qb.Where("type = ?", *filter.Type)
	}
	if filter.Unread != nil {
		qb = qb.Where("is_read = ?", !*filter.Unread)
	}
	if filter.OrderID != nil {
		qb = qb.Where("order_id = ?", *filter.OrderID)
	}

	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Message
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, err
	}

	page := rows
	nextCursor := ""
	if len(rows) > pageSize {
		page = rows[:pageSize]
		last := page[len(page)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	dtos := make([]MessageDTO, 0, len(page))
	for i := range page {
		dtos = append(dtos, *NewMessageDTO(&page[i]))
	}

	return &MessageList{
		Messages:   dtos,
		NextCursor: nextCursor,
	}, nil
}
