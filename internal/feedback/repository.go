package feedback

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jvacosta/dailyfish-backend/pkg/db/models"
)

// Repository encapsulates order feedback persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, feedback *models.OrderFeedback) (*models.OrderFeedback, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.OrderFeedback, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a feedback repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, feedback *models.OrderFeedback) (*models.OrderFeedback, error) {
	if err := r.db.WithContext(ctx).Create(feedback).Error; err != nil {
		return nil, err
	}
	return feedback, nil
}

func (r *repository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.OrderFeedback, error) {
	var feedback models.OrderFeedback
	if err := r.db.WithContext(ctx).First(&feedback, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &feedback, nil
}
