package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jvacosta/dailyfish-backend/pkg/enums"
)

// Message is a buyer-to-staff thread entry, optionally tied to an order.
type Message struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SenderID  uuid.UUID         `gorm:"column:sender_id;type:uuid;not null;index"`
	Sender    *User             `gorm:"foreignKey:SenderID"`
	OrderID   *uuid.UUID        `gorm:"column:order_id;type:uuid;index"`
	Type      enums.MessageType `gorm:"column:type;type:text;not null;default:'general'"`
	Subject   string            `gorm:"column:subject;type:text;not null"`
	Body      string            `gorm:"column:body;type:text;not null"`
	IsRead    bool              `gorm:"column:is_read;not null;default:false"`
	ReadAt    *time.Time        `gorm:"column:read_at"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
