package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jvacosta/dailyfish-backend/pkg/enums"
)

// Product represents a catalog listing sold by weight.
type Product struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID        uuid.UUID           `gorm:"column:category_id;type:uuid;not null;index"`
	Category          *Category           `gorm:"foreignKey:CategoryID"`
	Name              string              `gorm:"column:name;type:text;not null"`
	Description       *string             `gorm:"column:description"`
	PricePerKilo      decimal.Decimal     `gorm:"column:price_per_kilo;type:numeric(10,2);not null"`
	StockKg           decimal.Decimal     `gorm:"column:stock_kg;type:numeric(8,2);not null;default:0"`
	LowStockThreshold decimal.Decimal     `gorm:"column:low_stock_threshold;type:numeric(8,2);not null;default:5"`
	Status            enums.ProductStatus `gorm:"column:status;type:text;not null;default:'out_of_stock'"`
	ImageURL          *string             `gorm:"column:image_url"`
	IsActive          bool                `gorm:"column:is_active;not null;default:true"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
