package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jvacosta/dailyfish-backend/pkg/db/models"
	"github.com/jvacosta/dailyfish-backend/pkg/enums"
	"github.com/jvacosta/dailyfish-backend/pkg/pagination"
)

// CategoryDTO represents the category payload returned to clients.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductDTO represents the catalog listing payload returned to clients.
type ProductDTO struct {
	ID                uuid.UUID           `json:"id"`
	CategoryID        uuid.UUID           `json:"category_id"`
	CategoryName      string              `json:"category_name,omitempty"`
	Name              string              `json:"name"`
	Description       *string             `json:"description,omitempty"`
	PricePerKilo      decimal.Decimal     `json:"price_per_kilo"`
	StockKg           decimal.Decimal     `json:"stock_kg"`
	LowStockThreshold decimal.Decimal     `json:"low_stock_threshold"`
	Status            enums.ProductStatus `json:"status"`
	IsAvailable       bool                `json:"is_available"`
	ImageURL          *string             `json:"image_url,omitempty"`
	IsActive          bool                `json:"is_active"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// ProductListFilters describe the supported filter knobs for the browse
// endpoint. AvailableOnly restricts the result to in-stock listings.
type ProductListFilters struct {
	CategoryID      *uuid.UUID
	Status          *enums.ProductStatus
	Query           string
	AvailableOnly   bool
	IncludeInactive bool
}

// ListProductsInput captures the inputs needed to paginate/filter the catalog.
type ListProductsInput struct {
	Filters    ProductListFilters
	Pagination pagination.Params
}

// ProductList wraps the paginated products plus the next page cursor.
type ProductList struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// NewCategoryDTO builds a DTO from the persisted model.
func NewCategoryDTO(category *models.Category) *CategoryDTO {
	return &CategoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		ImageURL:    category.ImageURL,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	dto := &ProductDTO{
		ID:                product.ID,
		CategoryID:        product.CategoryID,
		Name:              product.Name,
		Description:       product.Description,
		PricePerKilo:      product.PricePerKilo,
		StockKg:           product.StockKg,
		LowStockThreshold: product.LowStockThreshold,
		Status:            product.Status,
		IsAvailable:       IsAvailable(product.StockKg),
		ImageURL:          product.ImageURL,
		IsActive:          product.IsActive,
		CreatedAt:         product.CreatedAt,
		UpdatedAt:         product.UpdatedAt,
	}
	if product.Category != nil {
		dto.CategoryName = product.Category.Name
	}
	return dto
}
