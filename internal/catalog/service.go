package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jvacosta/dailyfish-backend/pkg/db"
	"github.com/jvacosta/dailyfish-backend/pkg/db/models"
	pkgerrors "github.com/jvacosta/dailyfish-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes catalog management and browsing operations.
type Service interface {
	CreateCategory(ctx context.Context, input CategoryInput) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	CreateProduct(ctx context.Context, input ProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductList, error)
	SetStock(ctx context.Context, id uuid.UUID, stockKg decimal.Decimal) (*ProductDTO, error)
}

// CategoryInput carries the writable category fields.
type CategoryInput struct {
	Name        string
	Description *string
	ImageURL    *string
}

// ProductInput carries the writable product fields.
type ProductInput struct {
	CategoryID        uuid.UUID
	Name              string
	Description       *string
	PricePerKilo      decimal.Decimal
	StockKg           decimal.Decimal
	LowStockThreshold *decimal.Decimal
	ImageURL          *string
	IsActive          *bool
}

type service struct {
	repo             Repository
	tx               txRunner
	defaultThreshold decimal.Decimal
}

// NewService builds the catalog service.
func NewService(repo Repository, tx txRunner, defaultThreshold decimal.Decimal) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if defaultThreshold.IsNegative() {
		return nil, fmt.Errorf("default low stock threshold cannot be negative")
	}
	return &service{
		repo:             repo,
		tx:               tx,
		defaultThreshold: defaultThreshold,
	}, nil
}

func (s *service) CreateCategory(ctx context.Context, input CategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}

	category := &models.Category{
		Name:        name,
		Description: input.Description,
		ImageURL:    input.ImageURL,
	}
	created, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		return nil, mapCategoryWriteError(err)
	}
	return NewCategoryDTO(created), nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*CategoryDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}

	category, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "category not found")
	}

	category.Name = name
	category.Description = input.Description
	category.ImageURL = input.ImageURL

	updated, err := s.repo.UpdateCategory(ctx, category)
	if err != nil {
		return nil, mapCategoryWriteError(err)
	}
	return NewCategoryDTO(updated), nil
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}
	if _, err := s.repo.FindCategoryByID(ctx, id); err != nil {
		return mapNotFound(err, "category not found")
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "category still has products")
	}
	return nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	dtos := make([]CategoryDTO, 0, len(categories))
	for i := range categories {
		dtos = append(dtos, *NewCategoryDTO(&categories[i]))
	}
	return dtos, nil
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*ProductDTO, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindCategoryByID(ctx, input.CategoryID); err != nil {
		return nil, mapNotFound(err, "category not found")
	}

	threshold := s.defaultThreshold
	if input.LowStockThreshold != nil {
		threshold = *input.LowStockThreshold
	}

	product := &models.Product{
		CategoryID:        input.CategoryID,
		Name:              strings.TrimSpace(input.Name),
		Description:       input.Description,
		PricePerKilo:      input.PricePerKilo,
		StockKg:           input.StockKg,
		LowStockThreshold: threshold,
		Status:            ComputeStatus(input.StockKg, threshold),
		ImageURL:          input.ImageURL,
		IsActive:          true,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return s.GetProduct(ctx, created.ID)
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "product not found")
	}
	if input.CategoryID != product.CategoryID {
		if _, err := s.repo.FindCategoryByID(ctx, input.CategoryID); err != nil {
			return nil, mapNotFound(err, "category not found")
		}
	}

	product.CategoryID = input.CategoryID
	product.Name = strings.TrimSpace(input.Name)
	product.Description = input.Description
	product.PricePerKilo = input.PricePerKilo
	product.StockKg = input.StockKg
	if input.LowStockThreshold != nil {
		product.LowStockThreshold = *input.LowStockThreshold
	}
	product.Status = ComputeStatus(product.StockKg, product.LowStockThreshold)
	product.ImageURL = input.ImageURL
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	product.Category = nil

	if _, err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.GetProduct(ctx, id)
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if _, err := s.repo.FindProductByID(ctx, id); err != nil {
		return mapNotFound(err, "product not found")
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
	}
	return nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "product not found")
	}
	return NewProductDTO(product), nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductList, error) {
	list, err := s.repo.ListProducts(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return list, nil
}

// SetStock replaces the on-hand quantity under a row lock and rederives
// the listing status. Negative input clamps to zero.
func (s *service) SetStock(ctx context.Context, id uuid.UUID, stockKg decimal.Decimal) (*ProductDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if stockKg.IsNegative() {
		stockKg = decimal.Zero
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		products, err := repo.FindProductsForUpdate(ctx, []uuid.UUID{id})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock product")
		}
		if len(products) == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}

		product := products[0]
		product.StockKg = stockKg
		product.Status = ComputeStatus(product.StockKg, product.LowStockThreshold)
		if err := repo.SaveProductStock(ctx, &product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save stock")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

func validateProductInput(input ProductInput) error {
	if input.CategoryID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if !input.PricePerKilo.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price per kilo must be positive")
	}
	if input.StockKg.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if input.LowStockThreshold != nil && input.LowStockThreshold.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "low stock threshold cannot be negative")
	}
	return nil
}

func mapNotFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

func mapCategoryWriteError(err error) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "category name already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write category")
}
