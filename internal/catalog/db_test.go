package catalog

import (
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/jvacosta/dailyfish-backend/pkg/db/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("DAILYFISH_DB_DSN")
	if dsn == "" {
		t.Skip("DAILYFISH_DB_DSN is not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return conn
}

func mustCreateTestCategory(t *testing.T, tx *gorm.DB) *models.Category {
	t.Helper()
	category := &models.Category{
		ID:   uuid.New(),
		Name: fmt.Sprintf("df_test_%s", uuid.NewString()),
	}
	if err := tx.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

func mustCreateTestProduct(t *testing.T, tx *gorm.DB, categoryID uuid.UUID, stockKg decimal.Decimal) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID:        categoryID,
		Name:              fmt.Sprintf("Bangus %s", uuid.NewString()),
		PricePerKilo:      decimal.NewFromInt(220),
		StockKg:           stockKg,
		LowStockThreshold: decimal.NewFromInt(5),
		Status:            ComputeStatus(stockKg, decimal.NewFromInt(5)),
		IsActive:          true,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}
