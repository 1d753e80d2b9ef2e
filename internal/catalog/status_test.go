package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jvacosta/dailyfish-backend/pkg/enums"
)

func TestComputeStatus(t *testing.T) {
	threshold := decimal.NewFromInt(5)

	tests := []struct {
		name  string
		stock string
		want  enums.ProductStatus
	}{
		{"zero stock", "0", enums.ProductStatusOutOfStock},
		{"negative stock", "-1", enums.ProductStatusOutOfStock},
		{"exactly at threshold", "5", enums.ProductStatusLowStock},
		{"below threshold", "0.25", enums.ProductStatusLowStock},
		{"above threshold", "5.01", enums.ProductStatusActive},
		{"plenty", "120", enums.ProductStatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stock, err := decimal.NewFromString(tt.stock)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ComputeStatus(stock, threshold))
		})
	}
}

func TestComputeStatusZeroThreshold(t *testing.T) {
	// With a zero threshold any positive stock is active.
	got := ComputeStatus(decimal.NewFromFloat(0.01), decimal.Zero)
	assert.Equal(t, enums.ProductStatusActive, got)
}

func TestIsAvailable(t *testing.T) {
	assert.False(t, IsAvailable(decimal.Zero))
	assert.False(t, IsAvailable(decimal.NewFromInt(-2)))
	assert.True(t, IsAvailable(decimal.NewFromFloat(0.5)))
}
