package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVatAmountRounding(t *testing.T) {
	tests := []struct {
		base string
		rate string
		want string
	}{
		{"100.00", "20", "20.00"},
		{"100.00", "9", "9.00"},
		{"100.00", "0", "0.00"},
		{"33.33", "20", "6.67"}, // 6.666 rounds up
		{"10.11", "9", "0.91"},  // 0.9099 rounds up
		{"0.01", "20", "0.00"},  // 0.002 rounds down
	}

	for _, tt := range tests {
		t.Run(tt.base+"x"+tt.rate, func(t *testing.T) {
			op := VATOperation{BaseAmount: dec(tt.base), VatRate: dec(tt.rate)}
			assert.Equal(t, tt.want, op.VatAmount().StringFixed(2))
			assert.True(t, op.TotalAmount().Equal(op.BaseAmount.Add(op.VatAmount())))
		})
	}
}

func TestPeriodOf(t *testing.T) {
	p := PeriodOf(time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, VatPeriod{Month: 2, Year: 2026}, p)
}

func TestAccountClassFromCode(t *testing.T) {
	assert.Equal(t, 4, AccountClassFromCode("4011"))
	assert.Equal(t, 7, AccountClassFromCode("702"))
	assert.Equal(t, 0, AccountClassFromCode(""))
	assert.Equal(t, 0, AccountClassFromCode("9MAT"))
}

func TestAccountPrefixHelpers(t *testing.T) {
	assert.True(t, IsSupplierAccount("4011"))
	assert.True(t, IsSupplierAccount("408"))
	assert.False(t, IsSupplierAccount("411"))

	assert.True(t, IsCustomerAccount("4112"))
	assert.False(t, IsCustomerAccount("401"))

	assert.True(t, IsRevenueAccount("702"))
	assert.True(t, IsCostAccount("602"))
	assert.True(t, IsCostAccount("302"))
	assert.False(t, IsCostAccount("702"))
}
