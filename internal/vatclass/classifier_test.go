package vatclass

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bgledger/kontir/internal/models"
	"bgledger/kontir/internal/parsererror"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestClassifyPeriodFromVatDate(t *testing.T) {
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	// document date in January, vatDate in February: the operation is
	// declared in February.
	op := models.VATOperation{
		Direction:      models.VatOutput,
		SalesOperation: "про11",
		VatDate:        date(2026, time.February, 10),
		BaseAmount:     decimal.NewFromInt(100),
		VatRate:        decimal.NewFromInt(20),
	}

	c, err := Classify(op, now)
	require.NoError(t, err)
	assert.Equal(t, models.VatPeriod{Month: 2, Year: 2026}, c.Period)
	assert.Equal(t, "про11", c.Code)
	assert.Empty(t, c.Warnings)
}

func TestClassifyMissingVatDate(t *testing.T) {
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	op := models.VATOperation{Direction: models.VatInput, PurchaseOperation: "пок10"}

	_, err := Classify(op, now)
	require.Error(t, err)
	var ce *parsererror.ConstraintError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "vatDate", ce.Field)
}

func TestClassifyVatDateWindow(t *testing.T) {
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		vatDate time.Time
		wantErr bool
	}{
		{"within window past", time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC), false},
		{"within window future", time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC), false},
		{"too far past", time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC), true},
		{"too far future", time.Date(2028, time.January, 1, 0, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckVatDate(tt.vatDate, now)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClassifyLegacyCodeGating(t *testing.T) {
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	op := models.VATOperation{
		Direction:         models.VatInput,
		PurchaseOperation: "3",
		VatDate:           date(2026, time.February, 1),
	}

	// legacy code on a new record is rejected
	_, err := Classify(op, now)
	require.Error(t, err)

	// the same code on a historic record is kept with a warning
	op.IsEditMode = true
	c, err := Classify(op, now)
	require.NoError(t, err)
	assert.Equal(t, "3", c.Code)
	require.Len(t, c.Warnings, 1)
	assert.Contains(t, c.Warnings[0], "legacy")
}

func TestSuggestCodeOnlyOnSentinel(t *testing.T) {
	rate20 := decimal.NewFromInt(20)

	// sentinel gets a suggestion
	assert.Equal(t, "про11", SuggestCode(models.VatOutput, rate20, models.VatCodeNone))
	assert.Equal(t, "пок10", SuggestCode(models.VatInput, rate20, models.VatCodeNone))
	assert.Equal(t, "про17", SuggestCode(models.VatOutput, decimal.NewFromInt(9), models.VatCodeNone))
	assert.Equal(t, "про19", SuggestCode(models.VatOutput, decimal.Zero, models.VatCodeNone))

	// an explicit choice is never overwritten
	assert.Equal(t, "про24-1", SuggestCode(models.VatOutput, rate20, "про24-1"))
}

func TestSelectableOperationsFilterLegacy(t *testing.T) {
	// new record: no legacy codes offered
	ops := SelectableOperations(models.VatInput, false, "")
	for _, op := range ops {
		assert.False(t, op.Legacy, "legacy code %q offered on a new record", op.Code)
	}

	// edit mode keeps only the stored legacy code selectable
	ops = SelectableOperations(models.VatInput, true, "3")
	var legacyCodes []string
	for _, op := range ops {
		if op.Legacy {
			legacyCodes = append(legacyCodes, op.Code)
		}
	}
	assert.Equal(t, []string{"3"}, legacyCodes)
}

func TestMapLegacyOperation(t *testing.T) {
	withVAT := decimal.NewFromInt(20)

	tests := []struct {
		oldCode string
		kind    DocumentKind
		vat     decimal.Decimal
		want    string
	}{
		{"1", KindPurchase, withVAT, "пок10"},
		{"2", KindPurchase, withVAT, "пок12"},
		{"3", KindPurchase, withVAT, "пок09"},
		{"3", KindPurchase, decimal.Zero, "0"},
		{"4", KindPurchase, withVAT, "пок14"},
		{"5", KindPurchase, withVAT, "пок15"},
		{"7", KindPurchase, withVAT, "пок10"},
		{"7", KindPurchase, decimal.Zero, "0"},
		{"1", KindSale, withVAT, "про11"},
		{"2", KindSale, withVAT, "про17"},
		{"3", KindSale, decimal.Zero, "про19"},
		{"4", KindSale, decimal.Zero, "про20"},
		{"5", KindSale, withVAT, "про13"},
		{"8", KindSale, decimal.Zero, "про24-1"},
		{"9", KindSale, decimal.Zero, "про22"},
		{"6", KindSale, withVAT, "про11"},
		{"6", KindSale, decimal.Zero, "про24-1"},
	}

	for _, tt := range tests {
		got := MapLegacyOperation(tt.oldCode, tt.kind, tt.vat)
		assert.Equal(t, tt.want, got, "code %s kind %s", tt.oldCode, tt.kind)
	}
}
