package docbatch

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"bgledger/kontir/internal/models"
)

func TestSanitizeOnInputTaxDocument(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"digits pass through", "354", "354"},
		{"letters stripped", "ab35c4", "354"},
		{"no padding on input", "1", "1"},
		{"capped at ten digits", "123456789012345", "1234567890"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeOnInput(models.DocTypeInvoice, tt.raw))
		})
	}
}

func TestSanitizeOnInputFreeForm(t *testing.T) {
	// Non-tax numbers keep letters, only the length is capped.
	assert.Equal(t, "ПКО-17/b", SanitizeOnInput(models.DocTypeCashReceipt, "ПКО-17/b"))

	long := "A123456789012345678901234"
	assert.Len(t, SanitizeOnInput(models.DocTypeCashReceipt, long), MaxFreeFormNumberLength)
}

func TestNormalizeOnCommit(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"zero pads", "354", "0000000354"},
		{"strips then pads", "No 354/A", "0000000354"},
		{"full length unchanged", "1234567890", "1234567890"},
		{"empty stays empty", "", ""},
		{"no digits at all is no number", "No/ABC", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeOnCommit(models.DocTypeInvoice, tt.raw))
		})
	}
}

func TestNormalizeOnCommitIdempotent(t *testing.T) {
	once := NormalizeOnCommit(models.DocTypeInvoice, "354")
	twice := NormalizeOnCommit(models.DocTypeInvoice, once)
	assert.Equal(t, once, twice)
}

func TestNormalizeOnCommitFreeForm(t *testing.T) {
	assert.Equal(t, "МО-2026-01", NormalizeOnCommit(models.DocTypeMemo, "МО-2026-01"))
}

func TestGenerateNumberShape(t *testing.T) {
	pattern := regexp.MustCompile(`^ПКО-[A-Z0-9]{3}-[A-Z0-9]{4}-[A-Z0-9]{3}$`)
	for i := 0; i < 20; i++ {
		n := GenerateNumber(models.DocTypeCashReceipt)
		assert.Regexp(t, pattern, n)
	}
}

func TestGenerateNumberWithoutShortCode(t *testing.T) {
	n := GenerateNumber(models.DocumentType{})
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{3}-[A-Z0-9]{4}-[A-Z0-9]{3}$`), n)
}

func TestLinkedNumber(t *testing.T) {
	assert.Equal(t, "0000000354-2", LinkedNumber("0000000354", 2))
}
