package invoicescan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bgledger/kontir/internal/models"
	"bgledger/kontir/internal/vatclass"
)

func goodExtraction() *ExtractedInvoice {
	return &ExtractedInvoice{
		DocumentNumber: "0000000354",
		DocumentDate:   "2026-02-10",
		ContractorName: "МЕТРО АД",
		ContractorEIK:  "121644736",
		VatNumber:      "BG121644736",
		NetAmount:      "100.00",
		VatAmount:      "20.00",
		TotalAmount:    "120.00",
		Lines:          []ExtractedLine{{Description: "Канцеларски материали", Amount: "100.00"}},
		Confidence:     0.93,
	}
}

func TestScanPurchaseInvoice(t *testing.T) {
	mock := &MockAIClient{Extraction: goodExtraction()}
	cfg := ScanSessionConfig{Direction: vatclass.KindPurchase}

	scan, err := Scan(context.Background(), mock, cfg, ExtractRequest{
		Data: []byte("pdf"), MimeType: "application/pdf", FileName: "invoice.pdf",
	})
	require.NoError(t, err)
	require.Len(t, mock.Requests, 1)

	assert.False(t, scan.RequiresManualReview)
	assert.InDelta(t, 0.93, scan.Confidence, 0.001)

	result := scan.Result
	assert.Equal(t, models.SourceInvoiceAI, result.Source)
	require.Len(t, result.Documents, 1)

	doc := result.Documents[0]
	assert.Equal(t, "0000000354", doc.DocumentNumber)
	assert.Equal(t, "03", doc.VatDocumentType)
	assert.Equal(t, "пок10", doc.PurchaseOperation)
	assert.True(t, doc.IsBalanced)

	// purchases declare in the period: vatDate is the first of the month
	require.NotNil(t, doc.VatDate)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), *doc.VatDate)

	require.Len(t, doc.Entries, 3)
	assert.Equal(t, "602", doc.Entries[0].AccountCode)
	assert.True(t, doc.Entries[0].DebitAmount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "4531", doc.Entries[1].AccountCode)
	assert.Equal(t, "401", doc.Entries[2].AccountCode)
	assert.True(t, doc.Entries[2].CreditAmount.Equal(decimal.NewFromInt(120)))

	require.Len(t, result.Contractors, 1)
	assert.Equal(t, "МЕТРО АД", result.Contractors[0].Name)
}

func TestScanSaleInvoice(t *testing.T) {
	mock := &MockAIClient{Extraction: goodExtraction()}
	cfg := ScanSessionConfig{Direction: vatclass.KindSale}

	scan, err := Scan(context.Background(), mock, cfg, ExtractRequest{FileName: "invoice.jpg"})
	require.NoError(t, err)

	doc := scan.Result.Documents[0]
	assert.Equal(t, "01", doc.VatDocumentType)
	assert.Equal(t, "про11", doc.SalesOperation)

	// sales declare on the document date
	require.NotNil(t, doc.VatDate)
	assert.Equal(t, doc.DocumentDate, *doc.VatDate)

	require.Len(t, doc.Entries, 3)
	assert.Equal(t, "411", doc.Entries[0].AccountCode)
	assert.True(t, doc.Entries[0].DebitAmount.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, "702", doc.Entries[1].AccountCode)
	assert.Equal(t, "4532", doc.Entries[2].AccountCode)
}

func TestScanFlagsLowConfidence(t *testing.T) {
	extraction := goodExtraction()
	extraction.Confidence = 0.4
	mock := &MockAIClient{Extraction: extraction}

	scan, err := Scan(context.Background(), mock, ScanSessionConfig{Direction: vatclass.KindPurchase}, ExtractRequest{FileName: "blurry.jpg"})
	require.NoError(t, err)
	assert.True(t, scan.RequiresManualReview)
	assert.Contains(t, scan.ReviewReasons, "extraction confidence below threshold")
}

func TestScanFlagsTotalMismatch(t *testing.T) {
	extraction := goodExtraction()
	extraction.TotalAmount = "130.00"
	mock := &MockAIClient{Extraction: extraction}

	scan, err := Scan(context.Background(), mock, ScanSessionConfig{Direction: vatclass.KindPurchase}, ExtractRequest{FileName: "invoice.pdf"})
	require.NoError(t, err)
	assert.True(t, scan.RequiresManualReview)
	// the mismatch breaks the entry balance as well
	assert.False(t, scan.Result.Documents[0].IsBalanced)
}

func TestScanFlagsMissingFields(t *testing.T) {
	extraction := goodExtraction()
	extraction.DocumentNumber = ""
	extraction.DocumentDate = "неизвестна"
	mock := &MockAIClient{Extraction: extraction}

	scan, err := Scan(context.Background(), mock, ScanSessionConfig{Direction: vatclass.KindPurchase}, ExtractRequest{FileName: "invoice.pdf"})
	require.NoError(t, err)
	assert.True(t, scan.RequiresManualReview)
	assert.Len(t, scan.ReviewReasons, 2)
}

func TestScanPropagatesClientError(t *testing.T) {
	mock := &MockAIClient{Err: errors.New("quota exceeded")}

	_, err := Scan(context.Background(), mock, ScanSessionConfig{}, ExtractRequest{FileName: "invoice.pdf"})
	assert.Error(t, err)
}

func TestDecodeExtractionWithFences(t *testing.T) {
	text := "```json\n{\"documentNumber\": \"42\", \"confidence\": 0.8}\n```"
	extracted, err := decodeExtraction(text, "invoice.pdf")
	require.NoError(t, err)
	assert.Equal(t, "42", extracted.DocumentNumber)

	_, err = decodeExtraction("no json here", "invoice.pdf")
	assert.Error(t, err)
}
