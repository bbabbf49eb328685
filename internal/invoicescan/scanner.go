package invoicescan

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bgledger/kontir/internal/balance"
	"bgledger/kontir/internal/logging"
	"bgledger/kontir/internal/models"
	"bgledger/kontir/internal/vatclass"
)

var log logging.Logger = logging.NewLogrusAdapter("info", "text")

// SetLogger replaces the package logger.
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// minConfidence is the extraction confidence below which a scan is flagged
// for manual review.
const minConfidence = 0.7

// ScanSessionConfig is passed explicitly with every scan session. The
// direction decides which side of the ledger the counterpart sits on; the
// account codes are where the amounts are posted.
type ScanSessionConfig struct {
	Direction        vatclass.DocumentKind
	DocumentTypeCode string // PPZDDS code, defaulted per direction when empty
	DefaultOperation string // NAP operation code, defaulted per direction when empty

	CounterpartAccountCode string // default 401 purchase, 411 sale
	AmountAccountCode      string // default 602 purchase, 702 sale
	VatAccountCode         string // default 4531 purchase, 4532 sale
}

func (c *ScanSessionConfig) applyDefaults() {
	purchase := c.Direction != vatclass.KindSale
	if c.DocumentTypeCode == "" {
		if purchase {
			c.DocumentTypeCode = "03"
		} else {
			c.DocumentTypeCode = "01"
		}
	}
	if c.DefaultOperation == "" {
		if purchase {
			c.DefaultOperation = "пок10"
		} else {
			c.DefaultOperation = "про11"
		}
	}
	if c.CounterpartAccountCode == "" {
		if purchase {
			c.CounterpartAccountCode = "401"
		} else {
			c.CounterpartAccountCode = "411"
		}
	}
	if c.AmountAccountCode == "" {
		if purchase {
			c.AmountAccountCode = "602"
		} else {
			c.AmountAccountCode = "702"
		}
	}
	if c.VatAccountCode == "" {
		if purchase {
			c.VatAccountCode = models.VatReceivableAccount
		} else {
			c.VatAccountCode = models.VatPayableAccount
		}
	}
}

// ScanResult pairs the reconciled import with the review verdict.
type ScanResult struct {
	Result               *models.ImportResult
	Confidence           float64
	RequiresManualReview bool
	ReviewReasons        []string
}

// Scan extracts one document and reconciles it into an import. The
// extraction is staged even when flagged for review.
func Scan(ctx context.Context, client AIClient, cfg ScanSessionConfig, req ExtractRequest) (*ScanResult, error) {
	cfg.applyDefaults()

	log.WithField(logging.FieldFile, req.FileName).Info("Extracting invoice")
	extracted, err := client.ExtractInvoice(ctx, req)
	if err != nil {
		return nil, err
	}

	scan := reconcileExtraction(extracted, cfg, req.FileName)
	log.WithFields(
		logging.Field{Key: logging.FieldFile, Value: req.FileName},
		logging.Field{Key: "confidence", Value: scan.Confidence},
		logging.Field{Key: "manual_review", Value: scan.RequiresManualReview},
	).Info("Invoice extracted")
	return scan, nil
}

func reconcileExtraction(extracted *ExtractedInvoice, cfg ScanSessionConfig, fileName string) *ScanResult {
	scan := &ScanResult{Confidence: extracted.Confidence}

	net := parseAmount(extracted.NetAmount)
	vat := parseAmount(extracted.VatAmount)
	total := parseAmount(extracted.TotalAmount)

	doc := models.ImportDocument{
		DocumentNumber:  extracted.DocumentNumber,
		Description:     lineSummary(extracted),
		NetAmount:       net,
		VatAmount:       vat,
		TotalAmount:     total,
		VatDocumentType: cfg.DocumentTypeCode,
	}

	if date, ok := parseDate(extracted.DocumentDate); ok {
		doc.DocumentDate = date
		doc.AccountingDate = date
		if cfg.Direction == vatclass.KindSale {
			doc.VatDate = &date
		} else {
			first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
			doc.VatDate = &first
		}
	} else {
		scan.flag("document date not recognized")
	}
	if doc.DocumentNumber == "" {
		scan.flag("document number not recognized")
	}

	if cfg.Direction == vatclass.KindSale {
		doc.SalesOperation = cfg.DefaultOperation
	} else {
		doc.PurchaseOperation = cfg.DefaultOperation
	}

	if net.Add(vat).Sub(total).Abs().GreaterThanOrEqual(balance.Tolerance) {
		scan.flag("net + VAT does not reconcile with the total")
	}
	if extracted.Confidence < minConfidence {
		scan.flag("extraction confidence below threshold")
	}

	doc.Entries = buildEntries(extracted, cfg, net, vat, total)
	res := balance.BalanceEntries(doc.Entries)
	doc.TotalDebit = res.DebitTotal
	doc.TotalCredit = res.CreditTotal
	doc.IsBalanced = res.IsBalanced
	if !doc.IsBalanced {
		scan.flag("extracted entries are not balanced")
	}

	result := &models.ImportResult{
		Source:       models.SourceInvoiceAI,
		FileName:     fileName,
		DocumentKind: string(directionOf(cfg)),
		Documents:    []models.ImportDocument{doc},
		AccountCodes: []string{cfg.AmountAccountCode, cfg.VatAccountCode, cfg.CounterpartAccountCode},
		Warnings:     scan.ReviewReasons,
	}
	if extracted.ContractorName != "" || extracted.ContractorEIK != "" {
		result.Contractors = []models.ImportContractor{{
			SourceID:  extracted.ContractorEIK,
			Name:      extracted.ContractorName,
			EIK:       extracted.ContractorEIK,
			VatNumber: extracted.VatNumber,
		}}
	}

	scan.Result = result
	return scan
}

func buildEntries(extracted *ExtractedInvoice, cfg ScanSessionConfig, net, vat, total decimal.Decimal) []models.ImportEntry {
	purchase := cfg.Direction != vatclass.KindSale
	description := lineSummary(extracted)

	amountEntry := models.ImportEntry{
		AccountCode: cfg.AmountAccountCode,
		Description: description,
	}
	vatEntry := models.ImportEntry{
		AccountCode: cfg.VatAccountCode,
		Description: description,
	}
	counterpartEntry := models.ImportEntry{
		AccountCode:    cfg.CounterpartAccountCode,
		ContractorName: extracted.ContractorName,
		ContractorEIK:  extracted.ContractorEIK,
		Description:    description,
	}

	var entries []models.ImportEntry
	if purchase {
		amountEntry.DebitAmount = net
		vatEntry.DebitAmount = vat
		counterpartEntry.CreditAmount = total

		entries = append(entries, amountEntry)
		if !vat.IsZero() {
			entries = append(entries, vatEntry)
		}
		entries = append(entries, counterpartEntry)
	} else {
		counterpartEntry.DebitAmount = total
		amountEntry.CreditAmount = net
		vatEntry.CreditAmount = vat

		entries = append(entries, counterpartEntry, amountEntry)
		if !vat.IsZero() {
			entries = append(entries, vatEntry)
		}
	}
	return entries
}

func directionOf(cfg ScanSessionConfig) vatclass.DocumentKind {
	if cfg.Direction == vatclass.KindSale {
		return vatclass.KindSale
	}
	return vatclass.KindPurchase
}

func (s *ScanResult) flag(reason string) {
	s.RequiresManualReview = true
	s.ReviewReasons = append(s.ReviewReasons, reason)
}

func lineSummary(extracted *ExtractedInvoice) string {
	var parts []string
	for _, line := range extracted.Lines {
		if line.Description != "" {
			parts = append(parts, line.Description)
		}
	}
	if len(parts) == 0 {
		return "Фактура " + extracted.DocumentNumber
	}
	return strings.Join(parts, "; ")
}

func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, " ", ""))
	if s == "" {
		return decimal.Zero
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseDate(s string) (time.Time, bool) {
	layouts := []string{"2006-01-02", "02.01.2006", "02/01/2006"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
