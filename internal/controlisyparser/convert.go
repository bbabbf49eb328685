package controlisyparser

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bgledger/kontir/internal/balance"
	"bgledger/kontir/internal/models"
	"bgledger/kontir/internal/vatclass"
)

func buildResult(raw *rawFile, fileName string) *models.ImportResult {
	result := &models.ImportResult{
		Source:   models.SourceControlisy,
		FileName: fileName,
	}

	result.Contractors, result.ContractorConflicts = collectContractors(raw.Contractors)

	kind := DetectKindFromFileName(fileName)
	if kind == "" && len(raw.Documents) > 0 {
		kind = detectKindFromContent(&raw.Documents[0])
	}
	if kind == "" {
		kind = vatclass.KindPurchase
	}
	result.DocumentKind = string(kind)

	seenAccounts := make(map[string]bool)
	for i := range raw.Documents {
		doc := convertDocument(&raw.Documents[i], kind)

		for _, entry := range doc.Entries {
			if !seenAccounts[entry.AccountCode] {
				seenAccounts[entry.AccountCode] = true
				result.AccountCodes = append(result.AccountCodes, entry.AccountCode)
			}
		}
		if !doc.IsBalanced {
			result.Warnings = append(result.Warnings,
				"document "+doc.DocumentNumber+" is not balanced")
		}
		result.Documents = append(result.Documents, doc)
	}

	return result
}

func convertDocument(raw *rawDocument, kind vatclass.DocumentKind) models.ImportDocument {
	doc := models.ImportDocument{
		DocumentNumber: raw.DocumentNumber,
		Description:    raw.Reason,
		ContractorID:   raw.ContractorID,
		TotalAmount:    parseAmount(raw.TotalAmountBGN),
		NetAmount:      parseAmount(raw.NetAmountBGN),
		VatAmount:      parseAmount(raw.VatAmountBGN),
	}
	if doc.Description == "" {
		doc.Description = raw.Remark
	}

	docDate, ok := parseDate(raw.DocumentDate)
	if !ok {
		docDate = time.Now().Truncate(24 * time.Hour)
	}
	doc.DocumentDate = docDate
	doc.AccountingDate = docDate

	payment := isPaymentDocument(raw)
	doc.VatDate = vatDateFor(raw, kind, payment, docDate)

	if payment {
		doc.VatAmount = decimal.Zero
	} else {
		doc.VatDocumentType = vatDocumentTypeFor(kind)
		assignOperations(&doc, raw, kind)
	}

	for _, acc := range raw.Accountings {
		amount := parseAmount(acc.AmountBGN)
		for _, row := range acc.Details {
			entry := models.ImportEntry{
				AccountCode:    row.AccountNumber,
				AccountName:    row.AccountName,
				Currency:       row.Currency,
				CurrencyAmount: parseAmount(row.CurrencyAmount),
				Unit:           row.Unit,
				ContractorName: row.ContractorName,
				ContractorEIK:  row.ContractorEIK,
				Description:    raw.Reason,
			}
			if q := strings.TrimSpace(row.Quantity); q != "" && q != "0" {
				entry.Quantity = parseAmount(row.Quantity)
			}
			if strings.EqualFold(row.Direction, "Debit") {
				entry.DebitAmount = amount
			} else {
				entry.CreditAmount = amount
			}
			doc.Entries = append(doc.Entries, entry)
		}
	}

	res := balance.BalanceEntries(doc.Entries)
	doc.TotalDebit = res.DebitTotal
	doc.TotalCredit = res.CreditTotal
	doc.IsBalanced = res.IsBalanced

	return doc
}

// vatDateFor applies the journal date rules: payment documents and sales
// use the document date, purchases use the first day of the declared VAT
// month.
func vatDateFor(raw *rawDocument, kind vatclass.DocumentKind, payment bool, docDate time.Time) *time.Time {
	if !payment && kind == vatclass.KindPurchase {
		if vm, ok := parseDate(raw.VatMonth); ok {
			return &vm
		}
	}
	d := docDate
	return &d
}

func vatDocumentTypeFor(kind vatclass.DocumentKind) string {
	if kind == vatclass.KindSale {
		return "01"
	}
	return "03"
}

// assignOperations maps the legacy numeric VAT operation code onto a NAP
// code for the matching journal side. A missing code defaults by whether
// the document carries VAT at all.
func assignOperations(doc *models.ImportDocument, raw *rawDocument, kind vatclass.DocumentKind) {
	oldCode := ""
	if raw.VatData != nil && len(raw.VatData.Rows) > 0 {
		oldCode = raw.VatData.Rows[0].OperationIden
	}
	if oldCode == "" {
		switch {
		case doc.VatAmount.IsPositive():
			oldCode = "1"
		case kind == vatclass.KindSale:
			oldCode = "8"
		default:
			oldCode = "3"
		}
	}

	code := vatclass.MapLegacyOperation(oldCode, kind, doc.VatAmount)
	if kind == vatclass.KindSale {
		doc.SalesOperation = code
	} else {
		doc.PurchaseOperation = code
	}
}
