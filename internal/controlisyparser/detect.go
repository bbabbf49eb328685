package controlisyparser

import (
	"strings"

	"bgledger/kontir/internal/models"
	"bgledger/kontir/internal/vatclass"
)

// DetectKindFromFileName classifies the export journal by its file name.
// Controlisy names purchase exports "pokupki" and sales exports "prodajbi",
// transliterated or in Cyrillic. Unrecognized names return "" so content
// detection can decide.
func DetectKindFromFileName(fileName string) vatclass.DocumentKind {
	lower := strings.ToLower(fileName)
	switch {
	case strings.Contains(lower, "pokupki") || strings.Contains(lower, "покупки"):
		return vatclass.KindPurchase
	case strings.Contains(lower, "prodaj") || strings.Contains(lower, "продаж"):
		return vatclass.KindSale
	}
	return ""
}

// detectKindFromContent classifies a document by what it posts. The VAT
// register is the most reliable signal; account movements break the tie
// when the register is absent.
func detectKindFromContent(doc *rawDocument) vatclass.DocumentKind {
	if doc.VatData != nil {
		switch doc.VatData.VatRegister {
		case "1":
			return vatclass.KindPurchase
		case "2":
			return vatclass.KindSale
		}
	}

	for _, acc := range doc.Accountings {
		for _, row := range acc.Details {
			code := row.AccountNumber
			credit := strings.EqualFold(row.Direction, "Credit")
			debit := strings.EqualFold(row.Direction, "Debit")

			switch {
			case models.IsSupplierAccount(code) && credit:
				return vatclass.KindPurchase
			case models.IsCustomerAccount(code) && debit:
				return vatclass.KindSale
			case strings.HasPrefix(code, "7") && credit:
				return vatclass.KindSale
			case (strings.HasPrefix(code, "2") || strings.HasPrefix(code, "3") || strings.HasPrefix(code, "6")) && debit:
				return vatclass.KindPurchase
			}
		}
	}

	// VAT settlement accounts as a last resort
	for _, acc := range doc.Accountings {
		for _, row := range acc.Details {
			if row.AccountNumber == models.VatReceivableAccount && strings.EqualFold(row.Direction, "Debit") {
				return vatclass.KindPurchase
			}
			if row.AccountNumber == models.VatPayableAccount && strings.EqualFold(row.Direction, "Credit") {
				return vatclass.KindSale
			}
		}
	}

	return vatclass.KindPurchase
}

// isPaymentDocument reports whether a document settles money rather than
// recording a taxable supply. Payment documents carry no VAT operation and
// stay out of the VAT journals.
func isPaymentDocument(doc *rawDocument) bool {
	return doc.VatOperationID == "" ||
		doc.VatOperationID == "0" ||
		strings.Contains(strings.ToLower(doc.Reason), "разплащане")
}
