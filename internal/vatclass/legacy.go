package vatclass

import "github.com/shopspring/decimal"

// DocumentKind distinguishes the two Controlisy journals.
type DocumentKind string

const (
	KindPurchase DocumentKind = "purchase"
	KindSale     DocumentKind = "sale"
)

// MapLegacyOperation converts an old Controlisy numeric VAT operation code
// to the NAP text code used in the purchase and sales journals. Codes with
// no journal entry map to "0". The VAT amount breaks ties where the legacy
// code alone is ambiguous.
func MapLegacyOperation(oldCode string, kind DocumentKind, vatAmount decimal.Decimal) string {
	switch kind {
	case KindPurchase:
		switch oldCode {
		case "1":
			return "пок10" // full VAT credit
		case "2":
			return "пок12" // partial VAT credit
		case "3":
			// no credit: with VAT it still enters the journal
			if vatAmount.IsPositive() {
				return "пок09"
			}
			return "0"
		case "4":
			return "пок14" // annual adjustment
		case "5":
			return "пок15" // triangular operation
		default:
			if vatAmount.IsPositive() {
				return "пок10"
			}
			return "0"
		}
	case KindSale:
		switch oldCode {
		case "1":
			return "про11" // taxable 20%
		case "2":
			return "про17" // taxable 9%
		case "3":
			return "про19" // zero-rated, chapter 3
		case "4":
			return "про20" // intra-community supply
		case "5":
			return "про13" // intra-community acquisition
		case "8":
			return "про24-1" // exempt supplies
		case "9":
			return "про22" // services under art. 21(2)
		default:
			if vatAmount.IsPositive() {
				return "про11"
			}
			return "про24-1"
		}
	}
	return "0"
}
