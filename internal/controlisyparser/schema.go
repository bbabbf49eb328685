package controlisyparser

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// The Controlisy export is attribute-based XML: every value lives in an
// attribute, element nesting only groups records. Amounts and dates are
// kept as strings at this level and parsed leniently, because real exports
// carry empty and zero-filled attributes.

type rawFile struct {
	XMLName     xml.Name
	Contractors []rawContractor `xml:"Contractors>Contractor"`
	Documents   []rawDocument   `xml:"Documents>Document"`
}

type rawContractor struct {
	ID           string `xml:"ca_contractorId,attr"`
	Name         string `xml:"contractorName,attr"`
	EIK          string `xml:"contractorEIK,attr"`
	VatNumber    string `xml:"contractorVATNumber,attr"`
	InsideNumber string `xml:"contractorInsideNumber,attr"`
}

type rawDocument struct {
	AccountingMonth string `xml:"accountingMonth,attr"`
	VatMonth        string `xml:"vatMonth,attr"`
	Maturity        string `xml:"maturity,attr"`
	DocIdent        string `xml:"docIdent,attr"`
	DocumentDate    string `xml:"documentDate,attr"`
	DocumentNumber  string `xml:"documentNumber,attr"`
	DocID           string `xml:"ca_docId,attr"`
	Reason          string `xml:"reason,attr"`
	Remark          string `xml:"remark,attr"`
	NetAmountBGN    string `xml:"netAmountBGN,attr"`
	VatAmountBGN    string `xml:"vatAmountBGN,attr"`
	TotalAmountBGN  string `xml:"totalAmountBGN,attr"`
	VatOperationID  string `xml:"ca_vatOperationID,attr"`
	DocTypeID       string `xml:"ca_docTypeID,attr"`
	ContractorID    string `xml:"ca_contractorId,attr"`

	Accountings []rawAccounting `xml:"Accounting"`
	VatData     *rawVatData     `xml:"VATData"`
	RelDoc      *rawRelDoc      `xml:"RelDoc"`
}

type rawAccounting struct {
	AmountBGN      string             `xml:"amountBGN,attr"`
	VatOperationID string             `xml:"ca_vatOperationID,attr"`
	Details        []rawAccountingRow `xml:"AccountingDetail"`
}

type rawAccountingRow struct {
	Direction      string `xml:"direction,attr"`
	Currency       string `xml:"currency,attr"`
	CurrencyAmount string `xml:"currencyAmount,attr"`
	Unit           string `xml:"unit,attr"`
	Quantity       string `xml:"quantity,attr"`
	AccountNumber  string `xml:"accountNumber,attr"`
	AccountName    string `xml:"accountName,attr"`
	ContractorName string `xml:"contractorName,attr"`
	ContractorEIK  string `xml:"contractorEIK,attr"`
}

type rawVatData struct {
	VatRegister    string   `xml:"vatRegister,attr"`
	ContractorName string   `xml:"contractorName,attr"`
	VatNumber      string   `xml:"contractorVATNumber,attr"`
	Rows           []rawVat `xml:"VAT"`
}

type rawVat struct {
	TaxBase         string `xml:"taxBase,attr"`
	VatRate         string `xml:"vatRate,attr"`
	VatAmountBGN    string `xml:"vatAmountBGN,attr"`
	VatOperationID  string `xml:"ca_vatOperationID,attr"`
	OperationIden   string `xml:"vatOperationIden,attr"`
	OperationName   string `xml:"vatOperationName,attr"`
	AdditionalIden  string `xml:"vatOperationAdditionalIden,attr"`
	AdditionalName  string `xml:"vatOperationAdditionalName,attr"`
	OperationDetail string `xml:"vatOperationDetail,attr"`
}

type rawRelDoc struct {
	RelDocumentID     string `xml:"ca_relDocumentId,attr"`
	RelDocumentNumber string `xml:"relDocumentNumber,attr"`
	RelDocumentDate   string `xml:"relDocumentDate,attr"`
	ContractorName    string `xml:"contractorName,attr"`
	ContractorEIK     string `xml:"contractorEIK,attr"`
}

const dateLayout = "2006-01-02"

// parseAmount tolerates empty and malformed values, returning zero. Real
// exports leave optional amount attributes blank.
func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
