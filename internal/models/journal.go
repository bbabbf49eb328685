package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalLine is one side of a double entry. Exactly one of DebitAmount and
// CreditAmount may be non-zero; both are always >= 0.
type JournalLine struct {
	AccountCode   string          `csv:"AccountCode" json:"accountCode"`
	AccountID     int             `csv:"-" json:"accountId"`
	DebitAmount   decimal.Decimal `csv:"Debit" json:"debitAmount"`
	CreditAmount  decimal.Decimal `csv:"Credit" json:"creditAmount"`
	CounterpartID *int            `csv:"-" json:"counterpartId"`
	Description   string          `csv:"Description" json:"description"`
	Quantity      decimal.Decimal `csv:"Quantity" json:"quantity"`
	UnitOfMeasure string          `csv:"Unit" json:"unitOfMeasure"`
	CurrencyCode  string          `csv:"Currency" json:"currencyCode"`
	ExchangeRate  decimal.Decimal `csv:"ExchangeRate" json:"exchangeRate"`
}

// Amount returns whichever side of the line is populated.
func (l JournalLine) Amount() decimal.Decimal {
	if l.DebitAmount.IsPositive() {
		return l.DebitAmount
	}
	return l.CreditAmount
}

// IsDebit reports whether the line carries a debit amount.
func (l JournalLine) IsDebit() bool {
	return l.DebitAmount.IsPositive()
}

// IsEmpty reports whether neither side of the line is populated. Empty lines
// are excluded from balance totals and from the active-line count.
func (l JournalLine) IsEmpty() bool {
	return !l.DebitAmount.IsPositive() && !l.CreditAmount.IsPositive()
}

// UnitPrice is a pure function of the current amount and quantity,
// recomputed on every read so it never depends on input order.
func (l JournalLine) UnitPrice() decimal.Decimal {
	if !l.Quantity.IsPositive() {
		return decimal.Zero
	}
	return l.Amount().Div(l.Quantity).Round(4)
}

// DocumentState is the client-side lifecycle of a document.
type DocumentState string

const (
	StateDraft     DocumentState = "DRAFT"
	StateValidated DocumentState = "VALIDATED"
	StateSubmitted DocumentState = "SUBMITTED"
	StatePosted    DocumentState = "POSTED"
)

// Mutable reports whether the document may still be edited client-side.
func (s DocumentState) Mutable() bool {
	return s == StateDraft || s == StateValidated
}

// GroupType distinguishes the main document of a batch from its linked
// groups (statии).
type GroupType string

const (
	GroupMain    GroupType = "MAIN"
	GroupPayment GroupType = "PAYMENT"
	GroupExpense GroupType = "EXPENSE"
	GroupVat     GroupType = "VAT"
	GroupOther   GroupType = "OTHER"
)

// Document is one balanced statия: an ordered set of journal lines sharing
// document metadata. Tax documents carry a 10-digit zero-padded number and a
// vatDate that determines the reporting period.
type Document struct {
	ID             int               `json:"id,omitempty"` // backend-assigned
	GroupID        int               `json:"groupId"`      // 0 is the main group
	GroupType      GroupType         `json:"groupType"`
	DocumentNumber string            `json:"documentNumber"`
	DocumentDate   time.Time         `json:"documentDate"`
	AccountingDate time.Time         `json:"accountingDate"`
	VatDate        *time.Time        `json:"vatDate"`
	Description    string            `json:"description"`
	DocumentType   DocumentType      `json:"documentType"`
	State          DocumentState     `json:"state"`
	Lines          []JournalLine     `json:"lines"`
	LineGroups     []LinkedLineGroup `json:"lineGroups"`

	// LastError carries the backend failure that returned the document
	// from SUBMITTED to VALIDATED. Cleared on the next submission attempt.
	LastError string `json:"lastError,omitempty"`
}

// ActiveLines returns the lines with a populated amount.
func (d *Document) ActiveLines() []JournalLine {
	var active []JournalLine
	for _, line := range d.Lines {
		if !line.IsEmpty() {
			active = append(active, line)
		}
	}
	return active
}

// LinkedLineGroup is an advisory named grouping of two or more lines within
// one document, used for material/offset matching. It is not a balance unit.
type LinkedLineGroup struct {
	GroupID     int    `json:"groupId"`
	Name        string `json:"name"`
	LineIndices []int  `json:"lineIndices"`
}

// DocumentType describes the kind of source document behind an entry.
// Tax documents participate in the VAT journals and get normalized
// 10-digit numbers; the short code prefixes generated numbers for the rest.
type DocumentType struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	ShortCode     string `json:"shortCode"`
	IsTaxDocument bool   `json:"isTaxDocument"`
}

// Document types used across the entry forms. The 2-digit codes for tax
// documents follow the PPZDDS numbering.
var (
	DocTypeInvoice     = DocumentType{Code: "01", Name: "Фактура", ShortCode: "ФА", IsTaxDocument: true}
	DocTypeDebitNote   = DocumentType{Code: "02", Name: "Дебитно известие", ShortCode: "ДИ", IsTaxDocument: true}
	DocTypeCreditNote  = DocumentType{Code: "03", Name: "Кредитно известие", ShortCode: "КИ", IsTaxDocument: true}
	DocTypeCustoms     = DocumentType{Code: "07", Name: "Митническа декларация", ShortCode: "МД", IsTaxDocument: true}
	DocTypeProtocol    = DocumentType{Code: "09", Name: "Протокол", ShortCode: "ПР", IsTaxDocument: true}
	DocTypeCashReceipt = DocumentType{Code: "", Name: "Приходен касов ордер", ShortCode: "ПКО", IsTaxDocument: false}
	DocTypeCashPayment = DocumentType{Code: "", Name: "Разходен касов ордер", ShortCode: "РКО", IsTaxDocument: false}
	DocTypeBankStmt    = DocumentType{Code: "", Name: "Банково извлечение", ShortCode: "БИ", IsTaxDocument: false}
	DocTypeMemo        = DocumentType{Code: "", Name: "Мемориален ордер", ShortCode: "МО", IsTaxDocument: false}
)

// AllDocumentTypes lists every known document type, in form order.
var AllDocumentTypes = []DocumentType{
	DocTypeInvoice,
	DocTypeDebitNote,
	DocTypeCreditNote,
	DocTypeCustoms,
	DocTypeProtocol,
	DocTypeCashReceipt,
	DocTypeCashPayment,
	DocTypeBankStmt,
	DocTypeMemo,
}
