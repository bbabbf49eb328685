package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ImportSource names the origin of an import payload.
type ImportSource string

const (
	SourceControlisy  ImportSource = "controlisy"
	SourceBank        ImportSource = "bank"
	SourceInvoiceAI   ImportSource = "invoice-ai"
	SourceSpreadsheet ImportSource = "spreadsheet"
)

// ImportContractor is a counterpart candidate carried by an import source,
// keyed by the source-assigned identifier.
type ImportContractor struct {
	SourceID     string `json:"sourceId"`
	Name         string `json:"name"`
	EIK          string `json:"eik"`
	VatNumber    string `json:"vatNumber"`
	InsideNumber string `json:"insideNumber"`
}

// ImportEntry is one normalized journal line extracted from a source
// document: direction already mapped onto the debit/credit pair.
type ImportEntry struct {
	AccountCode     string          `csv:"AccountCode" json:"accountCode"`
	AccountName     string          `csv:"AccountName" json:"accountName"`
	DebitAmount     decimal.Decimal `csv:"Debit" json:"debitAmount"`
	CreditAmount    decimal.Decimal `csv:"Credit" json:"creditAmount"`
	Currency        string          `csv:"Currency" json:"currency"`
	CurrencyAmount  decimal.Decimal `csv:"CurrencyAmount" json:"currencyAmount"`
	Quantity        decimal.Decimal `csv:"Quantity" json:"quantity"`
	Unit            string          `csv:"Unit" json:"unit"`
	ContractorName  string          `csv:"ContractorName" json:"contractorName"`
	ContractorEIK   string          `csv:"ContractorEIK" json:"contractorEik"`
	Description     string          `csv:"Description" json:"description"`
}

// ImportDocument is one source document reconciled into normalized entries.
// IsBalanced is computed before any backend submission is attempted.
type ImportDocument struct {
	DocumentNumber string          `json:"documentNumber"`
	DocumentDate   time.Time       `json:"documentDate"`
	AccountingDate time.Time       `json:"accountingDate"`
	VatDate        *time.Time      `json:"vatDate"`
	Description    string          `json:"description"`
	ContractorID   string          `json:"contractorId"` // source-assigned
	Entries        []ImportEntry   `json:"entries"`
	TotalDebit     decimal.Decimal `json:"totalDebit"`
	TotalCredit    decimal.Decimal `json:"totalCredit"`
	IsBalanced     bool            `json:"isBalanced"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	NetAmount      decimal.Decimal `json:"netAmount"`
	VatAmount      decimal.Decimal `json:"vatAmount"`

	// VAT classification attached during reconciliation.
	VatDocumentType   string `json:"vatDocumentType,omitempty"`
	PurchaseOperation string `json:"purchaseOperation,omitempty"`
	SalesOperation    string `json:"salesOperation,omitempty"`
}

// ImportResult is the canonical outcome of reconciling one source file.
type ImportResult struct {
	Source       ImportSource       `json:"source"`
	FileName     string             `json:"fileName"`
	DocumentKind string             `json:"documentKind"` // purchase, sale, payment, statement
	Contractors  []ImportContractor `json:"contractors"`
	Documents    []ImportDocument   `json:"documents"`

	// AccountCodes is the set of distinct source account codes across all
	// documents, in first-seen order, used for account mapping.
	AccountCodes []string `json:"accountCodes"`

	// ContractorConflicts lists source ids that appeared more than once
	// with differing name or EIK. The last occurrence wins in Contractors.
	ContractorConflicts []string `json:"contractorConflicts,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}

// ImportSummary describes a staged import held by the ledger backend.
type ImportSummary struct {
	ImportID         string    `json:"importId"`
	FileName         string    `json:"fileName"`
	Source           string    `json:"source"`
	Status           string    `json:"status"`
	DocumentsCount   int       `json:"documentsCount"`
	ContractorsCount int       `json:"contractorsCount"`
	CreatedAt        time.Time `json:"createdAt"`
}
