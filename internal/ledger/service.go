// Package ledger talks to the accounting backend. Service is the
// transport-agnostic surface the CLI works against; Client is the HTTP
// implementation and Mock the test double.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"bgledger/kontir/internal/models"
)

// AccountBalance is one account's balance as of a reporting date.
type AccountBalance struct {
	AccountID   int             `json:"accountId"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// InvoiceAIRequest carries a scanned document to the backend extraction
// endpoint. FileBase64 is the raw file, Direction "purchase" or "sale".
type InvoiceAIRequest struct {
	FileName   string `json:"fileName"`
	MimeType   string `json:"mimeType"`
	FileBase64 string `json:"fileBase64"`
	Direction  string `json:"direction"`
}

// Service is every backend operation the CLI needs. All calls take a
// context; implementations must honor cancellation.
type Service interface {
	// GetAccountHierarchy returns the full chart of accounts. The HTTP
	// implementation pages through the backend transparently.
	GetAccountHierarchy(ctx context.Context) ([]models.Account, error)
	GetAccountBalances(ctx context.Context, asOf time.Time, accountIDs []int) ([]AccountBalance, error)
	CreateAccount(ctx context.Context, account models.Account) (*models.Account, error)

	GetCounterparts(ctx context.Context) ([]models.Counterpart, error)
	CreateCounterpart(ctx context.Context, counterpart models.Counterpart) (*models.Counterpart, error)

	CreateJournalEntry(ctx context.Context, doc *models.Document) (*models.Document, error)
	UpdateJournalEntry(ctx context.Context, id int, doc *models.Document) error
	GetJournalEntry(ctx context.Context, id int) (*models.Document, error)

	// ParseStructuredImport asks the backend to parse a raw file server-side
	// and return the reconciled result without staging it.
	ParseStructuredImport(ctx context.Context, fileName, fileBase64 string) (*models.ImportResult, error)

	// StageImport uploads a reconciled import for review; ProcessImport
	// turns a staged import into journal entries.
	StageImport(ctx context.Context, result *models.ImportResult) (*models.ImportSummary, error)
	UpdateStagedImport(ctx context.Context, importID string, result *models.ImportResult) error
	ProcessImport(ctx context.Context, importID string) error
	ListImports(ctx context.Context) ([]models.ImportSummary, error)
	DeleteImport(ctx context.Context, importID string) error

	ImportBankStatement(ctx context.Context, fileName, fileBase64 string) (*models.ImportSummary, error)
	ProcessInvoiceAI(ctx context.Context, req InvoiceAIRequest) (*models.ImportResult, error)
}
