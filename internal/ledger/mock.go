package ledger

import (
	"context"
	"fmt"
	"time"

	"bgledger/kontir/internal/models"
)

// Mock is an in-memory Service for tests and dry runs. Zero value is
// usable; populate Accounts and Counterparts to seed reads.
type Mock struct {
	Accounts     []models.Account
	Counterparts []models.Counterpart
	Imports      []models.ImportSummary

	// StagedResults records every import passed to StageImport.
	StagedResults []*models.ImportResult
	// CreatedEntries records every document passed to CreateJournalEntry.
	CreatedEntries []*models.Document
	// Processed and Deleted record import ids in call order.
	Processed []string
	Deleted   []string

	// Err, when set, is returned by every call.
	Err error

	nextID int
}

func (m *Mock) GetAccountHierarchy(_ context.Context) ([]models.Account, error) {
	return m.Accounts, m.Err
}

func (m *Mock) GetAccountBalances(_ context.Context, _ time.Time, _ []int) ([]AccountBalance, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return nil, nil
}

func (m *Mock) CreateAccount(_ context.Context, account models.Account) (*models.Account, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.nextID++
	account.ID = m.nextID
	m.Accounts = append(m.Accounts, account)
	return &account, nil
}

func (m *Mock) GetCounterparts(_ context.Context) ([]models.Counterpart, error) {
	return m.Counterparts, m.Err
}

func (m *Mock) CreateCounterpart(_ context.Context, counterpart models.Counterpart) (*models.Counterpart, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.nextID++
	counterpart.ID = m.nextID
	m.Counterparts = append(m.Counterparts, counterpart)
	return &counterpart, nil
}

func (m *Mock) CreateJournalEntry(_ context.Context, doc *models.Document) (*models.Document, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.CreatedEntries = append(m.CreatedEntries, doc)
	return doc, nil
}

func (m *Mock) UpdateJournalEntry(_ context.Context, _ int, _ *models.Document) error {
	return m.Err
}

func (m *Mock) GetJournalEntry(_ context.Context, id int) (*models.Document, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return nil, fmt.Errorf("journal entry %d not found", id)
}

func (m *Mock) ParseStructuredImport(_ context.Context, fileName, _ string) (*models.ImportResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &models.ImportResult{FileName: fileName}, nil
}

func (m *Mock) StageImport(_ context.Context, result *models.ImportResult) (*models.ImportSummary, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.StagedResults = append(m.StagedResults, result)
	summary := models.ImportSummary{
		ImportID:         fmt.Sprintf("imp-%d", len(m.StagedResults)),
		FileName:         result.FileName,
		Source:           string(result.Source),
		Status:           "staged",
		DocumentsCount:   len(result.Documents),
		ContractorsCount: len(result.Contractors),
		CreatedAt:        time.Now(),
	}
	m.Imports = append(m.Imports, summary)
	return &summary, nil
}

func (m *Mock) UpdateStagedImport(_ context.Context, _ string, _ *models.ImportResult) error {
	return m.Err
}

func (m *Mock) ProcessImport(_ context.Context, importID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Processed = append(m.Processed, importID)
	return nil
}

func (m *Mock) ListImports(_ context.Context) ([]models.ImportSummary, error) {
	return m.Imports, m.Err
}

func (m *Mock) DeleteImport(_ context.Context, importID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Deleted = append(m.Deleted, importID)
	return nil
}

func (m *Mock) ImportBankStatement(_ context.Context, fileName, _ string) (*models.ImportSummary, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	summary := models.ImportSummary{
		ImportID: fmt.Sprintf("imp-%d", len(m.Imports)+1),
		FileName: fileName,
		Source:   string(models.SourceBank),
		Status:   "staged",
	}
	m.Imports = append(m.Imports, summary)
	return &summary, nil
}

func (m *Mock) ProcessInvoiceAI(_ context.Context, req InvoiceAIRequest) (*models.ImportResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &models.ImportResult{
		Source:   models.SourceInvoiceAI,
		FileName: req.FileName,
	}, nil
}

var _ Service = (*Mock)(nil)
