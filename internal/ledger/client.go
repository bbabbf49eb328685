package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"bgledger/kontir/internal/config"
	"bgledger/kontir/internal/logging"
	"bgledger/kontir/internal/models"
	"bgledger/kontir/internal/parsererror"
)

// Client is the HTTP JSON implementation of Service.
type Client struct {
	baseURL   string
	apiKey    string
	companyID int
	pageSize  int
	http      *http.Client
	log       logging.Logger
}

// NewClient builds a client from the ledger configuration section.
func NewClient(cfg config.LedgerConfig, logger logging.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("ledger endpoint not configured")
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:   cfg.Endpoint,
		apiKey:    cfg.APIKey,
		companyID: cfg.CompanyID,
		pageSize:  pageSize,
		http:      &http.Client{Timeout: timeout},
		log:       logger,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.companyID > 0 {
		req.Header.Set("X-Company-ID", strconv.Itoa(c.companyID))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &parsererror.RemoteError{Operation: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &parsererror.RemoteError{
			Operation: method + " " + path,
			Err:       fmt.Errorf("backend returned %s: %s", resp.Status, string(data)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &parsererror.RemoteError{
			Operation: method + " " + path,
			Err:       fmt.Errorf("failed to decode response: %w", err),
		}
	}
	return nil
}

// GetAccountHierarchy pages through the chart of accounts until the
// backend returns a short page.
func (c *Client) GetAccountHierarchy(ctx context.Context) ([]models.Account, error) {
	var all []models.Account
	for page := 1; ; page++ {
		query := url.Values{
			"page":     {strconv.Itoa(page)},
			"pageSize": {strconv.Itoa(c.pageSize)},
		}
		var batch []models.Account
		if err := c.do(ctx, http.MethodGet, "/api/accounts/hierarchy", query, nil, &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < c.pageSize {
			break
		}
	}
	c.log.WithField(logging.FieldCount, len(all)).Debug("Fetched account hierarchy")
	return all, nil
}

func (c *Client) GetAccountBalances(ctx context.Context, asOf time.Time, accountIDs []int) ([]AccountBalance, error) {
	query := url.Values{"asOf": {asOf.Format("2006-01-02")}}
	for _, id := range accountIDs {
		query.Add("accountId", strconv.Itoa(id))
	}
	var balances []AccountBalance
	if err := c.do(ctx, http.MethodGet, "/api/accounts/balances", query, nil, &balances); err != nil {
		return nil, err
	}
	return balances, nil
}

func (c *Client) CreateAccount(ctx context.Context, account models.Account) (*models.Account, error) {
	var created models.Account
	if err := c.do(ctx, http.MethodPost, "/api/accounts", nil, account, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) GetCounterparts(ctx context.Context) ([]models.Counterpart, error) {
	var counterparts []models.Counterpart
	if err := c.do(ctx, http.MethodGet, "/api/counterparts", nil, nil, &counterparts); err != nil {
		return nil, err
	}
	return counterparts, nil
}

func (c *Client) CreateCounterpart(ctx context.Context, counterpart models.Counterpart) (*models.Counterpart, error) {
	var created models.Counterpart
	if err := c.do(ctx, http.MethodPost, "/api/counterparts", nil, counterpart, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) CreateJournalEntry(ctx context.Context, doc *models.Document) (*models.Document, error) {
	var created models.Document
	if err := c.do(ctx, http.MethodPost, "/api/journal-entries", nil, doc, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateJournalEntry(ctx context.Context, id int, doc *models.Document) error {
	return c.do(ctx, http.MethodPut, "/api/journal-entries/"+strconv.Itoa(id), nil, doc, nil)
}

func (c *Client) GetJournalEntry(ctx context.Context, id int) (*models.Document, error) {
	var doc models.Document
	if err := c.do(ctx, http.MethodGet, "/api/journal-entries/"+strconv.Itoa(id), nil, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) ParseStructuredImport(ctx context.Context, fileName, fileBase64 string) (*models.ImportResult, error) {
	body := map[string]string{"fileName": fileName, "fileBase64": fileBase64}
	var result models.ImportResult
	if err := c.do(ctx, http.MethodPost, "/api/imports/parse", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) StageImport(ctx context.Context, result *models.ImportResult) (*models.ImportSummary, error) {
	var summary models.ImportSummary
	if err := c.do(ctx, http.MethodPost, "/api/imports", nil, result, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) UpdateStagedImport(ctx context.Context, importID string, result *models.ImportResult) error {
	return c.do(ctx, http.MethodPut, "/api/imports/"+url.PathEscape(importID), nil, result, nil)
}

func (c *Client) ProcessImport(ctx context.Context, importID string) error {
	return c.do(ctx, http.MethodPost, "/api/imports/"+url.PathEscape(importID)+"/process", nil, nil, nil)
}

func (c *Client) ListImports(ctx context.Context) ([]models.ImportSummary, error) {
	var imports []models.ImportSummary
	if err := c.do(ctx, http.MethodGet, "/api/imports", nil, nil, &imports); err != nil {
		return nil, err
	}
	return imports, nil
}

func (c *Client) DeleteImport(ctx context.Context, importID string) error {
	return c.do(ctx, http.MethodDelete, "/api/imports/"+url.PathEscape(importID), nil, nil, nil)
}

func (c *Client) ImportBankStatement(ctx context.Context, fileName, fileBase64 string) (*models.ImportSummary, error) {
	body := map[string]string{"fileName": fileName, "fileBase64": fileBase64}
	var summary models.ImportSummary
	if err := c.do(ctx, http.MethodPost, "/api/imports/bank-statement", nil, body, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) ProcessInvoiceAI(ctx context.Context, req InvoiceAIRequest) (*models.ImportResult, error) {
	var result models.ImportResult
	if err := c.do(ctx, http.MethodPost, "/api/imports/invoice-ai", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

var _ Service = (*Client)(nil)
