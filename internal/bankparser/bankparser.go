// Package bankparser reads bank statement CSV exports and reconciles each
// movement into a balanced two-line document against the configured bank
// and settlement accounts.
package bankparser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"bgledger/kontir/internal/logging"
	"bgledger/kontir/internal/models"
	"bgledger/kontir/internal/parsererror"
)

const parserName = "bank"

var log logging.Logger = logging.NewLogrusAdapter("info", "text")

// SetLogger replaces the package logger.
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// Config names the two accounts every statement line is posted against.
type Config struct {
	BankAccountCode       string
	SettlementAccountCode string
}

// Row is one statement line. Banks disagree on column sets; these are the
// columns the import relies on.
type Row struct {
	Date           string `csv:"Date"`
	Reference      string `csv:"Reference"`
	Description    string `csv:"Description"`
	Counterpart    string `csv:"Counterpart"`
	CounterpartEIK string `csv:"EIK"`
	Debit          string `csv:"Debit"`
	Credit         string `csv:"Credit"`
	Currency       string `csv:"Currency"`
}

// ParseFile parses a bank statement CSV into an ImportResult.
func ParseFile(path string, cfg Config) (*models.ImportResult, error) {
	log.WithField(logging.FieldFile, path).Info("Parsing bank statement")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &parsererror.ParseError{
			Parser: parserName, FileName: path,
			Reason: "cannot read file", Err: err,
		}
	}
	return Parse(data, path, cfg)
}

// Parse decodes raw statement bytes.
func Parse(data []byte, fileName string, cfg Config) (*models.ImportResult, error) {
	if cfg.BankAccountCode == "" || cfg.SettlementAccountCode == "" {
		return nil, &parsererror.ConstraintError{
			Field:  "bank accounts",
			Reason: "bank and settlement account codes must be configured",
		}
	}

	rows, err := readRows(data)
	if err != nil {
		return nil, &parsererror.ParseError{
			Parser: parserName, FileName: fileName,
			Reason: "malformed CSV", Err: err,
		}
	}

	result := &models.ImportResult{
		Source:       models.SourceBank,
		FileName:     fileName,
		DocumentKind: "statement",
	}

	seenAccounts := make(map[string]bool)
	seenContractors := make(map[string]bool)

	for i, row := range rows {
		if row.Date == "" && row.Debit == "" && row.Credit == "" {
			continue
		}

		doc, err := convertRow(row, i, cfg)
		if err != nil {
			log.WithError(err).WithField("row", i+1).Warn("Skipping statement row")
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("row %d skipped: %v", i+1, err))
			continue
		}

		for _, entry := range doc.Entries {
			if !seenAccounts[entry.AccountCode] {
				seenAccounts[entry.AccountCode] = true
				result.AccountCodes = append(result.AccountCodes, entry.AccountCode)
			}
		}
		if row.Counterpart != "" {
			key := row.CounterpartEIK
			if key == "" {
				key = row.Counterpart
			}
			if !seenContractors[key] {
				seenContractors[key] = true
				result.Contractors = append(result.Contractors, models.ImportContractor{
					SourceID: key,
					Name:     row.Counterpart,
					EIK:      row.CounterpartEIK,
				})
			}
		}

		result.Documents = append(result.Documents, doc)
	}

	if len(result.Documents) == 0 {
		return nil, &parsererror.InvalidFormatError{
			FilePath:       fileName,
			ExpectedFormat: "bank statement CSV with Date, Debit and Credit columns",
			Msg:            "no statement rows found",
		}
	}

	log.WithFields(
		logging.Field{Key: logging.FieldFile, Value: fileName},
		logging.Field{Key: logging.FieldCount, Value: len(result.Documents)},
	).Info("Bank statement parsed")
	return result, nil
}

func convertRow(row Row, index int, cfg Config) (models.ImportDocument, error) {
	date, err := parseRowDate(row.Date)
	if err != nil {
		return models.ImportDocument{}, err
	}

	outflow := parseMoney(row.Debit)
	inflow := parseMoney(row.Credit)
	if outflow.IsZero() == inflow.IsZero() {
		return models.ImportDocument{}, fmt.Errorf("exactly one of debit and credit must be set")
	}

	amount := inflow
	if amount.IsZero() {
		amount = outflow
	}
	if amount.IsNegative() {
		return models.ImportDocument{}, fmt.Errorf("negative amount %s", amount)
	}

	number := row.Reference
	if number == "" {
		number = fmt.Sprintf("%s-%d", date.Format("20060102"), index+1)
	}

	currency := row.Currency
	if currency == "" {
		currency = "BGN"
	}

	doc := models.ImportDocument{
		DocumentNumber: number,
		DocumentDate:   date,
		AccountingDate: date,
		Description:    row.Description,
		ContractorID:   row.CounterpartEIK,
		TotalAmount:    amount,
	}

	bankSide := models.ImportEntry{
		AccountCode: cfg.BankAccountCode,
		Currency:    currency,
		Description: row.Description,
	}
	settlementSide := models.ImportEntry{
		AccountCode:    cfg.SettlementAccountCode,
		Currency:       currency,
		ContractorName: row.Counterpart,
		ContractorEIK:  row.CounterpartEIK,
		Description:    row.Description,
	}

	if !inflow.IsZero() {
		bankSide.DebitAmount = amount
		settlementSide.CreditAmount = amount
	} else {
		bankSide.CreditAmount = amount
		settlementSide.DebitAmount = amount
	}

	doc.Entries = []models.ImportEntry{bankSide, settlementSide}
	doc.TotalDebit = amount
	doc.TotalCredit = amount
	doc.IsBalanced = true
	return doc, nil
}

func parseRowDate(s string) (time.Time, error) {
	layouts := []string{"2006-01-02", "02.01.2006", "02/01/2006"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseMoney tolerates thousand separators and comma decimals.
func parseMoney(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	s = strings.ReplaceAll(s, " ", "")
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func readRows(data []byte) ([]Row, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = detectDelimiter(data)
	r.TrimLeadingSpace = true

	var rows []Row
	if err := gocsv.UnmarshalCSV(r, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func detectDelimiter(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}
	if bytes.ContainsRune(header, ';') && !bytes.ContainsRune(header, ',') {
		return ';'
	}
	return ','
}

// ValidateFormat checks whether a file looks like a supported bank CSV.
func ValidateFormat(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	header := strings.ToLower(string(data))
	if i := strings.IndexByte(header, '\n'); i >= 0 {
		header = header[:i]
	}
	return strings.Contains(header, "date") &&
		strings.Contains(header, "debit") &&
		strings.Contains(header, "credit"), nil
}
