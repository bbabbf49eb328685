// Package spreadsheetparser reads generic journal-line spreadsheets
// exported as CSV. Rows sharing a document number form one document; each
// document is balance-checked before staging.
package spreadsheetparser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"bgledger/kontir/internal/balance"
	"bgledger/kontir/internal/logging"
	"bgledger/kontir/internal/models"
	"bgledger/kontir/internal/parsererror"
)

const parserName = "spreadsheet"

var log logging.Logger = logging.NewLogrusAdapter("info", "text")

// SetLogger replaces the package logger.
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// Row is one journal line of the spreadsheet.
type Row struct {
	DocumentNumber string `csv:"DocumentNumber"`
	DocumentDate   string `csv:"DocumentDate"`
	Description    string `csv:"Description"`
	AccountCode    string `csv:"AccountCode"`
	Debit          string `csv:"Debit"`
	Credit         string `csv:"Credit"`
	Quantity       string `csv:"Quantity"`
	Unit           string `csv:"Unit"`
	Counterpart    string `csv:"Counterpart"`
	EIK            string `csv:"EIK"`
}

// ParseFile parses a journal-line CSV into an ImportResult.
func ParseFile(path string) (*models.ImportResult, error) {
	log.WithField(logging.FieldFile, path).Info("Parsing journal spreadsheet")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &parsererror.ParseError{
			Parser: parserName, FileName: path,
			Reason: "cannot read file", Err: err,
		}
	}
	return Parse(data, path)
}

// Parse decodes raw CSV bytes, grouping rows into documents by their
// document number in first-seen order.
func Parse(data []byte, fileName string) (*models.ImportResult, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true

	var rows []Row
	if err := gocsv.UnmarshalCSV(r, &rows); err != nil {
		return nil, &parsererror.ParseError{
			Parser: parserName, FileName: fileName,
			Reason: "malformed CSV", Err: err,
		}
	}

	result := &models.ImportResult{
		Source:       models.SourceSpreadsheet,
		FileName:     fileName,
		DocumentKind: "journal",
	}

	docIndex := make(map[string]int)
	seenAccounts := make(map[string]bool)
	seenContractors := make(map[string]bool)

	for i, row := range rows {
		if row.AccountCode == "" {
			continue
		}

		entry, err := convertRow(row)
		if err != nil {
			log.WithError(err).WithField("row", i+1).Warn("Skipping spreadsheet row")
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("row %d skipped: %v", i+1, err))
			continue
		}

		number := row.DocumentNumber
		pos, seen := docIndex[number]
		if !seen {
			doc := models.ImportDocument{
				DocumentNumber: number,
				Description:    row.Description,
			}
			if date, err := parseRowDate(row.DocumentDate); err == nil {
				doc.DocumentDate = date
				doc.AccountingDate = date
			}
			docIndex[number] = len(result.Documents)
			pos = len(result.Documents)
			result.Documents = append(result.Documents, doc)
		}
		result.Documents[pos].Entries = append(result.Documents[pos].Entries, entry)

		if !seenAccounts[row.AccountCode] {
			seenAccounts[row.AccountCode] = true
			result.AccountCodes = append(result.AccountCodes, row.AccountCode)
		}
		if row.Counterpart != "" {
			key := row.EIK
			if key == "" {
				key = row.Counterpart
			}
			if !seenContractors[key] {
				seenContractors[key] = true
				result.Contractors = append(result.Contractors, models.ImportContractor{
					SourceID: key,
					Name:     row.Counterpart,
					EIK:      row.EIK,
				})
			}
		}
	}

	if len(result.Documents) == 0 {
		return nil, &parsererror.InvalidFormatError{
			FilePath:       fileName,
			ExpectedFormat: "journal CSV with DocumentNumber, AccountCode, Debit and Credit columns",
			Msg:            "no journal rows found",
		}
	}

	for i := range result.Documents {
		doc := &result.Documents[i]
		res := balance.BalanceEntries(doc.Entries)
		doc.TotalDebit = res.DebitTotal
		doc.TotalCredit = res.CreditTotal
		doc.TotalAmount = res.DebitTotal
		doc.IsBalanced = res.IsBalanced
		if !doc.IsBalanced {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("document %s is not balanced by %s",
					doc.DocumentNumber, res.Difference))
		}
	}

	log.WithFields(
		logging.Field{Key: logging.FieldFile, Value: fileName},
		logging.Field{Key: logging.FieldCount, Value: len(result.Documents)},
	).Info("Journal spreadsheet parsed")
	return result, nil
}

func convertRow(row Row) (models.ImportEntry, error) {
	debit, err := parseMoney(row.Debit)
	if err != nil {
		return models.ImportEntry{}, fmt.Errorf("bad debit amount %q", row.Debit)
	}
	credit, err := parseMoney(row.Credit)
	if err != nil {
		return models.ImportEntry{}, fmt.Errorf("bad credit amount %q", row.Credit)
	}
	if debit.IsNegative() || credit.IsNegative() {
		return models.ImportEntry{}, fmt.Errorf("negative amount on account %s", row.AccountCode)
	}
	if !debit.IsZero() && !credit.IsZero() {
		return models.ImportEntry{}, fmt.Errorf("account %s has both debit and credit", row.AccountCode)
	}

	entry := models.ImportEntry{
		AccountCode:    row.AccountCode,
		DebitAmount:    debit,
		CreditAmount:   credit,
		Unit:           row.Unit,
		ContractorName: row.Counterpart,
		ContractorEIK:  row.EIK,
		Description:    row.Description,
	}
	if q := strings.TrimSpace(row.Quantity); q != "" {
		if qty, err := decimal.NewFromString(q); err == nil {
			entry.Quantity = qty
		}
	}
	return entry, nil
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

func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.ReplaceAll(s, " ", "")
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

// ValidateFormat checks whether a file carries the expected header.
func ValidateFormat(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	header := strings.ToLower(string(data))
	if i := strings.IndexByte(header, '\n'); i >= 0 {
		header = header[:i]
	}
	return strings.Contains(header, "documentnumber") &&
		strings.Contains(header, "accountcode"), nil
}
