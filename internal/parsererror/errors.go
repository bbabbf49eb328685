// Package parsererror defines the typed errors shared by the import and
// balancing packages. Item-scoped errors (parse, remote) never abort a batch;
// document-scoped validation errors block only the document they refer to.
package parsererror

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseError represents a failure to parse one source file or record.
// It is scoped to the named file: sibling files in the same import run
// are still processed.
type ParseError struct {
	Parser   string
	FileName string
	Reason   string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: failed to parse %s: %s: %v", e.Parser, e.FileName, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: failed to parse %s: %s", e.Parser, e.FileName, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError represents a balance or required-field failure that blocks
// submission of a document or batch. When the failure is a debit/credit
// imbalance, Difference carries the literal delta so callers can surface the
// amount, not just "unbalanced".
type ValidationError struct {
	Subject    string // document number or batch identifier
	Reason     string
	Difference decimal.Decimal
}

func (e *ValidationError) Error() string {
	if !e.Difference.IsZero() {
		return fmt.Sprintf("validation failed for %s: %s (difference %s)",
			e.Subject, e.Reason, e.Difference.StringFixed(2))
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Subject, e.Reason)
}

// ConstraintError represents a field-level constraint violation, such as an
// analytical account without a synthetic parent or a legacy VAT code on a
// new record. It blocks at the specific field.
type ConstraintError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint violated on %s='%s': %s", e.Field, e.Value, e.Reason)
}

// RemoteError represents a ledger API call failure, scoped to a single item.
// The batch records the error and continues with the next item.
type RemoteError struct {
	Operation string
	Item      string
	Err       error
}

func (e *RemoteError) Error() string {
	if e.Item != "" {
		return fmt.Sprintf("remote call %s failed for %s: %v", e.Operation, e.Item, e.Err)
	}
	return fmt.Sprintf("remote call %s failed: %v", e.Operation, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// StaleStateError represents an operation against a document in a state that
// forbids it, such as removing the main group of a batch or editing a
// posted document. The operation is rejected with no partial effect.
type StaleStateError struct {
	Subject   string
	State     string
	Operation string
}

func (e *StaleStateError) Error() string {
	return fmt.Sprintf("cannot %s %s in state %s", e.Operation, e.Subject, e.State)
}

// AccountNotFoundError represents a journal line referencing an account code
// or id that is not present in the chart of accounts. It must block save
// rather than silently drop the line.
type AccountNotFoundError struct {
	Code string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account not found: %s", e.Code)
}

// InvalidFormatError represents an input file that does not conform to the
// expected source format for a specific parser.
type InvalidFormatError struct {
	FilePath       string
	ExpectedFormat string
	Msg            string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}

// NoValidLinesError is returned when a batch contains no document with at
// least one populated line. Empty sibling documents are normally skipped;
// an entirely empty batch is rejected instead.
type NoValidLinesError struct {
	Batch string
}

func (e *NoValidLinesError) Error() string {
	return fmt.Sprintf("batch %s has no documents with valid lines", e.Batch)
}
