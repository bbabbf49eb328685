// Package balance implements debit/credit balance verification at three
// granularities: a single document, a whole batch, and an imported source
// document before staging.
package balance

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"bgledger/kontir/internal/models"
	"bgledger/kontir/internal/parsererror"
)

// Tolerance is the largest debit/credit difference still considered
// balanced, in BGN.
var Tolerance = decimal.RequireFromString("0.01")

// MinActiveLines is the smallest number of populated lines a submittable
// document may have.
const MinActiveLines = 2

// Result is the outcome of totaling a line set.
type Result struct {
	DebitTotal  decimal.Decimal
	CreditTotal decimal.Decimal
	Difference  decimal.Decimal // debit minus credit
	IsBalanced  bool
}

func newResult(debit, credit decimal.Decimal) Result {
	diff := debit.Sub(credit)
	return Result{
		DebitTotal:  debit,
		CreditTotal: credit,
		Difference:  diff,
		IsBalanced:  diff.Abs().LessThan(Tolerance),
	}
}

// Balance totals a set of journal lines. Lines with neither side populated
// are excluded from the totals.
func Balance(lines []models.JournalLine) Result {
	debit := decimal.Zero
	credit := decimal.Zero
	for _, line := range lines {
		if line.IsEmpty() {
			continue
		}
		debit = debit.Add(line.DebitAmount)
		credit = credit.Add(line.CreditAmount)
	}
	return newResult(debit, credit)
}

// BalanceEntries totals normalized import entries the same way.
func BalanceEntries(entries []models.ImportEntry) Result {
	debit := decimal.Zero
	credit := decimal.Zero
	for _, e := range entries {
		debit = debit.Add(e.DebitAmount)
		credit = credit.Add(e.CreditAmount)
	}
	return newResult(debit, credit)
}

// AccountChecker tests whether an account code exists in the chart of
// accounts.
type AccountChecker interface {
	Exists(code string) bool
}

// CheckDocument validates one document for submission: per-line invariants,
// known accounts, minimum active lines and the balance invariant. All
// violations are returned, not just the first.
func CheckDocument(doc *models.Document, accounts AccountChecker) []error {
	var errs []error

	active := doc.ActiveLines()
	if len(active) < MinActiveLines {
		errs = append(errs, &parsererror.ValidationError{
			Subject: doc.DocumentNumber,
			Reason:  fmt.Sprintf("document needs at least %d populated lines, has %d", MinActiveLines, len(active)),
		})
	}

	for i, line := range doc.Lines {
		if line.DebitAmount.IsNegative() || line.CreditAmount.IsNegative() {
			errs = append(errs, &parsererror.ValidationError{
				Subject: doc.DocumentNumber,
				Reason:  fmt.Sprintf("line %d has a negative amount", i+1),
			})
		}
		if line.DebitAmount.IsPositive() && line.CreditAmount.IsPositive() {
			errs = append(errs, &parsererror.ValidationError{
				Subject: doc.DocumentNumber,
				Reason:  fmt.Sprintf("line %d has both debit and credit amounts", i+1),
			})
		}
		if line.IsEmpty() {
			continue
		}
		if accounts != nil && !accounts.Exists(line.AccountCode) {
			errs = append(errs, &parsererror.AccountNotFoundError{Code: line.AccountCode})
		}
	}

	if res := Balance(doc.Lines); !res.IsBalanced {
		errs = append(errs, &parsererror.ValidationError{
			Subject:    doc.DocumentNumber,
			Reason:     "document is not balanced",
			Difference: res.Difference,
		})
	}

	return errs
}

// BatchReport keeps document-scoped findings apart from batch-wide ones.
// A failing document blocks only itself; the cross-document balance and
// the no-valid-lines check block the whole batch.
type BatchReport struct {
	DocumentErrors map[int][]error // keyed by document index
	BatchErrors    []error
}

// All flattens the report into one error list, document findings first.
func (r BatchReport) All() []error {
	var errs []error
	indices := make([]int, 0, len(r.DocumentErrors))
	for i := range r.DocumentErrors {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	for _, i := range indices {
		errs = append(errs, r.DocumentErrors[i]...)
	}
	return append(errs, r.BatchErrors...)
}

// EvaluateBatch validates a whole batch: every non-empty document must
// pass CheckDocument, the sum across all documents must balance, and at
// least one document must carry valid lines. Empty documents are skipped,
// not rejected; a batch of only empty documents is rejected.
func EvaluateBatch(batchID string, docs []*models.Document, accounts AccountChecker) BatchReport {
	report := BatchReport{DocumentErrors: map[int][]error{}}

	debit := decimal.Zero
	credit := decimal.Zero
	nonEmpty := 0
	for i, doc := range docs {
		if len(doc.ActiveLines()) == 0 {
			continue
		}
		nonEmpty++
		if errs := CheckDocument(doc, accounts); len(errs) > 0 {
			report.DocumentErrors[i] = errs
		}
		res := Balance(doc.Lines)
		debit = debit.Add(res.DebitTotal)
		credit = credit.Add(res.CreditTotal)
	}

	if nonEmpty == 0 {
		report.BatchErrors = []error{&parsererror.NoValidLinesError{Batch: batchID}}
		return report
	}

	if total := newResult(debit, credit); !total.IsBalanced {
		report.BatchErrors = append(report.BatchErrors, &parsererror.ValidationError{
			Subject:    batchID,
			Reason:     "batch is not balanced across documents",
			Difference: total.Difference,
		})
	}

	return report
}

// CheckBatch runs EvaluateBatch and flattens the result.
func CheckBatch(batchID string, docs []*models.Document, accounts AccountChecker) []error {
	return EvaluateBatch(batchID, docs, accounts).All()
}
