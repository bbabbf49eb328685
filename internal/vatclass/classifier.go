// Package vatclass maps raw VAT metadata onto a reporting period and a NAP
// operation code: direction-specific code tables, rate-based auto
// suggestion, the legacy single-digit code migration, and the vatDate
// window check. The reporting period comes from vatDate alone: a late
// invoice keeps its past document date but is declared in the period its
// vatDate names.
package vatclass

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"bgledger/kontir/internal/models"
	"bgledger/kontir/internal/parsererror"
)

// VatDateMaxPast and VatDateMaxFuture bound the accepted vatDate window
// relative to the current date.
const (
	VatDateMaxPastYears   = 5
	VatDateMaxFutureYears = 1
)

// Classification is the outcome of classifying one VAT operation.
type Classification struct {
	Period   models.VatPeriod
	Code     string
	Warnings []string
}

// Classify derives the reporting period and operation code for a VAT
// operation. A missing vatDate is a hard error (the period cannot be
// determined); a vatDate outside the window is rejected; legacy codes on
// records already carrying them produce a warning, not an error.
func Classify(op models.VATOperation, now time.Time) (Classification, error) {
	if op.VatDate == nil {
		return Classification{}, &parsererror.ConstraintError{
			Field:  "vatDate",
			Value:  "",
			Reason: "missing vat date on a VAT document",
		}
	}

	if err := CheckVatDate(*op.VatDate, now); err != nil {
		return Classification{}, err
	}

	code := op.SalesOperation
	if op.Direction == models.VatInput {
		code = op.PurchaseOperation
	}
	if code == "" {
		code = models.VatCodeNone
	}

	var warnings []string
	found, isLegacy := lookupCode(op.Direction, code)
	if !found {
		warnings = append(warnings, fmt.Sprintf("unknown operation code %q", code))
	}
	if isLegacy {
		if !op.IsEditMode {
			return Classification{}, &parsererror.ConstraintError{
				Field:  "operationCode",
				Value:  code,
				Reason: "legacy numeric codes are only accepted on historic records",
			}
		}
		warnings = append(warnings, fmt.Sprintf("legacy operation code %q kept on historic record", code))
	}

	return Classification{
		Period:   models.PeriodOf(*op.VatDate),
		Code:     code,
		Warnings: warnings,
	}, nil
}

// CheckVatDate enforces the [-5y, +1y] window around the current date.
func CheckVatDate(vatDate, now time.Time) error {
	earliest := now.AddDate(-VatDateMaxPastYears, 0, 0)
	latest := now.AddDate(VatDateMaxFutureYears, 0, 0)
	if vatDate.Before(earliest) || vatDate.After(latest) {
		return &parsererror.ConstraintError{
			Field:  "vatDate",
			Value:  vatDate.Format("2006-01-02"),
			Reason: fmt.Sprintf("vat date outside the allowed window (%s .. %s)",
				earliest.Format("2006-01-02"), latest.Format("2006-01-02")),
		}
	}
	return nil
}

func lookupCode(direction models.VatOperationDirection, code string) (found, legacy bool) {
	table := models.SalesOperations
	if direction == models.VatInput {
		table = models.PurchaseOperations
	}
	for _, op := range table {
		if op.Code == code {
			return true, op.Legacy
		}
	}
	return false, false
}

// SuggestCode proposes an operation code from the VAT rate. The suggestion
// is non-binding and only applies while the current code is still the
// sentinel: it never overwrites an explicit user choice.
func SuggestCode(direction models.VatOperationDirection, rate decimal.Decimal, currentCode string) string {
	if currentCode != models.VatCodeNone && currentCode != "" {
		return currentCode
	}

	switch {
	case rate.Equal(decimal.NewFromInt(20)):
		if direction == models.VatInput {
			return "пок10"
		}
		return "про11"
	case rate.Equal(decimal.NewFromInt(9)):
		if direction == models.VatOutput {
			return "про17"
		}
	case rate.IsZero():
		if direction == models.VatOutput {
			return "про19"
		}
	}
	return currentCode
}

// SelectableOperations returns the codes offered for selection. Legacy
// codes are filtered out of new records; in edit mode only the legacy code
// the record already stores remains selectable.
func SelectableOperations(direction models.VatOperationDirection, isEditMode bool, storedCode string) []models.OperationCode {
	table := models.SalesOperations
	if direction == models.VatInput {
		table = models.PurchaseOperations
	}

	var selectable []models.OperationCode
	for _, op := range table {
		if op.Legacy {
			if !isEditMode || op.Code != storedCode {
				continue
			}
		}
		selectable = append(selectable, op)
	}
	return selectable
}
