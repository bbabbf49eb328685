// Package common contains shared functionality for command handlers:
// staging parsed imports, writing review CSVs, and the sequential batch
// submission engine.
package common

import (
	"context"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"bgledger/kontir/internal/balance"
	"bgledger/kontir/internal/docbatch"
	"bgledger/kontir/internal/ledger"
	"bgledger/kontir/internal/logging"
	"bgledger/kontir/internal/models"
)

// PrintImportSummary reports a parsed file on the logger.
func PrintImportSummary(result *models.ImportResult, log logging.Logger) {
	balanced := 0
	for _, doc := range result.Documents {
		if doc.IsBalanced {
			balanced++
		}
	}

	log.Info("Import reconciled",
		logging.Field{Key: logging.FieldFile, Value: result.FileName},
		logging.Field{Key: "kind", Value: result.DocumentKind},
		logging.Field{Key: "documents", Value: len(result.Documents)},
		logging.Field{Key: "balanced", Value: balanced},
		logging.Field{Key: "contractors", Value: len(result.Contractors)})

	for _, warning := range result.Warnings {
		log.Warn(warning, logging.Field{Key: logging.FieldFile, Value: result.FileName})
	}
	for _, id := range result.ContractorConflicts {
		log.Warn("Contractor records disagree, last occurrence kept",
			logging.Field{Key: logging.FieldCounterpart, Value: id})
	}
}

// reviewRow is the review CSV shape: one row per entry with its document
// context repeated.
type reviewRow struct {
	DocumentNumber string `csv:"DocumentNumber"`
	DocumentDate   string `csv:"DocumentDate"`
	AccountCode    string `csv:"AccountCode"`
	AccountName    string `csv:"AccountName"`
	Debit          string `csv:"Debit"`
	Credit         string `csv:"Credit"`
	Description    string `csv:"Description"`
	Contractor     string `csv:"Contractor"`
	Balanced       string `csv:"Balanced"`
}

// WriteReviewCSV flattens a parsed import into a CSV for manual review.
func WriteReviewCSV(result *models.ImportResult, outputFile string) error {
	var rows []reviewRow
	for _, doc := range result.Documents {
		for _, entry := range doc.Entries {
			rows = append(rows, reviewRow{
				DocumentNumber: doc.DocumentNumber,
				DocumentDate:   doc.DocumentDate.Format("2006-01-02"),
				AccountCode:    entry.AccountCode,
				AccountName:    entry.AccountName,
				Debit:          entry.DebitAmount.StringFixed(2),
				Credit:         entry.CreditAmount.StringFixed(2),
				Description:    entry.Description,
				Contractor:     entry.ContractorName,
				Balanced:       fmt.Sprintf("%t", doc.IsBalanced),
			})
		}
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	return gocsv.MarshalFile(&rows, f)
}

// DocumentFromImport converts one reconciled import document into a journal
// document ready for batching. The number is normalized for the document
// type on batch creation, not here.
func DocumentFromImport(imp models.ImportDocument, docType models.DocumentType) models.Document {
	doc := models.Document{
		DocumentNumber: imp.DocumentNumber,
		DocumentDate:   imp.DocumentDate,
		AccountingDate: imp.AccountingDate,
		VatDate:        imp.VatDate,
		Description:    imp.Description,
		DocumentType:   docType,
		State:          models.StateDraft,
	}
	if doc.AccountingDate.IsZero() {
		doc.AccountingDate = doc.DocumentDate
	}
	for _, entry := range imp.Entries {
		doc.Lines = append(doc.Lines, models.JournalLine{
			AccountCode:   entry.AccountCode,
			DebitAmount:   entry.DebitAmount,
			CreditAmount:  entry.CreditAmount,
			Description:   entry.Description,
			Quantity:      entry.Quantity,
			UnitOfMeasure: entry.Unit,
			CurrencyCode:  entry.Currency,
		})
	}
	return doc
}

// StageImport pushes a parsed import to the backend.
func StageImport(ctx context.Context, svc ledger.Service, result *models.ImportResult, log logging.Logger) error {
	summary, err := svc.StageImport(ctx, result)
	if err != nil {
		return err
	}
	log.Info("Import staged",
		logging.Field{Key: logging.FieldImportID, Value: summary.ImportID},
		logging.Field{Key: logging.FieldStatus, Value: summary.Status},
		logging.Field{Key: "documents", Value: summary.DocumentsCount})
	return nil
}

// SubmitOutcome aggregates a batch submission run.
type SubmitOutcome struct {
	Succeeded int
	Failed    int
	Skipped   int
	Errors    []error
}

// SubmitBatch validates a document batch and submits each document in
// order. Empty documents are skipped, a document that fails validation or
// submission is recorded and its siblings still go out; there is no
// mid-batch cancellation.
func SubmitBatch(ctx context.Context, svc ledger.Service, b *docbatch.Batch, accounts balance.AccountChecker, log logging.Logger) SubmitOutcome {
	outcome := SubmitOutcome{}

	if errs := b.Validate(accounts); len(errs) > 0 {
		for _, err := range errs {
			log.WithError(err).Warn("Batch validation issue")
		}
		outcome.Errors = append(outcome.Errors, errs...)
	}

	for _, doc := range b.Documents {
		if len(doc.ActiveLines()) == 0 {
			outcome.Skipped++
			continue
		}
		if doc.State != models.StateValidated {
			outcome.Failed++
			continue
		}

		if err := docbatch.MarkSubmitted(doc); err != nil {
			outcome.Failed++
			outcome.Errors = append(outcome.Errors, err)
			continue
		}

		created, err := svc.CreateJournalEntry(ctx, doc)
		if err != nil {
			docbatch.MarkFailed(doc, err)
			outcome.Failed++
			outcome.Errors = append(outcome.Errors, err)
			log.WithError(err).Error("Document submission failed",
				logging.Field{Key: logging.FieldDocument, Value: doc.DocumentNumber})
			continue
		}
		if created != nil && created.ID != 0 {
			doc.ID = created.ID
		}

		if err := docbatch.MarkPosted(doc); err != nil {
			outcome.Errors = append(outcome.Errors, err)
		}
		outcome.Succeeded++
		log.Info("Document posted",
			logging.Field{Key: logging.FieldDocument, Value: doc.DocumentNumber})
	}

	log.Info("Batch submission finished",
		logging.Field{Key: "succeeded", Value: outcome.Succeeded},
		logging.Field{Key: "failed", Value: outcome.Failed},
		logging.Field{Key: "skipped", Value: outcome.Skipped})
	return outcome
}
