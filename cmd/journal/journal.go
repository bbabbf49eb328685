// Package journal handles journal entry composition commands
package journal

import (
	"context"

	"bgledger/kontir/cmd/common"
	"bgledger/kontir/cmd/root"
	"bgledger/kontir/internal/accounttree"
	"bgledger/kontir/internal/docbatch"
	"bgledger/kontir/internal/models"
	"bgledger/kontir/internal/spreadsheetparser"

	"github.com/spf13/cobra"
)

var (
	docTypeShort string
	submit       bool
)

// Cmd represents the journal command
var Cmd = &cobra.Command{
	Use:   "journal",
	Short: "Compose and submit journal entry batches",
	Long: `Compose journal entry batches from a spreadsheet import, validate
them against the chart of accounts and optionally submit them.

Each parsed document becomes its own batch. Tax document numbers are
normalized to ten digits; documents without a number get a generated one.
With --submit every validated document is posted to the backend; a
document that fails does not stop its siblings.`,
	Run: journalFunc,
}

func init() {
	Cmd.Flags().StringVarP(&docTypeShort, "doc-type", "t", "МО", "Document type short code (ФА, ДИ, КИ, МД, ПР, ПКО, РКО, БИ, МО)")
	Cmd.Flags().BoolVar(&submit, "submit", false, "Submit validated documents to the accounting backend")
}

func journalFunc(cmd *cobra.Command, args []string) {
	root.Log.Info("Journal compose command called")
	root.Log.Infof("Input CSV file: %s", root.SharedFlags.Input)

	if root.SharedFlags.Input == "" {
		root.Log.Fatal("Input file must be specified")
	}

	docType, ok := documentTypeByShortCode(docTypeShort)
	if !ok {
		root.Log.Fatalf("Unknown document type short code %q", docTypeShort)
	}

	result, err := spreadsheetparser.ParseFile(root.SharedFlags.Input)
	if err != nil {
		root.Log.Fatalf("Error parsing spreadsheet: %v", err)
	}

	svc, err := root.LedgerService()
	if err != nil {
		root.Log.Fatalf("Error connecting to accounting backend: %v", err)
	}
	accounts, err := svc.GetAccountHierarchy(context.Background())
	if err != nil {
		root.Log.Fatalf("Error fetching chart of accounts: %v", err)
	}
	idx := accounttree.BuildTree(accounts)

	logger := root.GetLogrusAdapter()
	valid := 0
	for _, imp := range result.Documents {
		doc := common.DocumentFromImport(imp, docType)
		if doc.DocumentNumber == "" {
			doc.DocumentNumber = docbatch.GenerateNumber(docType)
		}
		batch := docbatch.New(doc)

		if errs := batch.Validate(idx); len(errs) > 0 {
			for _, verr := range errs {
				root.Log.Errorf("Document %s: %v", batch.Main().DocumentNumber, verr)
			}
			continue
		}
		valid++

		if submit {
			outcome := common.SubmitBatch(context.Background(), svc, batch, idx, logger)
			if outcome.Failed > 0 {
				root.Log.Errorf("Document %s failed to submit", batch.Main().DocumentNumber)
			}
		}
	}

	root.Log.Infof("%d of %d documents validated", valid, len(result.Documents))
	root.Log.Info("Journal composition completed successfully!")
}

func documentTypeByShortCode(short string) (models.DocumentType, bool) {
	for _, dt := range models.AllDocumentTypes {
		if dt.ShortCode == short {
			return dt, true
		}
	}
	return models.DocumentType{}, false
}
