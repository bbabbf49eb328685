// Package spreadsheet handles spreadsheet import processing commands
package spreadsheet

import (
	"context"

	"bgledger/kontir/cmd/common"
	"bgledger/kontir/cmd/root"
	"bgledger/kontir/internal/spreadsheetparser"

	"github.com/spf13/cobra"
)

var stage bool

// Cmd represents the spreadsheet command
var Cmd = &cobra.Command{
	Use:   "spreadsheet",
	Short: "Process spreadsheet journal imports",
	Long: `Process spreadsheet journal imports into balanced journal documents.

Rows sharing a document number are grouped into one document, in order of
first appearance. Each document is checked for balance and unbalanced
documents are reported as warnings.`,
	Run: spreadsheetFunc,
}

func init() {
	Cmd.Flags().BoolVarP(&stage, "stage", "s", false, "Stage the parsed import to the accounting backend")
}

func spreadsheetFunc(cmd *cobra.Command, args []string) {
	root.Log.Info("Spreadsheet process command called")
	root.Log.Infof("Input CSV file: %s", root.SharedFlags.Input)

	if root.SharedFlags.Input == "" {
		root.Log.Fatal("Input file must be specified")
	}

	logger := root.GetLogrusAdapter()

	if root.SharedFlags.Validate {
		ok, err := spreadsheetparser.ValidateFormat(root.SharedFlags.Input)
		if err != nil {
			root.Log.Fatalf("Error validating file: %v", err)
		}
		if !ok {
			root.Log.Fatal("File is not a spreadsheet journal import")
		}
		root.Log.Info("File format is valid")
	}

	result, err := spreadsheetparser.ParseFile(root.SharedFlags.Input)
	if err != nil {
		root.Log.Fatalf("Error parsing spreadsheet: %v", err)
	}

	common.PrintImportSummary(result, logger)

	if root.SharedFlags.Output != "" {
		if err := common.WriteReviewCSV(result, root.SharedFlags.Output); err != nil {
			root.Log.Fatalf("Error writing review CSV: %v", err)
		}
		root.Log.Infof("Review CSV written to %s", root.SharedFlags.Output)
	}

	if stage {
		svc, err := root.LedgerService()
		if err != nil {
			root.Log.Fatalf("Error connecting to accounting backend: %v", err)
		}
		if err := common.StageImport(context.Background(), svc, result, logger); err != nil {
			root.Log.Fatalf("Error staging import: %v", err)
		}
	}

	root.Log.Info("Spreadsheet processing completed successfully!")
}
