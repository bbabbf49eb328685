// Package controlisy handles Controlisy XML export processing commands
package controlisy

import (
	"context"

	"bgledger/kontir/cmd/common"
	"bgledger/kontir/cmd/root"
	"bgledger/kontir/internal/controlisyparser"
	"bgledger/kontir/internal/store"

	"github.com/spf13/cobra"
)

var stage bool

// Cmd represents the controlisy command
var Cmd = &cobra.Command{
	Use:   "controlisy",
	Short: "Process Controlisy XML exports",
	Long: `Process Controlisy XML exports into balanced journal documents.

The file's register kind (purchase or sale) is detected from the file name
and content. Contractors are deduplicated, VAT operations are remapped to
the current nomenclature, and every document is checked for balance.`,
	Run: controlisyFunc,
}

func init() {
	Cmd.Flags().BoolVarP(&stage, "stage", "s", false, "Stage the parsed import to the accounting backend")
}

func controlisyFunc(cmd *cobra.Command, args []string) {
	root.Log.Info("Controlisy process command called")
	root.Log.Infof("Input XML file: %s", root.SharedFlags.Input)

	if root.SharedFlags.Input == "" {
		root.Log.Fatal("Input file must be specified")
	}

	logger := root.GetLogrusAdapter()

	if root.SharedFlags.Validate {
		ok, err := controlisyparser.ValidateFormat(root.SharedFlags.Input)
		if err != nil {
			root.Log.Fatalf("Error validating file: %v", err)
		}
		if !ok {
			root.Log.Fatal("File is not a Controlisy export")
		}
		root.Log.Info("File format is valid")
	}

	result, err := controlisyparser.ParseFile(root.SharedFlags.Input)
	if err != nil {
		root.Log.Fatalf("Error parsing Controlisy file: %v", err)
	}

	mappings, err := root.MappingStore().LoadAccountMappings()
	if err != nil {
		root.Log.Fatalf("Error loading account mappings: %v", err)
	}
	store.ApplyAccountMappings(result, mappings)

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

	root.Log.Info("Controlisy processing completed successfully!")
}
