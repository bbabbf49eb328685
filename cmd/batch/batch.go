// Package batch handles batch processing of import files from a directory
package batch

import (
	"context"
	"path/filepath"
	"strings"

	"bgledger/kontir/cmd/common"
	"bgledger/kontir/cmd/root"
	"bgledger/kontir/internal/bankparser"
	"bgledger/kontir/internal/controlisyparser"
	"bgledger/kontir/internal/fileutils"
	"bgledger/kontir/internal/models"
	"bgledger/kontir/internal/reconcile"
	"bgledger/kontir/internal/spreadsheetparser"
	"bgledger/kontir/internal/store"

	"github.com/spf13/cobra"
)

var stage bool

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch process import files from a directory",
	Long: `Batch process every import file in a directory: Controlisy XML
exports, bank statement CSVs and spreadsheet imports in one run. Each
file is matched to its parser and processed independently; a file that
fails to parse is skipped and the run continues.

With -o, a review CSV is written per file into the output directory.

Example:
  kontir batch -i input_dir/ -o output_dir/`,
	Run: batchFunc,
}

func init() {
	Cmd.Flags().BoolVarP(&stage, "stage", "s", false, "Stage every parsed import to the accounting backend")
}

func batchFunc(cmd *cobra.Command, args []string) {
	root.Log.Info("Batch command called")

	inputDir := root.SharedFlags.Input
	outputDir := root.SharedFlags.Output
	if inputDir == "" {
		root.Log.Fatal("Input directory must be specified")
	}
	if !fileutils.DirectoryExists(inputDir) {
		root.Log.Fatalf("Input directory does not exist: %s", inputDir)
	}
	if outputDir != "" {
		if err := fileutils.EnsureDirectoryExists(outputDir); err != nil {
			root.Log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	files := collectFiles(inputDir)
	if len(files) == 0 {
		root.Log.Warn("No supported files found in input directory")
		return
	}
	root.Log.Infof("Found %d files for processing", len(files))

	logger := root.GetLogrusAdapter()
	engine := reconcile.NewEngine(logger)
	summary := engine.RunMixed(files, pickParser)

	mappings, err := root.MappingStore().LoadAccountMappings()
	if err != nil {
		root.Log.Fatalf("Error loading account mappings: %v", err)
	}

	for _, outcome := range summary.Outcomes {
		if outcome.Err != nil {
			continue
		}
		store.ApplyAccountMappings(outcome.Result, mappings)
		common.PrintImportSummary(outcome.Result, logger)

		if outputDir != "" {
			outFile := filepath.Join(outputDir, reviewFileName(outcome.File))
			if err := common.WriteReviewCSV(outcome.Result, outFile); err != nil {
				root.Log.Errorf("Error writing review CSV for %s: %v", outcome.File, err)
			}
		}
	}

	if stage {
		svc, err := root.LedgerService()
		if err != nil {
			root.Log.Fatalf("Error connecting to accounting backend: %v", err)
		}
		for _, outcome := range summary.Outcomes {
			if outcome.Err != nil {
				continue
			}
			if err := common.StageImport(context.Background(), svc, outcome.Result, logger); err != nil {
				root.Log.Errorf("Error staging %s: %v", outcome.File, err)
			}
		}
	}

	root.Log.Infof("Batch processing completed: %d staged, %d failed, %d documents.",
		summary.Staged, summary.Failed, summary.Documents)
}

func collectFiles(dir string) []string {
	var files []string
	for _, ext := range []string{"xml", "csv"} {
		found, err := fileutils.ListFilesWithExtension(dir, ext)
		if err != nil {
			root.Log.Fatalf("Error reading input directory: %v", err)
		}
		files = append(files, found...)
	}
	return files
}

// pickParser matches a file to its parser: XML files go to the Controlisy
// parser, CSV files to the bank or spreadsheet parser depending on their
// header.
func pickParser(path string) reconcile.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return controlisyparser.ParseFile
	case ".csv":
		if ok, _ := bankparser.ValidateFormat(path); ok {
			cfg := bankparser.Config{
				BankAccountCode:       root.Cfg.Bank.BankAccountCode,
				SettlementAccountCode: root.Cfg.Bank.SettlementAccountCode,
			}
			return func(p string) (*models.ImportResult, error) {
				return bankparser.ParseFile(p, cfg)
			}
		}
		if ok, _ := spreadsheetparser.ValidateFormat(path); ok {
			return spreadsheetparser.ParseFile
		}
		return nil
	default:
		return nil
	}
}

func reviewFileName(inputFile string) string {
	base := filepath.Base(inputFile)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_review.csv"
}
