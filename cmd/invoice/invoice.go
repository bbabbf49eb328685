// Package invoice handles AI invoice extraction commands
package invoice

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"bgledger/kontir/cmd/common"
	"bgledger/kontir/cmd/root"
	"bgledger/kontir/internal/fileutils"
	"bgledger/kontir/internal/invoicescan"
	"bgledger/kontir/internal/ledger"
	"bgledger/kontir/internal/models"
	"bgledger/kontir/internal/vatclass"

	"github.com/spf13/cobra"
)

var (
	direction string
	remote    bool
	stage     bool
)

// Cmd represents the invoice command
var Cmd = &cobra.Command{
	Use:   "invoice",
	Short: "Extract journal entries from scanned invoices using Gemini model",
	Long: `Extract journal entries from scanned invoices (PDF or image) using
Gemini model and reconcile them into balanced journal documents.

Extractions below the confidence threshold, or with amounts that do not
add up, are flagged for manual review but still produced. With --remote
the extraction runs on the accounting backend instead of locally.`,
	Run: invoiceFunc,
}

func init() {
	Cmd.Flags().StringVarP(&direction, "direction", "d", "purchase", "Invoice direction: purchase or sale")
	Cmd.Flags().BoolVar(&remote, "remote", false, "Run the extraction on the accounting backend")
	Cmd.Flags().BoolVarP(&stage, "stage", "s", false, "Stage the parsed import to the accounting backend")
}

func invoiceFunc(cmd *cobra.Command, args []string) {
	root.Log.Info("Invoice extraction command called")
	root.Log.Infof("Input invoice file: %s", root.SharedFlags.Input)

	if root.SharedFlags.Input == "" {
		root.Log.Fatal("Input file must be specified")
	}

	kind := vatclass.DocumentKind(direction)
	if kind != vatclass.KindPurchase && kind != vatclass.KindSale {
		root.Log.Fatalf("Invalid direction %q: must be purchase or sale", direction)
	}

	logger := root.GetLogrusAdapter()

	timeout := time.Duration(root.Cfg.AI.TimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var result *models.ImportResult
	if remote {
		result = extractRemote(ctx, kind)
	} else {
		result = extractLocal(ctx, kind)
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

	root.Log.Info("Invoice extraction completed successfully!")
}

func extractLocal(ctx context.Context, kind vatclass.DocumentKind) *models.ImportResult {
	if !root.Cfg.AI.Enabled {
		root.Log.Fatal("AI extraction is disabled: set ai.enabled and GEMINI_API_KEY, or use --remote")
	}

	data, err := os.ReadFile(root.SharedFlags.Input)
	if err != nil {
		root.Log.Fatalf("Error reading invoice file: %v", err)
	}

	client, err := invoicescan.NewGeminiClient(ctx, root.Cfg.AI.APIKey, root.Cfg.AI.Model)
	if err != nil {
		root.Log.Fatalf("Error creating Gemini client: %v", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			root.Log.Warnf("Failed to close Gemini client: %v", cerr)
		}
	}()

	scan, err := invoicescan.Scan(ctx, client, invoicescan.ScanSessionConfig{Direction: kind}, invoicescan.ExtractRequest{
		Data:     data,
		MimeType: fileutils.MimeTypeByExtension(root.SharedFlags.Input),
		FileName: filepath.Base(root.SharedFlags.Input),
	})
	if err != nil {
		root.Log.Fatalf("Error extracting invoice: %v", err)
	}

	root.Log.Infof("Extraction confidence: %.2f", scan.Confidence)
	if scan.RequiresManualReview {
		root.Log.Warn("Extraction flagged for manual review:")
		for _, reason := range scan.ReviewReasons {
			root.Log.Warnf("  - %s", reason)
		}
	}
	return scan.Result
}

func extractRemote(ctx context.Context, kind vatclass.DocumentKind) *models.ImportResult {
	svc, err := root.LedgerService()
	if err != nil {
		root.Log.Fatalf("Error connecting to accounting backend: %v", err)
	}

	encoded, err := fileutils.ReadFileBase64(root.SharedFlags.Input)
	if err != nil {
		root.Log.Fatalf("Error reading invoice file: %v", err)
	}

	result, err := svc.ProcessInvoiceAI(ctx, ledger.InvoiceAIRequest{
		FileName:   filepath.Base(root.SharedFlags.Input),
		MimeType:   fileutils.MimeTypeByExtension(root.SharedFlags.Input),
		FileBase64: encoded,
		Direction:  string(kind),
	})
	if err != nil {
		root.Log.Fatalf("Error extracting invoice on backend: %v", err)
	}
	return result
}
