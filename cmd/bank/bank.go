// Package bank handles bank statement CSV processing commands
package bank

import (
	"context"

	"bgledger/kontir/cmd/common"
	"bgledger/kontir/cmd/root"
	"bgledger/kontir/internal/bankparser"

	"github.com/spf13/cobra"
)

var (
	bankAccount       string
	settlementAccount string
	stage             bool
)

// Cmd represents the bank command
var Cmd = &cobra.Command{
	Use:   "bank",
	Short: "Process bank statement CSV files",
	Long: `Process bank statement CSV files into balanced journal documents.

Every statement row becomes a two-line document posting the movement
against the bank account and the settlement account. The account codes
come from configuration and can be overridden per run.`,
	Run: bankFunc,
}

func init() {
	Cmd.Flags().StringVar(&bankAccount, "bank-account", "", "Account code for the bank account (default from config)")
	Cmd.Flags().StringVar(&settlementAccount, "settlement-account", "", "Account code movements settle against (default from config)")
	Cmd.Flags().BoolVarP(&stage, "stage", "s", false, "Stage the parsed import to the accounting backend")
}

func bankFunc(cmd *cobra.Command, args []string) {
	root.Log.Info("Bank statement process command called")
	root.Log.Infof("Input CSV file: %s", root.SharedFlags.Input)

	if root.SharedFlags.Input == "" {
		root.Log.Fatal("Input file must be specified")
	}

	cfg := bankparser.Config{
		BankAccountCode:       bankAccount,
		SettlementAccountCode: settlementAccount,
	}
	if cfg.BankAccountCode == "" {
		cfg.BankAccountCode = root.Cfg.Bank.BankAccountCode
	}
	if cfg.SettlementAccountCode == "" {
		cfg.SettlementAccountCode = root.Cfg.Bank.SettlementAccountCode
	}

	logger := root.GetLogrusAdapter()

	if root.SharedFlags.Validate {
		ok, err := bankparser.ValidateFormat(root.SharedFlags.Input)
		if err != nil {
			root.Log.Fatalf("Error validating file: %v", err)
		}
		if !ok {
			root.Log.Fatal("File is not a bank statement CSV")
		}
		root.Log.Info("File format is valid")
	}

	result, err := bankparser.ParseFile(root.SharedFlags.Input, cfg)
	if err != nil {
		root.Log.Fatalf("Error parsing bank statement: %v", err)
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

	root.Log.Info("Bank statement processing completed successfully!")
}
