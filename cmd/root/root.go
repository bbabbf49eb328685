// Package root contains the root command for the application
package root

import (
	"bgledger/kontir/internal/bankparser"
	"bgledger/kontir/internal/config"
	"bgledger/kontir/internal/controlisyparser"
	"bgledger/kontir/internal/invoicescan"
	"bgledger/kontir/internal/ledger"
	"bgledger/kontir/internal/logging"
	"bgledger/kontir/internal/spreadsheetparser"
	"bgledger/kontir/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input    string
	Output   string
	Validate bool
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cfg holds the loaded application configuration. It is populated by
	// PersistentPreRun before any subcommand runs.
	Cfg = &config.Config{}

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "kontir",
		Short: "A CLI tool to turn accounting documents into balanced journal entries.",
		Long: `kontir converts Controlisy XML exports, bank statement CSVs, spreadsheet
imports and scanned invoices into double-entry journal documents, checks
them for balance and VAT consistency, and stages or posts them to the
accounting backend.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to kontir!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg, err := config.InitializeConfig()
			if err != nil {
				Log.Fatalf("Failed to load configuration: %v", err)
			}
			Cfg = cfg
			Log = config.ConfigureLoggingFromConfig(cfg)

			// Set the configured logger for all parsers
			adapter := logging.NewLogrusAdapterFromLogger(Log)
			controlisyparser.SetLogger(adapter)
			bankparser.SetLogger(adapter)
			spreadsheetparser.SetLogger(adapter)
			invoicescan.SetLogger(adapter)
			store.SetLogger(adapter)
		},
	}

	// Common flags accessible to all commands
	SharedFlags = CommonFlags{}
)

// GetLogrusAdapter wraps the shared logrus instance in the logging interface
// used throughout the internal packages.
func GetLogrusAdapter() logging.Logger {
	return logging.NewLogrusAdapterFromLogger(Log)
}

// LedgerService builds an HTTP client for the configured accounting backend.
func LedgerService() (ledger.Service, error) {
	return ledger.NewClient(Cfg.Ledger, GetLogrusAdapter())
}

// MappingStore returns the local mapping store over the configured files.
func MappingStore() *store.MappingStore {
	return store.NewMappingStore(Cfg.Mapping.AccountsFile, Cfg.Mapping.CounterpartsFile)
}

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file")
	Cmd.PersistentFlags().BoolVarP(&SharedFlags.Validate, "validate", "v", false, "Validate file format before conversion")
}
