package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bgledger/kontir/cmd/accounts"
	"bgledger/kontir/cmd/bank"
	"bgledger/kontir/cmd/batch"
	"bgledger/kontir/cmd/controlisy"
	"bgledger/kontir/cmd/imports"
	"bgledger/kontir/cmd/invoice"
	"bgledger/kontir/cmd/journal"
	"bgledger/kontir/cmd/root"
	"bgledger/kontir/cmd/spreadsheet"
	"bgledger/kontir/cmd/vat"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func init() {
	// 1. Load environment variables silently first (no logging yet)
	loadEnvSilently()

	// 2. Configure global log level directly - this affects ALL new loggers
	configureLogLevelDirectly()

	// 3. Now that logging is properly configured, initialize root command
	root.Init()

	// 4. Add all subcommands
	root.Cmd.AddCommand(controlisy.Cmd)
	root.Cmd.AddCommand(bank.Cmd)
	root.Cmd.AddCommand(batch.Cmd)
	root.Cmd.AddCommand(spreadsheet.Cmd)
	root.Cmd.AddCommand(invoice.Cmd)
	root.Cmd.AddCommand(journal.Cmd)
	root.Cmd.AddCommand(vat.Cmd)
	root.Cmd.AddCommand(accounts.Cmd)
	root.Cmd.AddCommand(imports.Cmd)
}

// loadEnvSilently loads environment variables without logging anything
func loadEnvSilently() {
	// Try to find .env file in current directory
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		// Try to find .env in parent directory (project root)
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}

	// Load .env file silently without logging
	_ = godotenv.Load(envFile)
}

// configureLogLevelDirectly sets the global log level for all logrus
// instances before any logging happens
func configureLogLevelDirectly() {
	logLevelStr := os.Getenv("LOG_LEVEL")
	if logLevelStr == "" {
		logLevelStr = "info" // Default log level
	}

	logLevel, err := logrus.ParseLevel(strings.ToLower(logLevelStr))
	if err != nil {
		// Don't log here, just use default info level if we can't parse
		logLevel = logrus.InfoLevel
	}

	logrus.SetLevel(logLevel)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
