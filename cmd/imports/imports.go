// Package imports handles staged import management commands
package imports

import (
	"context"
	"fmt"

	"bgledger/kontir/cmd/root"
	"bgledger/kontir/internal/ledger"

	"github.com/spf13/cobra"
)

// Cmd represents the imports command
var Cmd = &cobra.Command{
	Use:   "imports",
	Short: "Manage staged imports on the accounting backend",
	Long: `Manage staged imports on the accounting backend: list what is staged,
process a staged import into journal entries, or delete one.`,
	Run: listFunc,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List staged imports",
	Run:   listFunc,
}

var processCmd = &cobra.Command{
	Use:   "process <import-id>",
	Short: "Turn a staged import into journal entries",
	Args:  cobra.ExactArgs(1),
	Run:   processFunc,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <import-id>",
	Short: "Delete a staged import",
	Args:  cobra.ExactArgs(1),
	Run:   deleteFunc,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(processCmd)
	Cmd.AddCommand(deleteCmd)
}

func service() ledger.Service {
	svc, err := root.LedgerService()
	if err != nil {
		root.Log.Fatalf("Error connecting to accounting backend: %v", err)
	}
	return svc
}

func listFunc(cmd *cobra.Command, args []string) {
	root.Log.Info("Imports list command called")

	imports, err := service().ListImports(context.Background())
	if err != nil {
		root.Log.Fatalf("Error listing imports: %v", err)
	}

	if len(imports) == 0 {
		root.Log.Info("No staged imports")
		return
	}
	for _, imp := range imports {
		fmt.Printf("%s  %-12s  %-10s  %3d documents  %s\n",
			imp.ImportID, imp.Source, imp.Status, imp.DocumentsCount,
			imp.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func processFunc(cmd *cobra.Command, args []string) {
	importID := args[0]
	root.Log.Infof("Processing staged import %s", importID)

	if err := service().ProcessImport(context.Background(), importID); err != nil {
		root.Log.Fatalf("Error processing import: %v", err)
	}
	root.Log.Info("Import processed successfully!")
}

func deleteFunc(cmd *cobra.Command, args []string) {
	importID := args[0]
	root.Log.Infof("Deleting staged import %s", importID)

	if err := service().DeleteImport(context.Background(), importID); err != nil {
		root.Log.Fatalf("Error deleting import: %v", err)
	}
	root.Log.Info("Import deleted successfully!")
}
