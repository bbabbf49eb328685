// Package accounts handles chart-of-accounts commands
package accounts

import (
	"context"
	"fmt"
	"strings"

	"bgledger/kontir/cmd/root"
	"bgledger/kontir/internal/accounttree"

	"github.com/spf13/cobra"
)

var checkCodes []string

// Cmd represents the accounts command
var Cmd = &cobra.Command{
	Use:   "accounts",
	Short: "Inspect the chart of accounts",
	Long: `Inspect the chart of accounts held by the accounting backend: print
the account hierarchy or check that specific account codes exist.`,
	Run: treeFunc,
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the account hierarchy",
	Run:   treeFunc,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that account codes exist in the chart",
	Run:   checkFunc,
}

func init() {
	checkCmd.Flags().StringSliceVarP(&checkCodes, "codes", "c", nil, "Account codes to check, comma separated")
	_ = checkCmd.MarkFlagRequired("codes")

	Cmd.AddCommand(treeCmd)
	Cmd.AddCommand(checkCmd)
}

func loadIndex() *accounttree.Index {
	svc, err := root.LedgerService()
	if err != nil {
		root.Log.Fatalf("Error connecting to accounting backend: %v", err)
	}

	accounts, err := svc.GetAccountHierarchy(context.Background())
	if err != nil {
		root.Log.Fatalf("Error fetching chart of accounts: %v", err)
	}
	root.Log.Infof("Loaded %d accounts", len(accounts))

	return accounttree.BuildTree(accounts)
}

func treeFunc(cmd *cobra.Command, args []string) {
	root.Log.Info("Account tree command called")

	idx := loadIndex()
	for _, node := range idx.Roots() {
		printNode(node, 0)
	}
}

func printNode(node *accounttree.Node, depth int) {
	marker := ""
	if node.Account.IsAnalytical {
		marker = " (аналитична)"
	}
	fmt.Printf("%s%s  %s%s\n", strings.Repeat("  ", depth), node.Account.Code, node.Account.Name, marker)
	for _, child := range node.Children {
		printNode(child, depth+1)
	}
}

func checkFunc(cmd *cobra.Command, args []string) {
	root.Log.Info("Account check command called")

	idx := loadIndex()
	missing := idx.MissingCodes(checkCodes)
	if len(missing) == 0 {
		root.Log.Infof("All %d account codes exist", len(checkCodes))
		return
	}
	for _, code := range missing {
		root.Log.Errorf("Account code not found: %s", code)
	}
	root.Log.Fatalf("%d of %d account codes are missing", len(missing), len(checkCodes))
}
