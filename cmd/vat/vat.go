// Package vat handles VAT classification commands
package vat

import (
	"time"

	"bgledger/kontir/cmd/root"
	"bgledger/kontir/internal/models"
	"bgledger/kontir/internal/vatclass"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	direction string
	code      string
	rate      string
	base      string
	vatDate   string
	editMode  bool
)

// Cmd represents the vat command
var Cmd = &cobra.Command{
	Use:   "vat",
	Short: "VAT declaration tools",
	Long:  `VAT declaration tools: classification of operations for the purchase and sales journals.`,
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a transaction for the VAT declaration",
	Long: `Classify a transaction for the VAT declaration: derive the reporting
period from the VAT date, check the operation code against the current
nomenclature and suggest a code from the rate when none is chosen yet.`,
	Run: classifyFunc,
}

func init() {
	Cmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVarP(&direction, "direction", "d", "purchase", "Journal direction: purchase or sale")
	classifyCmd.Flags().StringVarP(&code, "code", "c", models.VatCodeNone, "Operation code (0 means not chosen yet)")
	classifyCmd.Flags().StringVarP(&rate, "rate", "r", "20", "VAT rate in percent: 20, 9 or 0")
	classifyCmd.Flags().StringVarP(&base, "base", "b", "0", "Tax base amount")
	classifyCmd.Flags().StringVarP(&vatDate, "vat-date", "t", "", "VAT date (YYYY-MM-DD), required")
	classifyCmd.Flags().BoolVarP(&editMode, "edit", "e", false, "Edit mode: accept legacy codes on historic records")
	_ = classifyCmd.MarkFlagRequired("vat-date")
}

func classifyFunc(cmd *cobra.Command, args []string) {
	root.Log.Info("VAT classify command called")

	op := models.VATOperation{
		DocumentTypeCode: "01",
		IsEditMode:       editMode,
	}

	switch direction {
	case "purchase":
		op.Direction = models.VatInput
		op.PurchaseOperation = code
	case "sale":
		op.Direction = models.VatOutput
		op.SalesOperation = code
	default:
		root.Log.Fatalf("Invalid direction %q: must be purchase or sale", direction)
	}

	vatRate, err := decimal.NewFromString(rate)
	if err != nil {
		root.Log.Fatalf("Invalid rate %q: %v", rate, err)
	}
	op.VatRate = vatRate

	baseAmount, err := decimal.NewFromString(base)
	if err != nil {
		root.Log.Fatalf("Invalid base amount %q: %v", base, err)
	}
	op.BaseAmount = baseAmount

	parsed, err := time.Parse("2006-01-02", vatDate)
	if err != nil {
		root.Log.Fatalf("Invalid VAT date %q: %v", vatDate, err)
	}
	op.VatDate = &parsed

	result, err := vatclass.Classify(op, time.Now())
	if err != nil {
		root.Log.Fatalf("Classification failed: %v", err)
	}

	root.Log.Infof("VAT period: %02d/%d", result.Period.Month, result.Period.Year)
	root.Log.Infof("Operation code: %s", result.Code)
	if suggested := vatclass.SuggestCode(op.Direction, op.VatRate, result.Code); suggested != result.Code {
		root.Log.Infof("Suggested code for %s%% rate: %s", op.VatRate.String(), suggested)
	}
	if op.BaseAmount.IsPositive() {
		root.Log.Infof("VAT amount: %s", op.VatAmount().StringFixed(2))
		root.Log.Infof("Total amount: %s", op.TotalAmount().StringFixed(2))
	}
	for _, warning := range result.Warnings {
		root.Log.Warn(warning)
	}
}
