// Package models provides the data structures shared by the import,
// balancing and classification packages.
package models

import "strings"

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// VatDirection marks which VAT journals an account participates in.
type VatDirection string

const (
	VatDirectionNone   VatDirection = "NONE"
	VatDirectionInput  VatDirection = "INPUT"
	VatDirectionOutput VatDirection = "OUTPUT"
	VatDirectionBoth   VatDirection = "BOTH"
)

// Account is one node of the chart of accounts. Accounts form a forest:
// analytical (leaf) accounts must point at a synthetic parent, synthetic
// accounts may not have an analytical ancestor.
type Account struct {
	ID                 int          `json:"id" yaml:"id"`
	Code               string       `json:"code" yaml:"code"`
	Name               string       `json:"name" yaml:"name"`
	AccountType        AccountType  `json:"accountType" yaml:"account_type"`
	AccountClass       int          `json:"accountClass" yaml:"account_class"` // Bulgarian chart classes 1-8
	ParentID           *int         `json:"parentId" yaml:"parent_id"`
	Level              int          `json:"level" yaml:"level"`
	IsAnalytical       bool         `json:"isAnalytical" yaml:"is_analytical"`
	IsVatApplicable    bool         `json:"isVatApplicable" yaml:"is_vat_applicable"`
	VatDirection       VatDirection `json:"vatDirection" yaml:"vat_direction"`
	IsActive           bool         `json:"isActive" yaml:"is_active"`
	SupportsQuantities bool         `json:"supportsQuantities" yaml:"supports_quantities"`
	DefaultUnit        string       `json:"defaultUnit" yaml:"default_unit"`
}

// AccountClassFromCode derives the Bulgarian chart-of-accounts class from
// the first digit of an account code. Returns 0 for codes that do not start
// with a digit 1-8.
func AccountClassFromCode(code string) int {
	if code == "" {
		return 0
	}
	c := code[0]
	if c < '1' || c > '8' {
		return 0
	}
	return int(c - '0')
}

// Account-code prefix helpers used by the import document-type detector.
// The prefixes follow the national chart of accounts: 401/402/404/408 are
// supplier payables, 411/412 customer receivables, class 7 revenue,
// classes 2/3/6 materials and expenses, 4531/4532 the VAT settlement pair.

func IsSupplierAccount(code string) bool {
	return strings.HasPrefix(code, "401") ||
		strings.HasPrefix(code, "402") ||
		strings.HasPrefix(code, "404") ||
		strings.HasPrefix(code, "408")
}

func IsCustomerAccount(code string) bool {
	return strings.HasPrefix(code, "411") || strings.HasPrefix(code, "412")
}

func IsRevenueAccount(code string) bool {
	return strings.HasPrefix(code, "7")
}

func IsCostAccount(code string) bool {
	return strings.HasPrefix(code, "2") ||
		strings.HasPrefix(code, "3") ||
		strings.HasPrefix(code, "6")
}

// VAT settlement accounts.
const (
	VatReceivableAccount = "4531" // ДДС за възстановяване (purchases)
	VatPayableAccount    = "4532" // ДДС за внасяне (sales)
)

// Counterpart is a contragent referenced by journal lines.
type Counterpart struct {
	ID              int    `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	EIK             string `json:"eik" yaml:"eik"`
	VatNumber       string `json:"vatNumber" yaml:"vat_number"`
	Country         string `json:"country" yaml:"country"`
	IsVatRegistered bool   `json:"isVatRegistered" yaml:"is_vat_registered"`
}
