// Package accounttree indexes the chart of accounts: hierarchical lookup,
// parent/child constraints for analytical accounts, and defaults for
// accounts auto-created during import. The index is pure; it never talks to
// the ledger backend.
package accounttree

import (
	"sort"

	"bgledger/kontir/internal/models"
	"bgledger/kontir/internal/parsererror"
)

// Node is one account with its children, ordered by code.
type Node struct {
	Account  models.Account
	Children []*Node
}

// Index is a lookup structure over a snapshot of the chart of accounts.
type Index struct {
	byID   map[int]models.Account
	byCode map[string]models.Account
	roots  []*Node
}

// BuildTree indexes the given accounts and assembles the forest. Children
// whose parent is missing from the snapshot are treated as roots rather
// than dropped.
func BuildTree(accounts []models.Account) *Index {
	idx := &Index{
		byID:   make(map[int]models.Account, len(accounts)),
		byCode: make(map[string]models.Account, len(accounts)),
	}

	nodes := make(map[int]*Node, len(accounts))
	for _, acc := range accounts {
		idx.byID[acc.ID] = acc
		idx.byCode[acc.Code] = acc
		nodes[acc.ID] = &Node{Account: acc}
	}

	for _, acc := range accounts {
		node := nodes[acc.ID]
		if acc.ParentID != nil {
			if parent, ok := nodes[*acc.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		idx.roots = append(idx.roots, node)
	}

	sortNodes(idx.roots)
	for _, node := range nodes {
		sortNodes(node.Children)
	}

	return idx
}

func sortNodes(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Account.Code < nodes[j].Account.Code
	})
}

// Roots returns the top of the forest.
func (idx *Index) Roots() []*Node {
	return idx.roots
}

// Resolve finds an account by code. A miss returns AccountNotFoundError so
// callers block the save instead of dropping the line.
func (idx *Index) Resolve(code string) (models.Account, error) {
	acc, ok := idx.byCode[code]
	if !ok {
		return models.Account{}, &parsererror.AccountNotFoundError{Code: code}
	}
	return acc, nil
}

// ByID finds an account by its identifier.
func (idx *Index) ByID(id int) (models.Account, bool) {
	acc, ok := idx.byID[id]
	return acc, ok
}

// Exists implements the balance.AccountChecker contract.
func (idx *Index) Exists(code string) bool {
	_, ok := idx.byCode[code]
	return ok
}

// IsValidParent reports whether candidateParentID may become the parent of
// child: the candidate must exist, must be synthetic, and must not be the
// child itself. Only synthetic accounts may parent, so no deeper cycle
// check is needed.
func (idx *Index) IsValidParent(child models.Account, candidateParentID int) bool {
	if candidateParentID == child.ID {
		return false
	}
	parent, ok := idx.byID[candidateParentID]
	if !ok {
		return false
	}
	return !parent.IsAnalytical
}

// CheckAnalytical verifies the analytical-account invariant: an analytical
// account must reference an existing synthetic parent.
func (idx *Index) CheckAnalytical(acc models.Account) error {
	if !acc.IsAnalytical {
		return nil
	}
	if acc.ParentID == nil {
		return &parsererror.ConstraintError{
			Field:  "parentId",
			Value:  "",
			Reason: "analytical account requires a synthetic parent",
		}
	}
	parent, ok := idx.byID[*acc.ParentID]
	if !ok {
		return &parsererror.ConstraintError{
			Field:  "parentId",
			Value:  acc.Code,
			Reason: "parent account does not exist",
		}
	}
	if parent.IsAnalytical {
		return &parsererror.ConstraintError{
			Field:  "parentId",
			Value:  parent.Code,
			Reason: "parent account must be synthetic",
		}
	}
	return nil
}

// MissingCodes returns the source account codes, in the given order, that
// are absent from the chart of accounts.
func (idx *Index) MissingCodes(codes []string) []string {
	var missing []string
	for _, code := range codes {
		if !idx.Exists(code) {
			missing = append(missing, code)
		}
	}
	return missing
}

// DefaultsFor builds the account an import auto-creates for an unknown
// source code: class from the first code digit, analytical leaf, material
// and production classes tracking quantities in "бр" by default.
func DefaultsFor(code, name string) models.Account {
	class := models.AccountClassFromCode(code)
	acc := models.Account{
		Code:         code,
		Name:         name,
		AccountType:  typeForClass(class),
		AccountClass: class,
		Level:        3,
		IsAnalytical: true,
		IsActive:     true,
		VatDirection: models.VatDirectionNone,
	}
	if class == 2 || class == 3 {
		acc.SupportsQuantities = true
		acc.DefaultUnit = "бр"
	}
	return acc
}

func typeForClass(class int) models.AccountType {
	switch class {
	case 1:
		return models.AccountTypeEquity
	case 2, 3, 5:
		return models.AccountTypeAsset
	case 6:
		return models.AccountTypeExpense
	case 7:
		return models.AccountTypeRevenue
	case 4:
		return models.AccountTypeLiability
	default:
		return models.AccountTypeAsset
	}
}
