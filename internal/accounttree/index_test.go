package accounttree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bgledger/kontir/internal/models"
	"bgledger/kontir/internal/parsererror"
)

func intPtr(i int) *int { return &i }

func testAccounts() []models.Account {
	return []models.Account{
		{ID: 1, Code: "401", Name: "Доставчици", AccountClass: 4},
		{ID: 2, Code: "4011", Name: "Доставчици в лева", ParentID: intPtr(1), IsAnalytical: true, AccountClass: 4},
		{ID: 3, Code: "4012", Name: "Доставчици във валута", ParentID: intPtr(1), IsAnalytical: true, AccountClass: 4},
		{ID: 4, Code: "602", Name: "Разходи за външни услуги", AccountClass: 6},
		{ID: 5, Code: "7021", Name: "Приходи от услуги", ParentID: intPtr(99), IsAnalytical: true, AccountClass: 7},
	}
}

func TestBuildTreeOrdersChildren(t *testing.T) {
	idx := BuildTree(testAccounts())

	roots := idx.Roots()
	// Orphan 7021 is treated as a root, not dropped.
	require.Len(t, roots, 3)
	assert.Equal(t, "401", roots[0].Account.Code)
	assert.Equal(t, "602", roots[1].Account.Code)
	assert.Equal(t, "7021", roots[2].Account.Code)

	require.Len(t, roots[0].Children, 2)
	assert.Equal(t, "4011", roots[0].Children[0].Account.Code)
	assert.Equal(t, "4012", roots[0].Children[1].Account.Code)
}

func TestResolve(t *testing.T) {
	idx := BuildTree(testAccounts())

	acc, err := idx.Resolve("4011")
	require.NoError(t, err)
	assert.Equal(t, 2, acc.ID)

	_, err = idx.Resolve("9999")
	var notFound *parsererror.AccountNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "9999", notFound.Code)
}

func TestExistsAndMissingCodes(t *testing.T) {
	idx := BuildTree(testAccounts())

	assert.True(t, idx.Exists("602"))
	assert.False(t, idx.Exists("501"))

	missing := idx.MissingCodes([]string{"401", "501", "602", "503"})
	assert.Equal(t, []string{"501", "503"}, missing)
}

func TestIsValidParent(t *testing.T) {
	idx := BuildTree(testAccounts())
	child := models.Account{ID: 2, Code: "4011", IsAnalytical: true}

	assert.True(t, idx.IsValidParent(child, 1))
	assert.False(t, idx.IsValidParent(child, 2), "self parenting")
	assert.False(t, idx.IsValidParent(child, 3), "analytical parent")
	assert.False(t, idx.IsValidParent(child, 42), "unknown parent")
}

func TestCheckAnalytical(t *testing.T) {
	idx := BuildTree(testAccounts())

	ok := models.Account{ID: 2, Code: "4011", IsAnalytical: true, ParentID: intPtr(1)}
	assert.NoError(t, idx.CheckAnalytical(ok))

	synthetic := models.Account{ID: 4, Code: "602"}
	assert.NoError(t, idx.CheckAnalytical(synthetic))

	var constraint *parsererror.ConstraintError

	noParent := models.Account{Code: "5011", IsAnalytical: true}
	require.ErrorAs(t, idx.CheckAnalytical(noParent), &constraint)

	missingParent := models.Account{Code: "5011", IsAnalytical: true, ParentID: intPtr(42)}
	require.ErrorAs(t, idx.CheckAnalytical(missingParent), &constraint)

	analyticalParent := models.Account{Code: "40111", IsAnalytical: true, ParentID: intPtr(2)}
	require.ErrorAs(t, idx.CheckAnalytical(analyticalParent), &constraint)
}

func TestDefaultsFor(t *testing.T) {
	tests := []struct {
		code       string
		wantType   models.AccountType
		wantClass  int
		quantities bool
	}{
		{"302", models.AccountTypeAsset, 3, true},
		{"204", models.AccountTypeAsset, 2, true},
		{"602", models.AccountTypeExpense, 6, false},
		{"702", models.AccountTypeRevenue, 7, false},
		{"401", models.AccountTypeLiability, 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			acc := DefaultsFor(tt.code, "Импортирана сметка")
			assert.Equal(t, tt.wantType, acc.AccountType)
			assert.Equal(t, tt.wantClass, acc.AccountClass)
			assert.True(t, acc.IsAnalytical)
			assert.True(t, acc.IsActive)
			assert.Equal(t, tt.quantities, acc.SupportsQuantities)
			if tt.quantities {
				assert.Equal(t, "бр", acc.DefaultUnit)
			}
		})
	}
}
