package docbatch

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bgledger/kontir/internal/models"
	"bgledger/kontir/internal/parsererror"
)

type chartStub map[string]bool

func (c chartStub) Exists(code string) bool { return c[code] }

var chart = chartStub{"401": true, "411": true, "501": true, "602": true, "702": true, "4531": true, "4532": true}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func invoiceDoc(number string) models.Document {
	return models.Document{
		DocumentNumber: number,
		DocumentDate:   time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		AccountingDate: time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		Description:    "Доставка материали",
		DocumentType:   models.DocTypeInvoice,
		Lines: []models.JournalLine{
			{AccountCode: "602", DebitAmount: dec("100.00")},
			{AccountCode: "4531", DebitAmount: dec("20.00")},
			{AccountCode: "401", CreditAmount: dec("120.00")},
		},
	}
}

func TestNewNormalizesMainNumber(t *testing.T) {
	b := New(invoiceDoc("354"))

	assert.Equal(t, "0000000354", b.Main().DocumentNumber)
	assert.Equal(t, MainGroupID, b.Main().GroupID)
	assert.Equal(t, models.GroupMain, b.Main().GroupType)
	assert.Equal(t, models.StateDraft, b.Main().State)
}

func TestCreateGroupInheritsMetadata(t *testing.T) {
	b := New(invoiceDoc("354"))

	payment, err := b.CreateGroup(models.GroupPayment)
	require.NoError(t, err)

	assert.Equal(t, 1, payment.GroupID)
	assert.Equal(t, "0000000354-1", payment.DocumentNumber)
	assert.Equal(t, b.Main().DocumentDate, payment.DocumentDate)
	assert.Equal(t, b.Main().Description, payment.Description)
	assert.Empty(t, payment.Lines)
}

func TestRenumberCascades(t *testing.T) {
	b := New(invoiceDoc("100"))
	_, err := b.CreateGroup(models.GroupPayment)
	require.NoError(t, err)
	_, err = b.CreateGroup(models.GroupVat)
	require.NoError(t, err)

	b.Renumber("200")

	assert.Equal(t, "0000000200", b.Main().DocumentNumber)
	assert.Equal(t, "0000000200-1", b.Documents[1].DocumentNumber)
	assert.Equal(t, "0000000200-2", b.Documents[2].DocumentNumber)
}

func TestActiveGroupSelectionAndFlush(t *testing.T) {
	b := New(invoiceDoc("354"))
	payment, err := b.CreateGroup(models.GroupPayment)
	require.NoError(t, err)

	require.NoError(t, b.SetActiveGroup(payment.GroupID))
	assert.Equal(t, payment, b.ActiveGroup())

	edited := *b.ActiveGroup()
	edited.Lines = []models.JournalLine{
		{AccountCode: "401", DebitAmount: dec("120.00")},
		{AccountCode: "501", CreditAmount: dec("120.00")},
	}
	edited.DocumentNumber = "tampered"
	edited.GroupID = 99

	require.NoError(t, b.FlushActiveGroup(edited))

	// Group identity and derived numbering survive the edit.
	assert.Equal(t, 1, b.ActiveGroup().GroupID)
	assert.Equal(t, "0000000354-1", b.ActiveGroup().DocumentNumber)
	assert.Len(t, b.ActiveGroup().Lines, 2)
}

func TestSetActiveGroupUnknownID(t *testing.T) {
	b := New(invoiceDoc("354"))
	assert.Error(t, b.SetActiveGroup(7))
}

func TestRemoveGroup(t *testing.T) {
	b := New(invoiceDoc("354"))
	payment, err := b.CreateGroup(models.GroupPayment)
	require.NoError(t, err)
	require.NoError(t, b.SetActiveGroup(payment.GroupID))

	require.NoError(t, b.RemoveGroup(payment.GroupID))
	assert.Len(t, b.Documents, 1)
	// Active selection falls back to the main group.
	assert.Equal(t, MainGroupID, b.ActiveGroup().GroupID)

	var stale *parsererror.StaleStateError
	err = b.RemoveGroup(MainGroupID)
	require.ErrorAs(t, err, &stale)
}

func TestAddLineGroup(t *testing.T) {
	b := New(invoiceDoc("354"))

	require.NoError(t, b.AddLineGroup(MainGroupID, "материал и ДДС", []int{0, 1}))
	require.Len(t, b.Main().LineGroups, 1)
	assert.Equal(t, []int{0, 1}, b.Main().LineGroups[0].LineIndices)

	var constraint *parsererror.ConstraintError
	require.ErrorAs(t, b.AddLineGroup(MainGroupID, "too small", []int{0}), &constraint)
	require.ErrorAs(t, b.AddLineGroup(MainGroupID, "out of range", []int{0, 9}), &constraint)
}

func TestValidateAdvancesState(t *testing.T) {
	b := New(invoiceDoc("354"))
	_, err := b.CreateGroup(models.GroupPayment) // stays empty
	require.NoError(t, err)

	require.Empty(t, b.Validate(chart))

	assert.Equal(t, models.StateValidated, b.Main().State)
	// Empty group is skipped, not advanced.
	assert.Equal(t, models.StateDraft, b.Documents[1].State)
}

func TestValidateAdvancesErrorFreeSiblings(t *testing.T) {
	b := New(invoiceDoc("354"))
	group, err := b.CreateGroup(models.GroupPayment)
	require.NoError(t, err)
	group.Lines = []models.JournalLine{
		{AccountCode: "999", DebitAmount: dec("50.00")},
		{AccountCode: "501", CreditAmount: dec("50.00")},
	}

	errs := b.Validate(chart)
	require.Len(t, errs, 1)

	var notFound *parsererror.AccountNotFoundError
	require.ErrorAs(t, errs[0], &notFound)
	assert.Equal(t, "999", notFound.Code)

	// The failing group stays DRAFT, the valid main still advances.
	assert.Equal(t, models.StateValidated, b.Main().State)
	assert.Equal(t, models.StateDraft, b.Documents[1].State)
}

func TestValidateRejectsTaxDocumentWithoutNumber(t *testing.T) {
	b := New(invoiceDoc("No/ABC")) // normalizes to no digits at all
	require.Empty(t, b.Main().DocumentNumber)

	errs := b.Validate(chart)
	require.Len(t, errs, 1)

	var constraint *parsererror.ConstraintError
	require.ErrorAs(t, errs[0], &constraint)
	assert.Equal(t, "documentNumber", constraint.Field)
	assert.Equal(t, models.StateDraft, b.Main().State)
}

func TestValidateAllEmptyBatch(t *testing.T) {
	empty := invoiceDoc("354")
	empty.Lines = nil
	b := New(empty)

	errs := b.Validate(chart)
	require.Len(t, errs, 1)

	var noLines *parsererror.NoValidLinesError
	require.ErrorAs(t, errs[0], &noLines)
}

func TestStateMachine(t *testing.T) {
	b := New(invoiceDoc("354"))
	require.Empty(t, b.Validate(chart))
	doc := b.Main()

	require.NoError(t, MarkSubmitted(doc))
	assert.Equal(t, models.StateSubmitted, doc.State)

	// Submitted documents reject edits.
	var stale *parsererror.StaleStateError
	require.ErrorAs(t, b.FlushActiveGroup(*doc), &stale)

	require.NoError(t, MarkPosted(doc))
	assert.Equal(t, models.StatePosted, doc.State)

	// Posting twice is a state error.
	require.ErrorAs(t, MarkPosted(doc), &stale)
}

func TestMarkFailedReturnsToValidated(t *testing.T) {
	b := New(invoiceDoc("354"))
	require.Empty(t, b.Validate(chart))
	doc := b.Main()
	require.NoError(t, MarkSubmitted(doc))

	MarkFailed(doc, errors.New("backend rejected the entry"))

	assert.Equal(t, models.StateValidated, doc.State)
	assert.Equal(t, "backend rejected the entry", doc.LastError)

	// The next submission attempt clears the recorded error.
	require.NoError(t, MarkSubmitted(doc))
	assert.Empty(t, doc.LastError)
}
