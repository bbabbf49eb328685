// Package docbatch models a batch of linked documents (statии) sharing a
// root document number: the MAIN document plus payment/expense/VAT/other
// groups whose numbers are derived from the main number. The batch is the
// unit of submission; individual empty documents are skipped.
package docbatch

import (
	"fmt"

	"bgledger/kontir/internal/balance"
	"bgledger/kontir/internal/models"
	"bgledger/kontir/internal/parsererror"
)

// MainGroupID is the sentinel group id of the batch's root document.
const MainGroupID = 0

// Batch is a MAIN document plus zero or more linked groups. The active
// group is tracked as an explicit index; edits land in a scratch copy and
// are folded back with FlushActiveGroup, so no document is aliased.
type Batch struct {
	Documents []*models.Document

	nextGroupID int
	activeIndex int
}

// New creates a batch around its main document. The main document's group
// id is forced to the sentinel and its number normalized for its type.
func New(main models.Document) *Batch {
	main.GroupID = MainGroupID
	main.GroupType = models.GroupMain
	main.State = models.StateDraft
	main.DocumentNumber = NormalizeOnCommit(main.DocumentType, main.DocumentNumber)
	return &Batch{
		Documents:   []*models.Document{&main},
		nextGroupID: 1,
	}
}

// Main returns the root document.
func (b *Batch) Main() *models.Document {
	return b.Documents[0]
}

// CreateGroup adds a linked document of the given type. Description, dates
// and document type are inherited from the main document at creation time
// only; later edits of the main document do not propagate. The group's
// number is derived from the main number and recomputed on renumber.
func (b *Batch) CreateGroup(groupType models.GroupType) (*models.Document, error) {
	main := b.Main()
	if !main.State.Mutable() {
		return nil, &parsererror.StaleStateError{
			Subject:   main.DocumentNumber,
			State:     string(main.State),
			Operation: "add group to",
		}
	}

	doc := &models.Document{
		GroupID:        b.nextGroupID,
		GroupType:      groupType,
		DocumentNumber: LinkedNumber(main.DocumentNumber, b.nextGroupID),
		DocumentDate:   main.DocumentDate,
		AccountingDate: main.AccountingDate,
		Description:    main.Description,
		DocumentType:   main.DocumentType,
		State:          models.StateDraft,
	}
	b.nextGroupID++
	b.Documents = append(b.Documents, doc)
	return doc, nil
}

// RemoveGroup deletes a linked group. The main group cannot be removed.
func (b *Batch) RemoveGroup(groupID int) error {
	if groupID == MainGroupID {
		return &parsererror.StaleStateError{
			Subject:   b.Main().DocumentNumber,
			State:     string(b.Main().State),
			Operation: "remove main group of",
		}
	}
	for i, doc := range b.Documents {
		if doc.GroupID == groupID {
			if !doc.State.Mutable() {
				return &parsererror.StaleStateError{
					Subject:   doc.DocumentNumber,
					State:     string(doc.State),
					Operation: "remove",
				}
			}
			b.Documents = append(b.Documents[:i], b.Documents[i+1:]...)
			if b.activeIndex >= len(b.Documents) {
				b.activeIndex = 0
			}
			return nil
		}
	}
	return fmt.Errorf("no group with id %d", groupID)
}

// Renumber sets a new main document number and recomputes every linked
// group's number from it.
func (b *Batch) Renumber(mainNumber string) {
	main := b.Main()
	main.DocumentNumber = NormalizeOnCommit(main.DocumentType, mainNumber)
	for _, doc := range b.Documents[1:] {
		doc.DocumentNumber = LinkedNumber(main.DocumentNumber, doc.GroupID)
	}
}

// SetActiveGroup selects which document subsequent line edits target.
func (b *Batch) SetActiveGroup(groupID int) error {
	for i, doc := range b.Documents {
		if doc.GroupID == groupID {
			b.activeIndex = i
			return nil
		}
	}
	return fmt.Errorf("no group with id %d", groupID)
}

// ActiveGroup returns the currently selected document.
func (b *Batch) ActiveGroup() *models.Document {
	return b.Documents[b.activeIndex]
}

// FlushActiveGroup folds an edited copy of the active document back into
// the batch. Group identity and derived numbering are preserved; only
// mutable documents accept edits.
func (b *Batch) FlushActiveGroup(edited models.Document) error {
	current := b.Documents[b.activeIndex]
	if !current.State.Mutable() {
		return &parsererror.StaleStateError{
			Subject:   current.DocumentNumber,
			State:     string(current.State),
			Operation: "edit",
		}
	}
	edited.GroupID = current.GroupID
	edited.GroupType = current.GroupType
	if current.GroupID != MainGroupID {
		edited.DocumentNumber = LinkedNumber(b.Main().DocumentNumber, current.GroupID)
	}
	*current = edited
	return nil
}

// AddLineGroup records an advisory named grouping of lines on a document.
// A group needs at least two line indices, all within range.
func (b *Batch) AddLineGroup(groupID int, name string, lineIndices []int) error {
	var doc *models.Document
	for _, d := range b.Documents {
		if d.GroupID == groupID {
			doc = d
			break
		}
	}
	if doc == nil {
		return fmt.Errorf("no group with id %d", groupID)
	}
	if len(lineIndices) < 2 {
		return &parsererror.ConstraintError{
			Field:  "lineIndices",
			Value:  fmt.Sprintf("%v", lineIndices),
			Reason: "a line group needs at least two lines",
		}
	}
	for _, idx := range lineIndices {
		if idx < 0 || idx >= len(doc.Lines) {
			return &parsererror.ConstraintError{
				Field:  "lineIndices",
				Value:  fmt.Sprintf("%d", idx),
				Reason: "line index out of range",
			}
		}
	}
	doc.LineGroups = append(doc.LineGroups, models.LinkedLineGroup{
		GroupID:     len(doc.LineGroups) + 1,
		Name:        name,
		LineIndices: lineIndices,
	})
	return nil
}

// Validate runs the balance checks across the batch and advances every
// non-empty, error-free document from DRAFT to VALIDATED. A document with
// findings stays DRAFT but does not hold back its siblings; only the
// batch-wide checks (cross-document balance, no valid lines) block every
// document.
func (b *Batch) Validate(accounts balance.AccountChecker) []error {
	report := balance.EvaluateBatch(b.Main().DocumentNumber, b.Documents, accounts)

	for i, doc := range b.Documents {
		if len(doc.ActiveLines()) == 0 {
			continue
		}
		// a tax document whose number normalized to nothing has no
		// usable number; it is rejected rather than padded to zeros
		if doc.DocumentType.IsTaxDocument && doc.DocumentNumber == "" {
			report.DocumentErrors[i] = append(report.DocumentErrors[i], &parsererror.ConstraintError{
				Field:  "documentNumber",
				Value:  "",
				Reason: "tax document has no usable document number",
			})
		}
	}

	if len(report.BatchErrors) == 0 {
		for i, doc := range b.Documents {
			if len(doc.ActiveLines()) == 0 || len(report.DocumentErrors[i]) > 0 {
				continue
			}
			if doc.State == models.StateDraft {
				doc.State = models.StateValidated
			}
		}
	}
	return report.All()
}

// MarkSubmitted advances a validated document to SUBMITTED. Submitted is
// terminal pending the backend acknowledgment.
func MarkSubmitted(doc *models.Document) error {
	if doc.State != models.StateValidated {
		return &parsererror.StaleStateError{
			Subject:   doc.DocumentNumber,
			State:     string(doc.State),
			Operation: "submit",
		}
	}
	doc.State = models.StateSubmitted
	doc.LastError = ""
	return nil
}

// MarkPosted records the backend acknowledgment.
func MarkPosted(doc *models.Document) error {
	if doc.State != models.StateSubmitted {
		return &parsererror.StaleStateError{
			Subject:   doc.DocumentNumber,
			State:     string(doc.State),
			Operation: "post",
		}
	}
	doc.State = models.StatePosted
	return nil
}

// MarkFailed returns a submitted document to VALIDATED with the backend
// error attached, so the failure is visible rather than silently dropped.
func MarkFailed(doc *models.Document, err error) {
	if doc.State == models.StateSubmitted {
		doc.State = models.StateValidated
	}
	if err != nil {
		doc.LastError = err.Error()
	}
}
