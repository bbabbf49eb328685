package docbatch

import (
	"fmt"
	"math/rand"
	"strings"

	"bgledger/kontir/internal/models"
)

// TaxDocumentNumberLength is the normalized length of tax document numbers
// required by the VAT journals.
const TaxDocumentNumberLength = 10

// MaxFreeFormNumberLength caps free-form numbers on non-tax documents.
const MaxFreeFormNumberLength = 20

// SanitizeOnInput is the keystroke-path filter: for tax documents it keeps
// digits only and caps the length; for other documents it only caps the
// length. Zero-padding happens later, in NormalizeOnCommit.
func SanitizeOnInput(docType models.DocumentType, raw string) string {
	if !docType.IsTaxDocument {
		if len(raw) > MaxFreeFormNumberLength {
			return raw[:MaxFreeFormNumberLength]
		}
		return raw
	}

	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
		if b.Len() == TaxDocumentNumberLength {
			break
		}
	}
	return b.String()
}

// NormalizeOnCommit is the blur/finalize-path normalization: tax document
// numbers are stripped of non-digits, truncated to ten characters and
// left-padded with zeros to exactly ten digits. The function is idempotent.
// Non-tax numbers pass through with only the length cap applied.
//
// An input with no digits at all yields the empty string rather than a
// zero-filled number; validation then rejects the document for having no
// usable number.
func NormalizeOnCommit(docType models.DocumentType, raw string) string {
	if !docType.IsTaxDocument {
		if len(raw) > MaxFreeFormNumberLength {
			return raw[:MaxFreeFormNumberLength]
		}
		return raw
	}

	digits := SanitizeOnInput(docType, raw)
	if digits == "" {
		return ""
	}
	return fmt.Sprintf("%0*s", TaxDocumentNumberLength, digits)
}

const numberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var numberGroupLengths = []int{3, 4, 3}

// GenerateNumber produces a convenience number for non-tax documents:
// the type's short code plus three dash-separated random alphanumeric
// groups, e.g. "ПКО-A1B-C2D3-E4F". Uniqueness is the backend's concern.
func GenerateNumber(docType models.DocumentType) string {
	parts := make([]string, 0, len(numberGroupLengths)+1)
	if docType.ShortCode != "" {
		parts = append(parts, docType.ShortCode)
	}
	for _, n := range numberGroupLengths {
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteByte(numberAlphabet[rand.Intn(len(numberAlphabet))])
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "-")
}

// LinkedNumber derives the number of a linked group from the main
// document's number. Linked numbers are computed, never stored, so a main
// renumber cascades to every group.
func LinkedNumber(mainNumber string, groupID int) string {
	return fmt.Sprintf("%s-%d", mainNumber, groupID)
}
